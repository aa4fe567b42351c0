// Package persistence wires record store backends to the change bus.
package persistence

import (
	"context"
	"log/slog"
	"time"

	"github.com/gradehub/gradehub-core/internal/domain/record"
	"github.com/gradehub/gradehub-core/internal/domain/shared"
)

// PublishingStore decorates a record.Store with notify-on-write: every
// successful Set publishes exactly one change carrying the key and the
// serialized value. A failed persist publishes nothing - there is no
// partial-success signal.
type PublishingStore struct {
	inner  record.Store
	bus    shared.ChangeBus
	origin string
	logger *slog.Logger
}

// NewPublishingStore wraps a store with a change bus. Origin identifies the
// writing view and is stamped on every published change.
func NewPublishingStore(inner record.Store, bus shared.ChangeBus, origin string, logger *slog.Logger) *PublishingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishingStore{
		inner:  inner,
		bus:    bus,
		origin: origin,
		logger: logger,
	}
}

// Get delegates to the inner store.
func (s *PublishingStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.inner.Get(ctx, key)
}

// Set persists, then publishes. The value is durably stored before the
// notification goes out; a publish failure after a successful persist is
// logged but not surfaced, since the write itself succeeded.
func (s *PublishingStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.inner.Set(ctx, key, value); err != nil {
		return err
	}

	change := shared.KeyChange{
		Key:    key,
		Value:  value,
		Origin: s.origin,
		At:     time.Now().UTC(),
	}
	if err := s.bus.Publish(ctx, change); err != nil {
		s.logger.Error("change notification failed after persist", "key", key, "error", err)
	}
	return nil
}

// Delete delegates to the inner store. Deletions are not part of the core's
// write surface; nothing in this layer deletes records.
func (s *PublishingStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}

// Close closes the inner store. The bus has its own lifecycle.
func (s *PublishingStore) Close() error {
	return s.inner.Close()
}
