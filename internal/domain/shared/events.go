// Package shared contains common domain types used across all domain
// packages. This package has zero external dependencies.
package shared

import (
	"context"
	"time"
)

// KeyChange describes one committed mutation of the record store: the key
// that changed and the serialized value that was persisted for it. Origin
// identifies the view that performed the write, so cross-view transports can
// avoid re-delivering a change to its own writer.
type KeyChange struct {
	// Key is the record store key that changed.
	Key string `json:"key"`

	// Value is the serialized value that was persisted.
	Value []byte `json:"value"`

	// Origin is the ID of the view that performed the write.
	Origin string `json:"origin"`

	// At is when the change was published.
	At time.Time `json:"at"`
}

// ChangeHandler is called for every change delivered to a subscriber.
// Handlers must not assume they run on any particular goroutine.
type ChangeHandler func(change KeyChange)

// ChangeBus disseminates record store mutations to every live view.
//
// Delivery contract: within one process, changes are delivered to handlers
// in publish order. Across views the only guarantee is consistency with the
// underlying storage's own write order. A view never receives its own
// writes back through the cross-view path.
type ChangeBus interface {
	// Subscribe registers a handler and returns an unsubscribe function.
	// Unsubscribing is idempotent and detaches every delivery path.
	Subscribe(handler ChangeHandler) (unsubscribe func())

	// Publish delivers a change to all current subscribers.
	Publish(ctx context.Context, change KeyChange) error

	// Close shuts the bus down and detaches all subscribers.
	Close() error
}
