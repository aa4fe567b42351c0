package record

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Store errors. Backends wrap their driver errors into these so callers can
// use errors.Is without knowing the storage medium.
var (
	// ErrNotFound is returned when a key has never been written.
	ErrNotFound = errors.New("record: key not found")

	// ErrCorrupt is returned when a stored value cannot be deserialized.
	ErrCorrupt = errors.New("record: corrupt value")
)

// Store is key-addressed durable storage of serialized records. Values are
// opaque bytes at this level; serialization lives in the typed helpers below
// so every backend stores exactly what the change bus publishes.
//
// Concurrent writers to the same key are resolved by last-write-wins at the
// storage layer. The store does not arbitrate conflicts.
type Store interface {
	// Get returns the stored bytes for a key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set durably persists the bytes under the key.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the underlying storage handle.
	Close() error
}

// ══════════════════════════════════════════════════════════════════════════════
// KEY LAYOUT
// ══════════════════════════════════════════════════════════════════════════════

// Fixed global keys.
const (
	// KeyDirectory holds the global student directory ([]StudentRecord).
	KeyDirectory = "students:directory"

	// KeyGradeEntries holds the single global legacy grade list ([]GradeEntry).
	KeyGradeEntries = "grades:entries"

	// KeyActivityLog holds the single global activity log.
	KeyActivityLog = "activity:log"

	// KeyGamificationStates holds the global gamification-state map,
	// keyed by student ID.
	KeyGamificationStates = "gamification:states"
)

// CoursesKey returns the per-student course list key.
func CoursesKey(id StudentID) string {
	return "student:" + id.String() + ":courses"
}

// ══════════════════════════════════════════════════════════════════════════════
// TYPED ACCESS HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// GetJSON loads and deserializes the value under a key. A value that fails
// to deserialize is reported as ErrCorrupt.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, error) {
	var out T

	data, err := s.Get(ctx, key)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("%w: key %s: %v", ErrCorrupt, key, err)
	}
	return out, nil
}

// GetOrDefault loads a value, substituting the caller-supplied default on
// any read failure. A missing key is normal and silent; corruption or a
// backend failure is logged and then treated the same way. This favors
// availability over strict correctness: a corrupted record reads as absent
// instead of blocking the caller.
func GetOrDefault[T any](ctx context.Context, s Store, key string, def T, logger *slog.Logger) T {
	if logger == nil {
		logger = slog.Default()
	}

	val, err := GetJSON[T](ctx, s, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			logger.Warn("record store read failed, using default",
				"key", key,
				"error", err,
			)
		}
		return def
	}
	return val
}

// SetJSON serializes a value and persists it under the key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("record: marshal key %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}
