package store

import (
	"context"
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
)

// ValidationCacheStore is the durable tier of the validation cache.
// Every operation is scoped to a single key or is a bulk maintenance call,
// so implementations need no cross-key locking.
type ValidationCacheStore interface {
	// Get returns the entry stored under key.
	// Returns ErrCacheEntryNotFound if there is none.
	Get(ctx context.Context, key string) (*domain.CacheEntry, error)

	// Upsert writes the entry under entry.Key, replacing any previous entry.
	// Writing the same entry twice leaves a single row.
	Upsert(ctx context.Context, entry *domain.CacheEntry) error

	// Touch records one read of the entry: access_count is incremented and
	// last_accessed set to at. Touching a missing key is not an error.
	Touch(ctx context.Context, key string, at time.Time) error

	// Sample returns up to n entries chosen at random.
	Sample(ctx context.Context, n int) ([]*domain.CacheEntry, error)

	// DeleteOlderThan removes entries created before cutoff and returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteAll removes every entry and returns how many were removed.
	DeleteAll(ctx context.Context) (int64, error)

	// Count returns the number of stored entries.
	Count(ctx context.Context) (int64, error)
}
