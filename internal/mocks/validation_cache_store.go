package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/phrazzld/vocab-api/internal/domain"
	"github.com/phrazzld/vocab-api/internal/store"
)

// MockValidationCacheStore is an in-memory store.ValidationCacheStore.
// Setting a function field replaces the default behavior of that method.
type MockValidationCacheStore struct {
	GetFn             func(ctx context.Context, key string) (*domain.CacheEntry, error)
	UpsertFn          func(ctx context.Context, entry *domain.CacheEntry) error
	TouchFn           func(ctx context.Context, key string, at time.Time) error
	SampleFn          func(ctx context.Context, n int) ([]*domain.CacheEntry, error)
	DeleteOlderThanFn func(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteAllFn       func(ctx context.Context) (int64, error)
	CountFn           func(ctx context.Context) (int64, error)

	mu      sync.Mutex
	entries map[string]domain.CacheEntry
	calls   map[string]int
}

var _ store.ValidationCacheStore = (*MockValidationCacheStore)(nil)

// NewMockValidationCacheStore creates an empty store.
func NewMockValidationCacheStore() *MockValidationCacheStore {
	return &MockValidationCacheStore{
		entries: make(map[string]domain.CacheEntry),
		calls:   make(map[string]int),
	}
}

func (m *MockValidationCacheStore) record(method string) {
	m.mu.Lock()
	m.calls[method]++
	m.mu.Unlock()
}

// Calls returns how many times method was invoked.
func (m *MockValidationCacheStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// Entry returns a copy of the stored entry, bypassing any function fields.
func (m *MockValidationCacheStore) Entry(key string) (domain.CacheEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	return e, ok
}

// Len returns the number of stored entries.
func (m *MockValidationCacheStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Seed stores entries directly.
func (m *MockValidationCacheStore) Seed(entries ...*domain.CacheEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.Key] = *e
	}
}

// Get implements store.ValidationCacheStore.
func (m *MockValidationCacheStore) Get(ctx context.Context, key string) (*domain.CacheEntry, error) {
	m.record("Get")
	if m.GetFn != nil {
		return m.GetFn(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, store.ErrCacheEntryNotFound
	}
	return &e, nil
}

// Upsert implements store.ValidationCacheStore.
func (m *MockValidationCacheStore) Upsert(ctx context.Context, entry *domain.CacheEntry) error {
	m.record("Upsert")
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, entry)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Key] = *entry
	return nil
}

// Touch implements store.ValidationCacheStore.
func (m *MockValidationCacheStore) Touch(ctx context.Context, key string, at time.Time) error {
	m.record("Touch")
	if m.TouchFn != nil {
		return m.TouchFn(ctx, key, at)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil
	}
	e.Touch(at)
	m.entries[key] = e
	return nil
}

// Sample implements store.ValidationCacheStore. The sample is the first n
// entries in key order, which keeps tests deterministic.
func (m *MockValidationCacheStore) Sample(ctx context.Context, n int) ([]*domain.CacheEntry, error) {
	m.record("Sample")
	if m.SampleFn != nil {
		return m.SampleFn(ctx, n)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if n < len(keys) {
		keys = keys[:n]
	}

	out := make([]*domain.CacheEntry, 0, len(keys))
	for _, k := range keys {
		e := m.entries[k]
		out = append(out, &e)
	}
	return out, nil
}

// DeleteOlderThan implements store.ValidationCacheStore.
func (m *MockValidationCacheStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	m.record("DeleteOlderThan")
	if m.DeleteOlderThanFn != nil {
		return m.DeleteOlderThanFn(ctx, cutoff)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var removed int64
	for k, e := range m.entries {
		if e.CreatedAt.Before(cutoff) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed, nil
}

// DeleteAll implements store.ValidationCacheStore.
func (m *MockValidationCacheStore) DeleteAll(ctx context.Context) (int64, error) {
	m.record("DeleteAll")
	if m.DeleteAllFn != nil {
		return m.DeleteAllFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := int64(len(m.entries))
	m.entries = make(map[string]domain.CacheEntry)
	return removed, nil
}

// Count implements store.ValidationCacheStore.
func (m *MockValidationCacheStore) Count(ctx context.Context) (int64, error) {
	m.record("Count")
	if m.CountFn != nil {
		return m.CountFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.entries)), nil
}
