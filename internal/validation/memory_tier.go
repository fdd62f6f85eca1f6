package validation

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"github.com/phrazzld/vocab-api/internal/domain"
)

// memoryTier is the bounded in-process tier of the validation cache.
// Every method holds mu for its whole body and performs no I/O.
type memoryTier struct {
	mu      sync.Mutex
	entries *simplelru.LRU[string, *domain.CacheEntry]
}

func newMemoryTier(capacity int) (*memoryTier, error) {
	lru, err := simplelru.NewLRU[string, *domain.CacheEntry](capacity, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory tier: %w", err)
	}
	return &memoryTier{entries: lru}, nil
}

// get returns a copy of the entry under key, recording the access.
func (m *memoryTier) get(key string, now time.Time) (domain.CacheEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries.Get(key)
	if !ok {
		return domain.CacheEntry{}, false
	}
	entry.Touch(now)
	return *entry, true
}

// put stores a copy of entry, evicting the least recently used entry at
// capacity. It reports whether an eviction happened.
func (m *memoryTier) put(entry domain.CacheEntry) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.entries.Add(entry.Key, &entry)
}

// contains reports whether key is present without changing recency.
func (m *memoryTier) contains(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.entries.Contains(key)
}

func (m *memoryTier) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.entries.Len()
}

func (m *memoryTier) purge() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries.Purge()
}
