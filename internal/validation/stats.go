package validation

import "sync"

// Stats is a snapshot of the validation counters. Rates are percentages of
// TotalRequests and are zero when there were no requests.
type Stats struct {
	TotalRequests     int64 `json:"total_requests"`
	ExactMatches      int64 `json:"exact_matches"`
	SimilarityMatches int64 `json:"similarity_matches"`
	MemoryHits        int64 `json:"memory_hits"`
	DBHits            int64 `json:"db_hits"`
	CacheMisses       int64 `json:"cache_misses"`
	AICalls           int64 `json:"ai_calls"`

	TotalCacheHits      int64   `json:"total_cache_hits"`
	MemoryHitRate       float64 `json:"memory_hit_rate"`
	DBHitRate           float64 `json:"db_hit_rate"`
	AICallRate          float64 `json:"ai_call_rate"`
	ExactMatchRate      float64 `json:"exact_match_rate"`
	SimilarityMatchRate float64 `json:"similarity_match_rate"`
	CacheHitRate        float64 `json:"cache_hit_rate"`

	MemoryCacheSize  int   `json:"memory_cache_size"`
	DurableCacheSize int64 `json:"durable_cache_size"`
}

// counter names
const (
	counterTotalRequests     = "total_requests"
	counterExactMatches      = "exact_matches"
	counterSimilarityMatches = "similarity_matches"
	counterMemoryHits        = "memory_hits"
	counterDBHits            = "db_hits"
	counterCacheMisses       = "cache_misses"
	counterAICalls           = "ai_calls"
)

// counters holds the running request counters. It has its own lock so that
// counting never contends with the memory tier.
type counters struct {
	mu     sync.Mutex
	values map[string]int64
}

func newCounters() *counters {
	return &counters{values: make(map[string]int64)}
}

func (c *counters) inc(name string) {
	c.mu.Lock()
	c.values[name]++
	c.mu.Unlock()
	requestsTotal.WithLabelValues(name).Inc()
}

func (c *counters) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values = make(map[string]int64)
}

// snapshot returns the counters with every derived field filled in.
func (c *counters) snapshot() Stats {
	c.mu.Lock()
	s := Stats{
		TotalRequests:     c.values[counterTotalRequests],
		ExactMatches:      c.values[counterExactMatches],
		SimilarityMatches: c.values[counterSimilarityMatches],
		MemoryHits:        c.values[counterMemoryHits],
		DBHits:            c.values[counterDBHits],
		CacheMisses:       c.values[counterCacheMisses],
		AICalls:           c.values[counterAICalls],
	}
	c.mu.Unlock()

	s.TotalCacheHits = s.MemoryHits + s.DBHits + s.ExactMatches + s.SimilarityMatches
	if s.TotalRequests == 0 {
		return s
	}

	rate := func(n int64) float64 {
		return float64(n) / float64(s.TotalRequests) * 100
	}
	s.MemoryHitRate = rate(s.MemoryHits)
	s.DBHitRate = rate(s.DBHits)
	s.AICallRate = rate(s.AICalls)
	s.ExactMatchRate = rate(s.ExactMatches)
	s.SimilarityMatchRate = rate(s.SimilarityMatches)
	s.CacheHitRate = rate(s.TotalCacheHits)
	return s
}
