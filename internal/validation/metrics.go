package validation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vocab",
		Subsystem: "validation",
		Name:      "events_total",
		Help:      "Validation counter events: requests, pre-filter matches, tier hits, misses and judge calls",
	}, []string{"event"})

	memoryEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vocab",
		Subsystem: "validation",
		Name:      "memory_evictions_total",
		Help:      "Entries evicted from the memory tier by LRU",
	})

	durableErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vocab",
		Subsystem: "validation",
		Name:      "durable_errors_total",
		Help:      "Durable tier failures that were swallowed, by operation",
	}, []string{"operation"})

	purgedEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vocab",
		Subsystem: "validation",
		Name:      "purged_entries_total",
		Help:      "Durable entries removed by explicit purges",
	})

	auditScore = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vocab",
		Subsystem: "validation",
		Name:      "audit_quality_score",
		Help:      "Score of the most recent cache quality audit",
	})
)
