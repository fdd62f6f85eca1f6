package judge

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess   = "success"
	outcomeTransient = "transient"
	outcomeInvalid   = "invalid"
)

var (
	judgeCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vocab",
		Subsystem: "judge",
		Name:      "calls_total",
		Help:      "Judge calls by outcome: success, transient or invalid",
	}, []string{"outcome"})

	judgeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "vocab",
		Subsystem: "judge",
		Name:      "call_latency_seconds",
		Help:      "Latency of a single judge call attempt",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
	})

	judgeOverridesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vocab",
		Subsystem: "judge",
		Name:      "overrides_total",
		Help:      "Verdicts flipped to correct by the confidence threshold override",
	})
)
