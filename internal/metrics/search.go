package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fedsearch",
			Name:      "search_requests_total",
			Help:      "Total number of federated search requests",
		},
		[]string{"operation", "status"},
	)

	SearchExecutorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fedsearch",
			Name:      "search_executor_duration_seconds",
			Help:      "Per-entity search duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"entity_type", "status"},
	)

	SearchExecutorFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fedsearch",
			Name:      "search_executor_failures_total",
			Help:      "Per-entity search failures by kind",
		},
		[]string{"entity_type", "kind"},
	)

	SearchFanoutsInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fedsearch",
			Name:      "search_fanouts_inflight",
			Help:      "Fan-outs currently holding a concurrency slot",
		},
	)

	SearchBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "fedsearch",
			Name:      "search_breaker_state",
			Help:      "Circuit breaker state per entity type (0=closed, 1=open, 2=half-open)",
		},
		[]string{"entity_type"},
	)

	SynonymCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fedsearch",
			Name:      "synonym_cache_total",
			Help:      "Synonym table cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers Prometheus search metrics. Safe to call more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchExecutorDuration)
		prometheus.MustRegister(SearchExecutorFailuresTotal)
		prometheus.MustRegister(SearchFanoutsInflight)
		prometheus.MustRegister(SearchBreakerState)
		prometheus.MustRegister(SynonymCacheTotal)
	})
}
