package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search calls by outcome",
		},
		[]string{"outcome"}, // "no_query" / "ok" / "partial" / "unavailable" / "inference_error" / "cancelled"
	)

	SearchLookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_lookup_duration_seconds",
			Help:      "Per-kind nearest-neighbor lookup duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"kind"},
	)

	SearchLookupErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_lookup_errors_total",
			Help:      "Per-kind lookup failures",
		},
		[]string{"kind"},
	)

	SearchMatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_matches_total",
			Help:      "Candidates per kind by filter stage",
		},
		[]string{"kind", "stage"}, // "candidate" / "kept"
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchLookupDuration)
	prometheus.MustRegister(SearchLookupErrorsTotal)
	prometheus.MustRegister(SearchMatchesTotal)
	searchMetricsRegistered = true
}
