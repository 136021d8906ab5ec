package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Remote API, search cache and document generation metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nyaybodh",
			Name:      "upstream_requests_total",
			Help:      "Total number of requests to the remote case API",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nyaybodh",
			Name:      "upstream_request_duration_seconds",
			Help:      "Remote case API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	SearchCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nyaybodh",
			Name:      "search_cache_total",
			Help:      "Search results cache lookups",
		},
		[]string{"result"}, // "hit" / "miss" / "expired"
	)

	SearchOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nyaybodh",
			Name:      "search_outcomes_total",
			Help:      "Search submissions by type and terminal state",
		},
		[]string{"type", "outcome"}, // outcome: "success" / "empty" / "error"
	)

	DocumentsGeneratedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nyaybodh",
			Name:      "documents_generated_total",
			Help:      "Generated legal documents by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: "ok" / "invalid" / "error"
	)
)

var registerOnce sync.Once

// RegisterClientMetrics registers the remote API and cache metrics. Safe to call more than once.
func RegisterClientMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(UpstreamRequestsTotal)
		prometheus.MustRegister(UpstreamRequestDuration)
		prometheus.MustRegister(SearchCacheTotal)
		prometheus.MustRegister(SearchOutcomesTotal)
		prometheus.MustRegister(DocumentsGeneratedTotal)
	})
}
