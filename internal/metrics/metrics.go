package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarks_api_requests_total",
		Help: "Bookmark API requests by operation and response status.",
	}, []string{"operation", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookmarks_api_request_duration_seconds",
		Help:    "Time spent handling bookmark API requests.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"operation"})

	ValidationFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarks_validation_failures_total",
		Help: "Rejected bookmark payloads by rejection kind.",
	}, []string{"kind"})

	StoreErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookmarks_store_errors_total",
		Help: "Store operations that failed with an error other than not found.",
	}, []string{"operation"})
)
