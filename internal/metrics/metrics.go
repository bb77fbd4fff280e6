package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts handled requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollcall",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	// HTTPDuration tracks request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "rollcall",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	submissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollcall",
		Name:      "submissions_total",
		Help:      "Roll call submissions by outcome.",
	}, []string{"outcome"})

	retrievals = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollcall",
		Name:      "record_retrievals_total",
		Help:      "Latest record lookups by outcome.",
	}, []string{"outcome"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rollcall",
		Name:      "latest_cache_lookups_total",
		Help:      "Latest record cache lookups by result.",
	}, []string{"result"})
)

// ObserveSubmission counts one submission outcome (ok, invalid, not_found, error).
func ObserveSubmission(outcome string) {
	submissions.WithLabelValues(outcome).Inc()
}

// ObserveRetrieval counts one latest-record lookup (found, empty, error).
func ObserveRetrieval(outcome string) {
	retrievals.WithLabelValues(outcome).Inc()
}

// ObserveCache counts a cache hit, miss or error.
func ObserveCache(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}
