// Package metrics exposes Prometheus collectors for the recommendation engine.
//
// Collectors are registered on the default registry at init through promauto
// and served by the API's /metrics endpoint.
//
// Metrics Categories:
//   - Requests: recommendations served, filter pass/reject counts, result sizes
//   - Scoring: per-candidate embedding failures
//   - Embedding cache: hit/miss counts
//   - Circuit breaker: current state
//   - Catalog: loaded and quarantined records
//   - HTTP: request counts and latency by route
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "assessor"

var (
	// Request Metrics

	// RecommendationsTotal counts recommendation requests that reached scoring.
	RecommendationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Total number of recommendation requests",
		},
	)

	// FilteredCandidatesTotal counts catalog records by filter outcome.
	FilteredCandidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filtered_candidates_total",
			Help:      "Catalog records evaluated by the filter, by outcome",
		},
		[]string{"outcome"},
	)

	// ResultsReturned tracks the size of result lists.
	ResultsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "results_returned",
			Help:      "Number of recommendations returned per request",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	// Scoring Metrics

	// CandidateEmbeddingFailuresTotal counts candidates scored 0.0 because they could not be embedded.
	CandidateEmbeddingFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "candidate_embedding_failures_total",
			Help:      "Candidates that could not be scored and fell back to 0.0",
		},
	)

	// Cache Metrics

	// EmbeddingCacheLookupsTotal counts vector cache lookups by result.
	EmbeddingCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedding_cache_lookups_total",
			Help:      "Embedding cache lookups by result",
		},
		[]string{"result"},
	)

	// Breaker Metrics

	// EmbeddingBreakerState is 0 when closed, 1 when half-open and 2 when open.
	EmbeddingBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "embedding_breaker_state",
			Help:      "Embedding circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Catalog Metrics

	// CatalogRecords reports the number of loaded catalog records.
	CatalogRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_records",
			Help:      "Number of catalog records available for ranking",
		},
	)

	// CatalogQuarantined reports the number of catalog entries skipped at load.
	CatalogQuarantined = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_quarantined",
			Help:      "Number of malformed catalog entries skipped at load",
		},
	)

	// HTTP Metrics

	// HTTPRequestsTotal counts API requests by method, route and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPRequestDuration tracks API latency by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			// Embedding-bound requests range from milliseconds to the request timeout.
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "route"},
	)
)

// RecordCacheLookup records one embedding cache lookup.
func RecordCacheLookup(hit bool) {
	if hit {
		EmbeddingCacheLookupsTotal.WithLabelValues("hit").Inc()
		return
	}
	EmbeddingCacheLookupsTotal.WithLabelValues("miss").Inc()
}

// SetBreakerState records a breaker transition by state name.
func SetBreakerState(state string) {
	switch state {
	case "closed":
		EmbeddingBreakerState.Set(0)
	case "half-open":
		EmbeddingBreakerState.Set(1)
	case "open":
		EmbeddingBreakerState.Set(2)
	}
}

// SetCatalog records catalog size and quarantine count.
func SetCatalog(records, quarantined int) {
	CatalogRecords.Set(float64(records))
	CatalogQuarantined.Set(float64(quarantined))
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
