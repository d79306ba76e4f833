package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SourceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_requests_total",
			Help: "Total number of requests made to the upstream deals API (count)",
		},
		[]string{"endpoint", "status"},
	)

	SourceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_request_duration_ms",
			Help:    "Upstream deals API request duration in milliseconds",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"endpoint"},
	)

	RecordsNormalizedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_normalized_total",
			Help: "Total number of raw records processed by the normalizer (count)",
		},
		[]string{"substream", "status"},
	)

	DealsFilteredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deals_filtered_total",
			Help: "Total number of normalized deals processed by the filter-dedup engine (count)",
		},
		[]string{"status"},
	)

	FilterRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filter_rejections_total",
			Help: "Deals rejected by the acceptance predicate, by reason (count)",
		},
		[]string{"reason"},
	)

	DedupReplacementsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_replacements_total",
			Help: "Times a cheaper deal replaced an earlier one for the same title (count)",
		},
	)

	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_total",
			Help: "Total number of pipeline runs (count)",
		},
		[]string{"status"},
	)

	PipelineRunDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_run_duration_ms",
			Help:    "End to end pipeline run duration in milliseconds",
			Buckets: []float64{100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000},
		},
		[]string{"status"},
	)

	FeedDealsPublished = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_deals_published",
			Help: "Number of deals in the most recently published feed (count)",
		},
	)

	LookupCacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lookup_cache_hits_total",
			Help: "Per-title lookup cache outcomes (count)",
		},
		[]string{"status"},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total requests through circuit breakers (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total failures recorded by circuit breakers (count)",
		},
		[]string{"name"},
	)
)

func RegisterSourceMetrics() {
	prometheus.MustRegister(SourceRequestsTotal)
	prometheus.MustRegister(SourceRequestDuration)
	prometheus.MustRegister(LookupCacheHitsTotal)
}

func RegisterPipelineMetrics() {
	prometheus.MustRegister(RecordsNormalizedTotal)
	prometheus.MustRegister(DealsFilteredTotal)
	prometheus.MustRegister(FilterRejectionsTotal)
	prometheus.MustRegister(DedupReplacementsTotal)
	prometheus.MustRegister(PipelineRunsTotal)
	prometheus.MustRegister(PipelineRunDuration)
	prometheus.MustRegister(FeedDealsPublished)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func ObserveSourceRequest(endpoint string, duration time.Duration, status string) {
	SourceRequestsTotal.WithLabelValues(endpoint, status).Inc()
	SourceRequestDuration.WithLabelValues(endpoint).Observe(float64(duration.Milliseconds()))
}

func ObserveRunDuration(duration time.Duration, status string) {
	PipelineRunsTotal.WithLabelValues(status).Inc()
	PipelineRunDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func SetFeedSize(n int) {
	FeedDealsPublished.Set(float64(n))
}
