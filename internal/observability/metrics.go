// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the gateway.
type Metrics struct {
	// Request metrics
	QuotesTotal    *prometheus.CounterVec
	ExecutesTotal  *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec

	// Upstream metrics
	UpstreamRequestsTotal *prometheus.CounterVec
	UpstreamLatency       *prometheus.HistogramVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Admission metrics
	RateLimitRejections *prometheus.CounterVec

	// Audit metrics
	AuditWriteErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "swapgate"
	}

	return &Metrics{
		QuotesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "quotes_total",
			Help:      "Total quote requests by network class and outcome",
		}, []string{"network", "outcome"}),
		ExecutesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "executes_total",
			Help:      "Total execute requests by network class and outcome",
		}, []string{"network", "outcome"}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "End-to-end request handling latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),

		UpstreamRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total upstream requests by source and outcome",
		}, []string{"source", "outcome"}),
		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Upstream request latency by source",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),

		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total quote cache hits",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total quote cache misses",
		}),

		RateLimitRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "rate_limit_rejections_total",
			Help:      "Total admission rejections by limiter class",
		}, []string{"class"}),

		AuditWriteErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "audit",
			Name:      "write_errors_total",
			Help:      "Total best-effort audit store write failures",
		}, []string{"store"}),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordQuote records a handled quote request.
func RecordQuote(network, outcome string) {
	DefaultMetrics.QuotesTotal.WithLabelValues(network, outcome).Inc()
}

// RecordExecute records a handled execute request.
func RecordExecute(network, outcome string) {
	DefaultMetrics.ExecutesTotal.WithLabelValues(network, outcome).Inc()
}

// RecordRequestLatency records end-to-end handling latency for an endpoint.
func RecordRequestLatency(endpoint string, seconds float64) {
	DefaultMetrics.RequestLatency.WithLabelValues(endpoint).Observe(seconds)
}

// RecordUpstreamRequest records one upstream call.
func RecordUpstreamRequest(source, outcome string, seconds float64) {
	DefaultMetrics.UpstreamRequestsTotal.WithLabelValues(source, outcome).Inc()
	DefaultMetrics.UpstreamLatency.WithLabelValues(source).Observe(seconds)
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	DefaultMetrics.CacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	DefaultMetrics.CacheMisses.Inc()
}

// RecordRateLimitRejection records an admission rejection.
func RecordRateLimitRejection(class string) {
	DefaultMetrics.RateLimitRejections.WithLabelValues(class).Inc()
}

// RecordAuditWriteError records a best-effort audit write failure.
func RecordAuditWriteError(store string) {
	DefaultMetrics.AuditWriteErrors.WithLabelValues(store).Inc()
}
