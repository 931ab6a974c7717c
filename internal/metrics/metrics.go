package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec
	RateLimitedTotal    prometheus.Counter

	// DOR upstream metrics, one observation per attempt
	DORRequestsTotal   *prometheus.CounterVec
	DORRequestDuration *prometheus.HistogramVec

	// Application Metrics
	TaxLookupsTotal  *prometheus.CounterVec
	TaxLookupErrors  *prometheus.CounterVec
	TaxLookupRetries prometheus.Counter

	// Audit log
	AuditLogWritesTotal *prometheus.CounterVec
}

// New creates all metrics and registers them with the default registry
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the metrics with reg
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate registration panics
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP Metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint"},
		),

		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		RateLimitedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "Total number of requests rejected by the rate limiter",
			},
		),

		// DOR upstream metrics
		DORRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dor_requests_total",
				Help: "Total number of requests sent to the DOR address rates service",
			},
			[]string{"outcome"},
		),

		// DOR answers in well under a second when healthy; attempts are capped at a few seconds
		DORRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dor_request_duration_seconds",
				Help:    "DOR address rates request latency in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2, 2.5, 5, 10},
			},
			[]string{"outcome"},
		),

		// Application Metrics
		TaxLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tax_lookups_total",
				Help: "Total number of tax rate lookups by final result",
			},
			[]string{"result"},
		),

		TaxLookupErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tax_lookups_errors_total",
				Help: "Total number of failed tax rate lookups",
			},
			[]string{"error_type"},
		),

		TaxLookupRetries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tax_lookup_retries_total",
				Help: "Total number of retried DOR requests",
			},
		),

		AuditLogWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audit_log_writes_total",
				Help: "Total number of audit log writes",
			},
			[]string{"status"},
		),
	}
}
