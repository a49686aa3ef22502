package refetch

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector exposes Prometheus metrics for the request pipeline. It is
// safe for concurrent use.
type MetricsCollector struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	requestsInFlight *prometheus.GaugeVec

	retriesTotal *prometheus.CounterVec

	memoHits   *prometheus.CounterVec
	memoMisses *prometheus.CounterVec

	cookiesStored *prometheus.CounterVec

	breakerState *prometheus.GaugeVec

	errorsTotal *prometheus.CounterVec
}

// NewMetricsCollector creates a collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using the supplied
// registerer, letting tests and multi-client processes isolate registries.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "refetch_requests_total",
				Help: "Total number of HTTP requests made",
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "refetch_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status_code", "endpoint"},
		),
		requestsInFlight: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "refetch_requests_in_flight",
				Help: "Number of requests currently in flight",
			},
			[]string{"method", "endpoint"},
		),
		retriesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "refetch_retries_total",
				Help: "Total number of retry attempts",
			},
			[]string{"method", "endpoint"},
		),
		memoHits: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "refetch_memoize_hits_total",
				Help: "Total number of memoization cache hits",
			},
			[]string{"method", "endpoint"},
		),
		memoMisses: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "refetch_memoize_misses_total",
				Help: "Total number of memoization cache misses",
			},
			[]string{"method", "endpoint"},
		),
		cookiesStored: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "refetch_cookies_stored_total",
				Help: "Total number of cookies absorbed into the jar",
			},
			[]string{"hostname"},
		),
		breakerState: promauto.With(registry).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "refetch_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"endpoint"},
		),
		errorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "refetch_errors_total",
				Help: "Total number of errors by type",
			},
			[]string{"type", "method", "endpoint"},
		),
	}
}

func (m *MetricsCollector) RecordRequestStart(method, endpoint string) {
	m.requestsInFlight.WithLabelValues(method, endpoint).Inc()
}

func (m *MetricsCollector) RecordRequestEnd(method, endpoint string) {
	m.requestsInFlight.WithLabelValues(method, endpoint).Dec()
}

func (m *MetricsCollector) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	code := strconv.Itoa(statusCode)
	m.requestsTotal.WithLabelValues(method, code, endpoint).Inc()
	m.requestDuration.WithLabelValues(method, code, endpoint).Observe(duration.Seconds())
}

func (m *MetricsCollector) RecordRetry(method, endpoint string) {
	m.retriesTotal.WithLabelValues(method, endpoint).Inc()
}

func (m *MetricsCollector) RecordMemoHit(method, endpoint string) {
	m.memoHits.WithLabelValues(method, endpoint).Inc()
}

func (m *MetricsCollector) RecordMemoMiss(method, endpoint string) {
	m.memoMisses.WithLabelValues(method, endpoint).Inc()
}

func (m *MetricsCollector) RecordCookiesStored(hostname string, count int) {
	if count > 0 {
		m.cookiesStored.WithLabelValues(hostname).Add(float64(count))
	}
}

func (m *MetricsCollector) RecordBreakerState(endpoint string, state BreakerState) {
	m.breakerState.WithLabelValues(endpoint).Set(float64(state))
}

func (m *MetricsCollector) RecordError(errorType, method, endpoint string) {
	m.errorsTotal.WithLabelValues(errorType, method, endpoint).Inc()
}
