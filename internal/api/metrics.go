package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"finch/internal/errors"
)

// MetricsCollector holds the server's Prometheus collectors. Each server owns its registry so
// several servers can coexist in one process.
type MetricsCollector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	reloadsTotal    prometheus.Counter
}

// NewMetricsCollector creates and registers all collectors
func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finch_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status code.",
			},
			[]string{"route", "method", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finch_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route and method.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finch_errors_total",
				Help: "Failures answered with an error response, by kind.",
			},
			[]string{"kind"},
		),
		reloadsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "finch_template_reloads_total",
				Help: "Successful template set reloads.",
			},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.errorsTotal,
		m.reloadsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry backing /metrics
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest records a completed HTTP request
func (m *MetricsCollector) RecordRequest(route, method string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError records a failure answered with an error response
func (m *MetricsCollector) RecordError(kind errors.Kind) {
	m.errorsTotal.WithLabelValues(kind.String()).Inc()
}

// RecordReload records a successful template reload
func (m *MetricsCollector) RecordReload() {
	m.reloadsTotal.Inc()
}
