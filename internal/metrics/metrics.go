// Package metrics exposes Prometheus instrumentation for the API server
// and the backtest engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Engine metrics
	backtestsTotal   *prometheus.CounterVec
	backtestDuration prometheus.Histogram
	jobsActive       prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),

		backtestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backtests_total",
				Help: "Total number of backtest runs by strategy and outcome",
			},
			[]string{"strategy", "status"},
		),

		backtestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "backtest_duration_seconds",
				Help:    "Backtest run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
		),

		jobsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "jobs_active",
				Help: "Number of backtest jobs currently running",
			},
		),
	}

	reg.MustRegister(
		r.httpRequestsTotal,
		r.httpRequestDuration,
		r.httpRequestsInFlight,
		r.backtestsTotal,
		r.backtestDuration,
		r.jobsActive,
	)

	return r
}

// RecordRequest records one completed HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	r.httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments the in-flight request gauge.
func (r *Registry) InFlightInc() { r.httpRequestsInFlight.Inc() }

// InFlightDec decrements the in-flight request gauge.
func (r *Registry) InFlightDec() { r.httpRequestsInFlight.Dec() }

// RecordBacktest records one backtest run outcome.
func (r *Registry) RecordBacktest(strategy, status string, duration time.Duration) {
	r.backtestsTotal.WithLabelValues(strategy, status).Inc()
	r.backtestDuration.Observe(duration.Seconds())
}

// JobStarted increments the active-jobs gauge.
func (r *Registry) JobStarted() { r.jobsActive.Inc() }

// JobFinished decrements the active-jobs gauge.
func (r *Registry) JobFinished() { r.jobsActive.Dec() }
