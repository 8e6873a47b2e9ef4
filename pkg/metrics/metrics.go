// Package metrics exposes the Prometheus collectors of the timesheet services.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeRetry    = "retry"
)

// Metrics groups the collectors registered on one registry. The Observe
// methods are no-ops on a nil *Metrics.
type Metrics struct {
	ClockActions *prometheus.CounterVec
	ShiftHours   prometheus.Histogram
	JobsHandled  *prometheus.CounterVec
	HTTPRequests *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Use prometheus.NewRegistry in tests.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		ClockActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timesheets",
			Name:      "clock_actions_total",
			Help:      "Clock-in and clock-out requests by outcome.",
		}, []string{"action", "outcome"}),
		ShiftHours: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "timesheets",
			Name:      "shift_hours",
			Help:      "Hours worked per closed shift.",
			Buckets:   []float64{0.5, 1, 2, 4, 6, 8, 10, 12, 16},
		}),
		JobsHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "timesheets",
			Name:      "jobs_handled_total",
			Help:      "Queue messages handled by workers, by queue and outcome.",
		}, []string{"queue", "outcome"}),
		HTTPRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "timesheets",
			Name:      "http_request_duration_seconds",
			Help:      "API request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
		gatherer: reg,
	}
	reg.MustRegister(m.ClockActions, m.ShiftHours, m.JobsHandled, m.HTTPRequests)
	return m
}

// NewDefault registers on a fresh registry that also carries the Go and
// process collectors.
func NewDefault() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return New(reg)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveClock counts one clock action.
func (m *Metrics) ObserveClock(action, outcome string) {
	if m == nil {
		return
	}
	m.ClockActions.WithLabelValues(action, outcome).Inc()
}

// ObserveShift records the length of a closed shift.
func (m *Metrics) ObserveShift(hours float64) {
	if m == nil {
		return
	}
	m.ShiftHours.Observe(hours)
}

// ObserveJob counts one processed queue message.
func (m *Metrics) ObserveJob(queue, outcome string) {
	if m == nil {
		return
	}
	m.JobsHandled.WithLabelValues(queue, outcome).Inc()
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
