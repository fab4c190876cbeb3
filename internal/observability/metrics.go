// Package observability exposes prometheus instrumentation for the dispatch
// pipeline.
package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks pipeline health: task outcomes, per-capability results,
// sandbox denials and model latency.
type Metrics struct {
	tasksTotal      *prometheus.CounterVec
	capabilityRuns  *prometheus.CounterVec
	accessDenied    prometheus.Counter
	resolveDuration prometheus.Histogram
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// NewMetrics builds a Metrics recorder using the default registry.
func NewMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		defaultMetrics = newMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// NewMetricsWithRegisterer allows tests to provide a dedicated registry.
func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	return newMetrics(reg)
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		tasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "factotum",
			Subsystem: "dispatch",
			Name:      "tasks_total",
			Help:      "Number of submitted tasks by overall status",
		}, []string{"status"}),
		capabilityRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "factotum",
			Subsystem: "dispatch",
			Name:      "capability_runs_total",
			Help:      "Number of executed plan entries by capability and status",
		}, []string{"capability", "status"}),
		accessDenied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "factotum",
			Subsystem: "sandbox",
			Name:      "access_denied_total",
			Help:      "Number of plan entries rejected by the sandbox guard",
		}),
		resolveDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "factotum",
			Subsystem: "intent",
			Name:      "resolve_duration_seconds",
			Help:      "Latency of intent model round trips",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// ObserveTask records a completed task with its overall status.
func (m *Metrics) ObserveTask(status string) {
	if m == nil {
		return
	}
	m.tasksTotal.WithLabelValues(status).Inc()
}

// ObserveCapability records one executed plan entry.
func (m *Metrics) ObserveCapability(capabilityName, status string) {
	if m == nil {
		return
	}
	m.capabilityRuns.WithLabelValues(capabilityName, status).Inc()
}

// ObserveAccessDenied records a sandbox rejection.
func (m *Metrics) ObserveAccessDenied() {
	if m == nil {
		return
	}
	m.accessDenied.Inc()
}

// ObserveResolveDuration records one intent model round trip.
func (m *Metrics) ObserveResolveDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.resolveDuration.Observe(d.Seconds())
}
