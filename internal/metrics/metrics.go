// Package metrics exposes Prometheus metrics for the session lifecycle and
// the stale session sweeper.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "typetrack"

// Metrics holds the collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	SessionsStarted    *prometheus.CounterVec
	SessionHeartbeats  prometheus.Counter
	SessionsAutoClosed *prometheus.CounterVec
	SessionsEnded      *prometheus.CounterVec

	SweepRuns     *prometheus.CounterVec
	SweepDuration prometheus.Histogram
}

// New creates and registers all metrics, including the Go runtime and
// process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,

		SessionsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_started_total",
				Help:      "Total number of typing sessions started",
			},
			[]string{"source"},
		),
		SessionHeartbeats: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_heartbeats_total",
				Help:      "Total number of start calls that refreshed an open session",
			},
		),
		SessionsAutoClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_auto_closed_total",
				Help:      "Total number of stale sessions closed automatically",
			},
			[]string{"reason"},
		),
		SessionsEnded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_ended_total",
				Help:      "Total number of end calls by outcome",
			},
			[]string{"outcome"},
		),

		SweepRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sweep_runs_total",
				Help:      "Total number of stale session sweeps",
			},
			[]string{"status"},
		),
		SweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of stale session sweeps in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SessionsStarted,
		m.SessionHeartbeats,
		m.SessionsAutoClosed,
		m.SessionsEnded,
		m.SweepRuns,
		m.SweepDuration,
	)

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) SessionStarted(source string) {
	m.SessionsStarted.WithLabelValues(source).Inc()
}

func (m *Metrics) SessionHeartbeat() {
	m.SessionHeartbeats.Inc()
}

func (m *Metrics) SessionAutoClosed(reason string) {
	m.SessionsAutoClosed.WithLabelValues(reason).Inc()
}

func (m *Metrics) SessionEnded(outcome string) {
	m.SessionsEnded.WithLabelValues(outcome).Inc()
}

// SweepCompleted records one sweeper run.
func (m *Metrics) SweepCompleted(_ int, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SweepRuns.WithLabelValues(status).Inc()
	m.SweepDuration.Observe(d.Seconds())
}
