//-------------------------------------------------------------------------
//
// pgEdge Care ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package metrics exposes Prometheus instrumentation for pipeline runs.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "careetl"

// Metrics holds the pipeline collectors.
type Metrics struct {
	registry *prometheus.Registry

	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	rowsLoaded     *prometheus.CounterVec
	resetErrors    *prometheus.CounterVec
	syntheticError *prometheus.CounterVec
	lastSuccess    prometheus.Gauge
}

// New creates the collectors on a dedicated registry, together with the
// Go runtime and process collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return newMetrics(registry)
}

func newMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by final state and failed stage.",
		}, []string{"state", "failed_stage"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full refresh.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		}),
		rowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_loaded_total",
			Help:      "Rows inserted into the analytical store by entity.",
		}, []string{"entity"}),
		resetErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reset_errors_total",
			Help:      "Entities that could not be cleared during reset.",
		}, []string{"entity"}),
		syntheticError: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synthetic_row_errors_total",
			Help:      "Generated rows that failed to insert.",
		}, []string{"entity"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
	}
	registry.MustRegister(m.runs, m.runDuration, m.rowsLoaded, m.resetErrors, m.syntheticError, m.lastSuccess)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RunFinished records the outcome of a run.
func (m *Metrics) RunFinished(state, failedStage string, elapsed time.Duration, finishedAt time.Time) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(state, failedStage).Inc()
	m.runDuration.Observe(elapsed.Seconds())
	if failedStage == "" && state == "Completed" {
		m.lastSuccess.Set(float64(finishedAt.Unix()))
	}
}

// RowsLoaded adds inserted rows for an entity.
func (m *Metrics) RowsLoaded(entity string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.rowsLoaded.WithLabelValues(entity).Add(float64(n))
}

// ResetError counts an entity that failed to clear.
func (m *Metrics) ResetError(entity string) {
	if m == nil {
		return
	}
	m.resetErrors.WithLabelValues(entity).Inc()
}

// SyntheticRowError counts a generated row that failed to insert.
func (m *Metrics) SyntheticRowError(entity string) {
	if m == nil {
		return
	}
	m.syntheticError.WithLabelValues(entity).Inc()
}
