// Copyright 2026 AegisGate
// SPDX-License-Identifier: Apache-2.0

package audit

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors shared by the gateway
// subsystems. One instance is created per process and injected into
// each validator and guard.
type Metrics struct {
	ValidationsTotal *prometheus.CounterVec
	BlocksTotal      *prometheus.CounterVec
	TimeoutsTotal    prometheus.Counter
	ErrorsTotal      prometheus.Counter
	LatencyMS        *prometheus.HistogramVec

	// FailOpenEnabled is 1 for every pipeline constructed with
	// fail-open semantics, so deployments can detect when the
	// less-safe policy is in effect.
	FailOpenEnabled *prometheus.GaugeVec
}

// NewMetrics creates and registers the gateway collectors on the given
// registerer. Pass prometheus.DefaultRegisterer in production.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ValidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegisgate_validations_total",
				Help: "Total validations processed, by subsystem and decision",
			},
			[]string{"subsystem", "decision"},
		),
		BlocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "aegisgate_blocks_total",
				Help: "Total deny decisions, by subsystem and layer",
			},
			[]string{"subsystem", "layer"},
		),
		TimeoutsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "aegisgate_semantic_timeouts_total",
				Help: "Semantic-layer calls that exceeded the validation timeout",
			},
		),
		ErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "aegisgate_semantic_errors_total",
				Help: "Semantic-layer calls that failed",
			},
		),
		LatencyMS: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "aegisgate_validation_duration_milliseconds",
				Help:    "Validation duration in milliseconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"subsystem"},
		),
		FailOpenEnabled: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "aegisgate_fail_open_enabled",
				Help: "1 when a pipeline chose availability over safety (fail-open)",
			},
			[]string{"pipeline"},
		),
	}

	reg.MustRegister(
		m.ValidationsTotal,
		m.BlocksTotal,
		m.TimeoutsTotal,
		m.ErrorsTotal,
		m.LatencyMS,
		m.FailOpenEnabled,
	)
	return m
}

var (
	nopOnce    sync.Once
	nopMetrics *Metrics
)

// NopMetrics returns a process-wide Metrics instance registered on a
// throwaway registry. Components that are handed no metrics use this so
// call sites never nil-check.
func NopMetrics() *Metrics {
	nopOnce.Do(func() {
		nopMetrics = NewMetrics(prometheus.NewRegistry())
	})
	return nopMetrics
}
