// Package metrics exports table operation counters for Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hackathon-bot/internal/sheets"
)

// Metrics implements sheets.Observer.
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	conflicts  *prometheus.CounterVec
	latency    *prometheus.HistogramVec
}

var _ sheets.Observer = (*Metrics)(nil)

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheet_operations_total",
				Help: "Table operations by table, operation and result",
			},
			[]string{"table", "op", "result"},
		),
		conflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sheet_conflicts_total",
				Help: "Writes refused because the row version changed",
			},
			[]string{"table"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sheet_operation_duration_seconds",
				Help:    "Latency of table operations including the backend round trip",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"table", "op"},
		),
	}
}

func (m *Metrics) ObserveOp(table, op string, elapsed time.Duration, err error) {
	m.operations.WithLabelValues(table, op, result(err)).Inc()
	m.latency.WithLabelValues(table, op).Observe(elapsed.Seconds())
	if errors.Is(err, sheets.ErrConflict) {
		m.conflicts.WithLabelValues(table).Inc()
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, sheets.ErrConflict):
		return "conflict"
	case errors.Is(err, sheets.ErrNotFound):
		return "not_found"
	case errors.Is(err, sheets.ErrExists):
		return "exists"
	default:
		return "error"
	}
}
