// Package metrics exposes Prometheus collectors for cleaning runs.
package metrics

import (
	"time"

	"github.com/JonMunkholm/crunchclean/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cbclean"

// Metrics records cleaning runs. It implements core.Recorder.
type Metrics struct {
	RunsTotal    *prometheus.CounterVec
	RowsTotal    *prometheus.CounterVec
	RunDuration  prometheus.Histogram
	ExchangeRate prometheus.Gauge
	ActiveRuns   prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Cleaning runs by outcome (success, failed, rejected)",
			},
			[]string{"status"},
		),
		RowsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rows_total",
				Help:      "Rows seen by stage (input, filtered, output)",
			},
			[]string{"stage"},
		),
		RunDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Time spent parsing and cleaning one upload",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		ExchangeRate: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "exchange_rate",
				Help:      "Representative usd/original rate of the last successful run",
			},
		),
		ActiveRuns: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_runs",
				Help:      "Cleaning runs in progress",
			},
		),
	}
}

// RunStarted implements core.Recorder.
func (m *Metrics) RunStarted() {
	m.ActiveRuns.Inc()
}

// RunFinished implements core.Recorder. Rejected runs never started, so the
// active gauge is left alone for them.
func (m *Metrics) RunFinished(status string, elapsed time.Duration, stats core.Stats) {
	m.RunsTotal.WithLabelValues(status).Inc()
	if status == core.StatusRejected {
		return
	}

	m.ActiveRuns.Dec()
	m.RunDuration.Observe(elapsed.Seconds())

	if status == core.StatusSuccess {
		m.RowsTotal.WithLabelValues("input").Add(float64(stats.InitialRows))
		m.RowsTotal.WithLabelValues("filtered").Add(float64(stats.FilteredRows))
		m.RowsTotal.WithLabelValues("output").Add(float64(stats.FinalRows))
		m.ExchangeRate.Set(stats.ExchangeRate)
	}
}
