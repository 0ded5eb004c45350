// Package metrics holds the Prometheus collectors updated by the signal loop.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Failure reasons used as the "reason" label of CycleFailures.
const (
	ReasonData    = "data"
	ReasonPersist = "persist"
	ReasonOther   = "other"
)

// Metrics holds all Prometheus metrics for the signal bot.
type Metrics struct {
	CyclesTotal    prometheus.Counter
	CycleFailures  *prometheus.CounterVec // labels: reason
	CycleDuration  prometheus.Histogram
	Verdicts       *prometheus.CounterVec // labels: direction
	Notifications  *prometheus.CounterVec // labels: result=sent|failed|suppressed
	SignalStrength prometheus.Gauge
	UnrealizedPnL  prometheus.Gauge
	LastClose      prometheus.Gauge
	LastCycle      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered, which is what tests usually want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalbot_cycles_total",
			Help: "Total analysis cycles started",
		}),
		CycleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_cycle_failures_total",
			Help: "Cycles that ended in an error (by reason)",
		}, []string{"reason"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalbot_cycle_duration_seconds",
			Help:    "Wall time of one analysis cycle",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_verdicts_total",
			Help: "Classifier verdicts (by direction)",
		}, []string{"direction"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_notifications_total",
			Help: "Notification outcomes (by result)",
		}, []string{"result"}),
		SignalStrength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalbot_signal_strength",
			Help: "Strength of the latest verdict",
		}),
		UnrealizedPnL: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalbot_unrealized_pnl_percent",
			Help: "Unrealized P&L of the tracked position at the last close",
		}),
		LastClose: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalbot_last_close",
			Help: "Close price of the latest candle",
		}),
		LastCycle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "signalbot_last_cycle_timestamp_seconds",
			Help: "Unix time of the last completed cycle",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.CyclesTotal,
			m.CycleFailures,
			m.CycleDuration,
			m.Verdicts,
			m.Notifications,
			m.SignalStrength,
			m.UnrealizedPnL,
			m.LastClose,
			m.LastCycle,
		)
	}
	return m
}

// ObserveCycle records the duration of a cycle that started at start.
func (m *Metrics) ObserveCycle(start, end time.Time) {
	m.CycleDuration.Observe(end.Sub(start).Seconds())
	m.LastCycle.Set(float64(end.Unix()))
}

// Fail counts a failed cycle.
func (m *Metrics) Fail(reason string) {
	m.CycleFailures.WithLabelValues(reason).Inc()
}
