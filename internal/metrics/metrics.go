// Package metrics holds the prometheus collectors for the refresh pipeline.
// All methods are safe on a nil *Metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	cycles          *prometheus.CounterVec
	staleDiscards   prometheus.Counter
	coalesced       prometheus.Counter
	fetchDuration   *prometheus.HistogramVec
	dashboardErrors prometheus.Counter
	persistErrors   prometheus.Counter
	online          prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "weathervision",
			Name:      "refresh_cycles_total",
			Help:      "Settled refresh cycles by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		staleDiscards: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathervision",
			Name:      "stale_results_discarded_total",
			Help:      "Fetch results dropped because a newer cycle had started.",
		}),
		coalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathervision",
			Name:      "refresh_triggers_coalesced_total",
			Help:      "Triggers merged into a pending follow-up cycle.",
		}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "weathervision",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of upstream fetches.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "result"}),
		dashboardErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathervision",
			Name:      "dashboard_fetch_failures_total",
			Help:      "Failed per-favorite current-conditions fetches.",
		}),
		persistErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "weathervision",
			Name:      "persist_failures_total",
			Help:      "Swallowed writes to the durable store.",
		}),
		online: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "weathervision",
			Name:      "online",
			Help:      "1 when the connectivity monitor reports online.",
		}),
	}
	reg.MustRegister(m.cycles, m.staleDiscards, m.coalesced, m.fetchDuration,
		m.dashboardErrors, m.persistErrors, m.online)
	return m
}

func (m *Metrics) CycleSettled(trigger, outcome string) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(trigger, outcome).Inc()
}

func (m *Metrics) StaleDiscarded() {
	if m == nil {
		return
	}
	m.staleDiscards.Inc()
}

func (m *Metrics) Coalesced() {
	if m == nil {
		return
	}
	m.coalesced.Inc()
}

// ObserveFetch records the latency of op since start.
func (m *Metrics) ObserveFetch(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetchDuration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}

func (m *Metrics) DashboardFailed() {
	if m == nil {
		return
	}
	m.dashboardErrors.Inc()
}

func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.persistErrors.Inc()
}

func (m *Metrics) SetOnline(on bool) {
	if m == nil {
		return
	}
	if on {
		m.online.Set(1)
		return
	}
	m.online.Set(0)
}
