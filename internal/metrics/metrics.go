package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "catalog"

// Metrics holds counters for the fetch and extraction pipeline.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchAttempts  *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	CacheLookups   *prometheus.CounterVec
	LinksExtracted *prometheus.CounterVec
	Operations     *prometheus.CounterVec
}

// New creates and registers pipeline metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "attempts_total",
			Help:      "Upstream fetch attempts by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Duration of single upstream fetch attempts.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by kind and result.",
		}, []string{"kind", "result"}),
		LinksExtracted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extract",
			Name:      "links_total",
			Help:      "Links extracted by purpose.",
		}, []string{"purpose"}),
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Service operations by name and status.",
		}, []string{"operation", "status"}),
	}

	reg.MustRegister(
		m.FetchAttempts,
		m.FetchDuration,
		m.CacheLookups,
		m.LinksExtracted,
		m.Operations,
	)

	return m
}

func (m *Metrics) FetchAttempt(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.FetchAttempts.WithLabelValues(outcome).Inc()
	m.FetchDuration.Observe(d.Seconds())
}

func (m *Metrics) CacheLookup(kind string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) LinksFound(purpose string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.LinksExtracted.WithLabelValues(purpose).Add(float64(n))
}

func (m *Metrics) Operation(name, status string) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(name, status).Inc()
}
