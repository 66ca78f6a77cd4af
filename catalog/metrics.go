// catalog/metrics.go
// Copyright(c) 2024-2026 edst contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records catalog query counts and latencies.
type Metrics struct {
	Lookups *prometheus.CounterVec   // labels: query, result (hit, miss, error)
	Latency *prometheus.HistogramVec // labels: query; backing catalog only
}

// NewMetrics creates the catalog metrics and registers them with reg, if
// it is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "edst",
			Subsystem: "adr_catalog",
			Name:      "lookups_total",
			Help:      "ADR catalog lookups by query and cache result.",
		}, []string{"query", "result"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "edst",
			Subsystem: "adr_catalog",
			Name:      "query_seconds",
			Help:      "Latency of queries to the backing ADR catalog.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"query"}),
	}
	if reg != nil {
		reg.MustRegister(m.Lookups, m.Latency)
	}
	return m
}

func (m *Metrics) lookup(query, result string) {
	if m != nil {
		m.Lookups.WithLabelValues(query, result).Inc()
	}
}

func (m *Metrics) observe(query string, start time.Time) {
	if m != nil {
		m.Latency.WithLabelValues(query).Observe(time.Since(start).Seconds())
	}
}
