package hierarchy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors updated by a Manager.
type Metrics struct {
	SearchesTotal   *prometheus.CounterVec
	SearchDuration  *prometheus.HistogramVec
	DetailMisses    *prometheus.CounterVec
	WritesTotal     *prometheus.CounterVec
	RollbacksTotal  prometheus.Counter
	QuarantineTotal prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SearchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursectx_searches_total",
				Help: "Total number of tier searches",
			},
			[]string{"tier", "status"},
		),
		SearchDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "coursectx_search_duration_seconds",
				Help:    "Duration of tier searches in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tier"},
		),
		DetailMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursectx_detail_misses_total",
				Help: "Course codes skipped during detail fetches",
			},
			[]string{"reason"},
		),
		WritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "coursectx_writes_total",
				Help: "Course writes by outcome",
			},
			[]string{"status"},
		),
		RollbacksTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "coursectx_rollbacks_total",
				Help: "Partial writes that were rolled back",
			},
		),
		QuarantineTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "coursectx_quarantined_total",
				Help: "Summaries quarantined because their details were missing",
			},
		),
	}
}
