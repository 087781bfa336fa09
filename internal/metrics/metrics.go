// Package metrics exposes Prometheus instrumentation for the scrape-notify
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage labels for cycle errors.
const (
	StageScrape = "scrape"
	StageIngest = "ingest"
	StageNotify = "notify"
)

type Metrics struct {
	CyclesTotal          prometheus.Counter
	CycleErrorsTotal     *prometheus.CounterVec
	DisclosuresIngested  prometheus.Counter
	NotificationsSent    prometheus.Counter
	NotificationsFailed  prometheus.Counter
	ActiveSubscribers    prometheus.Gauge
	LastCycleDurationSec prometheus.Gauge
}

// New registers the idxwatch collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CyclesTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "idxwatch",
			Name:      "cycles_total",
			Help:      "Completed scrape cycles, successful or not.",
		}),
		CycleErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "idxwatch",
			Name:      "cycle_errors_total",
			Help:      "Cycle failures by pipeline stage.",
		}, []string{"stage"}),
		DisclosuresIngested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "idxwatch",
			Name:      "disclosures_ingested_total",
			Help:      "New disclosures persisted.",
		}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "idxwatch",
			Name:      "notifications_delivered_total",
			Help:      "Successful notification deliveries.",
		}),
		NotificationsFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "idxwatch",
			Name:      "notifications_failed_total",
			Help:      "Failed notification deliveries.",
		}),
		ActiveSubscribers: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "idxwatch",
			Name:      "active_subscribers",
			Help:      "Subscribers currently receiving notifications.",
		}),
		LastCycleDurationSec: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "idxwatch",
			Name:      "last_cycle_duration_seconds",
			Help:      "Wall-clock duration of the last completed cycle.",
		}),
	}
}
