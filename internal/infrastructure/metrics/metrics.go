package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Snapshot metrics
	SnapshotsComputed prometheus.Counter
	SnapshotsApproved prometheus.Counter
	SnapshotsRejected prometheus.Counter
	SnapshotsReversed prometheus.Counter
	PoolAmount        prometheus.Histogram

	// Payout metrics
	PayoutsRecorded prometheus.Counter
	PayoutAmount    prometheus.Histogram

	// Dispute metrics
	DisputesOpened    prometheus.Counter
	DisputesEscalated prometheus.Counter
	DisputesResolved  *prometheus.CounterVec

	// Period lock metrics
	PeriodLocksCreated  prometheus.Counter
	PeriodLocksReleased prometheus.Counter
	LockedOperations    *prometheus.CounterVec

	// Database metrics
	DBConnections prometheus.Gauge

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
}

var (
	once     sync.Once
	instance *Metrics
)

// New returns the process-wide metrics set. Collectors register with the
// default Prometheus registry exactly once.
func New() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			SnapshotsComputed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_snapshots_computed_total",
				Help: "Total number of commission snapshots computed",
			}),
			SnapshotsApproved: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_snapshots_approved_total",
				Help: "Total number of snapshots approved",
			}),
			SnapshotsRejected: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_snapshots_rejected_total",
				Help: "Total number of snapshots rejected",
			}),
			SnapshotsReversed: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_snapshots_reversed_total",
				Help: "Total number of snapshot reversals posted",
			}),
			PoolAmount: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "splitledger_pool_amount_minor",
				Help:    "Distribution of snapshot pool amounts in minor units",
				Buckets: prometheus.ExponentialBuckets(1000, 10, 8),
			}),
			PayoutsRecorded: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_payouts_recorded_total",
				Help: "Total number of payouts recorded",
			}),
			PayoutAmount: promauto.NewHistogram(prometheus.HistogramOpts{
				Name:    "splitledger_payout_amount_minor",
				Help:    "Distribution of payout amounts in minor units",
				Buckets: prometheus.ExponentialBuckets(1000, 10, 8),
			}),
			DisputesOpened: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_disputes_opened_total",
				Help: "Total number of disputes opened",
			}),
			DisputesEscalated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_disputes_escalated_total",
				Help: "Total number of disputes escalated past their SLA",
			}),
			DisputesResolved: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "splitledger_disputes_resolved_total",
				Help: "Total number of disputes closed, by outcome",
			}, []string{"outcome"}),
			PeriodLocksCreated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_period_locks_created_total",
				Help: "Total number of period locks created",
			}),
			PeriodLocksReleased: promauto.NewCounter(prometheus.CounterOpts{
				Name: "splitledger_period_locks_released_total",
				Help: "Total number of period locks released",
			}),
			LockedOperations: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "splitledger_locked_operations_total",
				Help: "Total number of mutations refused by a period lock",
			}, []string{"operation"}),
			DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "splitledger_db_connections",
				Help: "Number of acquired database connections",
			}),
			EventsPublished: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "splitledger_events_published_total",
				Help: "Total number of outbox events published",
			}, []string{"event_type"}),
		}
	})

	return instance
}
