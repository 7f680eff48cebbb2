package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Poll metrics
	PollsCreated prometheus.Counter
	PollsClosed  prometheus.Counter

	// Vote metrics
	VotesCast       prometheus.Counter
	VotesRejected   *prometheus.CounterVec
	VoteDuration    prometheus.Histogram
	TallyMismatches prometheus.Gauge

	// Ledger metrics
	TransactionsRecorded *prometheus.CounterVec
	TransactionAmount    *prometheus.HistogramVec
	SummaryCacheHits     prometheus.Counter
	SummaryCacheMisses   prometheus.Counter

	// Outbox metrics
	EventsPublished *prometheus.CounterVec
	OutboxBacklog   prometheus.Gauge

	// Database metrics
	DBConnections prometheus.Gauge
	DBErrors      *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Audit metrics
	AuditLogsCreated *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Poll metrics
		PollsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rukun_polls_created_total",
			Help: "Total number of polls created",
		}),
		PollsClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rukun_polls_closed_total",
			Help: "Total number of polls closed",
		}),

		// Vote metrics
		VotesCast: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rukun_votes_cast_total",
			Help: "Total number of votes committed",
		}),
		VotesRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rukun_votes_rejected_total",
				Help: "Total number of rejected votes by reason",
			},
			[]string{"reason"},
		),
		VoteDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rukun_vote_duration_seconds",
			Help:    "Duration of cast-vote transactions",
			Buckets: prometheus.DefBuckets,
		}),
		TallyMismatches: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rukun_tally_mismatches",
			Help: "Polls whose tallies diverged from the vote ledger at last check",
		}),

		// Ledger metrics
		TransactionsRecorded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rukun_transactions_recorded_total",
				Help: "Total ledger entries recorded by type",
			},
			[]string{"type"},
		),
		TransactionAmount: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rukun_transaction_amount",
				Help:    "Ledger entry amounts",
				Buckets: []float64{1000, 10000, 50000, 100000, 500000, 1000000, 10000000},
			},
			[]string{"type"},
		),
		SummaryCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rukun_summary_cache_hits_total",
			Help: "Ledger summaries served from cache",
		}),
		SummaryCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rukun_summary_cache_misses_total",
			Help: "Ledger summaries recomputed from the database",
		}),

		// Outbox metrics
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rukun_events_published_total",
				Help: "Total outbox events published by type",
			},
			[]string{"event_type"},
		),
		OutboxBacklog: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rukun_outbox_backlog",
			Help: "Unpublished outbox events at last poll",
		}),

		// Database metrics
		DBConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "rukun_db_connections",
			Help: "Current number of database connections",
		}),
		DBErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rukun_db_errors_total",
				Help: "Total database errors",
			},
			[]string{"operation"},
		),

		// Authentication metrics
		AuthFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rukun_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Audit metrics
		AuditLogsCreated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rukun_audit_logs_total",
				Help: "Total audit logs created",
			},
			[]string{"action", "status"},
		),
	}
}
