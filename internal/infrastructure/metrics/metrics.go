package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/txledger/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Transaction metrics
	Transactions *prometheus.CounterVec
	StreamErrors prometheus.Counter

	// Ledger metrics
	Accounts       prometheus.Gauge
	LockedAccounts prometheus.Gauge
	OpenDisputes   prometheus.Gauge

	// Replay metrics
	ReplayDuration prometheus.Histogram
}

// New creates all metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	m := &Metrics{
		registry: registry,

		Transactions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_transactions_total",
				Help: "Total number of transactions applied by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
		StreamErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "txledger_stream_errors_total",
			Help: "Total number of replays aborted by a stream error",
		}),

		Accounts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "txledger_accounts",
			Help: "Number of accounts in the ledger",
		}),
		LockedAccounts: factory.NewGauge(prometheus.GaugeOpts{
			Name: "txledger_locked_accounts",
			Help: "Number of locked accounts in the ledger",
		}),
		OpenDisputes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "txledger_open_disputes",
			Help: "Number of transactions under open dispute",
		}),

		ReplayDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "txledger_replay_duration_seconds",
			Help:    "Duration of replay runs",
			Buckets: prometheus.DefBuckets,
		}),
	}

	// Every kind/outcome pair is exported from the start, zero included.
	for _, kind := range domain.Kinds {
		for _, outcome := range domain.Outcomes {
			m.Transactions.WithLabelValues(string(kind), string(outcome))
		}
	}

	return m
}

// Observe counts one applied transaction. It satisfies domain.Observer.
func (m *Metrics) Observe(tx domain.Transaction, outcome domain.Outcome) {
	m.Transactions.WithLabelValues(string(tx.Kind), string(outcome)).Inc()
}

// RecordLedger sets the ledger gauges from its final state.
func (m *Metrics) RecordLedger(accounts []domain.AccountSnapshot, openDisputes int) {
	locked := 0
	for _, acc := range accounts {
		if acc.Locked {
			locked++
		}
	}

	m.Accounts.Set(float64(len(accounts)))
	m.LockedAccounts.Set(float64(locked))
	m.OpenDisputes.Set(float64(openDisputes))
}

// Gatherer exposes the private registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteFile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
