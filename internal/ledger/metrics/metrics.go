package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the ledger vertical.
type Metrics struct {
	TransactionsApplied *prometheus.CounterVec
	InsufficientFunds   prometheus.Counter
}

// New creates and registers ledger metrics.
func New() *Metrics {
	return &Metrics{
		TransactionsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "finbank_transactions_applied_total",
			Help: "Total number of ledger transactions applied.",
		}, []string{"type"}),
		InsufficientFunds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbank_withdrawals_rejected_insufficient_funds_total",
			Help: "Withdrawals rejected because the amount exceeded the balance.",
		}),
	}
}

func (m *Metrics) IncrementApplied(txType string) {
	if m != nil {
		m.TransactionsApplied.WithLabelValues(txType).Inc()
	}
}

func (m *Metrics) IncrementInsufficientFunds() {
	if m != nil {
		m.InsufficientFunds.Inc()
	}
}
