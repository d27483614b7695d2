package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the accounts vertical.
type Metrics struct {
	AccountsCreated      prometheus.Counter
	AccountsDeleted      prometheus.Counter
	NumberAllocationHits prometheus.Counter
	CacheHits            prometheus.Counter
	CacheMisses          prometheus.Counter
}

// New creates and registers account metrics.
func New() *Metrics {
	return &Metrics{
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbank_accounts_created_total",
			Help: "Total number of bank accounts created.",
		}),
		AccountsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbank_accounts_deleted_total",
			Help: "Total number of bank accounts soft-deleted.",
		}),
		NumberAllocationHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbank_account_number_allocation_collisions_total",
			Help: "Candidate account numbers rejected because they were already in use.",
		}),
		CacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbank_account_cache_hits_total",
			Help: "Account lookups served from the cache.",
		}),
		CacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbank_account_cache_misses_total",
			Help: "Account lookups that missed the cache.",
		}),
	}
}

func (m *Metrics) IncrementAccountsCreated() {
	if m != nil {
		m.AccountsCreated.Inc()
	}
}

func (m *Metrics) IncrementAccountsDeleted() {
	if m != nil {
		m.AccountsDeleted.Inc()
	}
}

func (m *Metrics) IncrementAllocationCollisions() {
	if m != nil {
		m.NumberAllocationHits.Inc()
	}
}

func (m *Metrics) IncrementCacheHits() {
	if m != nil {
		m.CacheHits.Inc()
	}
}

func (m *Metrics) IncrementCacheMisses() {
	if m != nil {
		m.CacheMisses.Inc()
	}
}
