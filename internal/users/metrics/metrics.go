package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the users vertical.
type Metrics struct {
	UsersCreated prometheus.Counter
	UsersDeleted prometheus.Counter
}

// New creates and registers user metrics.
func New() *Metrics {
	return &Metrics{
		UsersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbank_users_created_total",
			Help: "Total number of users registered.",
		}),
		UsersDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbank_users_deleted_total",
			Help: "Total number of users deleted.",
		}),
	}
}

func (m *Metrics) IncrementUsersCreated() {
	if m != nil {
		m.UsersCreated.Inc()
	}
}

func (m *Metrics) IncrementUsersDeleted() {
	if m != nil {
		m.UsersDeleted.Inc()
	}
}
