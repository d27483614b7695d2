package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the rate limiter.
type Metrics struct {
	ThrottledTotal      prometheus.Counter
	FallbackActivations prometheus.Counter
}

// NewMetrics creates and registers rate limiter metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ThrottledTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbank_ratelimit_throttled_total",
			Help: "Requests rejected with 429 by the rate limiter.",
		}),
		FallbackActivations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "finbank_ratelimit_fallback_total",
			Help: "Rate limit checks answered by the in-memory fallback store.",
		}),
	}
}

func (m *Metrics) IncrementThrottled() {
	if m == nil {
		return
	}
	m.ThrottledTotal.Inc()
}

func (m *Metrics) IncrementFallback() {
	if m == nil {
		return
	}
	m.FallbackActivations.Inc()
}
