package ratelimit

import (
	"sync"
	"time"
)

// breaker tracks consecutive primary store errors. While open the fallback
// counters answer, with a probe against the primary every probeInterval so
// the breaker can close again once the store recovers.
type breaker struct {
	mu               sync.Mutex
	open             bool
	failureCount     int
	successCount     int
	failureThreshold int
	successThreshold int
	probeInterval    time.Duration
	lastProbe        time.Time
}

func newBreaker() *breaker {
	return &breaker{
		failureThreshold: 5,
		successThreshold: 3,
		probeInterval:    5 * time.Second,
	}
}

// canAttempt reports whether the primary store should be consulted.
func (b *breaker) canAttempt() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return true
	}
	if time.Since(b.lastProbe) >= b.probeInterval {
		b.lastProbe = time.Now()
		return true
	}
	return false
}

func (b *breaker) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount++
	b.successCount = 0
	if b.failureCount >= b.failureThreshold {
		b.open = true
	}
}

func (b *breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.open {
		b.successCount++
		if b.successCount >= b.successThreshold {
			b.open = false
			b.failureCount = 0
			b.successCount = 0
		}
		return
	}
	b.failureCount = 0
}
