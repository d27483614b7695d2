package ratelimit

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	resetAt time.Time
}

// InMemoryStore counts per-key requests in process memory. It is the
// fallback behind the Redis store and the authoritative store when the
// service runs without Redis.
type InMemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{windows: make(map[string]*window)}
}

func (s *InMemoryStore) Allow(_ context.Context, key string, limit int, windowSize time.Duration) (*Result, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		s.prune(now)
		w = &window{resetAt: now.Add(windowSize)}
		s.windows[key] = w
	}
	w.count++

	remaining := limit - w.count
	if remaining < 0 {
		remaining = 0
	}
	return &Result{
		Allowed:   w.count <= limit,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   w.resetAt,
	}, nil
}

// prune drops expired windows so the map does not grow with every client IP
// ever seen. Called with the lock held, on window rollover only.
func (s *InMemoryStore) prune(now time.Time) {
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
}
