// Package ratelimit throttles the unauthenticated endpoints with a
// fixed-window counter keyed by client IP. The primary counter lives in
// Redis so limits hold across replicas; when Redis misbehaves a circuit
// breaker switches to per-process counters instead of letting login attempts
// through unmetered.
package ratelimit

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"finbank/pkg/platform/httputil"
	"finbank/pkg/requestcontext"
)

// Result describes the outcome of one counter check.
type Result struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// Store counts requests per key within a fixed window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Limiter wraps a primary Store with an in-memory fallback. All limiter
// failures degrade, never block: if both stores error the request passes.
type Limiter struct {
	primary  Store
	fallback Store
	breaker  *breaker
	limit    int
	window   time.Duration
	logger   *slog.Logger
	metrics  *Metrics
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) { l.logger = logger }
}

func WithMetrics(m *Metrics) Option {
	return func(l *Limiter) { l.metrics = m }
}

// New builds a limiter. A nil primary store means the in-memory counters are
// authoritative, which is the single-process deployment case.
func New(primary Store, limit int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		primary:  primary,
		fallback: NewInMemoryStore(),
		breaker:  newBreaker(),
		limit:    limit,
		window:   window,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// check consults the primary store unless the breaker is open, falling back
// to the in-memory counters on primary failure. The degraded flag reports
// which store answered.
func (l *Limiter) check(ctx context.Context, key string) (result *Result, degraded bool, err error) {
	if l.primary == nil {
		result, err = l.fallback.Allow(ctx, key, l.limit, l.window)
		return result, false, err
	}

	if l.breaker.canAttempt() {
		result, err = l.primary.Allow(ctx, key, l.limit, l.window)
		if err == nil {
			l.breaker.recordSuccess()
			return result, false, nil
		}
		l.breaker.recordFailure()
		if l.logger != nil {
			l.logger.WarnContext(ctx, "rate limit store unavailable, using fallback", "error", err)
		}
		l.metrics.IncrementFallback()
	}

	result, err = l.fallback.Allow(ctx, key, l.limit, l.window)
	return result, true, err
}

// Handler is chi middleware throttling by client IP.
func (l *Limiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := requestcontext.ClientIP(ctx)
		if key == "" {
			key = r.RemoteAddr
		}

		result, degraded, err := l.check(ctx, key)
		if err != nil {
			if l.logger != nil {
				l.logger.ErrorContext(ctx, "rate limit check failed, allowing request", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
		if degraded {
			w.Header().Set("X-RateLimit-Status", "degraded")
		}

		if !result.Allowed {
			l.metrics.IncrementThrottled()
			retryAfter := int(time.Until(result.ResetAt).Seconds()) + 1
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
				Error:            "rate_limit_exceeded",
				ErrorDescription: "too many requests, try again later",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
