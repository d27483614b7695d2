// Package http assembles the transport layer: middleware chain, route
// groups, and operational endpoints. Handlers delegate to domain services;
// no business logic lives here.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finbank/internal/platform/metrics"
	"finbank/internal/platform/middleware"
	"finbank/internal/platform/ratelimit"
	"finbank/pkg/platform/httputil"
)

// Registrar mounts a vertical's routes on a router group.
type Registrar interface {
	Register(r chi.Router)
}

// PublicRegistrar mounts routes that must stay outside the auth middleware.
type PublicRegistrar interface {
	RegisterPublic(r chi.Router)
}

// HealthChecker reports readiness of a backing dependency.
type HealthChecker func(ctx context.Context) error

// Deps carries everything the router needs.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Validator middleware.TokenValidator

	Users    interface {
		Registrar
		PublicRegistrar
	}
	Auth     Registrar
	Accounts Registrar
	Ledger   Registrar

	// LoginLimiter throttles the unauthenticated routes; nil disables it.
	LoginLimiter *ratelimit.Limiter

	// Health checks run on /healthz; nil entries are skipped.
	Health map[string]HealthChecker
}

// NewRouter builds the full route tree.
func NewRouter(deps Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.ClientMetadata)
	r.Use(chimiddleware.Recoverer)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Route("/v1", func(v1 chi.Router) {
		// Registration and login come before authentication.
		v1.Group(func(public chi.Router) {
			if deps.LoginLimiter != nil {
				public.Use(deps.LoginLimiter.Handler)
			}
			deps.Users.RegisterPublic(public)
			deps.Auth.Register(public)
		})

		v1.Group(func(authed chi.Router) {
			authed.Use(middleware.RequireAuth(deps.Validator, deps.Logger))
			deps.Users.Register(authed)
			deps.Accounts.Register(authed)
			deps.Ledger.Register(authed)
		})
	})

	r.Get("/healthz", healthHandler(deps.Health))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func healthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		healthy := true
		for name, check := range checks {
			if check == nil {
				continue
			}
			if err := check(r.Context()); err != nil {
				status[name] = err.Error()
				healthy = false
			} else {
				status[name] = "ok"
			}
		}
		if !healthy {
			status["status"] = "degraded"
			httputil.WriteJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, status)
	}
}
