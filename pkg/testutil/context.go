package testutil

import (
	"net/http"
	"time"

	"finbank/internal/platform/middleware"
	"finbank/pkg/domain"
	"finbank/pkg/requestcontext"
)

// WithPrincipal attaches an authenticated principal to the request,
// simulating the auth middleware for handler tests.
func WithPrincipal(req *http.Request, userID domain.UserID) *http.Request {
	return req.WithContext(middleware.WithPrincipal(req.Context(), userID))
}

// WithRequestTime pins the request clock, simulating the request-time
// middleware.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}
