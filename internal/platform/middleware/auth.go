package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"finbank/pkg/domain"
	dErrors "finbank/pkg/domain-errors"
	"finbank/pkg/platform/httputil"
	"finbank/pkg/requestcontext"
)

// TokenValidator validates a bearer token and resolves the principal it was
// issued to. Implemented by internal/auth.
type TokenValidator interface {
	ValidateToken(tokenString string) (domain.UserID, error)
}

type principalKey struct{}

// Principal retrieves the authenticated principal placed by RequireAuth.
// Handlers read it exactly once and pass it explicitly into services;
// services never touch the request context for identity.
func Principal(ctx context.Context) (domain.UserID, bool) {
	userID, ok := ctx.Value(principalKey{}).(domain.UserID)
	return userID, ok
}

// WithPrincipal injects a principal into the context. Exposed for handler
// tests that don't run the full middleware chain.
func WithPrincipal(ctx context.Context, userID domain.UserID) context.Context {
	return context.WithValue(ctx, principalKey{}, userID)
}

// RequireAuth rejects requests without a valid bearer token and records the
// resolved principal in the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			userID, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, userID)))
		})
	}
}
