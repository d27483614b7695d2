package middleware

import (
	"net/http"
	"time"

	"finbank/pkg/requestcontext"
)

// RequestTime pins a single timestamp for the whole request so every entity
// touched in one unit of work carries the same created/updated time.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
