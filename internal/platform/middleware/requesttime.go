package middleware

import (
	"net/http"
	"time"

	"certo/pkg/requestcontext"
)

// RequestTime pins a single observation of the clock for the whole request so
// issuedAt, revokedAt, and log timestamps agree.
func RequestTime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
