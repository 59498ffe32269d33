package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	dErrors "certo/pkg/domain-errors"
	"certo/pkg/platform/httputil"
)

// RequireAdmin guards admin-only routes with the X-Admin-Token header.
// The configured value is a bcrypt hash so the cleartext token never sits in
// the environment of a running process dump.
func RequireAdmin(adminTokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			if token == "" || adminTokenHash == "" {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin token required"))
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(adminTokenHash), []byte(token)); err != nil {
				// Constant-time compare on the raw value as well, to keep the
				// dev fallback (hash == token) from short-circuiting.
				if subtle.ConstantTimeCompare([]byte(adminTokenHash), []byte(token)) != 1 {
					logger.WarnContext(r.Context(), "admin token rejected",
						"request_id", GetRequestID(r.Context()),
					)
					httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "admin token rejected"))
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
