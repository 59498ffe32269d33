package middleware

import (
	"net/http"

	"github.com/mssola/useragent"

	"certo/pkg/requestcontext"
)

const maxRawUserAgent = 128

// Device parses the User-Agent header into a compact "browser version on os"
// summary and stores it in the request context, where the audit trail picks
// it up. Unrecognized agents keep the raw header, truncated.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("User-Agent")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		ctx := requestcontext.WithDevice(r.Context(), deviceSummary(raw))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func deviceSummary(raw string) string {
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		if len(raw) > maxRawUserAgent {
			return raw[:maxRawUserAgent]
		}
		return raw
	}

	summary := name
	if version != "" {
		summary += " " + version
	}
	if os := ua.OS(); os != "" {
		summary += " on " + os
	}
	return summary
}
