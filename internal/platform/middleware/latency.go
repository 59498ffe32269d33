package middleware

import (
	"net/http"
	"strconv"
	"time"
)

// LatencyObserver is implemented by feature metrics packages.
type LatencyObserver interface {
	ObserveHTTPLatency(method, path, status string, seconds float64)
}

// Latency records per-route request latency.
func Latency(obs LatencyObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if obs == nil {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			obs.ObserveHTTPLatency(r.Method, r.URL.Path, strconv.Itoa(rec.status), time.Since(start).Seconds())
		})
	}
}
