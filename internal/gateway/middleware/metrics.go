package middleware

import (
	"net/http"
	"time"

	gw "reqtrace/internal/gateway"
	"reqtrace/internal/platform/telemetry"
)

// Metrics returns middleware that records HTTP request metrics.
// Place as the outermost middleware to capture the full request lifecycle.
// Requests are labelled with the ServeMux pattern that matched them, never
// the raw path, so the number of series stays bounded.
// A nil m turns it into a pass-through.
func Metrics(m *telemetry.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &gw.StatusWriter{ResponseWriter: w, Code: http.StatusOK}

			next.ServeHTTP(sw, r)

			m.RecordHTTPRequest(r.Context(), r.Method, routeLabel(r), sw.Code, time.Since(start).Seconds())
		})
	}
}

// routeLabel is the pattern a ServeMux matched, or "unmatched" when the
// chain is mounted without one.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return "unmatched"
	}
	return r.Pattern
}
