package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"reqtrace/internal/domain"
)

// MaxBodySize returns middleware that limits request body size to maxBytes.
// Requests that declare a larger Content-Length are rejected up front with a
// JSON 413; others get a body that fails once it reads past the limit.
// A non-positive maxBytes disables the limit.
func MaxBodySize(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				if err := json.NewEncoder(w).Encode(domain.ErrorResponse{
					Error:   "request_too_large",
					Message: "request body exceeds the configured limit",
				}); err != nil {
					slog.Error("encoding error response", "error", err)
				}
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
