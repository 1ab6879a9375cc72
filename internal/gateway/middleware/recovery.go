package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"reqtrace/internal/domain"
	gw "reqtrace/internal/gateway"
	"reqtrace/internal/platform/telemetry"
)

// Recovery catches panics from downstream handlers and returns a 500 JSON
// error if nothing has been written yet. http.ErrAbortHandler is re-raised
// so net/http can abort the connection. The metrics parameter may be nil.
func Recovery(logger *slog.Logger, m *telemetry.Metrics) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := &gw.StatusWriter{ResponseWriter: w, Code: http.StatusOK}
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if v == http.ErrAbortHandler {
					panic(v)
				}
				if m != nil {
					m.RecordPanic(r.Context(), r.Method)
				}

				attrs := []any{"error", v, "stack", string(debug.Stack())}
				if id, ok := gw.RequestIDFromContext(r.Context()); ok {
					attrs = append(attrs, "request_id", id.String())
				}
				logger.Error("panic recovered", attrs...)

				if sw.WroteHeader {
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				if encErr := json.NewEncoder(w).Encode(domain.ErrorResponse{
					Error:   "internal_error",
					Message: "an unexpected error occurred",
				}); encErr != nil {
					logger.Error("encoding error response", "error", encErr)
				}
			}()
			next.ServeHTTP(sw, r)
		})
	}
}
