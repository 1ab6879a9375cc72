package middleware

import (
	"log/slog"
	"net/http"

	"reqtrace/internal/domain"
)

// Middleware is a function that wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middleware in order: the first middleware is the outermost wrapper.
// Nil entries are skipped.
func Chain(handler http.Handler, mw ...Middleware) http.Handler {
	for i := len(mw) - 1; i >= 0; i-- {
		if mw[i] == nil {
			continue
		}
		handler = mw[i](handler)
	}
	return handler
}

// Traced composes RequestID and TraceContext around Logging, the one order
// in which Logging always finds a request ID and any inbound trace context.
func Traced(logger *slog.Logger, sensitive domain.SensitiveHeaders) Middleware {
	logging := Logging(logger, sensitive)
	return func(next http.Handler) http.Handler {
		return RequestID(TraceContext(logging(next)))
	}
}
