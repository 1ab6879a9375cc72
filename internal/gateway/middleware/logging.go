package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"reqtrace/internal/domain"
	gw "reqtrace/internal/gateway"
)

// Logging returns a middleware that emits a "request" event before the
// wrapped handler runs and a "response" event after it returns. Header
// values named in sensitive are replaced with [REDACTED] in both events;
// the headers sent on the wire are untouched.
//
// Response headers are read when the handler returns. A handler that never
// writes has not committed yet, so X-Request-Id is missing from its response
// event even though RequestID still sends it on the wire.
//
// It must be mounted inside RequestID. A request without an ID in its
// context panics with a *domain.ContractViolation before anything is logged.
//
// If the handler panics, the response event is still logged at error level
// with the status already written (500 if none) and panic=true, and the
// panic continues unchanged.
func Logging(logger *slog.Logger, sensitive domain.SensitiveHeaders) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			id := gw.MustRequestID(ctx, "logging")
			log := logger.With(requestScope(ctx, id)...)

			log.LogAttrs(ctx, slog.LevelInfo, "request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("http_version", r.Proto),
				slog.Any("headers", sensitive.Redact(r.Header)),
			)

			sw := &gw.StatusWriter{ResponseWriter: w, Code: http.StatusOK}
			start := time.Now()

			defer func() {
				v := recover()
				if v == nil {
					return
				}
				status := http.StatusInternalServerError
				if sw.WroteHeader {
					status = sw.Code
				}
				level := slog.LevelError
				if v == http.ErrAbortHandler {
					level = slog.LevelWarn
				}
				log.LogAttrs(ctx, level, "response",
					slog.Int("status", status),
					slog.Int64("duration", time.Since(start).Milliseconds()),
					slog.Any("headers", sensitive.Redact(w.Header())),
					slog.Bool("panic", true),
				)
				panic(v)
			}()

			next.ServeHTTP(sw, r)

			log.LogAttrs(ctx, slog.LevelInfo, "response",
				slog.Int("status", sw.Code),
				slog.Int64("duration", time.Since(start).Milliseconds()),
				slog.Any("headers", sensitive.Redact(w.Header())),
			)
		})
	}
}

// requestScope returns the attributes shared by both events of a request.
func requestScope(ctx context.Context, id domain.RequestID) []any {
	attrs := []any{slog.String("request_id", id.String())}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		attrs = append(attrs,
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return attrs
}
