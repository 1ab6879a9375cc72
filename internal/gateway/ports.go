package gateway

import (
	"context"
	"net/http"

	"reqtrace/internal/domain"
)

// StatusWriter wraps http.ResponseWriter to capture the final status code.
// 1xx informational codes are passed through but not recorded.
type StatusWriter struct {
	http.ResponseWriter
	Code        int
	WroteHeader bool
}

func (sw *StatusWriter) WriteHeader(code int) {
	if !sw.WroteHeader && code >= 200 {
		sw.Code = code
		sw.WroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *StatusWriter) Write(b []byte) (int, error) {
	if !sw.WroteHeader {
		sw.WroteHeader = true
	}
	return sw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *StatusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// RequestIDFromContext extracts the request ID from the context.
func RequestIDFromContext(ctx context.Context) (domain.RequestID, bool) {
	id, ok := ctx.Value(requestIDKey{}).(domain.RequestID)
	if !ok || id.IsZero() {
		return domain.RequestID{}, false
	}
	return id, true
}

// MustRequestID returns the request ID stored in ctx. It panics with a
// *domain.ContractViolation naming component if there is none, which means
// component was mounted outside the RequestID middleware.
func MustRequestID(ctx context.Context, component string) domain.RequestID {
	id, ok := RequestIDFromContext(ctx)
	if !ok {
		panic(&domain.ContractViolation{
			Component: component,
			Reason:    "no request id in context; mount it inside the RequestID middleware",
		})
	}
	return id
}

// ContextWithRequestID stores the request ID in the context.
func ContextWithRequestID(ctx context.Context, id domain.RequestID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

type requestIDKey struct{}
