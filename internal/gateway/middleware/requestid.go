package middleware

import (
	"net/http"

	"reqtrace/internal/domain"
	"reqtrace/internal/gateway"
)

// RequestIDHeader carries the assigned request ID on every response.
const RequestIDHeader = "X-Request-Id"

// RequestID assigns a fresh time-ordered ID to each request, stores it in
// the request context and sets it as the X-Request-Id response header.
// Any X-Request-Id the client sent or the handler set is overwritten.
// Mount it outside Logging so the ID exists before Logging reads it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := domain.NewRequestID()
		ctx := gateway.ContextWithRequestID(r.Context(), id)

		iw := &idWriter{ResponseWriter: w, id: id.String()}
		next.ServeHTTP(iw, r.WithContext(ctx))

		// Handler returned without writing; net/http sends the headers now.
		if !iw.committed {
			iw.stamp()
		}
	})
}

// idWriter sets the request ID header at the moment headers are committed,
// which is the last point at which net/http still accepts header changes.
type idWriter struct {
	http.ResponseWriter
	id        string
	committed bool
}

func (w *idWriter) stamp() {
	w.ResponseWriter.Header().Set(RequestIDHeader, w.id)
}

func (w *idWriter) WriteHeader(code int) {
	if !w.committed {
		w.stamp()
		// 1xx responses leave the final header block open.
		w.committed = code >= 200
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *idWriter) Write(b []byte) (int, error) {
	if !w.committed {
		w.stamp()
		w.committed = true
	}
	return w.ResponseWriter.Write(b)
}

func (w *idWriter) Flush() {
	if !w.committed {
		w.stamp()
		w.committed = true
	}
	_ = http.NewResponseController(w.ResponseWriter).Flush()
}

func (w *idWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
