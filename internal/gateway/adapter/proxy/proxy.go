package proxy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"reqtrace/internal/domain"
	gw "reqtrace/internal/gateway"
	"reqtrace/internal/platform/telemetry"
)

// upstreamRequestIDHeader forwards the assigned request ID to the upstream.
const upstreamRequestIDHeader = "X-Request-Id"

// Proxy forwards every request to a single upstream service and serves its
// own health endpoints.
type Proxy struct {
	mux      *http.ServeMux
	upstream *url.URL
	rp       *httputil.ReverseProxy
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// New creates a proxy to upstreamURL.
// The metrics parameter is optional; pass nil to skip metric recording.
func New(upstreamURL string, m *telemetry.Metrics, logger *slog.Logger) (*Proxy, error) {
	upstream, err := url.Parse(upstreamURL)
	if err != nil {
		return nil, fmt.Errorf("parse upstream URL: %w", err)
	}
	if upstream.Scheme == "" || upstream.Host == "" {
		return nil, fmt.Errorf("parse upstream URL: %q needs a scheme and host", upstreamURL)
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Proxy{
		mux:      http.NewServeMux(),
		upstream: upstream,
		metrics:  m,
		logger:   logger,
	}
	p.rp = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(upstream)
			pr.SetXForwarded()

			// Clients cannot choose the ID the upstream sees.
			pr.Out.Header.Del(upstreamRequestIDHeader)
			if id, ok := gw.RequestIDFromContext(pr.In.Context()); ok {
				pr.Out.Header.Set(upstreamRequestIDHeader, id.String())
			}
		},
		ErrorHandler: p.upstreamError,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	p.mux.HandleFunc("GET /healthz", p.healthz)
	p.mux.HandleFunc("GET /readyz", p.readyz)
	p.mux.HandleFunc("/", p.forward)

	return p, nil
}

func (p *Proxy) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	p.mux.ServeHTTP(w, req)
}

func (p *Proxy) forward(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	sw := &gw.StatusWriter{ResponseWriter: w, Code: http.StatusOK}
	p.rp.ServeHTTP(sw, req)

	if p.metrics != nil {
		p.metrics.RecordProxyRequest(req.Context(), p.upstream.Host, sw.Code, time.Since(start).Seconds())
	}
}

func (p *Proxy) upstreamError(w http.ResponseWriter, req *http.Request, err error) {
	attrs := []any{"error", err, "upstream", p.upstream.Host}
	if id, ok := gw.RequestIDFromContext(req.Context()); ok {
		attrs = append(attrs, "request_id", id.String())
	}
	p.logger.Warn("upstream request failed", attrs...)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	if encErr := json.NewEncoder(w).Encode(domain.ErrorResponse{
		Error:   "bad_gateway",
		Message: "upstream service unavailable",
	}); encErr != nil {
		p.logger.Error("encoding error response", "error", encErr)
	}
}

func (p *Proxy) healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		p.logger.Error("encoding healthz response", "error", err)
	}
}

func (p *Proxy) readyz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ready"}); err != nil {
		p.logger.Error("encoding readyz response", "error", err)
	}
}
