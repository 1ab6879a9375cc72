package telemetry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ShutdownFunc releases telemetry resources.
type ShutdownFunc func(ctx context.Context) error

// Setup initializes OpenTelemetry with a Prometheus exporter. serviceName
// becomes the service.name resource attribute, exported on target_info.
// Returns a shutdown function that must be called on exit.
func Setup(ctx context.Context, serviceName string) (ShutdownFunc, error) {
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(provider)

	return provider.Shutdown, nil
}

// MetricsHandler returns an http.Handler that serves Prometheus metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}

// Metrics holds the OTel instruments for the sidecar.
type Metrics struct {
	httpRequestsTotal   otelmetric.Int64Counter
	httpRequestDuration otelmetric.Float64Histogram
	panicsTotal         otelmetric.Int64Counter
	proxyRequestsTotal  otelmetric.Int64Counter
	proxyDuration       otelmetric.Float64Histogram
}

// NewMetrics creates and registers all sidecar metrics.
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("reqtrace")
	m := &Metrics{}
	var err error

	latencyBuckets := otelmetric.WithExplicitBucketBoundaries(
		0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0,
	)

	if m.httpRequestsTotal, err = meter.Int64Counter("reqtrace_http_requests_total",
		otelmetric.WithDescription("Total HTTP requests")); err != nil {
		return nil, fmt.Errorf("creating http_requests_total: %w", err)
	}
	if m.httpRequestDuration, err = meter.Float64Histogram("reqtrace_http_request_duration_seconds",
		otelmetric.WithDescription("HTTP request duration"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating http_request_duration: %w", err)
	}
	if m.panicsTotal, err = meter.Int64Counter("reqtrace_panics_total",
		otelmetric.WithDescription("Panics recovered from wrapped handlers")); err != nil {
		return nil, fmt.Errorf("creating panics_total: %w", err)
	}
	if m.proxyRequestsTotal, err = meter.Int64Counter("reqtrace_proxy_requests_total",
		otelmetric.WithDescription("Total requests forwarded upstream")); err != nil {
		return nil, fmt.Errorf("creating proxy_requests_total: %w", err)
	}
	if m.proxyDuration, err = meter.Float64Histogram("reqtrace_proxy_duration_seconds",
		otelmetric.WithDescription("Upstream round-trip duration"), latencyBuckets); err != nil {
		return nil, fmt.Errorf("creating proxy_duration: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request metric. route must come from a
// bounded set (a mux pattern), not the request path.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, durationSec float64) {
	attrs := otelmetric.WithAttributes(
		methodAttr(method),
		routeAttr(route),
		statusAttr(status),
	)
	m.httpRequestsTotal.Add(ctx, 1, attrs)
	m.httpRequestDuration.Record(ctx, durationSec, attrs)
}

// RecordPanic records a panic recovered from a handler.
func (m *Metrics) RecordPanic(ctx context.Context, method string) {
	m.panicsTotal.Add(ctx, 1, otelmetric.WithAttributes(methodAttr(method)))
}

// RecordProxyRequest records a request forwarded to the upstream.
func (m *Metrics) RecordProxyRequest(ctx context.Context, upstream string, status int, durationSec float64) {
	attrs := otelmetric.WithAttributes(
		upstreamAttr(upstream),
		statusAttr(status),
	)
	m.proxyRequestsTotal.Add(ctx, 1, attrs)
	m.proxyDuration.Record(ctx, durationSec, attrs)
}
