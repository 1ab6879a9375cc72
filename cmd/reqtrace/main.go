package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"reqtrace/internal/gateway/adapter/proxy"
	"reqtrace/internal/gateway/middleware"
	"reqtrace/internal/platform/config"
	"reqtrace/internal/platform/server"
	"reqtrace/internal/platform/telemetry"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry
	shutdown, err := telemetry.Setup(context.Background(), "reqtrace")
	if err != nil {
		slog.Error("telemetry setup failed", "error", err)
		os.Exit(1)
	}

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		slog.Error("metrics initialization failed", "error", err)
		os.Exit(1)
	}

	upstream, err := proxy.New(cfg.UpstreamURL, metrics, logger)
	if err != nil {
		slog.Error("proxy initialization failed", "error", err)
		os.Exit(1)
	}

	sensitive := cfg.SensitiveHeaders()

	// Assemble middleware chain
	mux := http.NewServeMux()
	mux.Handle("/metrics", telemetry.MetricsHandler())
	mux.Handle("/", middleware.Chain(
		upstream,
		middleware.Metrics(metrics),
		middleware.RequestID,
		middleware.TraceContext,
		middleware.Logging(logger, sensitive),
		middleware.Recovery(logger, metrics),
		middleware.MaxBodySize(cfg.MaxBodyBytes),
	))

	srv := server.New(cfg.ListenAddr, mux, logger)

	slog.Info("reqtrace starting",
		"addr", cfg.ListenAddr,
		"upstream_url", cfg.UpstreamURL,
		"sensitive_headers", sensitive.Len(),
		"max_body_bytes", cfg.MaxBodyBytes,
	)

	if err := srv.Run(ctx); err != nil {
		slog.Error("server error", "error", err)
	}

	if err := shutdown(context.Background()); err != nil {
		slog.Error("telemetry shutdown error", "error", err)
	}
}
