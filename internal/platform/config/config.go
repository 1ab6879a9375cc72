package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"reqtrace/internal/domain"
)

// Config holds all configuration for the reqtrace sidecar.
type Config struct {
	ListenAddr  string
	UpstreamURL string // Full URL of the wrapped service (e.g. http://orders:8082)
	LogLevel    string
	// ExtraSensitiveHeaders are redacted in addition to the credential headers
	// every deployment redacts.
	ExtraSensitiveHeaders []string
	MaxBodyBytes          int64
}

// Load reads configuration from environment variables, falling back to defaults.
func Load() Config {
	return Config{
		ListenAddr:            envOr("LISTEN_ADDR", ":8080"),
		UpstreamURL:           envOr("UPSTREAM_URL", "http://localhost:8082"),
		LogLevel:              envOr("LOG_LEVEL", "info"),
		ExtraSensitiveHeaders: envList("SENSITIVE_HEADERS"),
		MaxBodyBytes:          int64(envInt("MAX_BODY_BYTES", 1<<20)),
	}
}

// SensitiveHeaders returns the redaction set: the defaults plus any extras.
func (c Config) SensitiveHeaders() domain.SensitiveHeaders {
	return domain.DefaultSensitiveHeaders().With(c.ExtraSensitiveHeaders...)
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("invalid integer env var, using default", "key", key, "value", v, "default", fallback)
			return fallback
		}
		return n
	}
	return fallback
}

// envList splits a comma-separated env var, dropping blank entries.
func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
