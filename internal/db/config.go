// Package db provides the database access layer for the catalog: a
// process-wide engine registry, request-scoped sessions with explicit
// transaction scopes, driver error classification, and health probes.
// It wraps Bun ORM over either an embedded SQLite file store or a
// client/server PostgreSQL store.
package db

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Backend identifies the storage engine kind. It is derived once from the
// configured URL; switching backends requires a process restart.
type Backend string

const (
	// BackendSQLite is the embedded file-based store.
	BackendSQLite Backend = "sqlite"
	// BackendPostgres is the client/server store.
	BackendPostgres Backend = "postgres"
)

// Config holds database configuration. Pool strategy is chosen from the
// backend kind and the serverless flag at engine construction; the struct
// itself is plain data and safe to copy.
type Config struct {
	// URL is the connection string. Schemes postgres:// and postgresql://
	// select the client/server backend; sqlite:// or a bare file path
	// select the embedded backend.
	URL string

	// Pool settings (client/server backend only)
	PoolSize        int           // base pool size (default: 5)
	MaxOverflow     int           // connections allowed beyond the base pool (default: 10)
	ConnMaxLifetime time.Duration // max connection lifetime (default: 5m)
	ConnMaxIdleTime time.Duration // max idle time (default: 1m)

	// Serverless marks a remote target that may silently drop idle
	// connections; the engine then keeps no idle pool at all. Detected
	// automatically for known serverless hosts.
	Serverless bool

	// Timeouts
	DialTimeout  time.Duration // connection dial timeout (default: 5s)
	ReadTimeout  time.Duration // read timeout (default: 30s)
	WriteTimeout time.Duration // write timeout (default: 30s)

	// Observability (all optional)
	Logger          *slog.Logger          // structured logger for query logging
	LogQueries      bool                  // log all queries
	LogSlowQueries  time.Duration         // log queries slower than this (0 = disabled)
	MetricsRegistry prometheus.Registerer // Prometheus registry for query metrics
	Tracer          trace.Tracer          // OpenTelemetry tracer
}

// DefaultConfig returns a Config with sensible defaults for the given URL.
func DefaultConfig(url string) Config {
	c := Config{URL: url}
	c.applyDefaults()
	return c
}

// applyDefaults fills in zero values with defaults.
func (c *Config) applyDefaults() {
	if c.PoolSize == 0 {
		c.PoolSize = 5
	}
	if c.MaxOverflow == 0 {
		c.MaxOverflow = 10
	}
	if c.ConnMaxLifetime == 0 {
		c.ConnMaxLifetime = 5 * time.Minute
	}
	if c.ConnMaxIdleTime == 0 {
		c.ConnMaxIdleTime = 1 * time.Minute
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 30 * time.Second
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if !c.Serverless && serverlessHost(c.URL) {
		c.Serverless = true
	}
}

// BackendKind derives the backend from the URL scheme.
func (c Config) BackendKind() Backend {
	if strings.HasPrefix(c.URL, "postgres://") || strings.HasPrefix(c.URL, "postgresql://") {
		return BackendPostgres
	}
	return BackendSQLite
}

// sqlitePath strips the sqlite URL scheme down to the file path the driver
// expects. ":memory:" and "file:" DSNs pass through untouched.
func (c Config) sqlitePath() string {
	path := c.URL
	path = strings.TrimPrefix(path, "sqlite://")
	path = strings.TrimPrefix(path, "sqlite:")
	if path == "" {
		path = ":memory:"
	}
	return path
}

// key identifies an engine configuration for registry memoization. Two
// configs with the same key share one engine for the process lifetime.
func (c Config) key() string {
	return fmt.Sprintf("%s|%s|%d|%d|%t",
		c.BackendKind(), c.URL, c.PoolSize, c.MaxOverflow, c.Serverless)
}

// serverlessHost reports whether the URL points at a known serverless
// Postgres offering that drops idle connections.
func serverlessHost(url string) bool {
	return strings.Contains(url, ".neon.tech")
}

// WithLogger enables query logging.
func (c Config) WithLogger(logger *slog.Logger) Config {
	c.Logger = logger
	c.LogQueries = true
	return c
}

// WithSlowQueryLog logs queries slower than the threshold.
func (c Config) WithSlowQueryLog(threshold time.Duration) Config {
	c.LogSlowQueries = threshold
	return c
}

// WithMetrics enables Prometheus query metrics.
func (c Config) WithMetrics(registry prometheus.Registerer) Config {
	c.MetricsRegistry = registry
	return c
}

// WithTracing enables OpenTelemetry query tracing.
func (c Config) WithTracing(tracer trace.Tracer) Config {
	c.Tracer = tracer
	return c
}
