package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/schema"
	_ "modernc.org/sqlite"

	"saucebottle/internal/apperr"
	"saucebottle/internal/db/hooks"
)

// Engine owns one physical connection pool. Engines are immutable after
// construction and live for the process lifetime; obtain them through a
// Registry, never construct them per request.
type Engine struct {
	*bun.DB
	backend Backend
	config  Config
}

// poolStrategy is the pool configuration selected for a backend kind.
// The table lives in strategyFor; nothing else branches on backend kind
// for pooling decisions.
type poolStrategy struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	connMaxIdleTime time.Duration
}

// strategyFor picks the pool strategy once at engine construction.
//
//   - sqlite: a single shared connection. File-backed engines do not
//     support real concurrent writers; one static connection avoids lock
//     contention errors.
//   - postgres, serverless target: no idle pool. The remote proxy may
//     silently drop idle connections, so every checkout dials fresh and
//     sessions verify liveness on open.
//   - postgres, persistent target: bounded pool of PoolSize with
//     MaxOverflow connections allowed beyond it.
func strategyFor(backend Backend, cfg Config) poolStrategy {
	switch {
	case backend == BackendSQLite:
		return poolStrategy{maxOpenConns: 1, maxIdleConns: 1}
	case cfg.Serverless:
		return poolStrategy{
			maxOpenConns: cfg.PoolSize + cfg.MaxOverflow,
			maxIdleConns: 0,
		}
	default:
		return poolStrategy{
			maxOpenConns:    cfg.PoolSize + cfg.MaxOverflow,
			maxIdleConns:    cfg.PoolSize,
			connMaxLifetime: cfg.ConnMaxLifetime,
			connMaxIdleTime: cfg.ConnMaxIdleTime,
		}
	}
}

// sqlitePragmas are applied once after opening the embedded store.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA foreign_keys=ON",
	"PRAGMA busy_timeout=5000",
}

// newEngine opens the backend and verifies connectivity. A failure here is
// fatal at the first call site that requests the engine; the registry does
// not retry.
func newEngine(cfg Config) (*Engine, error) {
	cfg.applyDefaults()

	if cfg.URL == "" {
		return nil, fmt.Errorf("db: database URL is required")
	}

	backend := cfg.BackendKind()

	var (
		sqlDB   *sql.DB
		dialect schema.Dialect
	)

	switch backend {
	case BackendSQLite:
		var err error
		sqlDB, err = sql.Open("sqlite", cfg.sqlitePath())
		if err != nil {
			return nil, apperr.ConnectionUnavailable(string(backend), err)
		}
		dialect = sqlitedialect.New()
	case BackendPostgres:
		connector := pgdriver.NewConnector(
			pgdriver.WithDSN(cfg.URL),
			pgdriver.WithDialTimeout(cfg.DialTimeout),
			pgdriver.WithReadTimeout(cfg.ReadTimeout),
			pgdriver.WithWriteTimeout(cfg.WriteTimeout),
		)
		sqlDB = sql.OpenDB(connector)
		dialect = pgdialect.New()
	}

	strat := strategyFor(backend, cfg)
	sqlDB.SetMaxOpenConns(strat.maxOpenConns)
	sqlDB.SetMaxIdleConns(strat.maxIdleConns)
	sqlDB.SetConnMaxLifetime(strat.connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(strat.connMaxIdleTime)

	bunDB := bun.NewDB(sqlDB, dialect)

	if cfg.Logger != nil && (cfg.LogQueries || cfg.LogSlowQueries > 0) {
		bunDB.AddQueryHook(hooks.NewLoggerHook(cfg.Logger, cfg.LogQueries, cfg.LogSlowQueries))
	}
	if cfg.MetricsRegistry != nil {
		hook, err := hooks.NewMetricsHook(cfg.MetricsRegistry)
		if err != nil {
			_ = bunDB.Close()
			return nil, fmt.Errorf("db: failed to create metrics hook: %w", err)
		}
		bunDB.AddQueryHook(hook)
	}
	if cfg.Tracer != nil {
		bunDB.AddQueryHook(hooks.NewTracingHook(cfg.Tracer, string(backend)))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout)
	defer cancel()

	if err := bunDB.PingContext(ctx); err != nil {
		_ = bunDB.Close()
		return nil, apperr.ConnectionUnavailable(string(backend), err)
	}

	if backend == BackendSQLite {
		for _, pragma := range sqlitePragmas {
			if _, err := bunDB.ExecContext(ctx, pragma); err != nil {
				_ = bunDB.Close()
				return nil, apperr.ConnectionUnavailable(string(backend), err)
			}
		}
	}

	return &Engine{DB: bunDB, backend: backend, config: cfg}, nil
}

// Backend returns the engine's backend kind.
func (e *Engine) Backend() Backend { return e.backend }

// Config returns the configuration the engine was built from.
func (e *Engine) Config() Config { return e.config }

// Close tears down the connection pool. Only the process teardown path
// should call this, via Registry.Close.
func (e *Engine) Close() error {
	return e.DB.Close()
}

// Ping verifies the backend is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	if err := e.PingContext(ctx); err != nil {
		return wrapError(err, "Ping")
	}
	return nil
}

// Stats returns connection pool statistics.
func (e *Engine) Stats() sql.DBStats {
	return e.DB.Stats()
}
