// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the full service configuration. Every field has a default
// suitable for local development against the embedded database.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Addr        string `env:"ADDR" envDefault:":8000"`

	DatabaseURL   string        `env:"DATABASE_URL" envDefault:"sqlite://saucebottle.db"`
	DBPoolSize    int           `env:"DB_POOL_SIZE" envDefault:"5"`
	DBMaxOverflow int           `env:"DB_MAX_OVERFLOW" envDefault:"10"`
	DBDialTimeout time.Duration `env:"DB_DIAL_TIMEOUT" envDefault:"5s"`

	LogLevel     string        `env:"LOG_LEVEL" envDefault:"info"`
	LogQueries   bool          `env:"LOG_QUERIES" envDefault:"false"`
	SlowQueryLog time.Duration `env:"SLOW_QUERY_LOG" envDefault:"200ms"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// SlogLevel maps the configured level name to a slog level. Unknown names
// fall back to info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
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
