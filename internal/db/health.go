package db

import (
	"context"
	"time"
)

// HealthStatus is the detailed engine health report served by the
// diagnostic endpoints.
type HealthStatus struct {
	Healthy   bool          `json:"healthy"`
	Backend   Backend       `json:"backend"`
	Latency   time.Duration `json:"latency"`
	Error     string        `json:"error,omitempty"`
	PoolStats PoolStats     `json:"pool_stats"`
}

// PoolStats contains connection pool statistics.
type PoolStats struct {
	MaxOpenConnections int   `json:"max_open_connections"`
	OpenConnections    int   `json:"open_connections"`
	InUse              int   `json:"in_use"`
	Idle               int   `json:"idle"`
	WaitCount          int64 `json:"wait_count"`
	MaxIdleClosed      int64 `json:"max_idle_closed"`
	MaxLifetimeClosed  int64 `json:"max_lifetime_closed"`
}

// Health performs the same trivial round-trip used at session open and
// reports detailed status.
func (e *Engine) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	err := e.Ping(ctx)
	latency := time.Since(start)

	stats := e.Stats()
	status := HealthStatus{
		Healthy: err == nil,
		Backend: e.backend,
		Latency: latency,
		PoolStats: PoolStats{
			MaxOpenConnections: stats.MaxOpenConnections,
			OpenConnections:    stats.OpenConnections,
			InUse:              stats.InUse,
			Idle:               stats.Idle,
			WaitCount:          stats.WaitCount,
			MaxIdleClosed:      stats.MaxIdleClosed,
			MaxLifetimeClosed:  stats.MaxLifetimeClosed,
		},
	}

	if err != nil {
		status.Error = err.Error()
	}

	return status
}

// IsHealthy is the boolean liveness probe: true when the backend answers
// the round-trip check.
func (e *Engine) IsHealthy(ctx context.Context) bool {
	return e.Ping(ctx) == nil
}
