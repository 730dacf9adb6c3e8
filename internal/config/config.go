// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

// Package config provides centralized configuration management for the
// dashboard backend. Configuration is loaded with Koanf v2 from three layered
// sources (highest priority wins): environment variables, an optional YAML
// config file, and built-in defaults.
//
// The warehouse credentials (user, password, database name) are required and
// validated before the first query runs; everything else has a sensible
// default. Config is immutable after Load() and safe for concurrent reads.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingSetting marks a configuration error caused by an absent required
// setting. Fatal at startup, never retried.
var ErrMissingSetting = errors.New("missing required setting")

// Config holds all application configuration.
type Config struct {
	Warehouse WarehouseConfig `koanf:"warehouse"`
	Cache     CacheConfig     `koanf:"cache"`
	Server    ServerConfig    `koanf:"server"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// WarehouseConfig holds the Postgres warehouse connection settings.
//
// Environment Variables:
//   - POSTGRES_USER, POSTGRES_PASSWORD, POSTGRES_DB (required)
//   - POSTGRES_HOST, POSTGRES_PORT (optional)
//   - DB_POOL_SIZE, DB_MAX_OVERFLOW, DB_POOL_RECYCLE (pool tuning)
//   - DB_ECHO: log every query at debug level (query name and parameters,
//     never credentials)
type WarehouseConfig struct {
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	Database string `koanf:"database"`
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Schema   string `koanf:"schema"`

	// PoolSize is the steady-state pool size; MaxOverflow is the number of
	// additional connections allowed under burst load. The pool's hard cap is
	// PoolSize + MaxOverflow.
	PoolSize    int `koanf:"pool_size"`
	MaxOverflow int `koanf:"max_overflow"`

	// PoolRecycle replaces connections older than this age to avoid
	// stale-connection failures on long-lived deployments.
	PoolRecycle time.Duration `koanf:"pool_recycle"`

	ConnectTimeout   time.Duration `koanf:"connect_timeout"`
	AcquireTimeout   time.Duration `koanf:"acquire_timeout"`
	StatementTimeout time.Duration `koanf:"statement_timeout"`

	Echo bool `koanf:"echo"`
}

// MaxConns returns the pool's hard connection cap.
func (w WarehouseConfig) MaxConns() int {
	return w.PoolSize + w.MaxOverflow
}

// CacheConfig holds the query cache policy. TTLs are per query kind:
// near-real-time data (fixtures, predictions) stays short, season-long
// aggregates can live for an hour or more. All values are tunable targets,
// not hard requirements.
type CacheConfig struct {
	MaxEntries int           `koanf:"max_entries"`
	DefaultTTL time.Duration `koanf:"default_ttl"`

	FixturesTTL    time.Duration `koanf:"fixtures_ttl"`
	PredictionsTTL time.Duration `koanf:"predictions_ttl"`
	FormTTL        time.Duration `koanf:"form_ttl"`
	StatsTTL       time.Duration `koanf:"stats_ttl"`
	StandingsTTL   time.Duration `koanf:"standings_ttl"`
	FreshnessTTL   time.Duration `koanf:"freshness_ttl"`

	WarmOnStartup     bool `koanf:"warm_on_startup"`
	WarmFixturesDays  int  `koanf:"warm_fixtures_days"`
	WarmFixturesLimit int  `koanf:"warm_fixtures_limit"`

	// RefreshPerSecond bounds how fast warming and manual refresh may issue
	// warehouse queries, so a refresh storm cannot thrash the database.
	RefreshPerSecond float64 `koanf:"refresh_per_second"`
	RefreshBurst     int     `koanf:"refresh_burst"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
}

// APIConfig holds request parameter defaults and bounds.
type APIConfig struct {
	DefaultFixturesLimit int `koanf:"default_fixtures_limit"`
	MaxLimit             int `koanf:"max_limit"`
	DefaultDaysAhead     int `koanf:"default_days_ahead"`
	MaxDaysAhead         int `koanf:"max_days_ahead"`
	DefaultFormMatches   int `koanf:"default_form_matches"`
	DefaultH2HMatches    int `koanf:"default_h2h_matches"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for missing required settings and
// malformed values. It is called by Load(); a failure here is fatal and
// surfaced to the operator before any query runs.
func (c *Config) Validate() error {
	if c.Warehouse.User == "" {
		return fmt.Errorf("%w: warehouse.user (POSTGRES_USER)", ErrMissingSetting)
	}
	if c.Warehouse.Password == "" {
		return fmt.Errorf("%w: warehouse.password (POSTGRES_PASSWORD)", ErrMissingSetting)
	}
	if c.Warehouse.Database == "" {
		return fmt.Errorf("%w: warehouse.database (POSTGRES_DB)", ErrMissingSetting)
	}
	if c.Warehouse.Port < 1 || c.Warehouse.Port > 65535 {
		return fmt.Errorf("warehouse.port must be in [1, 65535], got %d", c.Warehouse.Port)
	}
	if c.Warehouse.PoolSize < 1 {
		return fmt.Errorf("warehouse.pool_size must be at least 1, got %d", c.Warehouse.PoolSize)
	}
	if c.Warehouse.MaxOverflow < 0 {
		return fmt.Errorf("warehouse.max_overflow must not be negative, got %d", c.Warehouse.MaxOverflow)
	}
	if c.Warehouse.PoolRecycle < time.Minute {
		return fmt.Errorf("warehouse.pool_recycle must be at least 1m, got %s", c.Warehouse.PoolRecycle)
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("cache.max_entries must be at least 1, got %d", c.Cache.MaxEntries)
	}
	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("cache.default_ttl must be positive, got %s", c.Cache.DefaultTTL)
	}
	if c.Cache.RefreshPerSecond <= 0 {
		return fmt.Errorf("cache.refresh_per_second must be positive, got %g", c.Cache.RefreshPerSecond)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in [1, 65535], got %d", c.Server.Port)
	}
	if c.API.MaxLimit < 1 {
		return fmt.Errorf("api.max_limit must be at least 1, got %d", c.API.MaxLimit)
	}
	return nil
}
