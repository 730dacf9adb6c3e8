// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

// Package warehouse owns the pooled connection to the Postgres warehouse for
// the process lifetime. The pool is bounded (pool_size + max_overflow),
// connections older than the recycle age are transparently replaced, and a
// circuit breaker fast-fails queries while the warehouse is down.
//
// The warehouse is strictly read-only from this service: there is no write
// path and no transaction coordination.
package warehouse

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker/v2"

	"github.com/pitchside/pitchside/internal/config"
	"github.com/pitchside/pitchside/internal/logging"
	"github.com/pitchside/pitchside/internal/metrics"
)

// DB wraps the pgx connection pool. Connections are never exposed outside
// this package; callers go through Query.
type DB struct {
	pool    *pgxpool.Pool
	breaker *gobreaker.CircuitBreaker[pgx.Rows]
	cfg     config.WarehouseConfig
}

// New builds the pool from configuration and verifies connectivity with one
// round-trip. Required credentials are validated by config.Load before this
// runs; a failure here means the warehouse itself is unreachable.
func New(ctx context.Context, cfg config.WarehouseConfig) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse warehouse DSN: %w", err)
	}

	poolCfg.MaxConns = int32(cfg.MaxConns())
	poolCfg.MinConns = int32(min(cfg.PoolSize, 2))
	poolCfg.MaxConnLifetime = cfg.PoolRecycle
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create warehouse pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	db := &DB{pool: pool, cfg: cfg}
	db.breaker = gobreaker.NewCircuitBreaker[pgx.Rows](gobreaker.Settings{
		Name:        "warehouse",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Caller cancellations are not warehouse faults and must not trip
		// the breaker.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.BreakerState.Set(breakerStateValue(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Warehouse circuit breaker state changed")
		},
	})

	logging.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_conns", cfg.MaxConns()).
		Dur("recycle", cfg.PoolRecycle).
		Msg("Warehouse pool ready")

	return db, nil
}

// buildDSN assembles the Postgres connection URL from configuration.
// Credentials are URL-escaped, so passwords may contain any character.
func buildDSN(cfg config.WarehouseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Database,
		RawQuery: "sslmode=prefer",
	}
	return u.String()
}

// Query executes a read query through the circuit breaker. The caller's
// context bounds both the pool acquire wait and statement execution; on
// expiry the error is classified as ErrPoolExhausted (pool was saturated) or
// ErrTimeout.
//
// name identifies the query for echo logging and error classification. It is
// never interpolated into SQL.
func (db *DB) Query(ctx context.Context, name, sql string, args ...any) (pgx.Rows, error) {
	if db.cfg.Echo {
		logging.Debug().Str("query", name).Any("params", args).Msg("Executing warehouse query")
	}

	rows, err := db.breaker.Execute(func() (pgx.Rows, error) {
		return db.pool.Query(ctx, sql, args...)
	})

	metrics.PoolAcquiredConns.Set(float64(db.pool.Stat().AcquiredConns()))

	if err != nil {
		return nil, db.classify(err)
	}
	return rows, nil
}

// classify maps driver and breaker errors onto the package's sentinel errors
// so callers can branch with errors.Is without importing pgx.
func (db *DB) classify(err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	case errors.Is(err, context.DeadlineExceeded):
		if db.saturated() {
			return fmt.Errorf("%w: %v", ErrPoolExhausted, err)
		}
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	default:
		return err
	}
}

// saturated reports whether every pool slot was acquired at the time of the
// check. Used to distinguish "pool exhausted" from a plain slow statement.
func (db *DB) saturated() bool {
	stat := db.pool.Stat()
	return stat.AcquiredConns() >= stat.MaxConns()
}

// HealthCheck executes a trivial round-trip, bounded by the configured
// acquire timeout. It returns false on any failure and never returns an
// error; the readiness probe polls it.
func (db *DB) HealthCheck(ctx context.Context) bool {
	timeout := db.cfg.AcquireTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return db.pool.Ping(ctx) == nil
}

// Schema returns the warehouse schema the mart tables live in.
func (db *DB) Schema() string {
	return db.cfg.Schema
}

// Close releases all pooled connections. Called once at shutdown.
func (db *DB) Close() {
	db.pool.Close()
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	default:
		return 2
	}
}
