// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

// Package mart implements the read-only query layer over the gold mart
// tables. Every query is parameterized, bounded by a statement timeout and
// scoped to the configured schema. One method per dashboard question; no
// free-form SQL enters this package from outside.
package mart

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pitchside/pitchside/internal/metrics"
)

// Querier is the slice of the warehouse connection the query layer needs.
// *warehouse.DB satisfies it; tests substitute a fake.
type Querier interface {
	Query(ctx context.Context, name, sql string, args ...any) (pgx.Rows, error)
	Schema() string
}

const defaultStatementTimeout = 30 * time.Second

// Queries executes the mart queries against a warehouse connection.
type Queries struct {
	db      Querier
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Queries instance.
type Option func(*Queries)

// WithClock overrides the time source used for date-window parameters.
func WithClock(now func() time.Time) Option {
	return func(q *Queries) {
		q.now = now
	}
}

// New returns a query layer over db. statementTimeout bounds every
// individual query; zero or negative selects a default.
func New(db Querier, statementTimeout time.Duration, opts ...Option) *Queries {
	q := &Queries{
		db:      db,
		timeout: statementTimeout,
		now:     time.Now,
	}
	if q.timeout <= 0 {
		q.timeout = defaultStatementTimeout
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// query runs one named statement with the statement timeout applied and the
// duration metric recorded. Callers must close the returned rows.
func (q *Queries) query(ctx context.Context, name, sql string, args ...any) (pgx.Rows, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, q.timeout)
	start := time.Now()
	rows, err := q.db.Query(ctx, name, sql, args...)
	metrics.ObserveQuery(name, start)
	if err != nil {
		cancel()
		metrics.QueryErrors.WithLabelValues(name, errKind(err)).Inc()
		return nil, nil, &QueryError{Query: name, Params: args, Err: err}
	}
	return rows, cancel, nil
}

// fail records the error metric and wraps err for a statement that failed
// after rows were returned (scan or iteration errors).
func (q *Queries) fail(name string, err error, args ...any) error {
	metrics.QueryErrors.WithLabelValues(name, errKind(err)).Inc()
	return &QueryError{Query: name, Params: args, Err: err}
}
