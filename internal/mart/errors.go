// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package mart

import (
	"errors"
	"fmt"

	"github.com/pitchside/pitchside/internal/warehouse"
)

// ErrInvalidParameter indicates a caller passed a parameter outside its
// documented domain (unknown stat category, non-positive limit). Not
// retried, surfaced immediately.
var ErrInvalidParameter = errors.New("mart: invalid parameter")

// QueryError wraps an underlying warehouse failure with the query name and
// its bound parameters. The raw SQL is deliberately absent: parameters are
// safe to log, connection strings and statement text are not.
type QueryError struct {
	Query  string
	Params []any
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("mart: query %s failed: %v (params: %v)", e.Query, e.Err, e.Params)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// errKind buckets an error for the query error metric.
func errKind(err error) string {
	switch {
	case errors.Is(err, warehouse.ErrPoolExhausted):
		return "pool_exhausted"
	case errors.Is(err, warehouse.ErrTimeout):
		return "timeout"
	case errors.Is(err, warehouse.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrInvalidParameter):
		return "invalid_parameter"
	default:
		return "query"
	}
}
