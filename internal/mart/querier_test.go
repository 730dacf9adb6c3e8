// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package mart

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB satisfies Querier with canned result sets keyed by query name. It
// records the statements and arguments it sees for assertions.
type fakeDB struct {
	results map[string][][]any
	columns map[string][]string
	errs    map[string]error

	calls []fakeCall
}

type fakeCall struct {
	name string
	sql  string
	args []any
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		results: make(map[string][][]any),
		columns: make(map[string][]string),
		errs:    make(map[string]error),
	}
}

func (f *fakeDB) Schema() string { return "gold" }

func (f *fakeDB) Query(_ context.Context, name, sql string, args ...any) (pgx.Rows, error) {
	f.calls = append(f.calls, fakeCall{name: name, sql: sql, args: args})
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return &fakeRows{
		rows:    f.results[name],
		columns: f.columns[name],
		idx:     -1,
	}, nil
}

func (f *fakeDB) lastCall() fakeCall {
	if len(f.calls) == 0 {
		return fakeCall{}
	}
	return f.calls[len(f.calls)-1]
}

// fakeRows implements the subset of pgx.Rows behavior the query layer relies
// on: Next, Scan, Values, FieldDescriptions, Err, Close.
type fakeRows struct {
	rows    [][]any
	columns []string
	idx     int
	err     error
}

func (r *fakeRows) Close()                        {}
func (r *fakeRows) Err() error                    { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }
func (r *fakeRows) Conn() *pgx.Conn               { return nil }
func (r *fakeRows) RawValues() [][]byte           { return nil }

func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription {
	fds := make([]pgconn.FieldDescription, len(r.columns))
	for i, c := range r.columns {
		fds[i] = pgconn.FieldDescription{Name: c}
	}
	return fds
}

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Values() ([]any, error) {
	return r.rows[r.idx], nil
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(row))
	}
	for i, d := range dest {
		if err := assign(d, row[i]); err != nil {
			return fmt.Errorf("scan column %d: %w", i, err)
		}
	}
	return nil
}

func assign(dest, src any) error {
	switch d := dest.(type) {
	case *int64:
		v, ok := src.(int64)
		if !ok {
			return fmt.Errorf("cannot assign %T to *int64", src)
		}
		*d = v
	case *int:
		switch v := src.(type) {
		case int:
			*d = v
		case int64:
			*d = int(v)
		default:
			return fmt.Errorf("cannot assign %T to *int", src)
		}
	case *float64:
		v, ok := src.(float64)
		if !ok {
			return fmt.Errorf("cannot assign %T to *float64", src)
		}
		*d = v
	case *string:
		v, ok := src.(string)
		if !ok {
			return fmt.Errorf("cannot assign %T to *string", src)
		}
		*d = v
	case *time.Time:
		v, ok := src.(time.Time)
		if !ok {
			return fmt.Errorf("cannot assign %T to *time.Time", src)
		}
		*d = v
	case **int64:
		if src == nil {
			*d = nil
			return nil
		}
		v, ok := src.(int64)
		if !ok {
			return fmt.Errorf("cannot assign %T to **int64", src)
		}
		*d = &v
	case **float64:
		if src == nil {
			*d = nil
			return nil
		}
		v, ok := src.(float64)
		if !ok {
			return fmt.Errorf("cannot assign %T to **float64", src)
		}
		*d = &v
	case **string:
		if src == nil {
			*d = nil
			return nil
		}
		v, ok := src.(string)
		if !ok {
			return fmt.Errorf("cannot assign %T to **string", src)
		}
		*d = &v
	case **time.Time:
		if src == nil {
			*d = nil
			return nil
		}
		v, ok := src.(time.Time)
		if !ok {
			return fmt.Errorf("cannot assign %T to **time.Time", src)
		}
		*d = &v
	default:
		return fmt.Errorf("unsupported scan destination %T", dest)
	}
	return nil
}
