// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package warehouse

import "errors"

// Sentinel errors for transient warehouse conditions. Callers may retry with
// backoff; the API layer maps them to a "try again" response rather than a
// hard failure.
var (
	// ErrPoolExhausted indicates the bounded connection pool was at capacity
	// for the whole acquire wait.
	ErrPoolExhausted = errors.New("warehouse: connection pool exhausted")

	// ErrTimeout indicates a bounded wait (connection acquire or statement
	// execution) expired.
	ErrTimeout = errors.New("warehouse: operation timed out")

	// ErrUnavailable indicates the circuit breaker is open after repeated
	// warehouse failures; queries fast-fail until the warehouse recovers.
	ErrUnavailable = errors.New("warehouse: unavailable")
)
