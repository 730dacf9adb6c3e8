// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability and caching information.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"fixtures": [...]},
//	  "metadata": {
//	    "timestamp": "2026-08-30T12:00:00Z",
//	    "query_time_ms": 45,
//	    "cached": false
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "INVALID_PARAMETER",
//	    "message": "unknown stat category"
//	  },
//	  "metadata": {"timestamp": "2026-08-30T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string    `json:"status"`
	Data     any       `json:"data"`
	Metadata Metadata  `json:"metadata"`
	Error    *APIError `json:"error,omitempty"`
}

// Metadata contains response metadata for observability and performance tracking.
//
// Fields:
//   - Timestamp: Server time when the response was generated
//   - QueryTimeMS: Warehouse query execution time in milliseconds (0 if cached)
//   - Cached: Whether the response was served from cache (omitted if false)
//   - Stale: Whether the payload is an expired cache entry served because the
//     warehouse was unavailable; StaleAgeSeconds then reports how long ago it
//     was computed
type Metadata struct {
	Timestamp       time.Time `json:"timestamp"`
	QueryTimeMS     int64     `json:"query_time_ms,omitempty"`
	Cached          bool      `json:"cached,omitempty"`
	Stale           bool      `json:"stale,omitempty"`
	StaleAgeSeconds int64     `json:"stale_age_seconds,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - "INVALID_PARAMETER": A parameter is outside its documented domain
//   - "VALIDATION_ERROR": Request failed struct validation
//   - "QUERY_FAILURE": Underlying warehouse error
//   - "TIMEOUT": Bounded wait for a connection or in-flight computation expired
//   - "POOL_EXHAUSTED": Connection pool at capacity, retry with backoff
type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
