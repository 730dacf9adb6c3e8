// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pitchside/pitchside/internal/cache"
	"github.com/pitchside/pitchside/internal/logging"
	"github.com/pitchside/pitchside/internal/mart"
	"github.com/pitchside/pitchside/internal/metrics"
	"github.com/pitchside/pitchside/internal/models"
	"github.com/pitchside/pitchside/internal/warehouse"
)

// execute is the cache-first path every read handler goes through:
//
//  1. Look up the descriptor in the cache; a fresh entry responds immediately.
//  2. On a miss, run compute through the cache so concurrent requests for the
//     same descriptor share a single warehouse query.
//  3. On failure, fall back to an expired entry if one survives, marking the
//     response stale; otherwise map the error to a status code.
func (h *Handler) execute(w http.ResponseWriter, r *http.Request, desc cache.Descriptor,
	ttl time.Duration, compute func(ctx context.Context) (any, error)) {
	if ttl <= 0 {
		ttl = h.cfg.Cache.DefaultTTL
	}

	start := time.Now()
	value, cached, err := h.cache.GetOrCompute(r.Context(), desc, ttl, compute)
	if err != nil {
		h.respondQueryError(w, r, desc, err)
		return
	}

	queryTime := int64(0)
	if !cached {
		queryTime = time.Since(start).Milliseconds()
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   value,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: queryTime,
			Cached:      cached,
		},
	})
}

// respondQueryError maps a failed computation to an HTTP response,
// preferring stale cached data over an error for warehouse-side failures.
func (h *Handler) respondQueryError(w http.ResponseWriter, r *http.Request, desc cache.Descriptor, err error) {
	if errors.Is(err, mart.ErrInvalidParameter) {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), nil)
		return
	}

	if value, age, ok := h.cache.GetStale(desc); ok {
		metrics.CacheStaleServed.Inc()
		logger := logging.Ctx(r.Context())
		logger.Warn().
			Str("query", desc.Name).
			Dur("stale_age", age).
			Err(err).
			Msg("Serving stale cache entry after query failure")
		respondJSON(w, http.StatusOK, &models.APIResponse{
			Status: "success",
			Data:   value,
			Metadata: models.Metadata{
				Timestamp:       time.Now(),
				Cached:          true,
				Stale:           true,
				StaleAgeSeconds: int64(age.Seconds()),
			},
		})
		return
	}

	switch {
	case errors.Is(err, warehouse.ErrPoolExhausted):
		respondError(w, http.StatusServiceUnavailable, "POOL_EXHAUSTED",
			"warehouse connection pool exhausted, retry shortly", err)
	case errors.Is(err, warehouse.ErrTimeout), errors.Is(err, cache.ErrTimeout):
		respondError(w, http.StatusServiceUnavailable, "TIMEOUT",
			"query did not complete in time", err)
	case errors.Is(err, warehouse.ErrUnavailable):
		respondError(w, http.StatusServiceUnavailable, "QUERY_FAILURE",
			"warehouse temporarily unavailable", err)
	default:
		respondError(w, http.StatusInternalServerError, "QUERY_FAILURE",
			"query failed", err)
	}
}
