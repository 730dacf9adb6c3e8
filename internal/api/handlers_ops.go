// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/pitchside/pitchside/internal/logging"
	"github.com/pitchside/pitchside/internal/models"
)

// CacheStats handles GET /api/v1/cache/stats.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	s := h.cache.Stats()
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.CacheStats{
			Hits:      s.Hits,
			Misses:    s.Misses,
			Evictions: s.Evictions,
			HitRate:   s.HitRate(),
			Entries:   s.Entries,
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

type refreshRequest struct {
	// Scope selects one query family ("upcoming_fixtures", "team_form", ...).
	// Empty clears the whole cache.
	Scope string `json:"scope" validate:"omitempty,max=64"`
}

// CacheRefresh handles POST /api/v1/cache/refresh. Entries are dropped, not
// recomputed; the next read repopulates them through the usual path.
func (h *Handler) CacheRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "malformed request body", nil)
			return
		}
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	var removed int
	if req.Scope == "" {
		removed = h.cache.Clear()
	} else {
		removed = h.cache.InvalidatePrefix(req.Scope)
	}
	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("scope", sanitizeLogValue(req.Scope)).
		Int("removed", removed).
		Msg("Cache refresh requested")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]any{"scope": req.Scope, "removed": removed},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// Health handles GET /api/v1/health with a full status summary.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	warehouseOK := h.health.HealthCheck(r.Context())
	status := "healthy"
	code := http.StatusOK
	if !warehouseOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	s := h.cache.Stats()
	respondJSON(w, code, &models.APIResponse{
		Status: "success",
		Data: map[string]any{
			"status":         status,
			"warehouse":      warehouseOK,
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
			"cache": models.CacheStats{
				Hits:      s.Hits,
				Misses:    s.Misses,
				Evictions: s.Evictions,
				HitRate:   s.HitRate(),
				Entries:   s.Entries,
			},
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthLive handles GET /api/v1/health/live. The process is up; nothing
// else is checked.
func (h *Handler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "alive"},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady handles GET /api/v1/health/ready. Ready means the warehouse
// answers a ping.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.health.HealthCheck(r.Context()) {
		respondError(w, http.StatusServiceUnavailable, "QUERY_FAILURE", "warehouse not reachable", nil)
		return
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status:   "success",
		Data:     map[string]string{"status": "ready"},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
