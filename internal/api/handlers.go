// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

// Package api exposes the dashboard queries over HTTP. Handlers never talk
// to the warehouse directly: every read goes through the cache executor so
// identical concurrent requests collapse into one query.
package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pitchside/pitchside/internal/cache"
	"github.com/pitchside/pitchside/internal/config"
	"github.com/pitchside/pitchside/internal/mart"
	"github.com/pitchside/pitchside/internal/models"
)

// Warehouse is the query surface the handlers need. *mart.Queries satisfies
// it; tests substitute a fake.
type Warehouse interface {
	UpcomingFixtures(ctx context.Context, f mart.FixturesFilter) ([]models.Fixture, error)
	UpcomingFixturesCount(ctx context.Context, daysAhead int) (int64, error)
	TeamForm(ctx context.Context, teamID int64, count int) (*models.TeamForm, error)
	TeamStats(ctx context.Context, teamID int64, category string) (*models.TeamStats, error)
	TeamNames(ctx context.Context) ([]models.TeamRef, error)
	HeadToHead(ctx context.Context, teamAID, teamBID int64, limit int) (*models.HeadToHead, error)
	MatchPredictions(ctx context.Context, matchIDs []int64) ([]models.Prediction, error)
	LeagueStandings(ctx context.Context, leagueID, seasonID int64) ([]models.StandingsRow, error)
	Seasons(ctx context.Context) ([]models.Season, error)
	DataFreshness(ctx context.Context) ([]models.TableFreshness, error)
}

// HealthChecker reports whether the warehouse connection is usable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	queries   Warehouse
	cache     *cache.Store
	health    HealthChecker
	cfg       *config.Config
	startTime time.Time
}

// NewHandler creates the handler set for the router.
func NewHandler(queries Warehouse, store *cache.Store, health HealthChecker, cfg *config.Config) *Handler {
	return &Handler{
		queries:   queries,
		cache:     store,
		health:    health,
		cfg:       cfg,
		startTime: time.Now(),
	}
}

// Fixtures handles GET /api/v1/fixtures/upcoming.
func (h *Handler) Fixtures(w http.ResponseWriter, r *http.Request) {
	req := fixturesRequest{
		LeagueID:  getInt64Param(r, "league_id"),
		DaysAhead: getIntParam(r, "days_ahead", h.cfg.API.DefaultDaysAhead),
		Limit:     getIntParam(r, "limit", h.cfg.API.DefaultFixturesLimit),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	filter := mart.FixturesFilter{
		LeagueID:  req.LeagueID,
		DaysAhead: clamp(req.DaysAhead, h.cfg.API.MaxDaysAhead),
		Limit:     clamp(req.Limit, h.cfg.API.MaxLimit),
	}
	h.execute(w, r, cache.Descriptor{Name: "upcoming_fixtures", Params: filter},
		h.cfg.Cache.FixturesTTL, func(ctx context.Context) (any, error) {
			return h.queries.UpcomingFixtures(ctx, filter)
		})
}

// FixturesCount handles GET /api/v1/fixtures/upcoming/count.
func (h *Handler) FixturesCount(w http.ResponseWriter, r *http.Request) {
	days := clamp(getIntParam(r, "days_ahead", h.cfg.API.DefaultDaysAhead), h.cfg.API.MaxDaysAhead)

	h.execute(w, r, cache.Descriptor{Name: "upcoming_fixtures_count", Params: days},
		h.cfg.Cache.FixturesTTL, func(ctx context.Context) (any, error) {
			count, err := h.queries.UpcomingFixturesCount(ctx, days)
			if err != nil {
				return nil, err
			}
			return map[string]int64{"count": count}, nil
		})
}

// Teams handles GET /api/v1/teams.
func (h *Handler) Teams(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, cache.Descriptor{Name: "team_names"},
		h.cfg.Cache.StatsTTL, func(ctx context.Context) (any, error) {
			return h.queries.TeamNames(ctx)
		})
}

// TeamForm handles GET /api/v1/teams/{teamID}/form.
func (h *Handler) TeamForm(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(w, r, "teamID")
	if !ok {
		return
	}
	count := clamp(getIntParam(r, "last_n", h.cfg.API.DefaultFormMatches), h.cfg.API.MaxLimit)

	h.execute(w, r, cache.Descriptor{Name: "team_form", Params: formParams{teamID, count}},
		h.cfg.Cache.FormTTL, func(ctx context.Context) (any, error) {
			return h.queries.TeamForm(ctx, teamID, count)
		})
}

// TeamStats handles GET /api/v1/teams/{teamID}/stats/{category}.
func (h *Handler) TeamStats(w http.ResponseWriter, r *http.Request) {
	teamID, ok := pathID(w, r, "teamID")
	if !ok {
		return
	}
	category := strings.ToLower(chi.URLParam(r, "category"))

	h.execute(w, r, cache.Descriptor{Name: "team_stats", Params: statsParams{teamID, category}},
		h.cfg.Cache.StatsTTL, func(ctx context.Context) (any, error) {
			return h.queries.TeamStats(ctx, teamID, category)
		})
}

// HeadToHead handles GET /api/v1/teams/h2h.
func (h *Handler) HeadToHead(w http.ResponseWriter, r *http.Request) {
	teamA := getInt64Param(r, "team_a")
	teamB := getInt64Param(r, "team_b")
	limit := clamp(getIntParam(r, "limit", h.cfg.API.DefaultH2HMatches), h.cfg.API.MaxLimit)

	// The pair is normalized so both argument orders share one cache entry
	// and return one canonical response; the payload carries explicit
	// team_a_id/team_b_id fields, so clients never guess the orientation.
	lo, hi := teamA, teamB
	if lo > hi {
		lo, hi = hi, lo
	}
	h.execute(w, r, cache.Descriptor{Name: "head_to_head", Params: h2hParams{lo, hi, limit}},
		h.cfg.Cache.FormTTL, func(ctx context.Context) (any, error) {
			return h.queries.HeadToHead(ctx, lo, hi, limit)
		})
}

// Predictions handles GET /api/v1/predictions.
func (h *Handler) Predictions(w http.ResponseWriter, r *http.Request) {
	ids, err := parseIDList(r.URL.Query().Get("match_ids"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", err.Error(), nil)
		return
	}
	if len(ids) == 0 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "match_ids is required", nil)
		return
	}
	if len(ids) > h.cfg.API.MaxLimit {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "too many match ids", nil)
		return
	}

	h.execute(w, r, cache.Descriptor{Name: "match_predictions", Params: ids},
		h.cfg.Cache.PredictionsTTL, func(ctx context.Context) (any, error) {
			return h.queries.MatchPredictions(ctx, ids)
		})
}

// Standings handles GET /api/v1/standings.
func (h *Handler) Standings(w http.ResponseWriter, r *http.Request) {
	leagueID := getInt64Param(r, "league_id")
	seasonID := getInt64Param(r, "season_id")

	h.execute(w, r, cache.Descriptor{Name: "league_standings", Params: standingsParams{leagueID, seasonID}},
		h.cfg.Cache.StandingsTTL, func(ctx context.Context) (any, error) {
			return h.queries.LeagueStandings(ctx, leagueID, seasonID)
		})
}

// Seasons handles GET /api/v1/seasons.
func (h *Handler) Seasons(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, cache.Descriptor{Name: "seasons"},
		h.cfg.Cache.StandingsTTL, func(ctx context.Context) (any, error) {
			return h.queries.Seasons(ctx)
		})
}

// Freshness handles GET /api/v1/freshness.
func (h *Handler) Freshness(w http.ResponseWriter, r *http.Request) {
	h.execute(w, r, cache.Descriptor{Name: "data_freshness"},
		h.cfg.Cache.FreshnessTTL, func(ctx context.Context) (any, error) {
			return h.queries.DataFreshness(ctx)
		})
}

// pathID parses a positive int64 path parameter, responding 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	ids, err := parseIDList(raw)
	if err != nil || len(ids) != 1 || ids[0] <= 0 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER",
			"path parameter "+name+" must be a positive integer", nil)
		return 0, false
	}
	return ids[0], true
}

func respondValidationError(w http.ResponseWriter, apiErr *models.APIError) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   "error",
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}

// Request parameter structs. The cache descriptor hashes these, so field
// order is part of the key and must stay stable.

type fixturesRequest struct {
	LeagueID  int64 `validate:"min=0"`
	DaysAhead int   `validate:"min=1,max=365"`
	Limit     int   `validate:"min=1,max=1000"`
}

type formParams struct {
	TeamID int64
	Count  int
}

type statsParams struct {
	TeamID   int64
	Category string
}

type h2hParams struct {
	TeamA int64
	TeamB int64
	Limit int
}

type standingsParams struct {
	LeagueID int64
	SeasonID int64
}
