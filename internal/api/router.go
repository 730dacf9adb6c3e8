// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pitchside/pitchside/internal/config"
	"github.com/pitchside/pitchside/internal/logging"
	"github.com/pitchside/pitchside/internal/metrics"
)

// NewRouter wires the full route tree. Read endpoints share one rate limit;
// health endpoints get a permissive one so orchestrator probes are never
// throttled away.
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/", h.Health)
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow))
		r.Use(metricsMiddleware)

		r.Get("/fixtures/upcoming", h.Fixtures)
		r.Get("/fixtures/upcoming/count", h.FixturesCount)
		r.Get("/teams", h.Teams)
		r.Get("/teams/h2h", h.HeadToHead)
		r.Get("/teams/{teamID}/form", h.TeamForm)
		r.Get("/teams/{teamID}/stats/{category}", h.TeamStats)
		r.Get("/predictions", h.Predictions)
		r.Get("/standings", h.Standings)
		r.Get("/seasons", h.Seasons)
		r.Get("/freshness", h.Freshness)
		r.Get("/cache/stats", h.CacheStats)
		r.Post("/cache/refresh", h.CacheRefresh)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestIDMiddleware tags each request with an ID carried in the response
// header and the logging context.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = logging.GenerateRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// metricsMiddleware records request count and latency per route pattern.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		pattern := chi.RouteContext(r.Context()).RoutePattern()
		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.ObserveAPIRequest(pattern, r.Method, ww.Status(), time.Since(start))
	})
}
