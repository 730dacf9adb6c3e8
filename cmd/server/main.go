// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

// Package main is the entry point for the Pitchside API server.
//
// Pitchside serves a football analytics dashboard from a Postgres warehouse.
// The data pipeline writes the gold mart tables; this process only reads
// them, caches the results and exposes them over HTTP.
//
// The server initializes components in the following order:
//
//  1. Configuration: settings from config file and environment (Koanf v2)
//  2. Warehouse: pgx connection pool with circuit breaker
//  3. Cache: bounded in-memory store with request coalescing
//  4. Warmer: optional startup prefetch of the hottest queries
//  5. HTTP server: REST API plus Prometheus metrics
//
// Shutdown on SIGINT or SIGTERM stops accepting connections, waits for
// in-flight requests up to server.shutdown_timeout, then closes the pool.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/pitchside/pitchside/internal/api"
	"github.com/pitchside/pitchside/internal/cache"
	"github.com/pitchside/pitchside/internal/config"
	"github.com/pitchside/pitchside/internal/logging"
	"github.com/pitchside/pitchside/internal/mart"
	"github.com/pitchside/pitchside/internal/warehouse"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("warehouse_host", cfg.Warehouse.Host).
		Str("schema", cfg.Warehouse.Schema).
		Int("pool_max_conns", cfg.Warehouse.MaxConns()).
		Msg("Starting Pitchside")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connectCtx, connectCancel := context.WithTimeout(ctx, cfg.Warehouse.ConnectTimeout)
	db, err := warehouse.New(connectCtx, cfg.Warehouse)
	connectCancel()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to connect to warehouse")
	}
	defer db.Close()
	logging.Info().Msg("Warehouse pool ready")

	store := cache.New(cfg.Cache.MaxEntries)
	queries := mart.New(db, cfg.Warehouse.StatementTimeout)

	if cfg.Cache.WarmOnStartup {
		go warmCache(ctx, cfg, store, queries)
	}

	handler := api.NewHandler(queries, store, db, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		logging.Error().Err(err).Msg("HTTP server failed")
	}

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown did not complete")
	}
	logging.Info().Msg("Server stopped")
}

// warmCache prefetches the queries the dashboard asks for first: seasons,
// the team directory, data freshness and the near-term fixtures. Failures
// are logged and skipped; the server serves cold instead of not at all.
func warmCache(ctx context.Context, cfg *config.Config, store *cache.Store, queries *mart.Queries) {
	filter := mart.FixturesFilter{
		DaysAhead: cfg.Cache.WarmFixturesDays,
		Limit:     cfg.Cache.WarmFixturesLimit,
	}
	tasks := []cache.WarmTask{
		{
			Desc: cache.Descriptor{Name: "seasons"},
			TTL:  cfg.Cache.StandingsTTL,
			Compute: func(ctx context.Context) (any, error) {
				return queries.Seasons(ctx)
			},
		},
		{
			Desc: cache.Descriptor{Name: "team_names"},
			TTL:  cfg.Cache.StatsTTL,
			Compute: func(ctx context.Context) (any, error) {
				return queries.TeamNames(ctx)
			},
		},
		{
			Desc: cache.Descriptor{Name: "data_freshness"},
			TTL:  cfg.Cache.FreshnessTTL,
			Compute: func(ctx context.Context) (any, error) {
				return queries.DataFreshness(ctx)
			},
		},
		{
			Desc: cache.Descriptor{Name: "upcoming_fixtures", Params: filter},
			TTL:  cfg.Cache.FixturesTTL,
			Compute: func(ctx context.Context) (any, error) {
				return queries.UpcomingFixtures(ctx, filter)
			},
		},
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Cache.RefreshPerSecond), cfg.Cache.RefreshBurst)
	store.Warm(ctx, limiter, tasks)
}
