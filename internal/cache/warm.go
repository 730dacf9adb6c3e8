// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package cache

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/pitchside/pitchside/internal/logging"
	"github.com/pitchside/pitchside/internal/metrics"
)

// WarmTask describes one entry to populate eagerly: the descriptor, its TTL,
// and the computation that produces it.
type WarmTask struct {
	Desc    Descriptor
	TTL     time.Duration
	Compute func(context.Context) (any, error)
}

// Warm eagerly populates entries for a known hot set, typically at startup so
// the first page load never hits a cold cache. Warming is best-effort: a
// failing task is logged and skipped, the rest continue. The limiter bounds
// how fast tasks may reach the warehouse so warming never competes with
// interactive traffic for the whole pool.
//
// Returns the number of entries successfully warmed.
func (s *Store) Warm(ctx context.Context, limiter *rate.Limiter, tasks []WarmTask) int {
	start := time.Now()
	warmed := 0

	for _, task := range tasks {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				logging.Warn().Err(err).Msg("Cache warm-up interrupted")
				break
			}
		}

		if _, _, err := s.GetOrCompute(ctx, task.Desc, task.TTL, task.Compute); err != nil {
			logging.Warn().
				Str("query", task.Desc.Name).
				Err(err).
				Msg("Cache warm-up task failed")
			continue
		}
		warmed++
	}

	metrics.WarmupDuration.Observe(time.Since(start).Seconds())
	logging.Info().
		Int("warmed", warmed).
		Int("total", len(tasks)).
		Dur("elapsed", time.Since(start)).
		Msg("Cache warm-up complete")

	return warmed
}
