// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package mart

import (
	"context"
	"fmt"

	"github.com/pitchside/pitchside/internal/models"
)

// FixturesFilter narrows the upcoming fixtures query. LeagueID zero means
// all leagues.
type FixturesFilter struct {
	LeagueID  int64
	DaysAhead int
	Limit     int
}

// UpcomingFixtures returns matches that have not started, scheduled within
// the next f.DaysAhead days, soonest first.
func (q *Queries) UpcomingFixtures(ctx context.Context, f FixturesFilter) ([]models.Fixture, error) {
	if f.DaysAhead <= 0 {
		return nil, fmt.Errorf("%w: days_ahead must be positive, got %d", ErrInvalidParameter, f.DaysAhead)
	}
	if f.Limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidParameter, f.Limit)
	}

	now := q.now().UTC()
	until := now.AddDate(0, 0, f.DaysAhead)

	sql := fmt.Sprintf(`
		SELECT match_id, match_date, home_team_id, home_team_name,
		       away_team_id, away_team_name, league_id, league_name,
		       season_id, season_name, round_number, status_type
		FROM %s.mart_upcoming_fixtures
		WHERE match_date >= $1 AND match_date <= $2
		  AND status_type = 'notstarted'`, q.db.Schema())
	args := []any{now, until}
	if f.LeagueID > 0 {
		sql += ` AND league_id = $3`
		args = append(args, f.LeagueID)
	}
	sql += fmt.Sprintf(` ORDER BY match_date ASC LIMIT $%d`, len(args)+1)
	args = append(args, f.Limit)

	rows, cancel, err := q.query(ctx, "upcoming_fixtures", sql, args...)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	fixtures := make([]models.Fixture, 0, f.Limit)
	for rows.Next() {
		var fx models.Fixture
		if err := rows.Scan(&fx.MatchID, &fx.MatchDate, &fx.HomeTeamID, &fx.HomeTeam,
			&fx.AwayTeamID, &fx.AwayTeam, &fx.LeagueID, &fx.League,
			&fx.SeasonID, &fx.Season, &fx.Round, &fx.Status); err != nil {
			return nil, q.fail("upcoming_fixtures", err, args...)
		}
		fixtures = append(fixtures, fx)
	}
	if err := rows.Err(); err != nil {
		return nil, q.fail("upcoming_fixtures", err, args...)
	}
	return fixtures, nil
}

// UpcomingFixturesCount returns how many fixtures fall in the window without
// fetching them. Used by the health summary and cache warmer.
func (q *Queries) UpcomingFixturesCount(ctx context.Context, daysAhead int) (int64, error) {
	if daysAhead <= 0 {
		return 0, fmt.Errorf("%w: days_ahead must be positive, got %d", ErrInvalidParameter, daysAhead)
	}

	now := q.now().UTC()
	until := now.AddDate(0, 0, daysAhead)

	sql := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s.mart_upcoming_fixtures
		WHERE match_date >= $1 AND match_date <= $2
		  AND status_type = 'notstarted'`, q.db.Schema())

	rows, cancel, err := q.query(ctx, "upcoming_fixtures_count", sql, now, until)
	if err != nil {
		return 0, err
	}
	defer cancel()
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, q.fail("upcoming_fixtures_count", err, now, until)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, q.fail("upcoming_fixtures_count", err, now, until)
	}
	return count, nil
}
