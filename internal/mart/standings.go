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

// LeagueStandings returns the table for one league and season, ordered by
// points, then goal difference, then goals scored. Position is assigned
// from that order, starting at 1.
func (q *Queries) LeagueStandings(ctx context.Context, leagueID, seasonID int64) ([]models.StandingsRow, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league_id must be positive, got %d", ErrInvalidParameter, leagueID)
	}
	if seasonID <= 0 {
		return nil, fmt.Errorf("%w: season_id must be positive, got %d", ErrInvalidParameter, seasonID)
	}

	sql := fmt.Sprintf(`
		SELECT team_id, team_name, matches_played, wins, draws, losses,
		       total_points, points_per_game, goals_for, goals_against,
		       goal_difference, clean_sheets
		FROM %s.mart_team_overview
		WHERE league_id = $1 AND season_id = $2
		ORDER BY total_points DESC, goal_difference DESC, goals_for DESC`, q.db.Schema())

	rows, cancel, err := q.query(ctx, "league_standings", sql, leagueID, seasonID)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	var table []models.StandingsRow
	for rows.Next() {
		var r models.StandingsRow
		if err := rows.Scan(&r.TeamID, &r.TeamName, &r.Played, &r.Wins, &r.Draws,
			&r.Losses, &r.Points, &r.PointsPerGame, &r.GoalsFor, &r.GoalsAgainst,
			&r.GoalDiff, &r.CleanSheets); err != nil {
			return nil, q.fail("league_standings", err, leagueID, seasonID)
		}
		r.Position = len(table) + 1
		table = append(table, r)
	}
	if err := rows.Err(); err != nil {
		return nil, q.fail("league_standings", err, leagueID, seasonID)
	}
	return table, nil
}

// Seasons lists the seasons present in the warehouse, newest first.
func (q *Queries) Seasons(ctx context.Context) ([]models.Season, error) {
	sql := fmt.Sprintf(`
		SELECT DISTINCT season_id, season_name, season_year
		FROM %s.mart_team_season_summary
		ORDER BY season_year DESC, season_id DESC`, q.db.Schema())

	rows, cancel, err := q.query(ctx, "seasons", sql)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	var seasons []models.Season
	for rows.Next() {
		var s models.Season
		if err := rows.Scan(&s.SeasonID, &s.Name, &s.Year); err != nil {
			return nil, q.fail("seasons", err)
		}
		seasons = append(seasons, s)
	}
	if err := rows.Err(); err != nil {
		return nil, q.fail("seasons", err)
	}
	return seasons, nil
}
