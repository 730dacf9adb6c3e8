// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package mart

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pitchside/pitchside/internal/models"
)

// statTables maps the public stat categories to their mart tables. The map is
// the only place a category name turns into SQL, so an unknown category can
// never reach the warehouse.
var statTables = map[string]string{
	"attack":     "mart_team_attack",
	"defense":    "mart_team_defense",
	"possession": "mart_team_possession",
	"discipline": "mart_team_discipline",
}

// StatCategories lists the valid categories for TeamStats, sorted.
func StatCategories() []string {
	cats := make([]string, 0, len(statTables))
	for c := range statTables {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// TeamForm returns the team's most recent completed matches, newest first.
// Fewer than count matches is not an error; the caller sees what exists.
func (q *Queries) TeamForm(ctx context.Context, teamID int64, count int) (*models.TeamForm, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: team_id must be positive, got %d", ErrInvalidParameter, teamID)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidParameter, count)
	}

	sql := fmt.Sprintf(`
		SELECT match_id, match_date, team_name, opponent_id, opponent_name,
		       venue, goals_for, goals_against, result
		FROM %s.mart_team_form
		WHERE team_id = $1
		ORDER BY match_date DESC
		LIMIT $2`, q.db.Schema())

	rows, cancel, err := q.query(ctx, "team_form", sql, teamID, count)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	form := &models.TeamForm{
		TeamID:    teamID,
		Requested: count,
		Matches:   make([]models.FormMatch, 0, count),
	}
	for rows.Next() {
		var m models.FormMatch
		if err := rows.Scan(&m.MatchID, &m.MatchDate, &form.TeamName, &m.OpponentID,
			&m.Opponent, &m.Venue, &m.GoalsFor, &m.GoalsAgainst, &m.Result); err != nil {
			return nil, q.fail("team_form", err, teamID, count)
		}
		form.Matches = append(form.Matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, q.fail("team_form", err, teamID, count)
	}
	return form, nil
}

// TeamStats returns one category of season statistics for a team. The four
// category tables carry different column sets, so the row is scanned into a
// metrics map keyed by column name.
func (q *Queries) TeamStats(ctx context.Context, teamID int64, category string) (*models.TeamStats, error) {
	if teamID <= 0 {
		return nil, fmt.Errorf("%w: team_id must be positive, got %d", ErrInvalidParameter, teamID)
	}
	table, ok := statTables[strings.ToLower(category)]
	if !ok {
		return nil, fmt.Errorf("%w: unknown stat category %q (valid: %s)",
			ErrInvalidParameter, category, strings.Join(StatCategories(), ", "))
	}

	sql := fmt.Sprintf(`
		SELECT *
		FROM %s.%s
		WHERE team_id = $1
		ORDER BY season_id DESC
		LIMIT 1`, q.db.Schema(), table)

	name := "team_stats_" + strings.ToLower(category)
	rows, cancel, err := q.query(ctx, name, sql, teamID)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, q.fail(name, err, teamID)
		}
		return nil, nil
	}

	values, err := rows.Values()
	if err != nil {
		return nil, q.fail(name, err, teamID)
	}
	stats := &models.TeamStats{
		Category: strings.ToLower(category),
		Metrics:  make(map[string]any, len(values)),
	}
	for i, fd := range rows.FieldDescriptions() {
		switch fd.Name {
		case "team_id":
			stats.TeamID = asInt64(values[i])
		case "team_name":
			if s, ok := values[i].(string); ok {
				stats.TeamName = s
			}
		case "season_id":
			stats.SeasonID = asInt64(values[i])
		default:
			stats.Metrics[fd.Name] = values[i]
		}
	}
	if err := rows.Err(); err != nil {
		return nil, q.fail(name, err, teamID)
	}
	return stats, nil
}

// TeamNames lists every team present in the overview mart, alphabetically.
// Backs the team picker and warming.
func (q *Queries) TeamNames(ctx context.Context) ([]models.TeamRef, error) {
	sql := fmt.Sprintf(`
		SELECT DISTINCT team_id, team_name
		FROM %s.mart_team_overview
		ORDER BY team_name ASC`, q.db.Schema())

	rows, cancel, err := q.query(ctx, "team_names", sql)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	var teams []models.TeamRef
	for rows.Next() {
		var t models.TeamRef
		if err := rows.Scan(&t.TeamID, &t.TeamName); err != nil {
			return nil, q.fail("team_names", err)
		}
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, q.fail("team_names", err)
	}
	return teams, nil
}

// asInt64 normalizes the integer widths Postgres drivers hand back.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case int16:
		return int64(n)
	case int:
		return int64(n)
	}
	return 0
}
