// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package mart

import (
	"context"
	"fmt"
	"strings"

	"github.com/pitchside/pitchside/internal/models"
)

// HeadToHead returns the recent meetings between two teams together with an
// aggregate record from the returned window. The match set depends only on
// the unordered pair, so (a, b) and (b, a) see identical matches; the
// perspective fields (TeamAWins, TeamAGoals) follow the argument order.
func (q *Queries) HeadToHead(ctx context.Context, teamAID, teamBID int64, limit int) (*models.HeadToHead, error) {
	if teamAID <= 0 || teamBID <= 0 {
		return nil, fmt.Errorf("%w: team ids must be positive, got %d and %d",
			ErrInvalidParameter, teamAID, teamBID)
	}
	if teamAID == teamBID {
		return nil, fmt.Errorf("%w: head-to-head requires two distinct teams, got %d twice",
			ErrInvalidParameter, teamAID)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidParameter, limit)
	}

	// Normalize the pair so the statement and its bound parameters are
	// byte-identical for both argument orders.
	lo, hi := teamAID, teamBID
	if lo > hi {
		lo, hi = hi, lo
	}

	sql := fmt.Sprintf(`
		SELECT match_id, match_date, home_team_id, home_team_name,
		       away_team_id, away_team_name, home_score, away_score,
		       league_name, season_name
		FROM %s.mart_head_to_head
		WHERE home_team_id = $1 AND away_team_id = $2
		   OR home_team_id = $2 AND away_team_id = $1
		ORDER BY match_date DESC
		LIMIT $3`, q.db.Schema())

	rows, cancel, err := q.query(ctx, "head_to_head", sql, lo, hi, limit)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	h2h := &models.HeadToHead{
		TeamAID: teamAID,
		TeamBID: teamBID,
		Matches: make([]models.H2HMatch, 0, limit),
	}
	var results []byte
	for rows.Next() {
		var (
			m              models.H2HMatch
			homeID, awayID int64
		)
		if err := rows.Scan(&m.MatchID, &m.MatchDate, &homeID, &m.HomeTeam,
			&awayID, &m.AwayTeam, &m.HomeScore, &m.AwayScore,
			&m.League, &m.Season); err != nil {
			return nil, q.fail("head_to_head", err, lo, hi, limit)
		}

		aGoals, bGoals := m.HomeScore, m.AwayScore
		aName, bName := m.HomeTeam, m.AwayTeam
		if awayID == teamAID {
			aGoals, bGoals = bGoals, aGoals
			aName, bName = bName, aName
		}
		if h2h.TeamAName == "" {
			h2h.TeamAName, h2h.TeamBName = aName, bName
		}
		h2h.TotalMatches++
		h2h.TeamAGoals += aGoals
		h2h.TeamBGoals += bGoals
		switch {
		case aGoals > bGoals:
			h2h.TeamAWins++
			results = append(results, 'W')
		case aGoals < bGoals:
			h2h.TeamBWins++
			results = append(results, 'L')
		default:
			h2h.Draws++
			results = append(results, 'D')
		}
		if h2h.LastMeeting == nil {
			d := m.MatchDate
			h2h.LastMeeting = &d
		}
		h2h.Matches = append(h2h.Matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, q.fail("head_to_head", err, lo, hi, limit)
	}

	// Rows arrive newest first; keep at most the five most recent letters,
	// from team A's perspective.
	if len(results) > 5 {
		results = results[:5]
	}
	h2h.LastResults = strings.TrimSpace(string(results))
	return h2h, nil
}
