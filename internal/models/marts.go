// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

// Package models defines the data structures exchanged between the mart query
// layer and the HTTP API. All types mirror rows of the gold mart tables, which
// are produced by the external data pipeline and read-only from this service.
package models

import "time"

// Fixture represents one upcoming match from mart_upcoming_fixtures.
type Fixture struct {
	MatchID    int64     `json:"match_id"`
	MatchDate  time.Time `json:"match_date"`
	HomeTeamID int64     `json:"home_team_id"`
	HomeTeam   string    `json:"home_team"`
	AwayTeamID int64     `json:"away_team_id"`
	AwayTeam   string    `json:"away_team"`
	LeagueID   int64     `json:"league_id"`
	League     string    `json:"league"`
	SeasonID   int64     `json:"season_id"`
	Season     string    `json:"season"`
	Round      int       `json:"round"`
	Status     string    `json:"status"`
}

// Prediction holds model output for one match from mart_match_predictions.
// Probabilities are normalized to [0,1]; the mart stores them as 0-100
// integers, the query layer divides on scan.
type Prediction struct {
	MatchID            int64     `json:"match_id"`
	MatchDate          time.Time `json:"match_date"`
	HomeTeam           string    `json:"home_team"`
	AwayTeam           string    `json:"away_team"`
	HomeWinProb        *float64  `json:"home_win_prob"`
	DrawProb           *float64  `json:"draw_prob"`
	AwayWinProb        *float64  `json:"away_win_prob"`
	PredictedHomeGoals *float64  `json:"predicted_home_goals"`
	PredictedAwayGoals *float64  `json:"predicted_away_goals"`
	Outlook            string    `json:"match_outlook"`
	HomeWinFairOdds    *float64  `json:"home_win_fair_odds"`
	DrawFairOdds       *float64  `json:"draw_fair_odds"`
	AwayWinFairOdds    *float64  `json:"away_win_fair_odds"`
}

// FormMatch is one completed match in a team's recent form, most recent first.
type FormMatch struct {
	MatchID      int64     `json:"match_id"`
	MatchDate    time.Time `json:"match_date"`
	OpponentID   int64     `json:"opponent_id"`
	Opponent     string    `json:"opponent"`
	Venue        string    `json:"venue"` // "home" or "away"
	GoalsFor     int       `json:"goals_for"`
	GoalsAgainst int       `json:"goals_against"`
	Result       string    `json:"result"` // "W", "D" or "L"
}

// TeamForm is the form window returned by the team form query.
// Requested may exceed len(Matches) when the team has played fewer games.
type TeamForm struct {
	TeamID    int64       `json:"team_id"`
	TeamName  string      `json:"team_name"`
	Requested int         `json:"requested"`
	Matches   []FormMatch `json:"matches"`
}

// TeamStats carries one category of per-team statistics. The mart tables for
// the four categories have different column sets, so the metrics are keyed by
// column name rather than modeled as fixed fields.
type TeamStats struct {
	TeamID   int64          `json:"team_id"`
	TeamName string         `json:"team_name"`
	SeasonID int64          `json:"season_id"`
	Category string         `json:"category"`
	Metrics  map[string]any `json:"metrics"`
}

// HeadToHead summarizes the historical record between two teams. The record
// is symmetric: swapping TeamA and TeamB in the request flips only the
// perspective labels, never the underlying match set.
type HeadToHead struct {
	TeamAID      int64      `json:"team_a_id"`
	TeamBID      int64      `json:"team_b_id"`
	TeamAName    string     `json:"team_a_name"`
	TeamBName    string     `json:"team_b_name"`
	TotalMatches int        `json:"total_matches"`
	TeamAWins    int        `json:"team_a_wins"`
	Draws        int        `json:"draws"`
	TeamBWins    int        `json:"team_b_wins"`
	TeamAGoals   int        `json:"team_a_goals"`
	TeamBGoals   int        `json:"team_b_goals"`
	LastMeeting  *time.Time `json:"last_meeting,omitempty"`
	LastResults  string     `json:"last_results,omitempty"`
	Matches      []H2HMatch `json:"matches"`
}

// H2HMatch is one past meeting between two teams, as it was actually played.
type H2HMatch struct {
	MatchID   int64     `json:"match_id"`
	MatchDate time.Time `json:"match_date"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	League    string    `json:"league"`
	Season    string    `json:"season"`
}

// StandingsRow is one row of a league table, position assigned after sorting
// by points, goal difference and goals for.
type StandingsRow struct {
	Position      int     `json:"position"`
	TeamID        int64   `json:"team_id"`
	TeamName      string  `json:"team_name"`
	Played        int     `json:"played"`
	Wins          int     `json:"wins"`
	Draws         int     `json:"draws"`
	Losses        int     `json:"losses"`
	Points        int     `json:"points"`
	PointsPerGame float64 `json:"points_per_game"`
	GoalsFor      int     `json:"goals_for"`
	GoalsAgainst  int     `json:"goals_against"`
	GoalDiff      int     `json:"goal_difference"`
	CleanSheets   int     `json:"clean_sheets"`
}

// Season identifies one season available in the warehouse.
type Season struct {
	SeasonID int64  `json:"season_id"`
	Name     string `json:"name"`
	Year     string `json:"year"`
}

// TeamRef is a directory entry for team pickers.
type TeamRef struct {
	TeamID   int64  `json:"team_id"`
	TeamName string `json:"team_name"`
}

// TableFreshness reports the recency of one mart table. LastUpdated is nil
// when the table has no rows.
type TableFreshness struct {
	Table       string     `json:"table"`
	LastUpdated *time.Time `json:"last_updated"`
	RowCount    int64      `json:"row_count"`
}

// CacheStats is the observability snapshot exposed by the cache endpoint.
type CacheStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
	Entries   int     `json:"entries"`
}
