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

// MatchPredictions fetches model output for the given matches. Matches
// without a prediction row are simply absent from the result; the mart
// stores probabilities as 0-100 integers and they are rescaled to [0,1]
// here.
func (q *Queries) MatchPredictions(ctx context.Context, matchIDs []int64) ([]models.Prediction, error) {
	if len(matchIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one match id required", ErrInvalidParameter)
	}
	for _, id := range matchIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: match ids must be positive, got %d", ErrInvalidParameter, id)
		}
	}

	sql := fmt.Sprintf(`
		SELECT match_id, match_date, home_team_name, away_team_name,
		       home_win_probability, draw_probability, away_win_probability,
		       predicted_home_goals, predicted_away_goals, match_outlook,
		       home_win_fair_odds, draw_fair_odds, away_win_fair_odds
		FROM %s.mart_match_predictions
		WHERE match_id = ANY($1)
		ORDER BY match_date ASC`, q.db.Schema())

	rows, cancel, err := q.query(ctx, "match_predictions", sql, matchIDs)
	if err != nil {
		return nil, err
	}
	defer cancel()
	defer rows.Close()

	preds := make([]models.Prediction, 0, len(matchIDs))
	for rows.Next() {
		var (
			p                   models.Prediction
			homeP, drawP, awayP *int64
			outlook             *string
		)
		if err := rows.Scan(&p.MatchID, &p.MatchDate, &p.HomeTeam, &p.AwayTeam,
			&homeP, &drawP, &awayP,
			&p.PredictedHomeGoals, &p.PredictedAwayGoals, &outlook,
			&p.HomeWinFairOdds, &p.DrawFairOdds, &p.AwayWinFairOdds); err != nil {
			return nil, q.fail("match_predictions", err, matchIDs)
		}
		p.HomeWinProb = percentToProb(homeP)
		p.DrawProb = percentToProb(drawP)
		p.AwayWinProb = percentToProb(awayP)
		if outlook != nil {
			p.Outlook = *outlook
		}
		preds = append(preds, p)
	}
	if err := rows.Err(); err != nil {
		return nil, q.fail("match_predictions", err, matchIDs)
	}
	return preds, nil
}

func percentToProb(p *int64) *float64 {
	if p == nil {
		return nil
	}
	v := float64(*p) / 100
	return &v
}
