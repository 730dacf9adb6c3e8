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

// martTables is the fixed set of tables the freshness probe inspects, in
// display order.
var martTables = []string{
	"mart_upcoming_fixtures",
	"mart_match_predictions",
	"mart_team_form",
	"mart_team_overview",
	"mart_team_attack",
	"mart_team_defense",
	"mart_team_possession",
	"mart_team_discipline",
	"mart_head_to_head",
	"mart_team_season_summary",
}

// DataFreshness reports, for every mart table, the newest updated_at value
// and the row count. An empty table yields a nil LastUpdated rather than an
// error; the pipeline may not have populated it yet.
func (q *Queries) DataFreshness(ctx context.Context) ([]models.TableFreshness, error) {
	out := make([]models.TableFreshness, 0, len(martTables))
	for _, table := range martTables {
		sql := fmt.Sprintf(`SELECT MAX(updated_at), COUNT(*) FROM %s.%s`, q.db.Schema(), table)
		name := "freshness_" + table

		rows, cancel, err := q.query(ctx, name, sql)
		if err != nil {
			return nil, err
		}

		f := models.TableFreshness{Table: table}
		if rows.Next() {
			if err := rows.Scan(&f.LastUpdated, &f.RowCount); err != nil {
				rows.Close()
				cancel()
				return nil, q.fail(name, err)
			}
		}
		err = rows.Err()
		rows.Close()
		cancel()
		if err != nil {
			return nil, q.fail(name, err)
		}
		out = append(out, f)
	}
	return out, nil
}
