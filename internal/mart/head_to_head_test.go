// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package mart

import (
	"context"
	"errors"
	"testing"
	"time"
)

func h2hRows() [][]any {
	return [][]any{
		// Newest first: Arsenal (10) home win, then away draw, then away loss.
		{int64(3), testNow.Add(-30 * 24 * time.Hour), int64(10), "Arsenal", int64(20), "Chelsea", 2, 0, "Premier League", "2026/27"},
		{int64(2), testNow.Add(-200 * 24 * time.Hour), int64(20), "Chelsea", int64(10), "Arsenal", 1, 1, "Premier League", "2025/26"},
		{int64(1), testNow.Add(-400 * 24 * time.Hour), int64(20), "Chelsea", int64(10), "Arsenal", 3, 1, "FA Cup", "2025/26"},
	}
}

func TestHeadToHead(t *testing.T) {
	db := newFakeDB()
	db.results["head_to_head"] = h2hRows()
	q := New(db, time.Second)

	h2h, err := q.HeadToHead(context.Background(), 10, 20, 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if h2h.TeamAID != 10 || h2h.TeamBID != 20 {
		t.Errorf("Perspective ids wrong: %d vs %d", h2h.TeamAID, h2h.TeamBID)
	}
	if h2h.TeamAName != "Arsenal" || h2h.TeamBName != "Chelsea" {
		t.Errorf("Perspective names wrong: %s vs %s", h2h.TeamAName, h2h.TeamBName)
	}
	if h2h.TotalMatches != 3 {
		t.Errorf("TotalMatches = %d, want 3", h2h.TotalMatches)
	}
	if h2h.TeamAWins != 1 || h2h.Draws != 1 || h2h.TeamBWins != 1 {
		t.Errorf("Record = %d/%d/%d, want 1/1/1", h2h.TeamAWins, h2h.Draws, h2h.TeamBWins)
	}
	if h2h.TeamAGoals != 4 || h2h.TeamBGoals != 4 {
		t.Errorf("Goals = %d:%d, want 4:4", h2h.TeamAGoals, h2h.TeamBGoals)
	}
	if h2h.LastResults != "WDL" {
		t.Errorf("LastResults = %s, want WDL", h2h.LastResults)
	}
	if h2h.LastMeeting == nil || !h2h.LastMeeting.Equal(testNow.Add(-30*24*time.Hour)) {
		t.Errorf("LastMeeting = %v", h2h.LastMeeting)
	}
	if len(h2h.Matches) != 3 {
		t.Fatalf("Expected 3 matches, got %d", len(h2h.Matches))
	}
	// Matches stay as played, not rewritten to the requested perspective.
	if h2h.Matches[1].HomeTeam != "Chelsea" {
		t.Errorf("Match 1 home = %s, want Chelsea", h2h.Matches[1].HomeTeam)
	}
}

func TestHeadToHeadSymmetric(t *testing.T) {
	dbA := newFakeDB()
	dbA.results["head_to_head"] = h2hRows()
	dbB := newFakeDB()
	dbB.results["head_to_head"] = h2hRows()

	qA := New(dbA, time.Second)
	qB := New(dbB, time.Second)

	ab, err := qA.HeadToHead(context.Background(), 10, 20, 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	ba, err := qB.HeadToHead(context.Background(), 20, 10, 5)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Both argument orders bind the identical normalized parameters.
	callA, callB := dbA.lastCall(), dbB.lastCall()
	for i := range callA.args {
		if callA.args[i] != callB.args[i] {
			t.Errorf("Parameter %d differs between orders: %v vs %v", i, callA.args[i], callB.args[i])
		}
	}

	if ab.TotalMatches != ba.TotalMatches {
		t.Errorf("Match sets differ: %d vs %d", ab.TotalMatches, ba.TotalMatches)
	}
	if len(ab.Matches) != len(ba.Matches) {
		t.Fatalf("Match lists differ: %d vs %d", len(ab.Matches), len(ba.Matches))
	}
	for i := range ab.Matches {
		if ab.Matches[i].MatchID != ba.Matches[i].MatchID {
			t.Errorf("Match %d differs: %d vs %d", i, ab.Matches[i].MatchID, ba.Matches[i].MatchID)
		}
	}

	// Perspective flips with the argument order.
	if ba.TeamAName != "Chelsea" || ba.TeamBName != "Arsenal" {
		t.Errorf("Reversed perspective names wrong: %s vs %s", ba.TeamAName, ba.TeamBName)
	}
	if ab.TeamAWins != ba.TeamBWins || ab.TeamBWins != ba.TeamAWins {
		t.Errorf("Win counts do not mirror: %d/%d vs %d/%d", ab.TeamAWins, ab.TeamBWins, ba.TeamAWins, ba.TeamBWins)
	}
	if ab.TeamAGoals != ba.TeamBGoals || ab.TeamBGoals != ba.TeamAGoals {
		t.Errorf("Goal counts do not mirror")
	}
}

func TestHeadToHeadInvalidParameters(t *testing.T) {
	q := New(newFakeDB(), time.Second)

	cases := []struct {
		a, b  int64
		limit int
	}{
		{0, 20, 5},
		{10, 0, 5},
		{10, 10, 5},
		{10, 20, 0},
	}
	for _, c := range cases {
		if _, err := q.HeadToHead(context.Background(), c.a, c.b, c.limit); !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("(%d,%d,%d): expected ErrInvalidParameter, got %v", c.a, c.b, c.limit, err)
		}
	}
}

func TestHeadToHeadNoHistory(t *testing.T) {
	db := newFakeDB()
	q := New(db, time.Second)

	h2h, err := q.HeadToHead(context.Background(), 10, 20, 5)
	if err != nil {
		t.Fatalf("No shared history is not an error: %v", err)
	}
	if h2h.TotalMatches != 0 || len(h2h.Matches) != 0 {
		t.Errorf("Expected empty record, got %+v", h2h)
	}
	if h2h.LastMeeting != nil {
		t.Error("Expected nil LastMeeting with no history")
	}
}
