// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package cache

import (
	"strings"
	"testing"
)

func TestDescriptorKeyStable(t *testing.T) {
	type params struct {
		TeamID int64
		Count  int
	}

	a := Descriptor{Name: "team_form", Params: params{42, 10}}
	b := Descriptor{Name: "team_form", Params: params{42, 10}}

	if a.Key() != b.Key() {
		t.Errorf("Identical descriptors produced different keys: %s vs %s", a.Key(), b.Key())
	}
}

func TestDescriptorKeyDistinguishesParams(t *testing.T) {
	type params struct {
		TeamID int64
	}

	a := Descriptor{Name: "team_form", Params: params{1}}
	b := Descriptor{Name: "team_form", Params: params{2}}

	if a.Key() == b.Key() {
		t.Error("Different parameters produced the same key")
	}
}

func TestDescriptorKeyDistinguishesNames(t *testing.T) {
	a := Descriptor{Name: "seasons"}
	b := Descriptor{Name: "teams"}

	if a.Key() == b.Key() {
		t.Error("Different query names produced the same key")
	}
}

func TestDescriptorKeyPrefix(t *testing.T) {
	d := Descriptor{Name: "upcoming_fixtures", Params: 7}
	if !strings.HasPrefix(d.Key(), "upcoming_fixtures:") {
		t.Errorf("Key %s does not start with the query name", d.Key())
	}
}
