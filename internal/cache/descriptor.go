// Pitchside - Football Analytics Dashboard Backend
// Copyright 2026 Pitchside Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pitchside/pitchside

package cache

import (
	"crypto/sha256"
	"fmt"

	"github.com/goccy/go-json"
)

// Descriptor identifies one canonical parameterized read: a query name plus
// its parameter values. It is the cache key; two logically identical requests
// must always produce the same key.
//
// Params is serialized with JSON, so use a struct (stable field order) rather
// than a map with nondeterministic iteration. All query layers in this
// repository pass small filter structs.
type Descriptor struct {
	Name   string
	Params any
}

// Key returns the stable cache key for the descriptor: the query name joined
// with a truncated SHA-256 of the JSON-serialized parameters. The name prefix
// keeps keys grouped for prefix invalidation ("refresh fixtures" clears every
// parameter variant of the fixtures queries).
func (d Descriptor) Key() string {
	data, err := json.Marshal(d.Params)
	if err != nil {
		// Fallback to a formatted key; only reachable for unserializable
		// params, which no query layer passes.
		return fmt.Sprintf("%s:%v", d.Name, d.Params)
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", d.Name, hash[:16])
}
