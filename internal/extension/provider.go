// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package extension

import (
	"context"
	"strings"
)

// negation prefixes a condition that holds when the named boolean is false.
const negation = "not_"

// Datum is one named value from a provider.
type Datum struct {
	// Provider names the value within its plugin.
	Provider string
	Value    Value

	// Provides names the condition a Boolean datum sets. When the datum is
	// true the condition holds; when false, "not_"+Provides holds.
	Provides string

	// Condition gates the datum. It is included only when the condition
	// holds. An empty Condition always holds.
	Condition string
}

// DataProvider is implemented by plugins that contribute data. Values are
// collected per player and per server.
type DataProvider interface {
	PluginName() string
	PlayerData(ctx context.Context, playerUUID string) ([]Datum, error)
	ServerData(ctx context.Context) ([]Datum, error)
}

// Evaluate returns the datums whose conditions hold, in input order.
//
// Conditions are set by Boolean datums with Provides. A condition provider
// can itself be gated, so evaluation repeats until no new condition is
// set. A gated provider whose own condition never holds sets neither its
// condition nor the negation.
func Evaluate(datums []Datum) []Datum {
	fulfilled := make(map[string]bool)
	included := make([]bool, len(datums))

	for changed := true; changed; {
		changed = false
		for i, d := range datums {
			if included[i] || !holds(d.Condition, fulfilled) {
				continue
			}
			included[i] = true
			changed = true
			if d.Provides != "" && d.Value.Kind == Boolean {
				if d.Value.Boolean {
					fulfilled[d.Provides] = true
				} else {
					fulfilled[negation+d.Provides] = true
				}
			}
		}
	}

	out := make([]Datum, 0, len(datums))
	for i, d := range datums {
		if included[i] {
			out = append(out, d)
		}
	}
	return out
}

func holds(condition string, fulfilled map[string]bool) bool {
	if condition == "" {
		return true
	}
	return fulfilled[condition]
}

// Negate returns the opposite of condition.
func Negate(condition string) string {
	if name, ok := strings.CutPrefix(condition, negation); ok {
		return name
	}
	return negation + condition
}
