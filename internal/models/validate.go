// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package models

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/plan-player-analytics/Plan-sub001/internal/validation"
)

//nolint:gochecknoinits // struct rules must be registered before first use
func init() {
	validation.RegisterStructValidation(pingOrdering, Ping{})
	validation.RegisterStructValidation(sessionWorldTime, Session{})
}

var trackedModes = func() string {
	names := make([]string, len(GameModes))
	for i, m := range GameModes {
		names[i] = string(m)
	}
	return strings.Join(names, " ")
}()

// Validate checks a model's field tags and cross-field rules.
func Validate(v interface{}) error {
	return validation.ValidateStruct(v)
}

func pingOrdering(sl validator.StructLevel) {
	p := sl.Current().Interface().(Ping)
	if p.Avg < float64(p.Min) {
		sl.ReportError(p.Avg, "Avg", "Avg", "gtefield", "Min")
	}
	if float64(p.Max) < p.Avg {
		sl.ReportError(p.Max, "Max", "Max", "gtefield", "Avg")
	}
}

func sessionWorldTime(sl validator.StructLevel) {
	s := sl.Current().Interface().(Session)
	if s.End < s.Start {
		return // reported by the End tag
	}
	if s.WorldTimes.Total() > s.Length() {
		sl.ReportError(s.WorldTimes, "WorldTimes", "WorldTimes", "ltefield", "Length")
	}
	if s.AFKTime > s.Length() {
		sl.ReportError(s.AFKTime, "AFKTime", "AFKTime", "ltefield", "Length")
	}
	for world, gm := range s.WorldTimes {
		for mode, ms := range gm {
			if !mode.Tracked() {
				sl.ReportError(mode, "WorldTimes["+world+"]", "WorldTimes", "oneof", trackedModes)
			}
			if ms < 0 {
				sl.ReportError(ms, "WorldTimes["+world+"]", "WorldTimes", "gte", "0")
			}
		}
	}
}

// Clip truncates s to at most n characters. Both stores count characters,
// not bytes, for length limits.
func Clip(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
