// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

// Package validation provides struct validation using go-playground/validator v10.
//
// Every write transaction validates its model before touching the store, so
// a malformed sample is rejected with a field-level message instead of a
// driver constraint error (which SQLite would not raise for most of them).
//
//	type Session struct {
//	    Start int64 `validate:"epoch_ms"`
//	    End   int64 `validate:"epoch_ms,gtefield=Start"`
//	}
//
//	if err := validation.ValidateStruct(&s); err != nil {
//	    var se *validation.StructError
//	    errors.As(err, &se) // se.HasField("End")
//	}
//
// # Custom Tags
//
//   - epoch_ms: int64 millisecond timestamp in [0, year 10000)
//
// Cross-field rules that mix kinds (an int minimum against a float
// average) are registered with RegisterStructValidation.
package validation
