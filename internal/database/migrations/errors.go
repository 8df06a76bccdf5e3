// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package migrations

import "fmt"

// StepError is the failure of one migration step. The schema version is
// left at the previous step and the step is retried on the next boot.
type StepError struct {
	Version int
	Name    string
	Err     error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("migration v%d (%s) failed: %v", e.Version, e.Name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
