// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

// Package backup copies the contents of one store into another.
//
// The source and target may use different dialects, so the same call backs
// up a live DuckDB store into a SQLite file or restores it again:
//
//	report, err := backup.Copy(ctx, live, file, backup.Options{})
//	if err != nil {
//	    return err
//	}
//	log.Printf("copied %d sessions", report.Sessions)
//
// Mailbox entries are transient and are not copied. Extension plugins are
// stamped with the time of the copy.
package backup
