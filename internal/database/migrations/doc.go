// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

// Package migrations evolves a store from any earlier shape to the latest
// schema version.
//
// The store's version lives in a single-row table. Run creates missing
// tables at their latest shape, reads that version and applies every
// newer Step in order, persisting the version after each one. Every step
// carries an Applied check that inspects the catalogue or the data, so a
// store upgraded by hand or interrupted between a change and its version
// write is recognised and skipped.
//
// # Heavy steps
//
// Steps that rewrite rows (hashing stored addresses) run in batches keyed
// by id. The last committed id is kept in a Progress so a restart resumes
// where the previous process stopped. With background backfill enabled,
// Run returns once the step's schema change is in place and Pending
// returns the Backfill to supervise; operations gated on a later version
// fail with database.ErrSchemaNotReady until it finishes.
//
// # Dialect notes
//
// DuckDB refuses to alter a table that an index depends on, so indexes are
// created after the last step. SQLite cannot change a column type and
// drops columns through a table rebuild.
package migrations
