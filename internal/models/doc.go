// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

// Package models defines the entities persisted by Plan.
//
// Models reference each other by natural key (player and server UUIDs,
// world names). Surrogate ids exist only inside the store and are filled
// in on the way out by read queries.
//
// Timestamps are epoch milliseconds. Validate checks the invariants a
// relational schema cannot express on SQLite: session end not before
// start, world time not exceeding session length, ping ordering.
package models
