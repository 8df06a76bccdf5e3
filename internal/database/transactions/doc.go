// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

// Package transactions holds every write against the store as a
// database.Transaction value.
//
// Constructors take the server and player scope explicitly and return a
// transaction to pass to DB.ExecuteTransaction or database.Writer.Submit:
//
//	err := db.ExecuteTransaction(ctx, transactions.StoreSession(&session))
//
// Inputs are validated with the models package before anything is written.
// Dimension rows (servers, players, worlds, registrations) are created
// lazily by the Ensure functions, which tolerate a concurrent writer
// creating the same key. Fact rows reference dimensions through
// query.ResolveID so single-row and batched inserts never read ids back.
//
// Sessions are the exception: their dependents need the generated session
// id. StoreSession reads it with RETURNING, and SessionBulkLoad matches a
// whole batch of new ids in one query.
package transactions
