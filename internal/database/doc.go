// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

// Package database provides statement execution, transactions and the
// single-writer queue for the Plan store.
//
// # Overview
//
// This package is the data layer between capture code and an embedded
// store. Two backends are supported through database/sql and share the
// same surface:
//   - SQLite via modernc.org/sqlite (pure Go, WAL journal, foreign keys on)
//   - DuckDB via github.com/duckdb/duckdb-go/v2
//
// # Architecture
//
//   - database.go: Open/Close, pool, schema version
//   - database_connection.go: DSNs, pool configuration, error classifiers
//   - executor.go: Executor, QueryRows, Execute, ExecuteBatch, ExecuteBestEffort
//   - transaction.go: Tx, Transaction, Query, version gating
//   - writer.go: serialized writes behind a circuit breaker
//   - errors.go: typed errors and sentinels
//
// Sub-packages:
//   - query: statement builders and dialect differences
//   - schema: table, column and index constants
//   - migrations: schema evolution and background backfill
//   - transactions: write operations
//   - queries: read operations and aggregations
//   - dbtest: migrated stores for tests
//
// # Usage
//
//	db, err := database.Open(ctx, &cfg.Database)
//	if err != nil {
//	    return err // *database.InitError
//	}
//	defer db.Close()
//
//	if err := migrations.New(db, &cfg.Migration).Run(ctx); err != nil {
//	    return err
//	}
//
//	err = db.ExecuteTransaction(ctx, transactions.StorePing(ping))
//	peak, ok, err := database.Run(ctx, db, queries.PeakOnline(serverUUID, after))
//
// # Version Gating
//
// The migrator publishes the persisted schema version through
// SetSchemaVersion. Transactions and queries implementing VersionGated
// fail with ErrSchemaNotReady while the store is behind, e.g. while a
// heavy migration step is still backfilling in the background.
//
// # Thread Safety
//
// DB is safe for concurrent use. Reads run concurrently on the pool.
// Writes may go through Writer to keep a single writer per store.
package database
