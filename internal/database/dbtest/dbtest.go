// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

// Package dbtest opens fully migrated stores for tests.
//
//	dbtest.ForEachDialect(t, func(t *testing.T, db *database.DB) {
//	    err := db.ExecuteTransaction(ctx, transactions.StorePing(ping))
//	    ...
//	})
package dbtest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/plan-player-analytics/Plan-sub001/internal/config"
	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/migrations"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
)

// Dialects lists every supported backend.
func Dialects() []query.Dialect {
	return []query.Dialect{query.SQLite, query.DuckDB}
}

// Config returns a database configuration for a store file in dir.
func Config(dialect query.Dialect, dir string) config.DatabaseConfig {
	cfg := config.Default().Database
	cfg.Dialect = dialect.String()
	cfg.Path = filepath.Join(dir, "plan.db")
	cfg.MaxOpenConns = 4
	cfg.DuckDBThreads = 2
	cfg.DuckDBMaxMemory = "256MB"
	return cfg
}

// Open opens an empty, unmigrated store in a temporary directory. It is
// closed when the test ends.
func Open(t testing.TB, dialect query.Dialect) *database.DB {
	t.Helper()
	cfg := Config(dialect, t.TempDir())
	db, err := database.Open(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("Failed to open %s store: %v", dialect, err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// New opens a store migrated to the latest version.
func New(t testing.TB, dialect query.Dialect) *database.DB {
	t.Helper()
	db := Open(t, dialect)
	if err := migrations.New(db, &config.MigrationConfig{}, nil).Run(context.Background()); err != nil {
		t.Fatalf("Failed to migrate %s store: %v", dialect, err)
	}
	return db
}

// ForEachDialect runs fn as a subtest against a fresh migrated store of
// every dialect.
func ForEachDialect(t *testing.T, fn func(t *testing.T, db *database.DB)) {
	t.Helper()
	for _, dialect := range Dialects() {
		t.Run(dialect.String(), func(t *testing.T) {
			fn(t, New(t, dialect))
		})
	}
}
