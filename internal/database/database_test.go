// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/plan-player-analytics/Plan-sub001/internal/config"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
)

var testDialects = []query.Dialect{query.SQLite, query.DuckDB}

// setupTestDB opens an empty store with one scratch table.
func setupTestDB(t *testing.T, dialect query.Dialect) *DB {
	t.Helper()

	cfg := config.Default().Database
	cfg.Dialect = dialect.String()
	cfg.Path = filepath.Join(t.TempDir(), "plan.db")
	cfg.MaxOpenConns = 4

	db, err := Open(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("Failed to open %s store: %v", dialect, err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ddl := "CREATE TABLE items (id BIGINT PRIMARY KEY, name VARCHAR(50) NOT NULL UNIQUE)"
	if _, err := db.Execute(context.Background(), query.Statement{SQL: ddl}); err != nil {
		t.Fatalf("Failed to create scratch table: %v", err)
	}
	return db
}

func insertItem(id int64, name string) query.Statement {
	return query.Statement{SQL: "INSERT INTO items (id, name) VALUES (?, ?)", Args: []interface{}{id, name}}
}

func scanItemName(rows *sql.Rows) (string, error) {
	var (
		id   int64
		name string
	)
	err := rows.Scan(&id, &name)
	return name, err
}

func countItems(t *testing.T, ex Executor) int64 {
	t.Helper()
	n, err := QueryRow(context.Background(), ex, query.Statement{SQL: "SELECT COUNT(*) FROM items"}, ScanInt64)
	if err != nil {
		t.Fatalf("Failed to count items: %v", err)
	}
	return n
}

func TestOpen(t *testing.T) {
	for _, dialect := range testDialects {
		t.Run(dialect.String(), func(t *testing.T) {
			db := setupTestDB(t, dialect)
			if db.Dialect() != dialect {
				t.Errorf("Expected dialect %s, got %s", dialect, db.Dialect())
			}
			if err := db.Ping(context.Background()); err != nil {
				t.Errorf("Ping failed: %v", err)
			}
			if db.SchemaVersion() != 0 {
				t.Errorf("Expected unmigrated store at version 0, got %d", db.SchemaVersion())
			}
		})
	}
}

func TestOpen_InvalidDialect(t *testing.T) {
	cfg := config.Default().Database
	cfg.Dialect = "postgres"
	cfg.Path = filepath.Join(t.TempDir(), "plan.db")

	_, err := Open(context.Background(), &cfg)
	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("Expected *InitError, got %v", err)
	}
	if initErr.Path != cfg.Path {
		t.Errorf("Expected path %q in error, got %q", cfg.Path, initErr.Path)
	}
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	cfg := config.Default().Database
	cfg.Path = filepath.Join(t.TempDir(), "nested", "data", "plan.db")

	db, err := Open(context.Background(), &cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestClose(t *testing.T) {
	for _, dialect := range testDialects {
		t.Run(dialect.String(), func(t *testing.T) {
			db := setupTestDB(t, dialect)
			if err := db.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if err := db.Close(); err != nil {
				t.Errorf("Second Close should be a no-op, got %v", err)
			}
			if _, err := db.Execute(context.Background(), insertItem(1, "a")); !errors.Is(err, ErrClosed) {
				t.Errorf("Expected ErrClosed, got %v", err)
			}
			if err := db.Rows(context.Background(), query.Statement{SQL: "SELECT 1"}, func(*sql.Rows) error { return nil }); !errors.Is(err, ErrClosed) {
				t.Errorf("Expected ErrClosed from Rows, got %v", err)
			}
		})
	}
}

func TestSchemaVersion(t *testing.T) {
	db := setupTestDB(t, query.SQLite)
	db.SetSchemaVersion(7)
	if got := db.SchemaVersion(); got != 7 {
		t.Errorf("Expected version 7, got %d", got)
	}
}

func TestDataSourceName(t *testing.T) {
	cfg := config.Default().Database
	cfg.Path = "/var/lib/plan/plan.db"
	cfg.DuckDBThreads = 2
	cfg.DuckDBMaxMemory = "1GB"

	tests := []struct {
		dialect query.Dialect
		want    string
	}{
		{query.DuckDB, "/var/lib/plan/plan.db?access_mode=read_write&threads=2&max_memory=1GB"},
		{query.SQLite, "file:/var/lib/plan/plan.db?_pragma=foreign_keys%281%29&_pragma=busy_timeout%285000%29&_pragma=journal_mode%28WAL%29&_txlock=immediate"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			if got := dataSourceName(tt.dialect, &cfg); got != tt.want {
				t.Errorf("dataSourceName() = %q, want %q", got, tt.want)
			}
		})
	}
}
