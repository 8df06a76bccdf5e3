// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
)

type gatedTransaction struct {
	Transaction
	required int
}

func (g gatedTransaction) RequiredSchemaVersion() int { return g.required }

func TestInTransaction_Commit(t *testing.T) {
	for _, dialect := range testDialects {
		t.Run(dialect.String(), func(t *testing.T) {
			db := setupTestDB(t, dialect)
			ctx := context.Background()

			err := db.InTransaction(ctx, func(tx *Tx) error {
				if _, err := tx.Exec(ctx, insertItem(1, "a")); err != nil {
					return err
				}
				// Reads inside the transaction see its own writes.
				if got := countItems(t, tx); got != 1 {
					t.Errorf("Expected 1 item inside transaction, got %d", got)
				}
				_, err := tx.Exec(ctx, insertItem(2, "b"))
				return err
			})
			if err != nil {
				t.Fatalf("InTransaction failed: %v", err)
			}
			if got := countItems(t, db); got != 2 {
				t.Errorf("Expected 2 items, got %d", got)
			}
		})
	}
}

func TestInTransaction_RollbackOnError(t *testing.T) {
	for _, dialect := range testDialects {
		t.Run(dialect.String(), func(t *testing.T) {
			db := setupTestDB(t, dialect)
			ctx := context.Background()
			boom := errors.New("boom")

			err := db.InTransaction(ctx, func(tx *Tx) error {
				if _, err := tx.Exec(ctx, insertItem(1, "a")); err != nil {
					return err
				}
				return boom
			})
			if !errors.Is(err, boom) {
				t.Fatalf("Expected boom, got %v", err)
			}
			if got := countItems(t, db); got != 0 {
				t.Errorf("Expected rollback, found %d items", got)
			}
		})
	}
}

func TestInTransaction_RollbackOnPanic(t *testing.T) {
	db := setupTestDB(t, query.SQLite)
	ctx := context.Background()

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic to propagate")
			}
		}()
		_ = db.InTransaction(ctx, func(tx *Tx) error {
			if _, err := tx.Exec(ctx, insertItem(1, "a")); err != nil {
				return err
			}
			panic("mid-transaction")
		})
	}()

	if got := countItems(t, db); got != 0 {
		t.Errorf("Expected rollback after panic, found %d items", got)
	}
	// The connection must be back in the pool.
	if _, err := db.Execute(ctx, insertItem(2, "b")); err != nil {
		t.Errorf("Execute after panic failed: %v", err)
	}
}

func TestInTransaction_Cancelled(t *testing.T) {
	db := setupTestDB(t, query.SQLite)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := db.InTransaction(ctx, func(tx *Tx) error {
		_, err := tx.Exec(ctx, insertItem(1, "a"))
		return err
	})
	if err == nil {
		t.Fatal("Expected cancelled context to fail the transaction")
	}
	if got := countItems(t, db); got != 0 {
		t.Errorf("Expected no rows, found %d", got)
	}
}

func TestTxInsertID(t *testing.T) {
	for _, dialect := range testDialects {
		t.Run(dialect.String(), func(t *testing.T) {
			db := setupTestDB(t, dialect)
			ctx := context.Background()
			insert := query.Statement{
				SQL:  "INSERT INTO items (id, name) VALUES (?, ?) ON CONFLICT DO NOTHING RETURNING id",
				Args: []interface{}{7, "seven"},
			}

			err := db.InTransaction(ctx, func(tx *Tx) error {
				id, ok, err := tx.InsertID(ctx, insert)
				if err != nil {
					return err
				}
				if !ok || id != 7 {
					t.Errorf("Expected id 7 inserted, got id=%d ok=%v", id, ok)
				}
				_, ok, err = tx.InsertID(ctx, insert)
				if err != nil {
					return err
				}
				if ok {
					t.Error("Expected conflicting insert to be skipped")
				}
				return nil
			})
			if err != nil {
				t.Fatalf("InTransaction failed: %v", err)
			}
		})
	}
}

func TestExecuteTransaction(t *testing.T) {
	db := setupTestDB(t, query.DuckDB)
	ctx := context.Background()

	err := db.ExecuteTransaction(ctx, NewTransaction("InsertItem", func(ctx context.Context, tx *Tx) error {
		_, err := tx.Exec(ctx, insertItem(1, "a"))
		return err
	}))
	if err != nil {
		t.Fatalf("ExecuteTransaction failed: %v", err)
	}

	err = db.ExecuteTransaction(ctx, NewTransaction("InsertDuplicate", func(ctx context.Context, tx *Tx) error {
		_, err := tx.Exec(ctx, insertItem(1, "a"))
		return err
	}))
	var opErr *OperationError
	if !errors.As(err, &opErr) || opErr.Op != "InsertDuplicate" {
		t.Errorf("Expected *OperationError for InsertDuplicate, got %v", err)
	}
}

func TestExecuteTransaction_VersionGated(t *testing.T) {
	db := setupTestDB(t, query.SQLite)
	ctx := context.Background()
	executed := false

	gated := gatedTransaction{
		Transaction: NewTransaction("Gated", func(ctx context.Context, tx *Tx) error {
			executed = true
			return nil
		}),
		required: 6,
	}

	db.SetSchemaVersion(5)
	if err := db.ExecuteTransaction(ctx, gated); !errors.Is(err, ErrSchemaNotReady) {
		t.Errorf("Expected ErrSchemaNotReady at version 5, got %v", err)
	}
	if executed {
		t.Error("Gated transaction must not run on an older store")
	}

	db.SetSchemaVersion(6)
	if err := db.ExecuteTransaction(ctx, gated); err != nil {
		t.Errorf("Expected gated transaction to run at version 6, got %v", err)
	}
	if !executed {
		t.Error("Expected gated transaction to run")
	}
}

func TestRun(t *testing.T) {
	db := setupTestDB(t, query.SQLite)
	ctx := context.Background()
	if _, err := db.Execute(ctx, insertItem(1, "a")); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	count := NewQuery("CountItems", func(ctx context.Context, ex Executor) (int64, error) {
		return QueryRow(ctx, ex, query.Statement{SQL: "SELECT COUNT(*) FROM items"}, ScanInt64)
	})
	got, err := Run[int64](ctx, db, count)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got != 1 {
		t.Errorf("Expected 1, got %d", got)
	}

	missing := NewQuery("MissingItem", func(ctx context.Context, ex Executor) (string, error) {
		return QueryRow(ctx, ex, query.Statement{SQL: "SELECT id, name FROM items WHERE id = 99"}, scanItemName)
	})
	if _, err := Run[string](ctx, db, missing); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound through Run, got %v", err)
	}
}
