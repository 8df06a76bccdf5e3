// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/plan-player-analytics/Plan-sub001/internal/config"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/validation"
)

func startWriter(t *testing.T, db *DB, cfg config.WriterConfig) *Writer {
	t.Helper()
	w := NewWriter(db, &cfg)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return w
}

func failingTransaction(name string) Transaction {
	return NewTransaction(name, func(ctx context.Context, tx *Tx) error {
		_, err := tx.Exec(ctx, query.Statement{SQL: "INSERT INTO missing_table VALUES (1)"})
		return err
	})
}

func TestWriter_Submit(t *testing.T) {
	for _, dialect := range testDialects {
		t.Run(dialect.String(), func(t *testing.T) {
			db := setupTestDB(t, dialect)
			w := startWriter(t, db, config.WriterConfig{QueueSize: 4, BreakerMaxFailures: 3, BreakerTimeout: time.Minute})
			ctx := context.Background()

			var wg sync.WaitGroup
			errs := make(chan error, 20)
			for i := 1; i <= 20; i++ {
				wg.Add(1)
				go func(id int64) {
					defer wg.Done()
					errs <- w.Submit(ctx, NewTransaction("InsertItem", func(ctx context.Context, tx *Tx) error {
						_, err := tx.Exec(ctx, insertItem(id, fmt.Sprintf("item-%d", id)))
						return err
					}))
				}(int64(i))
			}
			wg.Wait()
			close(errs)

			for err := range errs {
				if err != nil {
					t.Errorf("Submit failed: %v", err)
				}
			}
			if got := countItems(t, db); got != 20 {
				t.Errorf("Expected 20 items, got %d", got)
			}
		})
	}
}

func TestWriter_PreservesSubmissionOrder(t *testing.T) {
	db := setupTestDB(t, query.SQLite)
	w := startWriter(t, db, config.WriterConfig{QueueSize: 8, BreakerMaxFailures: 3, BreakerTimeout: time.Minute})
	ctx := context.Background()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		err := w.Submit(ctx, NewTransaction("Record", func(ctx context.Context, tx *Tx) error {
			order = append(order, i)
			return nil
		}))
		if err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}
	if fmt.Sprint(order) != "[0 1 2 3 4]" {
		t.Errorf("Expected FIFO order, got %v", order)
	}
}

func TestWriter_BreakerOpensAfterFailures(t *testing.T) {
	db := setupTestDB(t, query.SQLite)
	w := startWriter(t, db, config.WriterConfig{QueueSize: 4, BreakerMaxFailures: 2, BreakerTimeout: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := w.Submit(ctx, failingTransaction("Broken"))
		if err == nil || errors.Is(err, ErrStoreUnavailable) {
			t.Fatalf("Attempt %d: expected store failure, got %v", i, err)
		}
	}
	if w.State() != gobreaker.StateOpen {
		t.Fatalf("Expected open breaker, got %s", w.State())
	}

	executed := false
	err := w.Submit(ctx, NewTransaction("Healthy", func(ctx context.Context, tx *Tx) error {
		executed = true
		return nil
	}))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable while open, got %v", err)
	}
	if executed {
		t.Error("Transaction must not run while the breaker is open")
	}
}

func TestWriter_CallerErrorsDoNotTripBreaker(t *testing.T) {
	db := setupTestDB(t, query.SQLite)
	w := startWriter(t, db, config.WriterConfig{QueueSize: 4, BreakerMaxFailures: 1, BreakerTimeout: time.Minute})
	ctx := context.Background()

	gated := gatedTransaction{Transaction: NewTransaction("Gated", func(context.Context, *Tx) error { return nil }), required: 99}
	if err := w.Submit(ctx, gated); !errors.Is(err, ErrSchemaNotReady) {
		t.Fatalf("Expected ErrSchemaNotReady, got %v", err)
	}
	if w.State() != gobreaker.StateClosed {
		t.Errorf("Expected closed breaker after a gated rejection, got %s", w.State())
	}
}

func TestIsStoreHealthy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"schema", &OperationError{Op: "x", Err: ErrSchemaNotReady}, true},
		{"ambiguous", ErrAmbiguousSessionMatch, true},
		{"cancelled", context.Canceled, true},
		{"validation", &OperationError{Op: "x", Err: &validation.StructError{}}, true},
		{"store", errors.New("disk I/O error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isStoreHealthy(tt.err); got != tt.want {
				t.Errorf("isStoreHealthy() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriter_DrainFailsPending(t *testing.T) {
	db := setupTestDB(t, query.SQLite)
	w := NewWriter(db, &config.WriterConfig{QueueSize: 2, BreakerMaxFailures: 1, BreakerTimeout: time.Minute})

	req := &writeRequest{ctx: context.Background(), t: NewTransaction("Pending", func(context.Context, *Tx) error { return nil }), done: make(chan error, 1)}
	w.queue <- req
	w.drain()

	if err := <-req.done; !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable for drained request, got %v", err)
	}
}

func TestWriter_SubmitCancelled(t *testing.T) {
	db := setupTestDB(t, query.SQLite)
	// No Serve loop and a full queue: Submit must honour cancellation.
	w := NewWriter(db, &config.WriterConfig{QueueSize: 1, BreakerMaxFailures: 1, BreakerTimeout: time.Minute})
	w.queue <- &writeRequest{done: make(chan error, 1)}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := w.Submit(ctx, NewTransaction("Blocked", func(context.Context, *Tx) error { return nil })); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestWriter_String(t *testing.T) {
	db := setupTestDB(t, query.SQLite)
	if got := NewWriter(db, &config.WriterConfig{}).String(); got != WriterName {
		t.Errorf("Expected %q, got %q", WriterName, got)
	}
}
