// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/plan-player-analytics/Plan-sub001/internal/config"
	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/dbtest"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/queries"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/transactions"
)

// mockSubmitter records submissions and fails them while err is set.
type mockSubmitter struct {
	calls atomic.Int32
	err   error
}

func (m *mockSubmitter) Submit(ctx context.Context, t database.Transaction) error {
	m.calls.Add(1)
	return m.err
}

func TestMailboxSweeper(t *testing.T) {
	var _ suture.Service = (*MailboxSweeper)(nil)

	t.Run("defaults a non-positive interval", func(t *testing.T) {
		if s := NewMailboxSweeper(&mockSubmitter{}, 0); s.interval != time.Minute {
			t.Errorf("expected 1m, got %v", s.interval)
		}
	})

	t.Run("keeps sweeping after failures", func(t *testing.T) {
		writer := &mockSubmitter{err: errors.New("store unavailable")}
		if got, err := database.Run(ctx, db, queries.MailboxFetch("transfer", 0)); err != nil || len(got) != 2 {
		t.Fatalf("expected 2 entries before sweeping, got %d (%v)", len(got), err)
	}

	svc := NewMailboxSweeper(writer, 10*time.Millisecond)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- svc.Serve(ctx)
		}()

		for i := 0; i < 50 && writer.calls.Load() < 3; i++ {
			time.Sleep(10 * time.Millisecond)
		}
		cancel()

		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("sweeper did not stop in time")
		}
		if writer.calls.Load() < 3 {
			t.Errorf("expected at least 3 sweeps, got %d", writer.calls.Load())
		}
	})
}

func TestMailboxSweeper_PurgesThroughWriter(t *testing.T) {
	const (
		proxy = "7c1f3a52-9d4e-4b8a-a0f1-3e5d2c6b8a91"
		lobby = "2b8e6d14-5a3c-4f7e-9b1d-8c4a6e2f0d37"
	)
	db := dbtest.New(t, query.SQLite)
	writer := database.NewWriter(db, &config.WriterConfig{QueueSize: 2, BreakerMaxFailures: 3, BreakerTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go writer.Serve(ctx)

	for _, tr := range []database.Transaction{
		transactions.StoreMailboxEntry("transfer", proxy, 5_000, map[string]string{"player": "a"}),
		transactions.StoreMailboxEntry("transfer", lobby, 20_000, map[string]string{"player": "b"}),
	} {
		if err := writer.Submit(ctx, tr); err != nil {
			t.Fatalf("%s failed: %v", tr.Name(), err)
		}
	}

	if got, err := database.Run(ctx, db, queries.MailboxFetch("transfer", 0)); err != nil || len(got) != 2 {
		t.Fatalf("expected 2 entries before sweeping, got %d (%v)", len(got), err)
	}

	svc := NewMailboxSweeper(writer, 10*time.Millisecond)
	svc.now = func() time.Time { return time.UnixMilli(10_000) }
	go svc.Serve(ctx)

	var entries int
	for range 100 {
		got, err := database.Run(ctx, db, queries.MailboxFetch("transfer", 0))
		if err != nil {
			t.Fatalf("MailboxFetch failed: %v", err)
		}
		if entries = len(got); entries == 1 {
			if got[0].Sender != lobby {
				t.Errorf("expected the unexpired entry to remain, got %q", got[0].Sender)
			}
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("expected 1 entry after sweeping, got %d", entries)
}
