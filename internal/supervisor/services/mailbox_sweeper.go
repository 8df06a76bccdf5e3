// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package services

import (
	"context"
	"time"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/transactions"
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
)

// Submitter queues a transaction and waits for it. Satisfied by
// *database.Writer.
type Submitter interface {
	Submit(ctx context.Context, t database.Transaction) error
}

// MailboxSweeper removes expired transfer mailbox entries every interval.
//
// A failed purge is logged and retried on the next tick; only cancellation
// stops the sweeper.
type MailboxSweeper struct {
	writer   Submitter
	interval time.Duration
	now      func() time.Time
	name     string
}

// NewMailboxSweeper creates a sweeper that purges through writer.
func NewMailboxSweeper(writer Submitter, interval time.Duration) *MailboxSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &MailboxSweeper{
		writer:   writer,
		interval: interval,
		now:      time.Now,
		name:     "mailbox-sweeper",
	}
}

// Serve implements suture.Service.
func (s *MailboxSweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *MailboxSweeper) sweep(ctx context.Context) {
	if err := s.writer.Submit(ctx, transactions.PurgeExpiredMailbox(s.now().UnixMilli())); err != nil && ctx.Err() == nil {
		logging.CtxErr(ctx, err).Str("service", s.name).Msg("Mailbox sweep failed")
	}
}

// String implements fmt.Stringer for suture logging.
func (s *MailboxSweeper) String() string {
	return s.name
}
