// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package services

import (
	"context"
	"errors"

	"github.com/thejerf/suture/v4"

	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
)

// Backfiller is a deferred heavy migration step. Satisfied by
// *migrations.Backfill.
type Backfiller interface {
	Step() string
	Version() int
	Run(ctx context.Context) error
}

// BackfillService runs a pending migration backfill once.
//
// Progress is checkpointed per batch, so a canceled run resumes where it
// stopped the next time the process starts. A failed run leaves the schema
// version where it was and is not restarted until the next boot.
type BackfillService struct {
	backfill Backfiller
	done     chan struct{}
	err      error
}

// NewBackfillService wraps b.
func NewBackfillService(b Backfiller) *BackfillService {
	return &BackfillService{backfill: b, done: make(chan struct{})}
}

// Serve implements suture.Service. It returns suture.ErrDoNotRestart once
// the backfill has finished or failed.
func (s *BackfillService) Serve(ctx context.Context) error {
	logging.CtxInfo(ctx).
		Str("step", s.backfill.Step()).
		Int("version", s.backfill.Version()).
		Msg("Background backfill started")

	err := s.backfill.Run(ctx)
	switch {
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return ctx.Err()
	case err != nil:
		logging.CtxErr(ctx, err).Str("step", s.backfill.Step()).Msg("Background backfill failed, retrying on next start")
	}

	s.err = err
	close(s.done)
	return suture.ErrDoNotRestart
}

// Done is closed when the backfill has finished or failed.
func (s *BackfillService) Done() <-chan struct{} {
	return s.done
}

// Err returns the result of a finished backfill. Only valid after Done is
// closed.
func (s *BackfillService) Err() error {
	return s.err
}

// String implements fmt.Stringer for suture logging.
func (s *BackfillService) String() string {
	return "migration-backfill:" + s.backfill.Step()
}
