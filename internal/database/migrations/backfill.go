// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package migrations

import (
	"context"
	"fmt"
	"time"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/metrics"
)

// Backfill rewrites the rows of a deferred heavy step. The store stays one
// version below the step until Run returns nil.
type Backfill struct {
	migrator *Migrator
	step     Step
}

// Step returns the name of the heavy step.
func (b *Backfill) Step() string {
	return b.step.Name
}

// Version returns the version the store reaches when the backfill is done.
func (b *Backfill) Version() int {
	return b.step.Version
}

// Run rewrites the remaining rows, persists the step's version and then
// applies the steps that were waiting behind it.
func (b *Backfill) Run(ctx context.Context) error {
	m := b.migrator
	start := time.Now()

	if err := b.rewrite(ctx); err != nil {
		metrics.RecordMigrationStep(b.step.Name, "failed")
		return &StepError{Version: b.step.Version, Name: b.step.Name, Err: err}
	}
	if err := m.persistVersion(ctx, b.step.Version); err != nil {
		return &StepError{Version: b.step.Version, Name: b.step.Name, Err: err}
	}
	metrics.RecordMigrationStep(b.step.Name, "applied")
	m.logger.Info().
		Int("version", b.step.Version).
		Str("step", b.step.Name).
		Dur("duration", time.Since(start)).
		Msg("Background backfill complete")

	m.mu.Lock()
	m.pending = nil
	m.mu.Unlock()

	return m.resume(ctx)
}

// rewrite runs batches from the last checkpoint until none are left.
func (b *Backfill) rewrite(ctx context.Context) error {
	m := b.migrator
	after, err := m.progress.Load(b.step.Name)
	if err != nil {
		return fmt.Errorf("failed to load backfill progress: %w", err)
	}
	if after > 0 {
		m.logger.Info().Str("step", b.step.Name).Int64("after_id", after).Msg("Resuming backfill")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			last int64
			n    int
		)
		err := m.db.InTransaction(ctx, func(tx *database.Tx) error {
			var err error
			last, n, err = b.step.Batch(ctx, tx, after, m.batchSize())
			return err
		})
		if err != nil {
			return fmt.Errorf("backfill batch after id %d: %w", after, err)
		}
		if n == 0 {
			break
		}

		after = last
		if err := m.progress.Save(b.step.Name, after); err != nil {
			return fmt.Errorf("failed to save backfill progress: %w", err)
		}
		metrics.BackfillRows.Add(float64(n))
		m.logger.Debug().Str("step", b.step.Name).Int("rows", n).Int64("last_id", after).Msg("Backfill batch committed")
	}

	return m.progress.Clear(b.step.Name)
}
