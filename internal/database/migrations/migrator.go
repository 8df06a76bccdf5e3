// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package migrations

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/plan-player-analytics/Plan-sub001/internal/config"
	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
	"github.com/plan-player-analytics/Plan-sub001/internal/metrics"
)

const defaultBatchSize = 2500

// Migrator brings a store to the latest schema version.
type Migrator struct {
	db       *database.DB
	cfg      config.MigrationConfig
	progress Progress
	steps    []Step
	logger   zerolog.Logger

	mu      sync.Mutex
	pending *Backfill
}

// New creates a migrator for db. A nil progress keeps backfill checkpoints
// in memory.
func New(db *database.DB, cfg *config.MigrationConfig, progress Progress) *Migrator {
	if progress == nil {
		progress = NewMemoryProgress()
	}
	return &Migrator{
		db:       db,
		cfg:      *cfg,
		progress: progress,
		steps:    Steps(),
		logger:   logging.WithComponent("migrations"),
	}
}

// Run creates missing tables, reads the persisted version and applies
// every newer step. It is safe to run on any store, any number of times.
//
// When background backfill is enabled and a heavy step has rows left to
// rewrite, Run stops before that step and Pending returns the backfill to
// supervise. Steps after it run once the backfill completes.
func (m *Migrator) Run(ctx context.Context) error {
	if err := m.ensureBase(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	version, err := m.readVersion(ctx)
	if err != nil {
		return err
	}
	m.db.SetSchemaVersion(version)
	m.logger.Info().Int("version", version).Int("latest", LatestVersion()).Msg("Schema version read")

	return m.resume(ctx)
}

// Pending returns the deferred heavy step, or nil.
func (m *Migrator) Pending() *Backfill {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// resume applies every step newer than the current version, then creates
// indexes.
func (m *Migrator) resume(ctx context.Context) error {
	for _, step := range m.steps {
		if step.Version <= m.db.SchemaVersion() {
			continue
		}

		deferred, err := m.runStep(ctx, step)
		if err != nil {
			metrics.RecordMigrationStep(step.Name, "failed")
			stepErr := &StepError{Version: step.Version, Name: step.Name, Err: err}
			m.logger.Error().Err(err).Int("version", step.Version).Str("step", step.Name).Msg("Migration step failed")
			return stepErr
		}
		if deferred {
			return nil
		}
	}

	if err := m.createIndexes(ctx); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// runStep applies one step and persists its version. deferred is true when
// the step was handed to a background backfill.
func (m *Migrator) runStep(ctx context.Context, step Step) (deferred bool, err error) {
	start := time.Now()
	log := m.logger.With().Int("version", step.Version).Str("step", step.Name).Logger()

	applied, err := step.Applied(ctx, m.db)
	if err != nil {
		return false, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if applied {
		if err := m.persistVersion(ctx, step.Version); err != nil {
			return false, err
		}
		metrics.RecordMigrationStep(step.Name, "skipped")
		log.Debug().Msg("Migration step already applied")
		return false, nil
	}

	schemaCtx, cancel := database.SchemaContext(ctx)
	err = step.Apply(schemaCtx, m.db)
	cancel()
	if err != nil {
		return false, err
	}

	if step.Heavy() {
		backfill := &Backfill{migrator: m, step: step}
		if m.cfg.BackgroundBackfill {
			m.mu.Lock()
			m.pending = backfill
			m.mu.Unlock()
			metrics.RecordMigrationStep(step.Name, "deferred")
			log.Info().Msg("Heavy migration step deferred to background backfill")
			return true, nil
		}
		if err := backfill.rewrite(ctx); err != nil {
			return false, err
		}
	}

	if err := m.persistVersion(ctx, step.Version); err != nil {
		return false, err
	}
	metrics.RecordMigrationStep(step.Name, "applied")
	log.Info().Dur("duration", time.Since(start)).Msg("Migration step applied")
	return false, nil
}

// ensureBase creates the version row and every table at its latest shape.
// Existing tables keep their shape; steps alter them.
func (m *Migrator) ensureBase(ctx context.Context) error {
	ctx, cancel := database.SchemaContext(ctx)
	defer cancel()

	d := m.db.Dialect()
	err := m.db.InTransaction(ctx, func(tx *database.Tx) error {
		for _, table := range schema.All() {
			if err := tx.ExecDDL(ctx, table.Build(d)...); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	rows, err := database.QueryRow(ctx, m.db, query.Select(query.Count(query.Fragment("*"))).From(schema.Version, "").Build(), database.ScanInt64)
	if err != nil || rows > 0 {
		return err
	}
	_, err = m.db.Execute(ctx, query.Insert(schema.Version).Value(schema.VersionNumber, 0).Build())
	return err
}

func (m *Migrator) readVersion(ctx context.Context) (int, error) {
	stmt := query.Select(query.Max(schema.VersionNumber)).From(schema.Version, "").Build()
	v, err := database.QueryRow(ctx, m.db, stmt, database.ScanNullInt64)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// persistVersion stores v and publishes it to the open store.
func (m *Migrator) persistVersion(ctx context.Context, v int) error {
	if _, err := m.db.Execute(ctx, query.Update(schema.Version).Set(schema.VersionNumber, v).Build()); err != nil {
		return fmt.Errorf("failed to persist schema version %d: %w", v, err)
	}
	m.db.SetSchemaVersion(v)
	return nil
}

// createIndexes runs after the last step because DuckDB refuses to alter
// a table an index depends on.
func (m *Migrator) createIndexes(ctx context.Context) error {
	ctx, cancel := database.SchemaContext(ctx)
	defer cancel()

	return m.db.InTransaction(ctx, func(tx *database.Tx) error {
		for _, idx := range schema.Indexes() {
			if err := tx.ExecDDL(ctx, idx.SQL()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (m *Migrator) batchSize() int {
	if m.cfg.BackfillBatchSize > 0 {
		return m.cfg.BackfillBatchSize
	}
	return defaultBatchSize
}
