// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package main

import (
	"context"
	"errors"

	"github.com/plan-player-analytics/Plan-sub001/internal/config"
	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/migrations"
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
)

// store is an open, migrated database with its backfill checkpoint.
type store struct {
	db       *database.DB
	migrator *migrations.Migrator
	progress migrations.Progress
}

// openStore opens the database described by dbCfg and runs the migrator.
// A pending heavy step is left for the caller to run.
func openStore(ctx context.Context, dbCfg *config.DatabaseConfig, migCfg *config.MigrationConfig) (*store, error) {
	db, err := database.Open(ctx, dbCfg)
	if err != nil {
		return nil, err
	}

	var progress migrations.Progress = migrations.NewMemoryProgress()
	if migCfg.ProgressPath != "" {
		if progress, err = migrations.OpenBadgerProgress(migCfg.ProgressPath); err != nil {
			return nil, errors.Join(err, db.Close())
		}
	}

	s := &store{db: db, migrator: migrations.New(db, migCfg, progress), progress: progress}

	schemaCtx, cancel := database.SchemaContext(ctx)
	defer cancel()
	if err := s.migrator.Run(schemaCtx); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

// Close releases the checkpoint store and the database.
func (s *store) Close() error {
	err := errors.Join(s.progress.Close(), s.db.Close())
	if err != nil {
		logging.Error().Err(err).Msg("Error closing store")
	}
	return err
}
