// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plan-player-analytics/Plan-sub001/internal/database/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the store to the latest schema version",
	Long: `Create missing tables and apply every pending migration step in the
foreground, including heavy backfills, then exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := openStore(ctx, &cfg.Database, &cfg.Migration)
		if err != nil {
			return err
		}
		defer s.Close()

		// A backfill deferred by background_backfill runs here instead.
		if b := s.migrator.Pending(); b != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "running backfill %s\n", b.Step())
			if err := b.Run(ctx); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d of %d\n", s.db.SchemaVersion(), migrations.LatestVersion())
		return nil
	},
}
