// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/plan-player-analytics/Plan-sub001/internal/backup"
	"github.com/plan-player-analytics/Plan-sub001/internal/config"
)

var (
	copyToDialect string
	copyToPath    string
	copyOverwrite bool
	copyBatchSize int
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy the store into another store",
	Long: `Copy every server, player, session and extension value into another
store. The target is migrated first and may use a different dialect.`,
	Example: `  plan copy --to-dialect duckdb --to-path backup/plan.duckdb
  plan copy --to-path plan-restored.db --overwrite`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if copyToPath == "" {
			return errors.New("--to-path is required")
		}
		if copyToPath == cfg.Database.Path {
			return errors.New("--to-path must differ from the configured store")
		}

		ctx := cmd.Context()
		from, err := openStore(ctx, &cfg.Database, &cfg.Migration)
		if err != nil {
			return err
		}
		defer from.Close()

		targetCfg := cfg.Database
		targetCfg.Path = copyToPath
		if copyToDialect != "" {
			targetCfg.Dialect = copyToDialect
		}
		// The target is empty, so nothing is deferred and no checkpoint is kept.
		to, err := openStore(ctx, &targetCfg, &config.MigrationConfig{BackfillBatchSize: cfg.Migration.BackfillBatchSize})
		if err != nil {
			return fmt.Errorf("open target: %w", err)
		}
		defer to.Close()

		report, err := backup.Copy(ctx, from.db, to.db, backup.Options{
			Overwrite:        copyOverwrite,
			SessionBatchSize: copyBatchSize,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "copied %d servers, %d players, %d sessions, %d web users in %s\n",
			report.Servers, report.Players, report.Sessions, report.WebUsers, report.Duration)
		return nil
	},
}

func init() {
	copyCmd.Flags().StringVar(&copyToDialect, "to-dialect", "", "target dialect, sqlite or duckdb (default: same as the source)")
	copyCmd.Flags().StringVar(&copyToPath, "to-path", "", "target database file")
	copyCmd.Flags().BoolVar(&copyOverwrite, "overwrite", false, "remove existing data from the target first")
	copyCmd.Flags().IntVar(&copyBatchSize, "batch-size", backup.DefaultSessionBatchSize, "sessions per bulk load")
}
