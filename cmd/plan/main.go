// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

// Package main is the plan command: it migrates, serves, copies and purges
// an activity store.
//
// Configuration is layered by koanf (highest priority wins):
//   - PLAN_ environment variables (PLAN_DATABASE__PATH -> database.path)
//   - the YAML file given by --config, PLAN_CONFIG or ./plan.yaml
//   - built-in defaults
//
// Commands:
//
//	plan migrate                 bring the store to the latest schema and exit
//	plan serve                   run the writer, sweeper and metrics listener
//	plan copy --to-path b.duckdb copy the store into another store
//	plan purge --mailbox         remove expired mailbox entries
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/plan-player-analytics/Plan-sub001/internal/config"
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	// configFile is set by the --config flag.
	configFile string

	// cfg is loaded before every command runs.
	cfg *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "plan",
	Short:             "Player analytics store",
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: $PLAN_CONFIG or ./plan.yaml)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(purgeCmd)
}

// loadConfig reads the configuration and sets up logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadWithKoanf(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Format = cfg.Logging.Format
	logCfg.Caller = cfg.Logging.Caller
	logging.Init(logCfg)
	return nil
}
