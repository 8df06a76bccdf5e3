// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/plan-player-analytics/Plan-sub001/internal/config"
	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/transactions"
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
	"github.com/plan-player-analytics/Plan-sub001/internal/metrics"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
	"github.com/plan-player-analytics/Plan-sub001/internal/supervisor"
	"github.com/plan-player-analytics/Plan-sub001/internal/supervisor/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the store services until interrupted",
	Long: `Migrate the store, then supervise the single writer, the mailbox
sweeper, any deferred migration backfill and, when enabled, the metrics
listener. SIGINT or SIGTERM shuts everything down.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func serve(ctx context.Context, cfg *config.Config) error {
	if cfg.Server.UUID != "" {
		ctx = logging.ContextWithServerUUID(ctx, cfg.Server.UUID)
	}
	logging.CtxInfo(ctx).Str("version", version).Msg("Starting Plan store")

	s, err := openStore(ctx, &cfg.Database, &cfg.Migration)
	if err != nil {
		return err
	}
	defer s.Close()

	metrics.AppInfo.WithLabelValues(version, s.db.Dialect().String()).Set(1)

	tree, err := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	writer := database.NewWriter(s.db, &cfg.Writer)
	tree.AddDataService(writer)

	if b := s.migrator.Pending(); b != nil {
		logging.Info().Str("step", b.Step()).Msg("Schema backfill continues in the background")
		tree.AddDataService(services.NewBackfillService(b))
	}

	tree.AddMaintenanceService(services.NewMailboxSweeper(writer, cfg.Mailbox.SweepInterval))

	if cfg.Metrics.Enabled {
		tree.AddAPIService(services.NewHTTPServerService("metrics-listener", services.NewMetricsServer(cfg.Metrics.Address), 5*time.Second))
		logging.Info().Str("address", cfg.Metrics.Address).Msg("Metrics listener enabled")
	}

	errCh := tree.ServeBackground(ctx)

	if cfg.Server.UUID != "" {
		if err := registerServer(ctx, writer, &cfg.Server); err != nil {
			logging.Error().Err(err).Msg("Failed to register this server")
		}
	}

	err = <-errCh
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Services did not stop within the shutdown timeout")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("Plan store stopped")
	return nil
}

// registerServer stores the configured server through the writer. It blocks
// until the tree has started the writer.
func registerServer(ctx context.Context, writer *database.Writer, sc *config.ServerConfig) error {
	server := &models.Server{
		UUID:        sc.UUID,
		Name:        sc.Name,
		WebAddress:  sc.WebAddress,
		Installed:   true,
		Proxy:       sc.Proxy,
		MaxPlayers:  sc.MaxPlayers,
		PlanVersion: version,
	}
	return writer.Submit(ctx, transactions.StoreServerInfo(server))
}
