// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

// Package logging provides zerolog-based structured logging for Plan.
//
// A single global logger is configured once at startup from the logging
// section of the configuration file. JSON output is the default; console
// output is meant for local development.
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//	logging.Info().Str("dialect", "duckdb").Msg("Store opened")
//
// # Context-Aware Logging
//
// The store names every transaction and query it runs in the context, and
// a serving process records the UUID of its game server. Ctx adds both as
// the op and server_uuid fields:
//
//	ctx = logging.ContextWithServerUUID(ctx, serverUUID)
//	logging.CtxDebug(ctx).Int64("entries", n).Msg("Expired mailbox entries purged")
//
// # Component Loggers
//
//	migLogger := logging.WithComponent("migrations")
//	migLogger.Info().Int("version", 6).Msg("Step applied")
//
// # slog Adapter
//
// The supervisor tree uses sutureslog, which needs a *slog.Logger.
// NewSlogLogger returns one that writes through the global zerolog logger.
//
// # Testing
//
//	var buf bytes.Buffer
//	logger := logging.NewTestLogger(&buf)
//
// Setting PLAN_TEST_QUIET=1 raises the default level to error.
package logging
