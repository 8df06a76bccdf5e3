// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

/*
Package supervisor runs the long-lived services of a serving process under a
suture v4 tree.

# Overview

	Root ("plan")
	├── data-layer
	│   ├── database.Writer
	│   └── services.BackfillService (while a heavy migration step is pending)
	├── maintenance-layer
	│   └── services.MailboxSweeper
	└── api-layer
	    └── services.HTTPServerService (metrics listener, when enabled)

Each layer counts failures on its own, so a listener that keeps failing to
bind backs off without stopping the writer.

Supervisor events (restarts, backoff, timeouts) are logged through the
sutureslog hook; pass logging.NewSlogLogger() to route them to zerolog.

# Usage

	tree, _ := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddDataService(writer)
	tree.AddMaintenanceService(services.NewMailboxSweeper(writer, cfg.Mailbox.SweepInterval))
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

Services signal that they are finished for good by returning
suture.ErrDoNotRestart.
*/
package supervisor
