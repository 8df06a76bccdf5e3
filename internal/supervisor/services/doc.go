// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

/*
Package services adapts store components to suture's Serve pattern.

# Available Services

MailboxSweeper:
  - purges expired transfer mailbox entries every interval
  - submits through the single writer so it never races capture writes

BackfillService:
  - runs a deferred heavy migration step once
  - returns suture.ErrDoNotRestart when finished or failed

HTTPServerService:
  - wraps *http.Server with graceful shutdown
  - NewMetricsServer builds the Prometheus listener

The writer itself (database.Writer) implements suture.Service and needs no
wrapper.
*/
package services
