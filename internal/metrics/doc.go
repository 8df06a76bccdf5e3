// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

/*
Package metrics provides Prometheus metrics for the persistence layer.

Metrics are registered on the default registry through promauto and served
by "plan serve" at /metrics when metrics.enabled is set.

# Available Metrics

Store:
  - plan_db_query_duration_seconds{operation}: transaction and query latency
  - plan_db_query_errors_total{operation,error_type}: failed operations
  - plan_db_pool_in_use: connections held by an operation
  - plan_db_benign_conflicts_total{table}: resolve-or-create races

Schema:
  - plan_schema_version: current version of the open store
  - plan_migration_steps_total{step,result}: applied, skipped, failed, deferred
  - plan_backfill_rows_total: rows rewritten by background backfills

Writer:
  - plan_writer_queue_depth: transactions waiting for the single writer
  - plan_writer_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - plan_writer_breaker_requests_total{name,result}
  - plan_writer_breaker_transitions_total{name,from_state,to_state}

Mailbox:
  - plan_mailbox_purged_total: expired entries removed by the sweeper

# Usage

	start := time.Now()
	err := tx.Execute(ctx, t)
	metrics.RecordDBQuery(t.Name(), time.Since(start), err)
*/
package metrics
