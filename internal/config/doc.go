// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

/*
Package config loads Plan configuration with koanf v2.

Sources are applied in order, later ones winning:

 1. Built-in defaults (defaultConfig)
 2. A YAML file (--config flag, PLAN_CONFIG, or plan.yaml in the working directory)
 3. Environment variables prefixed with PLAN_

Nested keys use a double underscore in environment variables:

	PLAN_DATABASE__DIALECT=duckdb
	PLAN_DATABASE__PATH=/data/plan.duckdb
	PLAN_WRITER__BREAKER_TIMEOUT=1m
	PLAN_LOG_LEVEL=debug

Example file:

	database:
	  dialect: sqlite
	  path: /data/plan.db
	migration:
	  background_backfill: true
	  progress_path: /data/plan-backfill
	server:
	  uuid: 6a1b9c3e-4f41-4f8e-9a59-2b0d7c1e5d20
	  name: Survival
	metrics:
	  enabled: true
*/
package config
