// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package config

import (
	"fmt"

	"github.com/google/uuid"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateMigration(); err != nil {
		return err
	}
	if err := c.validateWriter(); err != nil {
		return err
	}
	if c.Mailbox.SweepInterval <= 0 {
		return fmt.Errorf("mailbox.sweep_interval must be positive, got %v", c.Mailbox.SweepInterval)
	}
	if c.Analytics.ActivePlaytimeThreshold <= 0 {
		return fmt.Errorf("analytics.active_playtime_threshold must be positive, got %v", c.Analytics.ActivePlaytimeThreshold)
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if c.Metrics.Enabled && c.Metrics.Address == "" {
		return fmt.Errorf("metrics.address is required when metrics are enabled")
	}
	return c.validateLogging()
}

func (c *Config) validateDatabase() error {
	switch c.Database.Dialect {
	case "sqlite", "duckdb":
	default:
		return fmt.Errorf("database.dialect must be sqlite or duckdb, got %q", c.Database.Dialect)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Database.MaxOpenConns < 0 {
		return fmt.Errorf("database.max_open_conns must not be negative, got %d", c.Database.MaxOpenConns)
	}
	if c.Database.MaxIdleConns <= 0 {
		return fmt.Errorf("database.max_idle_conns must be positive, got %d", c.Database.MaxIdleConns)
	}
	if c.Database.DuckDBThreads < 0 {
		return fmt.Errorf("database.duckdb_threads must not be negative, got %d", c.Database.DuckDBThreads)
	}
	return nil
}

func (c *Config) validateMigration() error {
	if c.Migration.BackfillBatchSize <= 0 {
		return fmt.Errorf("migration.backfill_batch_size must be positive, got %d", c.Migration.BackfillBatchSize)
	}
	return nil
}

func (c *Config) validateWriter() error {
	if c.Writer.QueueSize <= 0 {
		return fmt.Errorf("writer.queue_size must be positive, got %d", c.Writer.QueueSize)
	}
	if c.Writer.BreakerMaxFailures == 0 {
		return fmt.Errorf("writer.breaker_max_failures must be positive")
	}
	if c.Writer.BreakerTimeout <= 0 {
		return fmt.Errorf("writer.breaker_timeout must be positive, got %v", c.Writer.BreakerTimeout)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.UUID != "" {
		if _, err := uuid.Parse(c.Server.UUID); err != nil {
			return fmt.Errorf("server.uuid is not a valid UUID: %w", err)
		}
	}
	if c.Server.Name == "" {
		return fmt.Errorf("server.name is required")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of trace, debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
