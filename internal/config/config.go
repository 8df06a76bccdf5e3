// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package config

import "time"

// Config holds all application configuration.
//
// Values are layered by LoadWithKoanf: built-in defaults, then an optional
// YAML file, then PLAN_ prefixed environment variables.
type Config struct {
	Database  DatabaseConfig  `koanf:"database"`
	Migration MigrationConfig `koanf:"migration"`
	Writer    WriterConfig    `koanf:"writer"`
	Mailbox   MailboxConfig   `koanf:"mailbox"`
	Analytics AnalyticsConfig `koanf:"analytics"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// DatabaseConfig selects the backend and tunes its connection pool.
type DatabaseConfig struct {
	// Dialect is sqlite or duckdb.
	Dialect string `koanf:"dialect"`
	Path    string `koanf:"path"`

	// MaxOpenConns of 0 uses runtime.NumCPU().
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`

	// SQLite only.
	BusyTimeout time.Duration `koanf:"busy_timeout"`

	// DuckDB only. Threads of 0 uses runtime.NumCPU().
	DuckDBThreads   int    `koanf:"duckdb_threads"`
	DuckDBMaxMemory string `koanf:"duckdb_max_memory"`
}

// MigrationConfig controls how heavy migration steps run.
type MigrationConfig struct {
	// BackgroundBackfill defers row rewrites of heavy steps to a supervised
	// service instead of blocking startup.
	BackgroundBackfill bool   `koanf:"background_backfill"`
	BackfillBatchSize  int    `koanf:"backfill_batch_size"`
	ProgressPath       string `koanf:"progress_path"` // badger checkpoint dir, empty = in memory
}

// WriterConfig tunes the single-writer queue and its circuit breaker.
type WriterConfig struct {
	QueueSize          int           `koanf:"queue_size"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// MailboxConfig holds the transfer mailbox sweeper settings.
type MailboxConfig struct {
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// AnalyticsConfig holds aggregation parameters.
type AnalyticsConfig struct {
	// ActivePlaytimeThreshold is the weekly active playtime at which a
	// player counts as fully active for the activity index.
	ActivePlaytimeThreshold time.Duration `koanf:"active_playtime_threshold"`
}

// ServerConfig identifies the game server this process stores data for.
type ServerConfig struct {
	UUID       string `koanf:"uuid"`
	Name       string `koanf:"name"`
	WebAddress string `koanf:"web_address"`
	MaxPlayers int    `koanf:"max_players"`
	Proxy      bool   `koanf:"proxy"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig controls the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Address string `koanf:"address"`
}

// ActiveThresholdMillis returns the activity threshold in epoch milliseconds.
func (c *AnalyticsConfig) ActiveThresholdMillis() int64 {
	return c.ActivePlaytimeThreshold.Milliseconds()
}
