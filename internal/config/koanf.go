// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"plan.yaml",
	"plan.yml",
	"/etc/plan/plan.yaml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "PLAN_CONFIG"

// EnvPrefix is the prefix of every environment variable read by LoadWithKoanf.
const EnvPrefix = "PLAN_"

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect:         "sqlite",
			Path:            "plan.db",
			MaxOpenConns:    0, // 0 = use runtime.NumCPU()
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 5 * time.Minute,
			BusyTimeout:     5 * time.Second,
			DuckDBThreads:   0,
			DuckDBMaxMemory: "1GB",
		},
		Migration: MigrationConfig{
			BackgroundBackfill: false,
			BackfillBatchSize:  2500,
			ProgressPath:       "",
		},
		Writer: WriterConfig{
			QueueSize:          1024,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Mailbox: MailboxConfig{
			SweepInterval: 10 * time.Minute,
		},
		Analytics: AnalyticsConfig{
			ActivePlaytimeThreshold: 30 * time.Minute,
		},
		Server: ServerConfig{
			Name:       "Server",
			MaxPlayers: -1, // unknown until the platform reports it
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: "127.0.0.1:9464",
		},
	}
}

// LoadWithKoanf loads configuration with layered sources:
//  1. Defaults
//  2. Config file: path, else PLAN_CONFIG, else the first of DefaultConfigPaths
//  3. Environment variables (PLAN_DATABASE__PATH -> database.path)
func LoadWithKoanf(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration without reading any source.
func Default() *Config {
	return defaultConfig()
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envShortcuts maps short variable names to their koanf paths.
var envShortcuts = map[string]string{
	"dialect":     "database.dialect",
	"db_path":     "database.path",
	"server_uuid": "server.uuid",
	"log_level":   "logging.level",
	"log_format":  "logging.format",
}

// envTransformFunc maps environment variable names to koanf paths.
// A double underscore separates sections:
//
//   - PLAN_DATABASE__MAX_OPEN_CONNS -> database.max_open_conns
//   - PLAN_WRITER__BREAKER_TIMEOUT  -> writer.breaker_timeout
//   - PLAN_LOG_LEVEL                -> logging.level
//
// Returning "" drops the variable.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	if mapped, ok := envShortcuts[key]; ok {
		return mapped
	}
	if !strings.Contains(key, "__") {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}
