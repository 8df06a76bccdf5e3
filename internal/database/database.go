// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "modernc.org/sqlite"

	"github.com/plan-player-analytics/Plan-sub001/internal/config"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
	"github.com/plan-player-analytics/Plan-sub001/internal/metrics"
)

// DB is an open store of either dialect.
//
// It owns the connection pool and the in-memory schema version that gates
// transactions and queries. All methods are safe for concurrent use.
type DB struct {
	conn    *sql.DB
	cfg     *config.DatabaseConfig
	dialect query.Dialect

	version atomic.Int64
	closed  atomic.Bool
}

// Open connects to the store described by cfg. It does not create tables;
// run migrations.Migrator before serving operations.
//
// Failures are returned as *InitError.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (*DB, error) {
	dialect, err := query.ParseDialect(cfg.Dialect)
	if err != nil {
		return nil, &InitError{Path: cfg.Path, Err: err}
	}

	// Use 0750 permissions (owner: rwx, group: rx, other: none) per gosec G301
	dbDir := filepath.Dir(cfg.Path)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0o750); err != nil {
			return nil, &InitError{Path: cfg.Path, Err: fmt.Errorf("failed to create database directory %s: %w", dbDir, err)}
		}
	}

	conn, err := sql.Open(dialect.DriverName(), dataSourceName(dialect, cfg))
	if err != nil {
		return nil, &InitError{Path: cfg.Path, Err: fmt.Errorf("failed to open database: %w", err)}
	}

	db := &DB{
		conn:    conn,
		cfg:     cfg,
		dialect: dialect,
	}
	db.configureConnectionPool()

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, &InitError{Path: cfg.Path, Err: fmt.Errorf("failed to connect: %w", err)}
	}

	logging.Info().
		Str("dialect", dialect.String()).
		Str("path", cfg.Path).
		Msg("Database opened")
	return db, nil
}

// Dialect returns the SQL variant of the store.
func (db *DB) Dialect() query.Dialect {
	return db.dialect
}

// Path returns the file the store lives in.
func (db *DB) Path() string {
	return db.cfg.Path
}

// SchemaVersion returns the version last persisted by the migrator.
func (db *DB) SchemaVersion() int {
	return int(db.version.Load())
}

// SetSchemaVersion publishes a newly persisted version. Only the migrator
// and its backfill worker call it.
func (db *DB) SetSchemaVersion(v int) {
	db.version.Store(int64(v))
	metrics.SchemaVersion.Set(float64(v))
}

// Ping checks if the database connection is alive
func (db *DB) Ping(ctx context.Context) error {
	if db.closed.Load() {
		return ErrClosed
	}
	return db.conn.PingContext(ctx)
}

// Checkpoint flushes the write-ahead log into the main file.
func (db *DB) Checkpoint(ctx context.Context) error {
	stmt := "CHECKPOINT"
	if db.dialect == query.SQLite {
		stmt = "PRAGMA wal_checkpoint(TRUNCATE)"
	}
	if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}
	return nil
}

// Close checkpoints and closes the pool. Operations started afterwards
// fail with ErrClosed. Close is idempotent.
func (db *DB) Close() error {
	if !db.closed.CompareAndSwap(false, true) {
		return nil
	}

	// Force a checkpoint to flush WAL before closing.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()

	return db.conn.Close()
}

// SchemaContext returns a context with timeout for schema operations
func SchemaContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 60*time.Second)
}
