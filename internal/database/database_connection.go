// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package database

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"

	"github.com/plan-player-analytics/Plan-sub001/internal/config"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
)

// dataSourceName builds the driver connection string for the dialect.
func dataSourceName(d query.Dialect, cfg *config.DatabaseConfig) string {
	switch d {
	case query.DuckDB:
		threads := cfg.DuckDBThreads
		if threads <= 0 {
			threads = runtime.NumCPU()
		}
		return fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s",
			cfg.Path, threads, url.QueryEscape(cfg.DuckDBMaxMemory))
	default:
		// _txlock=immediate takes the write lock at BEGIN so two writers
		// queue on busy_timeout instead of failing on lock upgrade.
		params := url.Values{}
		params.Add("_pragma", "foreign_keys(1)")
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", cfg.BusyTimeout.Milliseconds()))
		params.Add("_pragma", "journal_mode(WAL)")
		params.Add("_txlock", "immediate")
		return "file:" + cfg.Path + "?" + params.Encode()
	}
}

// configureConnectionPool applies the pool limits from configuration.
func (db *DB) configureConnectionPool() {
	maxOpen := db.cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = runtime.NumCPU()
	}
	db.conn.SetMaxOpenConns(maxOpen)
	db.conn.SetMaxIdleConns(db.cfg.MaxIdleConns)
	db.conn.SetConnMaxLifetime(db.cfg.ConnMaxLifetime)
	db.conn.SetConnMaxIdleTime(db.cfg.ConnMaxIdleTime)
}

// isTransactionConflict checks if an error is a DuckDB transaction conflict
// or a SQLite lock that outlived busy_timeout.
func isTransactionConflict(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "Transaction conflict") ||
		strings.Contains(errStr, "Conflict on update") ||
		strings.Contains(errStr, "Conflict on tuple deletion") ||
		strings.Contains(errStr, "database is locked")
}

// isConnectionError checks if an error means the pool lost the store.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "database is closed") ||
		strings.Contains(errStr, "sql: database is closed") ||
		strings.Contains(errStr, "driver: bad connection") ||
		strings.Contains(errStr, "connection is already closed")
}
