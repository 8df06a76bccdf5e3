// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
	"github.com/plan-player-analytics/Plan-sub001/internal/metrics"
)

// Executor runs built statements. Both *DB (one transaction per call) and
// *Tx (inside an open transaction) implement it, so queries compose with
// transactions.
type Executor interface {
	Dialect() query.Dialect

	// Exec runs one statement and returns rows affected.
	Exec(ctx context.Context, stmt query.Statement) (int64, error)

	// Rows calls fn once per result row. Rows are closed on every path.
	Rows(ctx context.Context, stmt query.Statement, fn func(*sql.Rows) error) error
}

// RowMapper converts the current row into a value.
type RowMapper[T any] func(rows *sql.Rows) (T, error)

// BatchBinder adds the parameter sets of a batch. Every added statement
// must carry the same SQL text; the first one is prepared.
type BatchBinder func(add func(query.Statement) error) error

var (
	_ Executor = (*DB)(nil)
	_ Executor = (*Tx)(nil)
)

// QueryRows maps every row of stmt.
func QueryRows[T any](ctx context.Context, ex Executor, stmt query.Statement, mapper RowMapper[T]) ([]T, error) {
	var out []T
	err := ex.Rows(ctx, stmt, func(rows *sql.Rows) error {
		v, err := mapper(rows)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// QueryRow maps the first row of stmt, or returns ErrNotFound.
func QueryRow[T any](ctx context.Context, ex Executor, stmt query.Statement, mapper RowMapper[T]) (T, error) {
	var (
		out   T
		found bool
	)
	err := ex.Rows(ctx, stmt, func(rows *sql.Rows) error {
		if found {
			return nil
		}
		v, err := mapper(rows)
		if err != nil {
			return err
		}
		out, found = v, true
		return nil
	})
	if err != nil {
		return out, err
	}
	if !found {
		return out, ErrNotFound
	}
	return out, nil
}

// ScanInt64 reads a single integer column.
func ScanInt64(rows *sql.Rows) (int64, error) {
	var v int64
	err := rows.Scan(&v)
	return v, err
}

// ScanNullInt64 reads a single nullable integer column such as MAX(id).
func ScanNullInt64(rows *sql.Rows) (sql.NullInt64, error) {
	var v sql.NullInt64
	err := rows.Scan(&v)
	return v, err
}

// ScanString reads a single text column.
func ScanString(rows *sql.Rows) (string, error) {
	var v string
	err := rows.Scan(&v)
	return v, err
}

// Exec runs stmt in its own transaction.
func (db *DB) Exec(ctx context.Context, stmt query.Statement) (int64, error) {
	return db.Execute(ctx, stmt)
}

// Execute runs one statement in its own transaction and commits.
func (db *DB) Execute(ctx context.Context, stmt query.Statement) (int64, error) {
	var affected int64
	err := db.InTransaction(ctx, func(tx *Tx) error {
		n, err := tx.Exec(ctx, stmt)
		affected = n
		return err
	})
	return affected, err
}

// ExecuteBatch prepares the first statement added by binder once and
// executes every parameter set under one connection and one commit.
// An empty batch is a no-op.
func (db *DB) ExecuteBatch(ctx context.Context, binder BatchBinder) (int64, error) {
	var affected int64
	err := db.InTransaction(ctx, func(tx *Tx) error {
		n, err := tx.ExecBatch(ctx, binder)
		affected = n
		return err
	})
	return affected, err
}

// ExecuteBestEffort runs DDL that is known to be rejected by one dialect.
// A failure on unsupportedOn is logged and swallowed; a failure on the
// other dialect is returned.
func (db *DB) ExecuteBestEffort(ctx context.Context, ddl string, unsupportedOn query.Dialect) error {
	_, err := db.Execute(ctx, query.Statement{SQL: ddl})
	if err == nil {
		return nil
	}
	if db.dialect == unsupportedOn && !errors.Is(err, ErrClosed) && ctx.Err() == nil {
		logging.Debug().
			Str("dialect", db.dialect.String()).
			Str("statement", summarize(ddl)).
			Err(err).
			Msg("Best-effort statement not supported by dialect")
		return nil
	}
	return err
}

// Rows runs a read on a pooled connection outside any transaction.
func (db *DB) Rows(ctx context.Context, stmt query.Statement, fn func(*sql.Rows) error) error {
	if db.closed.Load() {
		return ErrClosed
	}
	metrics.TrackPoolConnection(true)
	defer metrics.TrackPoolConnection(false)

	rows, err := db.conn.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return operationError("query", stmt.SQL, err)
	}
	return operationError("query", stmt.SQL, scanAll(rows, fn))
}

// scanAll iterates rows and closes them whatever the outcome.
func scanAll(rows *sql.Rows, fn func(*sql.Rows) error) error {
	defer closeWithLog(rows, "rows")
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate rows: %w", err)
	}
	return nil
}

// logStatement logs an executed statement at debug.
func logStatement(ctx context.Context, kind, sql string, start time.Time, affected int64) {
	logging.CtxDebug(ctx).
		Str("kind", kind).
		Str("statement", summarize(sql)).
		Dur("duration", time.Since(start)).
		Int64("rows_affected", affected).
		Msg("Statement executed")
}
