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

// Tx is an open transaction on one pooled connection.
type Tx struct {
	tx      *sql.Tx
	dialect query.Dialect
}

// Dialect returns the SQL variant of the store.
func (t *Tx) Dialect() query.Dialect {
	return t.dialect
}

// Exec runs one statement and returns rows affected.
func (t *Tx) Exec(ctx context.Context, stmt query.Statement) (int64, error) {
	start := time.Now()
	res, err := t.tx.ExecContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return 0, operationError("execute", stmt.SQL, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		affected = 0
	}
	logStatement(ctx, "execute", stmt.SQL, start, affected)
	return affected, nil
}

// ExecDDL runs schema statements in order.
func (t *Tx) ExecDDL(ctx context.Context, stmts ...string) error {
	for _, s := range stmts {
		if _, err := t.Exec(ctx, query.Statement{SQL: s}); err != nil {
			return err
		}
	}
	return nil
}

// ExecBatch prepares the first statement added by binder and executes
// every added parameter set with it.
func (t *Tx) ExecBatch(ctx context.Context, binder BatchBinder) (int64, error) {
	var (
		prepared *sql.Stmt
		text     string
		total    int64
		count    int
	)
	start := time.Now()
	defer func() {
		if prepared != nil {
			closeWithLog(prepared, "prepared statement")
		}
	}()

	err := binder(func(stmt query.Statement) error {
		if prepared == nil {
			p, err := t.tx.PrepareContext(ctx, stmt.SQL)
			if err != nil {
				return operationError("prepare batch", stmt.SQL, err)
			}
			prepared, text = p, stmt.SQL
		} else if stmt.SQL != text {
			return operationError("batch", stmt.SQL, fmt.Errorf("statement differs from the prepared batch statement"))
		}
		res, err := prepared.ExecContext(ctx, stmt.Args...)
		if err != nil {
			return operationError("batch", stmt.SQL, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			total += n
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	if count > 0 {
		logStatement(ctx, "batch", text, start, total)
	}
	return total, nil
}

// InsertID runs an INSERT ... RETURNING id. ok is false when the insert
// was skipped by ON CONFLICT DO NOTHING.
func (t *Tx) InsertID(ctx context.Context, stmt query.Statement) (id int64, ok bool, err error) {
	start := time.Now()
	err = t.tx.QueryRowContext(ctx, stmt.SQL, stmt.Args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, operationError("insert", stmt.SQL, err)
	}
	logStatement(ctx, "insert", stmt.SQL, start, 1)
	return id, true, nil
}

// Rows calls fn once per result row inside the transaction.
func (t *Tx) Rows(ctx context.Context, stmt query.Statement, fn func(*sql.Rows) error) error {
	rows, err := t.tx.QueryContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return operationError("query", stmt.SQL, err)
	}
	return operationError("query", stmt.SQL, scanAll(rows, fn))
}

// InTransaction runs fn on one connection and commits when it returns nil.
// The transaction is rolled back on error, panic and cancellation.
func (db *DB) InTransaction(ctx context.Context, fn func(*Tx) error) (err error) {
	if db.closed.Load() {
		return ErrClosed
	}
	metrics.TrackPoolConnection(true)
	defer metrics.TrackPoolConnection(false)

	sqlTx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		if isConnectionError(err) && db.closed.Load() {
			return ErrClosed
		}
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logging.Warn().Err(rbErr).Msg("Failed to roll back transaction")
		}
	}()

	if err := fn(&Tx{tx: sqlTx, dialect: db.dialect}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// Transaction is a named unit of work executed atomically.
type Transaction interface {
	Name() string
	Execute(ctx context.Context, tx *Tx) error
}

// VersionGated is implemented by operations that need a minimum schema
// version. They fail with ErrSchemaNotReady on an older store.
type VersionGated interface {
	RequiredSchemaVersion() int
}

type funcTransaction struct {
	name string
	fn   func(ctx context.Context, tx *Tx) error
}

func (f funcTransaction) Name() string { return f.name }

func (f funcTransaction) Execute(ctx context.Context, tx *Tx) error { return f.fn(ctx, tx) }

// NewTransaction wraps fn as a Transaction.
func NewTransaction(name string, fn func(ctx context.Context, tx *Tx) error) Transaction {
	return funcTransaction{name: name, fn: fn}
}

// Query is a named read returning T.
type Query[T any] interface {
	Name() string
	Execute(ctx context.Context, ex Executor) (T, error)
}

// QueryFunc adapts a function to Query.
type QueryFunc[T any] struct {
	QueryName string
	Fn        func(ctx context.Context, ex Executor) (T, error)
}

// NewQuery wraps fn as a Query.
func NewQuery[T any](name string, fn func(ctx context.Context, ex Executor) (T, error)) QueryFunc[T] {
	return QueryFunc[T]{QueryName: name, Fn: fn}
}

func (q QueryFunc[T]) Name() string { return q.QueryName }

func (q QueryFunc[T]) Execute(ctx context.Context, ex Executor) (T, error) { return q.Fn(ctx, ex) }

// checkVersion fails gated operations on a store that is behind.
func (db *DB) checkVersion(op interface{}) error {
	g, ok := op.(VersionGated)
	if !ok {
		return nil
	}
	if required, current := g.RequiredSchemaVersion(), db.SchemaVersion(); current < required {
		return fmt.Errorf("%w: requires version %d, store is at %d", ErrSchemaNotReady, required, current)
	}
	return nil
}

// ExecuteTransaction applies version gating, runs t atomically and records
// metrics. Failures are returned as *OperationError.
func (db *DB) ExecuteTransaction(ctx context.Context, t Transaction) error {
	if err := db.checkVersion(t); err != nil {
		metrics.RecordDBQuery(t.Name(), 0, err)
		return &OperationError{Op: t.Name(), Err: err}
	}

	ctx = logging.ContextWithOperation(ctx, t.Name())
	start := time.Now()
	err := db.InTransaction(ctx, func(tx *Tx) error {
		return t.Execute(ctx, tx)
	})
	duration := time.Since(start)
	metrics.RecordDBQuery(t.Name(), duration, err)

	if err != nil {
		logging.CtxErr(ctx, err).Dur("duration", duration).Msg("Transaction failed")
		return &OperationError{Op: t.Name(), Err: err}
	}
	logging.CtxDebug(ctx).Dur("duration", duration).Msg("Transaction committed")
	return nil
}

// Run executes q on the pool with version gating and metrics.
func Run[T any](ctx context.Context, db *DB, q Query[T]) (T, error) {
	var zero T
	if err := db.checkVersion(q); err != nil {
		return zero, &OperationError{Op: q.Name(), Err: err}
	}

	start := time.Now()
	out, err := q.Execute(logging.ContextWithOperation(ctx, q.Name()), db)
	metrics.RecordDBQuery(q.Name(), time.Since(start), err)
	if err != nil {
		return zero, &OperationError{Op: q.Name(), Err: err}
	}
	return out, nil
}
