// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package database

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
)

var (
	// ErrSchemaNotReady is returned by version gated operations when the
	// store has not been migrated far enough for them.
	ErrSchemaNotReady = errors.New("schema not ready")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("database is closed")

	// ErrAmbiguousSessionMatch rejects a session bulk load that holds two
	// sessions with the same player, server and start.
	ErrAmbiguousSessionMatch = errors.New("ambiguous session match")

	// ErrStoreUnavailable is returned by the writer while its breaker is open.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound is returned by single-row queries that matched nothing.
	ErrNotFound = errors.New("not found")
)

// OperationError is the failure of one transaction, query or statement.
type OperationError struct {
	Op        string
	Statement string
	Err       error
}

func (e *OperationError) Error() string {
	if e.Statement == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s failed [%s]: %v", e.Op, e.Statement, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// InitError is returned when the store cannot be opened. It is fatal.
type InitError struct {
	Path string
	Err  error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("failed to initialize database %s: %v", e.Path, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// operationError wraps err unless it already carries an operation.
func operationError(op, sql string, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return err
	}
	return &OperationError{Op: op, Statement: summarize(sql), Err: err}
}

// summarize shortens statement text for error messages and logs.
func summarize(sql string) string {
	sql = strings.Join(strings.Fields(sql), " ")
	if len(sql) > 120 {
		return sql[:117] + "..."
	}
	return sql
}

// IsConstraintViolation reports whether err is a unique key violation,
// including a DuckDB write-write conflict. Resolve-or-create callers treat
// it as a lost race and re-select the existing row. NOT NULL, CHECK and
// foreign key failures are real errors and do not match.
func IsConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint failed") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "violates unique constraint") ||
		strings.Contains(msg, "violates primary key constraint") ||
		isTransactionConflict(err)
}

// closeWithLog closes a resource and logs any error
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
