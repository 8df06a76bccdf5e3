// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package database

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
)

// mockCloser implements io.Closer for testing
type mockCloser struct {
	closed bool
	err    error
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := logging.Logger()
	logging.SetLogger(logging.NewTestLogger(&buf))
	t.Cleanup(func() { logging.SetLogger(previous) })
	return &buf
}

func TestCloseWithLog(t *testing.T) {
	t.Run("nil closer does not panic", func(t *testing.T) {
		buf := captureLogs(t)
		closeWithLog(nil, "test")
		if buf.Len() > 0 {
			t.Errorf("Expected no log output for nil closer, got: %s", buf.String())
		}
	})

	t.Run("successful close does not log", func(t *testing.T) {
		buf := captureLogs(t)
		closer := &mockCloser{}
		closeWithLog(closer, "test resource")

		if !closer.closed {
			t.Error("Expected closer to be closed")
		}
		if buf.Len() > 0 {
			t.Errorf("Expected no log output for successful close, got: %s", buf.String())
		}
	})

	t.Run("error during close is logged", func(t *testing.T) {
		if zerolog.GlobalLevel() > zerolog.WarnLevel {
			t.Skip("warn level disabled")
		}
		buf := captureLogs(t)
		closer := &mockCloser{err: errors.New("close failed: connection reset")}
		closeWithLog(closer, "rows")

		logOutput := buf.String()
		if !strings.Contains(logOutput, "rows") {
			t.Errorf("Expected log to contain resource type, got: %s", logOutput)
		}
		if !strings.Contains(logOutput, "close failed: connection reset") {
			t.Errorf("Expected log to contain error message, got: %s", logOutput)
		}
	})
}

func TestCloseQuietly(t *testing.T) {
	closeQuietly(nil)

	closer := &mockCloser{err: errors.New("ignored")}
	closeQuietly(closer)
	if !closer.closed {
		t.Error("Expected closer to be closed")
	}
}

func TestOperationError(t *testing.T) {
	cause := errors.New("disk full")
	err := operationError("execute", "INSERT   INTO plan_ping\n(user_id) VALUES (?)", cause)

	var opErr *OperationError
	if !errors.As(err, &opErr) {
		t.Fatalf("Expected *OperationError, got %T", err)
	}
	if opErr.Statement != "INSERT INTO plan_ping (user_id) VALUES (?)" {
		t.Errorf("Expected whitespace-collapsed statement, got %q", opErr.Statement)
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to reach the cause")
	}
	if again := operationError("outer", "SELECT 1", err); again != err {
		t.Error("Expected an existing OperationError to be returned unchanged")
	}
	if operationError("noop", "", nil) != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestSummarize(t *testing.T) {
	long := "SELECT " + strings.Repeat("a, ", 60) + "b FROM t"
	got := summarize(long)
	if len(got) != 120 || !strings.HasSuffix(got, "...") {
		t.Errorf("Expected 120 char summary ending in ..., got %d chars: %q", len(got), got)
	}
}

func TestInitError(t *testing.T) {
	err := &InitError{Path: "plan.db", Err: errors.New("permission denied")}
	if !strings.Contains(err.Error(), "plan.db") {
		t.Errorf("Expected path in message: %s", err.Error())
	}
	if errors.Unwrap(err).Error() != "permission denied" {
		t.Error("Expected Unwrap to return the cause")
	}
}
