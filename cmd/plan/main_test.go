// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package main

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plan-player-analytics/Plan-sub001/internal/database/migrations"
)

// execute runs the root command with args against a store in dir.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PLAN_DB_PATH", filepath.Join(dir, "plan.db"))
	t.Setenv("PLAN_LOG_LEVEL", "error")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	dir := t.TempDir()
	want := fmt.Sprintf("schema version %d of %d", migrations.LatestVersion(), migrations.LatestVersion())

	for range 2 {
		out, err := execute(t, dir, "migrate")
		if err != nil {
			t.Fatalf("migrate failed: %v", err)
		}
		if !strings.Contains(out, want) {
			t.Errorf("expected %q, got %q", want, out)
		}
	}
}

func TestPurgeCommand(t *testing.T) {
	dir := t.TempDir()

	if _, err := execute(t, dir, "purge"); err == nil {
		t.Error("expected purge without flags to fail")
	}

	out, err := execute(t, dir, "purge", "--mailbox")
	if err != nil {
		t.Fatalf("purge failed: %v", err)
	}
	if !strings.Contains(out, "PurgeExpiredMailbox done") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCopyCommand(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "copy.duckdb")

	out, err := execute(t, dir, "copy", "--to-dialect", "duckdb", "--to-path", target)
	if err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if !strings.Contains(out, "copied 0 servers, 0 players, 0 sessions") {
		t.Errorf("unexpected output %q", out)
	}
}
