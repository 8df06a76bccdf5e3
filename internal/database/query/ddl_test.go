// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package query

import (
	"strings"
	"testing"
)

func worldsTable() *CreateTableBuilder {
	return CreateTable("plan_worlds").
		ID().
		Column(VarcharCol("world_name", 100).NotNull()).
		Column(Col(testServerID, BigInt).NotNull()).
		Column(Col("is_default", Boolean).NotNull().DefaultBool(false)).
		ForeignKey(testServerID, testServers, "id").
		UniqueTogether("world_name", testServerID)
}

func TestCreateTable_SQLite(t *testing.T) {
	stmts := worldsTable().Build(SQLite)
	if len(stmts) != 1 {
		t.Fatalf("Expected 1 statement, got %d: %v", len(stmts), stmts)
	}
	sql := stmts[0]

	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS plan_worlds (",
		"id INTEGER PRIMARY KEY AUTOINCREMENT",
		"world_name VARCHAR(100) NOT NULL",
		"is_default INTEGER NOT NULL DEFAULT 0",
		"UNIQUE (world_name, server_id)",
		"FOREIGN KEY (server_id) REFERENCES plan_servers (id)",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("Expected SQLite DDL to contain %q:\n%s", want, sql)
		}
	}
	if strings.Contains(sql, "CHECK") {
		t.Errorf("SQLite DDL should not carry length checks:\n%s", sql)
	}
}

func TestCreateTable_DuckDB(t *testing.T) {
	stmts := worldsTable().Build(DuckDB)
	if len(stmts) != 2 {
		t.Fatalf("Expected sequence + table, got %d: %v", len(stmts), stmts)
	}
	if stmts[0] != "CREATE SEQUENCE IF NOT EXISTS plan_worlds_seq" {
		t.Errorf("Unexpected sequence statement %q", stmts[0])
	}
	sql := stmts[1]
	for _, want := range []string{
		"id BIGINT PRIMARY KEY DEFAULT nextval('plan_worlds_seq')",
		"world_name VARCHAR(100) NOT NULL CHECK (length(world_name) <= 100)",
		"is_default BOOLEAN NOT NULL DEFAULT FALSE",
	} {
		if !strings.Contains(sql, want) {
			t.Errorf("Expected DuckDB DDL to contain %q:\n%s", want, sql)
		}
	}
	if strings.Contains(sql, "FOREIGN KEY") {
		t.Errorf("DuckDB DDL should not carry foreign keys:\n%s", sql)
	}
}

func TestCreateTable_BuildAs(t *testing.T) {
	stmts := worldsTable().BuildAs(DuckDB, "plan_worlds_rebuild")
	if !strings.Contains(stmts[0], "plan_worlds_rebuild_seq") {
		t.Errorf("Expected renamed sequence, got %q", stmts[0])
	}
	if !strings.HasPrefix(stmts[1], "CREATE TABLE IF NOT EXISTS plan_worlds_rebuild (") {
		t.Errorf("Expected renamed table, got %q", stmts[1])
	}
}

func TestColumnNames(t *testing.T) {
	got := worldsTable().ColumnNames()
	want := []Column{"id", "world_name", testServerID, "is_default"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Column %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestAlterStatements(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{
			"add column omits constraints",
			AddColumn(DuckDB, testSessions, Col("afk_time", BigInt).NotNull().DefaultInt(0)),
			"ALTER TABLE plan_sessions ADD COLUMN afk_time BIGINT DEFAULT 0",
		},
		{
			"add boolean column on sqlite",
			AddColumn(SQLite, "plan_user_info", Col("opped", Boolean).DefaultBool(false)),
			"ALTER TABLE plan_user_info ADD COLUMN opped INTEGER DEFAULT 0",
		},
		{"drop column", DropColumn("plan_geolocations", "ip"), "ALTER TABLE plan_geolocations DROP COLUMN ip"},
		{"alter type", AlterColumnType(DuckDB, "plan_tps", "cpu_usage", Double), "ALTER TABLE plan_tps ALTER COLUMN cpu_usage TYPE DOUBLE"},
		{"drop table", DropTable("plan_actions"), "DROP TABLE IF EXISTS plan_actions"},
		{"rename", RenameTable("a_rebuild", "a"), "ALTER TABLE a_rebuild RENAME TO a"},
		{"unique index", CreateIndex("idx_x", true, "t", "a", "b"), "CREATE UNIQUE INDEX IF NOT EXISTS idx_x ON t (a, b)"},
		{"index", CreateIndex("idx_y", false, "t", "a"), "CREATE INDEX IF NOT EXISTS idx_y ON t (a)"},
		{"copy rows", CopyRows("a", "b", []Column{"id", "x"}), "INSERT INTO b (id, x) SELECT id, x FROM a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, tt.got)
			}
		})
	}
}
