// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package query

import (
	"testing"
)

const (
	testSessions Table  = "plan_sessions"
	testUsers    Table  = "plan_users"
	testServers  Table  = "plan_servers"
	testUUID     Column = "uuid"
	testUserID   Column = "user_id"
	testServerID Column = "server_id"
	testStart    Column = "session_start"
	testEnd      Column = "session_end"
)

func TestWhereBuilder_Empty(t *testing.T) {
	wb := NewWhereBuilder()

	if !wb.IsEmpty() {
		t.Error("Expected new builder to be empty")
	}

	if wb.Count() != 0 {
		t.Errorf("Expected count 0, got %d", wb.Count())
	}

	whereClause, args := wb.Build()
	if whereClause != "1=1" {
		t.Errorf("Expected '1=1' for empty builder, got %q", whereClause)
	}
	if len(args) != 0 {
		t.Errorf("Expected 0 args, got %d", len(args))
	}
}

func TestWhereBuilder_Comparisons(t *testing.T) {
	tests := []struct {
		name     string
		build    func(*WhereBuilder)
		expected string
		args     int
	}{
		{"eq", func(wb *WhereBuilder) { wb.Eq(testUUID, "a") }, "uuid = ?", 1},
		{"not eq", func(wb *WhereBuilder) { wb.NotEq(testUUID, "a") }, "uuid <> ?", 1},
		{"range", func(wb *WhereBuilder) { wb.Gt(testStart, 1).Lte(testEnd, 2) }, "session_start > ? AND session_end <= ?", 2},
		{"gte lt", func(wb *WhereBuilder) { wb.Gte(testStart, 1).Lt(testStart, 2) }, "session_start >= ? AND session_start < ?", 2},
		{"null", func(wb *WhereBuilder) { wb.IsNull(testUUID).IsNotNull(testUserID) }, "uuid IS NULL AND user_id IS NOT NULL", 0},
		{"cond", func(wb *WhereBuilder) { wb.Cond("rn = 1") }, "rn = 1", 0},
		{"column to column", func(wb *WhereBuilder) { wb.Eq(Q("s", testUserID), Q("u", "id")) }, "s.user_id = u.id", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wb := NewWhereBuilder()
			tt.build(wb)
			clause, args := wb.Build()
			if clause != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, clause)
			}
			if len(args) != tt.args {
				t.Errorf("Expected %d args, got %d", tt.args, len(args))
			}
		})
	}
}

func TestWhereBuilder_In(t *testing.T) {
	wb := NewWhereBuilder()
	users := []interface{}{"user1", "user2", "user3"}

	wb.In(testUUID, users...)

	whereClause, args := wb.Build()
	expected := "uuid IN (?, ?, ?)"
	if whereClause != expected {
		t.Errorf("Expected %q, got %q", expected, whereClause)
	}
	if len(args) != 3 {
		t.Fatalf("Expected 3 args, got %d", len(args))
	}
	for i, user := range users {
		if args[i] != user {
			t.Errorf("Expected arg[%d] = %q, got %q", i, user, args[i])
		}
	}
}

func TestWhereBuilder_EmptyInSkipped(t *testing.T) {
	wb := NewWhereBuilder().In(testUUID)
	if !wb.IsEmpty() {
		t.Error("Expected empty IN list to be skipped")
	}
}

func TestWhereBuilder_ResolveID(t *testing.T) {
	wb := NewWhereBuilder().
		Eq(testServerID, ResolveID(testServers, K(testUUID, "srv"))).
		Gte(testStart, int64(10))

	clause, args := wb.Build()
	expected := "server_id = (SELECT id FROM plan_servers WHERE uuid = ? LIMIT 1) AND session_start >= ?"
	if clause != expected {
		t.Errorf("Expected %q, got %q", expected, clause)
	}
	if len(args) != 2 || args[0] != "srv" || args[1] != int64(10) {
		t.Errorf("Unexpected args %v", args)
	}
}

func TestWhereBuilder_Or(t *testing.T) {
	wb := NewWhereBuilder().Or(
		NewWhereBuilder().Eq(Column("killer_id"), 1),
		NewWhereBuilder().Eq(Column("victim_id"), 1),
	)
	clause, args := wb.BuildWithPrefix()
	expected := "WHERE ((killer_id = ?) OR (victim_id = ?))"
	if clause != expected {
		t.Errorf("Expected %q, got %q", expected, clause)
	}
	if len(args) != 2 {
		t.Errorf("Expected 2 args, got %d", len(args))
	}
}

func TestWhereBuilder_InSelect(t *testing.T) {
	sub := Select(Column("id")).From(testUsers, "").Where(NewWhereBuilder().Eq(testUUID, "p"))
	wb := NewWhereBuilder().InSelect(testUserID, sub)
	clause, args := wb.Build()
	expected := "user_id IN (SELECT id FROM plan_users WHERE uuid = ?)"
	if clause != expected {
		t.Errorf("Expected %q, got %q", expected, clause)
	}
	if len(args) != 1 {
		t.Errorf("Expected 1 arg, got %d", len(args))
	}
}

func TestWhereBuilder_Count(t *testing.T) {
	wb := NewWhereBuilder()
	wb.Eq(testUUID, "x")
	if wb.Count() != 1 {
		t.Errorf("Expected count 1, got %d", wb.Count())
	}
	if wb.IsEmpty() {
		t.Error("Expected builder to not be empty")
	}
}
