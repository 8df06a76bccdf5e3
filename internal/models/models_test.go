// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package models

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/plan-player-analytics/Plan-sub001/internal/validation"
)

const (
	testPlayer = "2b1c5a8e-6f2d-4d1b-9c3a-7e5f0a4b8c21"
	testServer = "6a1b9c3e-4f41-4f8e-9a59-2b0d7c1e5d20"
)

func failedFields(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		return nil
	}
	var se *validation.StructError
	if !errors.As(err, &se) {
		t.Fatalf("expected *validation.StructError, got %T: %v", err, err)
	}
	fields := make([]string, 0, len(se.Fields))
	for _, fe := range se.Fields {
		fields = append(fields, fe.Field)
	}
	return fields
}

func TestValidate_Ping(t *testing.T) {
	tests := []struct {
		name     string
		min, max int
		avg      float64
		want     string
	}{
		{"ordered", 10, 30, 20.5, ""},
		{"all equal", 15, 15, 15, ""},
		{"avg below min", 10, 30, 9.5, "Avg"},
		{"max below avg", 10, 20, 25, "Max"},
		{"negative min", -1, 20, 10, "Min"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Ping{PlayerUUID: testPlayer, ServerUUID: testServer, Date: 1000, Min: tt.min, Max: tt.max, Avg: tt.avg}
			fields := failedFields(t, Validate(p))
			if tt.want == "" {
				if len(fields) != 0 {
					t.Errorf("unexpected failures: %v", fields)
				}
				return
			}
			if !strings.Contains(strings.Join(fields, ","), tt.want) {
				t.Errorf("expected %s to fail, got %v", tt.want, fields)
			}
		})
	}
}

func TestValidate_Session(t *testing.T) {
	base := func() Session {
		return Session{
			PlayerUUID: testPlayer,
			ServerUUID: testServer,
			Start:      1_000,
			End:        61_000,
			WorldTimes: WorldTimes{
				"world":        GMTimes{Survival: 40_000},
				"world_nether": GMTimes{Creative: 10_000, Spectator: 10_000},
			},
			Kills: []Kill{{KillerUUID: testPlayer, VictimUUID: testServer, Date: 2_000, Weapon: "Bow"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(s *Session)
		want   string
	}{
		{"valid", func(s *Session) {}, ""},
		{"end before start", func(s *Session) { s.End = 500 }, "End"},
		{"world time exceeds length", func(s *Session) { s.WorldTimes["world"][Adventure] = 1 }, "WorldTimes"},
		{"afk exceeds length", func(s *Session) { s.AFKTime = 60_001 }, "AFKTime"},
		{"negative world time", func(s *Session) { s.WorldTimes["world"][Survival] = -1 }, "WorldTimes[world]"},
		{"untracked game mode", func(s *Session) {
			delete(s.WorldTimes["world"], Survival)
			s.WorldTimes["world"]["HARDCORE"] = 5_000
		}, "WorldTimes[world]"},
		{"kill without victim", func(s *Session) { s.Kills[0].VictimUUID = "" }, "VictimUUID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(&s)
			fields := failedFields(t, Validate(&s))
			if tt.want == "" {
				if len(fields) != 0 {
					t.Errorf("unexpected failures: %v", fields)
				}
				return
			}
			found := false
			for _, f := range fields {
				if f == tt.want {
					found = true
				}
			}
			if !found {
				t.Errorf("expected %s to fail, got %v", tt.want, fields)
			}
		})
	}
}

func TestSession_ActivePlaytime(t *testing.T) {
	s := Session{Start: 0, End: 10_000, AFKTime: 4_000}
	if got := s.ActivePlaytime(); got != 6_000 {
		t.Errorf("ActivePlaytime() = %d, want 6000", got)
	}
	s.AFKTime = 20_000
	if got := s.ActivePlaytime(); got != 0 {
		t.Errorf("ActivePlaytime() = %d, want 0 when AFK exceeds length", got)
	}
}

func TestHashIP(t *testing.T) {
	h := HashIP("127.0.0.1")
	if len(h) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(h))
	}
	if h != HashIP("127.0.0.1") {
		t.Error("HashIP should be deterministic")
	}
	if h == HashIP("127.0.0.2") {
		t.Error("different addresses should hash differently")
	}
	g := NewGeoInfo(testPlayer, "127.0.0.1", "Finland", 5)
	if g.IPHash != h {
		t.Errorf("NewGeoInfo hash = %s, want %s", g.IPHash, h)
	}
}

func TestNewWebUser(t *testing.T) {
	PasswordCost = bcrypt.MinCost

	u, err := NewWebUser("admin", "hunter2", testPlayer, 0)
	if err != nil {
		t.Fatalf("NewWebUser() error = %v", err)
	}
	if u.PassHash == "hunter2" {
		t.Error("password must not be stored in plain text")
	}
	if !u.CheckPassword("hunter2") {
		t.Error("CheckPassword should accept the original password")
	}
	if u.CheckPassword("hunter3") {
		t.Error("CheckPassword should reject a different password")
	}
	if err := Validate(u); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	if _, err := NewWebUser("admin", "", "", 0); err == nil {
		t.Error("expected error for empty password")
	}
}

func TestMailboxEntry(t *testing.T) {
	type transfer struct {
		Target string `json:"target"`
		Count  int    `json:"count"`
	}

	m, err := NewMailboxEntry("player_move", testServer, 2_000, transfer{Target: "lobby", Count: 3})
	if err != nil {
		t.Fatalf("NewMailboxEntry() error = %v", err)
	}

	var got transfer
	if err := m.Decode(&got); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Target != "lobby" || got.Count != 3 {
		t.Errorf("Decode() = %+v", got)
	}
	if m.Expired(1_999) {
		t.Error("entry should not be expired before its expiry")
	}
	if !m.Expired(2_000) {
		t.Error("entry should be expired at its expiry")
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"truncated", 5, "trunc"},
		{"Äänekoski", 3, "Ään"},
		{"", 3, ""},
	}
	for _, tt := range tests {
		if got := Clip(tt.in, tt.n); got != tt.want {
			t.Errorf("Clip(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
