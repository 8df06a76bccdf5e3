// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// useBuffer routes the global logger into a buffer for the test.
func useBuffer(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous, level := Logger(), zerolog.GlobalLevel()
	SetLogger(NewTestLogger(&buf))
	t.Cleanup(func() {
		SetLogger(previous)
		zerolog.SetGlobalLevel(level)
	})
	return &buf
}

func TestInit(t *testing.T) {
	buf := useBuffer(t)

	tests := []struct {
		name    string
		cfg     Config
		want    []string
		notWant []string
	}{
		{
			name: "json",
			cfg:  Config{Level: "debug", Format: "json", Output: buf},
			want: []string{`"level":"info"`, `"message":"Store opened"`, `"time":`},
		},
		{
			name:    "console",
			cfg:     Config{Level: "info", Format: "console", Output: buf},
			want:    []string{"Store opened"},
			notWant: []string{`"level"`},
		},
		{
			name: "caller",
			cfg:  Config{Level: "info", Format: "json", Caller: true, Output: buf},
			want: []string{`"caller":`, "logger_test.go"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			Init(tt.cfg)
			Info().Msg("Store opened")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("expected %s in output: %s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("unexpected %s in output: %s", w, out)
				}
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"DEBUG", zerolog.DebugLevel},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.expected {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := useBuffer(t)
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	Debug().Msg("statement executed")
	Info().Msg("store opened")
	Warn().Msg("checkpoint failed")
	Error().Msg("transaction failed")

	out := buf.String()
	for _, dropped := range []string{"statement executed", "store opened"} {
		if strings.Contains(out, dropped) {
			t.Errorf("expected %q to be filtered: %s", dropped, out)
		}
	}
	for _, kept := range []string{"checkpoint failed", "transaction failed"} {
		if !strings.Contains(out, kept) {
			t.Errorf("expected %q in output: %s", kept, out)
		}
	}
}

func TestWith(t *testing.T) {
	buf := useBuffer(t)

	logger := With().Str("dialect", "duckdb").Logger()
	logger.Info().Msg("pool configured")

	if !strings.Contains(buf.String(), `"dialect":"duckdb"`) {
		t.Errorf("expected dialect field in output: %s", buf.String())
	}
}
