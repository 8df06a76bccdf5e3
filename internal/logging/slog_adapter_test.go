// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newCapturingSlog(level zerolog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf).Level(level))), &buf
}

func TestSlogHandler_Enabled(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		zlevel zerolog.Level
		slevel slog.Level
		want   bool
	}{
		{"debug logger accepts debug", zerolog.DebugLevel, slog.LevelDebug, true},
		{"info logger rejects debug", zerolog.InfoLevel, slog.LevelDebug, false},
		{"info logger accepts warn", zerolog.InfoLevel, slog.LevelWarn, true},
		{"error logger rejects warn", zerolog.ErrorLevel, slog.LevelWarn, false},
		{"trace logger accepts below debug", zerolog.TraceLevel, slog.LevelDebug - 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := NewSlogHandlerWithLogger(zerolog.New(nil).Level(tt.zlevel))
			if got := h.Enabled(context.Background(), tt.slevel); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSlogHandler_Handle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelInfo, `"level":"info"`},
		{slog.LevelWarn, `"level":"warn"`},
		{slog.LevelError, `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			h := NewSlogHandlerWithLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

			record := slog.NewRecord(time.Now(), tt.level, "service restarted", 0)
			if err := h.Handle(context.Background(), record); err != nil {
				t.Fatalf("Handle() error = %v", err)
			}
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("expected %s in output: %s", tt.want, buf.String())
			}
			if !strings.Contains(buf.String(), "service restarted") {
				t.Errorf("expected message in output: %s", buf.String())
			}
		})
	}
}

func TestSlogHandler_Attributes(t *testing.T) {
	t.Parallel()

	logger, buf := newCapturingSlog(zerolog.TraceLevel)
	logger.With("supervisor", "data-layer").
		WithGroup("service").
		With("layer", "data").
		Info("backoff",
			"name", "writer",
			"failures", 3,
			"wait", 15*time.Second,
			"terminal", false,
			"err", errors.New("store unavailable"),
			slog.Group("detail", "attempt", uint64(2)),
		)

	expected := []string{
		`"supervisor":"data-layer"`,
		`"service.layer":"data"`,
		`"service.name":"writer"`,
		`"service.failures":3`,
		`"service.terminal":false`,
		`"service.err":"store unavailable"`,
		`"service.detail.attempt":2`,
		"service.wait",
	}
	for _, e := range expected {
		if !strings.Contains(buf.String(), e) {
			t.Errorf("output missing %s: %s", e, buf.String())
		}
	}
	if strings.Contains(buf.String(), "service.supervisor") {
		t.Errorf("attribute added before the group was qualified by it: %s", buf.String())
	}
}

func TestSlogHandler_EmptyGroupAndAttrs(t *testing.T) {
	t.Parallel()

	h := NewSlogHandlerWithLogger(zerolog.Nop())
	if got := h.WithGroup(""); got != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
	if got := h.WithAttrs(nil); got != h {
		t.Error("WithAttrs(nil) should return the same handler")
	}
}

func TestSlogHandler_ContextFields(t *testing.T) {
	t.Parallel()

	logger, buf := newCapturingSlog(zerolog.InfoLevel)
	ctx := ContextWithOperation(context.Background(), "RemoveEverything")
	ctx = ContextWithServerUUID(ctx, "srv-42")

	logger.InfoContext(ctx, "service stopped")

	for _, e := range []string{`"op":"RemoveEverything"`, `"server_uuid":"srv-42"`} {
		if !strings.Contains(buf.String(), e) {
			t.Errorf("output missing %s: %s", e, buf.String())
		}
	}
}

func TestSlogHandler_FilteredLevel(t *testing.T) {
	t.Parallel()

	logger, buf := newCapturingSlog(zerolog.WarnLevel)
	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected no output below the logger level, got %s", buf.String())
	}
}

func TestNewSlogLogger(t *testing.T) {
	// Not parallel: swaps the global logger
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf).Level(zerolog.TraceLevel))

	NewSlogLogger().Warn("from slog")

	if !strings.Contains(buf.String(), "from slog") {
		t.Errorf("NewSlogLogger() should write to the global logger: %s", buf.String())
	}
}
