// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package migrations

import "testing"

func testProgress(t *testing.T, p Progress) {
	t.Helper()

	if last, err := p.Load("step"); err != nil || last != 0 {
		t.Errorf("Expected 0 for an unknown step, got %d (%v)", last, err)
	}
	if err := p.Save("step", 2500); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if last, err := p.Load("step"); err != nil || last != 2500 {
		t.Errorf("Expected 2500, got %d (%v)", last, err)
	}
	if err := p.Save("step", 5000); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if last, _ := p.Load("step"); last != 5000 {
		t.Errorf("Expected overwrite to 5000, got %d", last)
	}
	if err := p.Clear("step"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if last, _ := p.Load("step"); last != 0 {
		t.Errorf("Expected 0 after Clear, got %d", last)
	}
}

func TestMemoryProgress(t *testing.T) {
	p := NewMemoryProgress()
	defer p.Close()
	testProgress(t, p)
}

func TestBadgerProgress(t *testing.T) {
	p, err := OpenBadgerProgress(t.TempDir())
	if err != nil {
		t.Fatalf("OpenBadgerProgress failed: %v", err)
	}
	defer p.Close()
	testProgress(t, p)
}

func TestBadgerProgress_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	p, err := OpenBadgerProgress(dir)
	if err != nil {
		t.Fatalf("OpenBadgerProgress failed: %v", err)
	}
	if err := p.Save("geolocation_ip_hash", 12345); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := OpenBadgerProgress(dir)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer reopened.Close()
	if last, err := reopened.Load("geolocation_ip_hash"); err != nil || last != 12345 {
		t.Errorf("Expected 12345 after reopen, got %d (%v)", last, err)
	}
}
