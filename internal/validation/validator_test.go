// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type sample struct {
	UUID  string `validate:"required,uuid"`
	Name  string `validate:"required,max=16"`
	Start int64  `validate:"epoch_ms"`
	End   int64  `validate:"epoch_ms,gtefield=Start"`
	Kind  string `validate:"omitempty,oneof=a b"`
}

func validSample() sample {
	return sample{
		UUID:  "6a1b9c3e-4f41-4f8e-9a59-2b0d7c1e5d20",
		Name:  "Steve",
		Start: 1_700_000_000_000,
		End:   1_700_000_060_000,
	}
}

func TestValidateStruct(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(s *sample)
		wantField string
		wantTag   string
	}{
		{"valid", func(s *sample) {}, "", ""},
		{"zero-length session", func(s *sample) { s.End = s.Start }, "", ""},
		{"missing uuid", func(s *sample) { s.UUID = "" }, "UUID", "required"},
		{"malformed uuid", func(s *sample) { s.UUID = "steve" }, "UUID", "uuid"},
		{"long name", func(s *sample) { s.Name = strings.Repeat("x", 17) }, "Name", "max"},
		{"negative start", func(s *sample) { s.Start = -1 }, "Start", "epoch_ms"},
		{"nanosecond start", func(s *sample) { s.Start = 1_700_000_000_000_000_000 }, "Start", "epoch_ms"},
		{"end before start", func(s *sample) { s.End = s.Start - 1 }, "End", "gtefield"},
		{"unknown kind", func(s *sample) { s.Kind = "c" }, "Kind", "oneof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSample()
			tt.mutate(&s)
			err := ValidateStruct(&s)

			if tt.wantField == "" {
				if err != nil {
					t.Errorf("ValidateStruct() unexpected error: %v", err)
				}
				return
			}

			var se *StructError
			if !errors.As(err, &se) {
				t.Fatalf("ValidateStruct() error = %v, want *StructError", err)
			}
			if !se.HasField(tt.wantField) {
				t.Errorf("expected field %s to fail, got %v", tt.wantField, se)
			}
			found := false
			for _, fe := range se.Fields {
				if fe.Field == tt.wantField && fe.Tag == tt.wantTag {
					found = true
				}
			}
			if !found {
				t.Errorf("expected tag %s on %s, got %v", tt.wantTag, tt.wantField, se)
			}
		})
	}
}

func TestStructError_Message(t *testing.T) {
	s := validSample()
	s.UUID = ""
	s.End = 0

	err := ValidateStruct(&s)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"invalid sample", "UUID is required", "End must not be before Start"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

type bounded struct {
	Low  int
	High float64
}

func TestRegisterStructValidation(t *testing.T) {
	RegisterStructValidation(func(sl validator.StructLevel) {
		b := sl.Current().Interface().(bounded)
		if float64(b.Low) > b.High {
			sl.ReportError(b.High, "High", "High", "gtefield", "Low")
		}
	}, bounded{})

	if err := ValidateStruct(bounded{Low: 1, High: 1.5}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidateStruct(bounded{Low: 2, High: 1.5})
	var se *StructError
	if !errors.As(err, &se) || !se.HasField("High") {
		t.Errorf("expected High to fail, got %v", err)
	}
}

func TestValidateStruct_NonStruct(t *testing.T) {
	err := ValidateStruct("not a struct")
	var se *StructError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StructError, got %v", err)
	}
	if !se.HasField("unknown") {
		t.Errorf("expected unknown field marker, got %v", se)
	}
	if se.Entity != "string" {
		t.Errorf("Entity = %q, want string", se.Entity)
	}
}
