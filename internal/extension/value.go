// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package extension

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Kind identifies which field of a Value is set. Stored as an integer.
type Kind int

const (
	Boolean Kind = iota + 1
	Number
	Double
	Percentage
	String
	Table
	Component
)

var kindNames = map[Kind]string{
	Boolean:    "boolean",
	Number:     "number",
	Double:     "double",
	Percentage: "percentage",
	String:     "string",
	Table:      "table",
	Component:  "component",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Value is a tagged union of the data an extension can provide.
// Tables and components are held as JSON text.
type Value struct {
	Kind    Kind
	Boolean bool
	Number  int64
	Double  float64 // Double and Percentage
	Text    string  // String, Table and Component
}

func BooleanValue(b bool) Value { return Value{Kind: Boolean, Boolean: b} }

func NumberValue(n int64) Value { return Value{Kind: Number, Number: n} }

func DoubleValue(f float64) Value { return Value{Kind: Double, Double: f} }

// PercentageValue holds a fraction in [0, 1].
func PercentageValue(f float64) Value { return Value{Kind: Percentage, Double: f} }

func StringValue(s string) Value { return Value{Kind: String, Text: s} }

// TableData is a small table rendered by the reporting layer.
type TableData struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
}

// TableValue encodes t as JSON.
func TableValue(t TableData) (Value, error) {
	return jsonValue(Table, t)
}

// ComponentValue encodes an arbitrary rich-text component as JSON.
func ComponentValue(c interface{}) (Value, error) {
	return jsonValue(Component, c)
}

func jsonValue(k Kind, v interface{}) (Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Value{}, fmt.Errorf("failed to encode %s value: %w", k, err)
	}
	return Value{Kind: k, Text: string(data)}, nil
}

// DecodeTable decodes a Table value.
func (v Value) DecodeTable() (TableData, error) {
	var t TableData
	if v.Kind != Table {
		return t, fmt.Errorf("value is a %s, not a table", v.Kind)
	}
	if err := json.Unmarshal([]byte(v.Text), &t); err != nil {
		return t, fmt.Errorf("failed to decode table value: %w", err)
	}
	return t, nil
}

func (v Value) String() string {
	switch v.Kind {
	case Boolean:
		return fmt.Sprintf("%t", v.Boolean)
	case Number:
		return fmt.Sprintf("%d", v.Number)
	case Double:
		return fmt.Sprintf("%g", v.Double)
	case Percentage:
		return fmt.Sprintf("%.2f%%", v.Double*100)
	default:
		return v.Text
	}
}
