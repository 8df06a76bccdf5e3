// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package query

import (
	"strconv"
	"strings"
)

// Table is the name of a table. Table names are declared as constants in the
// schema package; converting a runtime string into a Table is never done.
type Table string

// Column is the name of a column, declared as a constant like Table.
type Column string

// Alias names a table or derived column inside a single statement.
type Alias string

// Fragment is a piece of constant SQL text such as "COUNT(*)" or "rn = 1".
// Untyped string constants convert to Fragment implicitly, runtime strings do
// not, which keeps statement text limited to values known at compile time.
type Fragment string

// Statement is rendered SQL text with its positional arguments.
type Statement struct {
	SQL  string
	Args []interface{}
}

// String returns the SQL text, useful in logs and error messages.
func (s Statement) String() string {
	return s.SQL
}

// Expr is anything that can be rendered inside a statement.
type Expr interface {
	render(b *buffer)
}

// buffer accumulates statement text and bound arguments in order.
type buffer struct {
	sb   strings.Builder
	args []interface{}
}

func (b *buffer) write(s string) {
	b.sb.WriteString(s)
}

// value renders v either as a nested expression or as a bound parameter.
func (b *buffer) value(v interface{}) {
	if e, ok := v.(Expr); ok {
		e.render(b)
		return
	}
	b.sb.WriteString("?")
	b.args = append(b.args, v)
}

func (b *buffer) statement() Statement {
	return Statement{SQL: b.sb.String(), Args: b.args}
}

func (c Column) render(b *buffer)   { b.write(string(c)) }
func (f Fragment) render(b *buffer) { b.write(string(f)) }
func (a Alias) render(b *buffer)    { b.write(string(a)) }

type qualified struct {
	alias Alias
	col   Column
}

func (q qualified) render(b *buffer) {
	b.write(string(q.alias))
	b.write(".")
	b.write(string(q.col))
}

// Q qualifies a column with a table alias: Q("s", SessionStart) renders s.session_start.
func Q(alias Alias, col Column) Expr {
	return qualified{alias: alias, col: col}
}

type aliased struct {
	expr Expr
	name Alias
}

func (a aliased) render(b *buffer) {
	a.expr.render(b)
	b.write(" AS ")
	b.write(string(a.name))
}

// As names a projected expression.
func As(e Expr, name Alias) Expr {
	return aliased{expr: e, name: name}
}

type call struct {
	prefix string
	args   []Expr
	suffix string
}

func (c call) render(b *buffer) {
	b.write(c.prefix)
	for i, a := range c.args {
		if i > 0 {
			b.write(", ")
		}
		a.render(b)
	}
	b.write(c.suffix)
}

// Count renders COUNT(e).
func Count(e Expr) Expr { return call{prefix: "COUNT(", args: []Expr{e}, suffix: ")"} }

// CountDistinct renders COUNT(DISTINCT e).
func CountDistinct(e Expr) Expr {
	return call{prefix: "COUNT(DISTINCT ", args: []Expr{e}, suffix: ")"}
}

// Max renders MAX(e).
func Max(e Expr) Expr { return call{prefix: "MAX(", args: []Expr{e}, suffix: ")"} }

// Min renders MIN(e).
func Min(e Expr) Expr { return call{prefix: "MIN(", args: []Expr{e}, suffix: ")"} }

// Avg renders AVG(e) as a double on both backends.
func Avg(e Expr) Expr { return call{prefix: "CAST(AVG(", args: []Expr{e}, suffix: ") AS DOUBLE)"} }

// Sum renders a null-safe integer sum. DuckDB widens SUM(BIGINT) to HUGEINT,
// which database/sql cannot scan into int64, so the result is cast back.
func Sum(e Expr) Expr {
	return call{prefix: "CAST(COALESCE(SUM(", args: []Expr{e}, suffix: "), 0) AS BIGINT)"}
}

// Minus renders (a - b - ...).
func Minus(first Expr, rest ...Expr) Expr {
	args := append([]Expr{first}, rest...)
	return minus(args)
}

type minus []Expr

func (m minus) render(b *buffer) {
	b.write("(")
	for i, e := range m {
		if i > 0 {
			b.write(" - ")
		}
		e.render(b)
	}
	b.write(")")
}

// Order is an ORDER BY term.
type Order struct {
	expr Expr
	desc bool
}

// Asc orders ascending.
func Asc(e Expr) Order { return Order{expr: e} }

// Desc orders descending.
func Desc(e Expr) Order { return Order{expr: e, desc: true} }

func (o Order) render(b *buffer) {
	o.expr.render(b)
	if o.desc {
		b.write(" DESC")
	} else {
		b.write(" ASC")
	}
}

type rowNumber struct {
	partition Expr
	order     []Order
}

func (r rowNumber) render(b *buffer) {
	b.write("ROW_NUMBER() OVER (PARTITION BY ")
	r.partition.render(b)
	if len(r.order) > 0 {
		b.write(" ORDER BY ")
		for i, o := range r.order {
			if i > 0 {
				b.write(", ")
			}
			o.render(b)
		}
	}
	b.write(")")
}

// RowNumber renders ROW_NUMBER() OVER (PARTITION BY partition ORDER BY order...).
func RowNumber(partition Expr, order ...Order) Expr {
	return rowNumber{partition: partition, order: order}
}

// Key pairs a natural-key column with the value it must match.
type Key struct {
	Col   Column
	Value interface{}
}

// K is shorthand for Key{Col: col, Value: v}.
func K(col Column, v interface{}) Key {
	return Key{Col: col, Value: v}
}

type resolveID struct {
	table Table
	id    Column
	keys  []Key
}

func (r resolveID) render(b *buffer) {
	b.write("(SELECT ")
	b.write(string(r.id))
	b.write(" FROM ")
	b.write(string(r.table))
	b.write(" WHERE ")
	for i, k := range r.keys {
		if i > 0 {
			b.write(" AND ")
		}
		b.write(string(k.Col))
		b.write(" = ")
		b.value(k.Value)
	}
	b.write(" LIMIT 1)")
}

// ResolveID renders a correlated sub-query selecting the surrogate id of the
// dimension row matching every key. It is meant to be inlined into the
// parameter list of a fact insert so the id lookup costs no extra round trip.
// Key values may themselves be expressions, e.g. a world scoped to a server
// resolved by uuid.
//
// If no row matches, the expression yields NULL, which the NOT NULL
// constraint on the referencing column rejects.
func ResolveID(table Table, keys ...Key) Expr {
	return resolveID{table: table, id: "id", keys: keys}
}

type subSelect struct {
	sel *SelectBuilder
}

func (s subSelect) render(b *buffer) {
	b.write("(")
	s.sel.renderTo(b)
	b.write(")")
}

// Sub wraps a select so it can be used as a scalar or IN operand.
func Sub(sel *SelectBuilder) Expr {
	return subSelect{sel: sel}
}

// intLiteral renders DDL defaults and LIMIT counts. Caller supplied values
// are always bound instead.
func intLiteral(n int64) string {
	return strconv.FormatInt(n, 10)
}
