// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package query

// WhereBuilder constructs SQL WHERE clauses with parameterized arguments.
// Left-hand sides are typed expressions and right-hand sides are bound
// values or nested expressions, so no caller text reaches the statement.
//
// Example usage:
//
//	wb := query.NewWhereBuilder().
//	    Eq(schema.PingServerID, query.ResolveID(schema.Servers, query.K(schema.ServerUUID, serverUUID))).
//	    Gte(schema.PingDate, after)
//	// server_id = (SELECT id FROM plan_servers WHERE uuid = ? LIMIT 1) AND date >= ?
type WhereBuilder struct {
	clauses []Expr
}

// NewWhereBuilder creates a new WhereBuilder instance.
func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

type comparison struct {
	left  Expr
	op    string
	right interface{}
}

func (c comparison) render(b *buffer) {
	c.left.render(b)
	b.write(c.op)
	b.value(c.right)
}

func (wb *WhereBuilder) compare(left Expr, op string, right interface{}) *WhereBuilder {
	wb.clauses = append(wb.clauses, comparison{left: left, op: op, right: right})
	return wb
}

// Eq adds "left = value".
func (wb *WhereBuilder) Eq(left Expr, value interface{}) *WhereBuilder {
	return wb.compare(left, " = ", value)
}

// NotEq adds "left <> value".
func (wb *WhereBuilder) NotEq(left Expr, value interface{}) *WhereBuilder {
	return wb.compare(left, " <> ", value)
}

// Gt adds "left > value".
func (wb *WhereBuilder) Gt(left Expr, value interface{}) *WhereBuilder {
	return wb.compare(left, " > ", value)
}

// Gte adds "left >= value".
func (wb *WhereBuilder) Gte(left Expr, value interface{}) *WhereBuilder {
	return wb.compare(left, " >= ", value)
}

// Lt adds "left < value".
func (wb *WhereBuilder) Lt(left Expr, value interface{}) *WhereBuilder {
	return wb.compare(left, " < ", value)
}

// Lte adds "left <= value".
func (wb *WhereBuilder) Lte(left Expr, value interface{}) *WhereBuilder {
	return wb.compare(left, " <= ", value)
}

type inList struct {
	left   Expr
	values []interface{}
	sub    Expr
}

func (in inList) render(b *buffer) {
	in.left.render(b)
	b.write(" IN ")
	if in.sub != nil {
		in.sub.render(b)
		return
	}
	b.write("(")
	for i, v := range in.values {
		if i > 0 {
			b.write(", ")
		}
		b.value(v)
	}
	b.write(")")
}

// In adds "left IN (?, ?, ...)". An empty list is skipped, like the other
// optional filters.
func (wb *WhereBuilder) In(left Expr, values ...interface{}) *WhereBuilder {
	if len(values) == 0 {
		return wb
	}
	wb.clauses = append(wb.clauses, inList{left: left, values: values})
	return wb
}

// InSelect adds "left IN (SELECT ...)".
func (wb *WhereBuilder) InSelect(left Expr, sel *SelectBuilder) *WhereBuilder {
	wb.clauses = append(wb.clauses, inList{left: left, sub: Sub(sel)})
	return wb
}

// NotInSelect adds "left NOT IN (SELECT ...)".
func (wb *WhereBuilder) NotInSelect(left Expr, sel *SelectBuilder) *WhereBuilder {
	wb.clauses = append(wb.clauses, notIn{left: left, sub: Sub(sel)})
	return wb
}

type notIn struct {
	left Expr
	sub  Expr
}

func (n notIn) render(b *buffer) {
	n.left.render(b)
	b.write(" NOT IN ")
	n.sub.render(b)
}

type nullCheck struct {
	e   Expr
	not bool
}

func (n nullCheck) render(b *buffer) {
	n.e.render(b)
	if n.not {
		b.write(" IS NOT NULL")
	} else {
		b.write(" IS NULL")
	}
}

// IsNull adds "e IS NULL".
func (wb *WhereBuilder) IsNull(e Expr) *WhereBuilder {
	wb.clauses = append(wb.clauses, nullCheck{e: e})
	return wb
}

// IsNotNull adds "e IS NOT NULL".
func (wb *WhereBuilder) IsNotNull(e Expr) *WhereBuilder {
	wb.clauses = append(wb.clauses, nullCheck{e: e, not: true})
	return wb
}

// Cond adds a constant condition such as "rn = 1".
func (wb *WhereBuilder) Cond(f Fragment) *WhereBuilder {
	wb.clauses = append(wb.clauses, f)
	return wb
}

type disjunction []*WhereBuilder

func (d disjunction) render(b *buffer) {
	b.write("(")
	for i, w := range d {
		if i > 0 {
			b.write(" OR ")
		}
		b.write("(")
		w.renderTo(b)
		b.write(")")
	}
	b.write(")")
}

// Or adds a parenthesized disjunction of the given builders.
func (wb *WhereBuilder) Or(alternatives ...*WhereBuilder) *WhereBuilder {
	if len(alternatives) == 0 {
		return wb
	}
	wb.clauses = append(wb.clauses, disjunction(alternatives))
	return wb
}

func (wb *WhereBuilder) renderTo(b *buffer) {
	if len(wb.clauses) == 0 {
		b.write("1=1")
		return
	}
	for i, c := range wb.clauses {
		if i > 0 {
			b.write(" AND ")
		}
		c.render(b)
	}
}

// Build constructs the final WHERE clause and returns it with arguments.
// Clauses are joined with "AND". Returns ("1=1", []) if no clauses were added.
func (wb *WhereBuilder) Build() (string, []interface{}) {
	b := &buffer{}
	wb.renderTo(b)
	if b.args == nil {
		b.args = []interface{}{}
	}
	return b.sb.String(), b.args
}

// BuildWithPrefix returns the WHERE clause with "WHERE " prefix.
func (wb *WhereBuilder) BuildWithPrefix() (string, []interface{}) {
	whereClause, args := wb.Build()
	return "WHERE " + whereClause, args
}

// Count returns the number of clauses added to the builder.
func (wb *WhereBuilder) Count() int {
	return len(wb.clauses)
}

// IsEmpty returns true if no clauses have been added.
func (wb *WhereBuilder) IsEmpty() bool {
	return len(wb.clauses) == 0
}
