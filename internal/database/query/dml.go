// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package query

type fromItem struct {
	table Table
	sub   *SelectBuilder
	alias Alias
}

func (f fromItem) render(b *buffer) {
	if f.sub != nil {
		b.write("(")
		f.sub.renderTo(b)
		b.write(")")
	} else {
		b.write(string(f.table))
	}
	if f.alias != "" {
		b.write(" ")
		b.write(string(f.alias))
	}
}

type join struct {
	kind  string
	item  fromItem
	left  Expr
	right Expr
}

// SelectBuilder renders a SELECT statement.
type SelectBuilder struct {
	columns  []Expr
	distinct bool
	from     fromItem
	joins    []join
	where    *WhereBuilder
	groupBy  []Expr
	orderBy  []Order
	limit    int64
}

// Select starts a SELECT of the given projections.
func Select(columns ...Expr) *SelectBuilder {
	return &SelectBuilder{columns: columns}
}

// Distinct renders SELECT DISTINCT.
func (s *SelectBuilder) Distinct() *SelectBuilder {
	s.distinct = true
	return s
}

// From sets the table read from. alias may be empty.
func (s *SelectBuilder) From(t Table, alias Alias) *SelectBuilder {
	s.from = fromItem{table: t, alias: alias}
	return s
}

// FromSelect reads from a derived table.
func (s *SelectBuilder) FromSelect(sub *SelectBuilder, alias Alias) *SelectBuilder {
	s.from = fromItem{sub: sub, alias: alias}
	return s
}

// Join adds INNER JOIN t alias ON left = right.
func (s *SelectBuilder) Join(t Table, alias Alias, left, right Expr) *SelectBuilder {
	s.joins = append(s.joins, join{kind: " INNER JOIN ", item: fromItem{table: t, alias: alias}, left: left, right: right})
	return s
}

// LeftJoin adds LEFT JOIN t alias ON left = right.
func (s *SelectBuilder) LeftJoin(t Table, alias Alias, left, right Expr) *SelectBuilder {
	s.joins = append(s.joins, join{kind: " LEFT JOIN ", item: fromItem{table: t, alias: alias}, left: left, right: right})
	return s
}

// Where sets the filter.
func (s *SelectBuilder) Where(w *WhereBuilder) *SelectBuilder {
	s.where = w
	return s
}

// GroupBy sets GROUP BY terms.
func (s *SelectBuilder) GroupBy(exprs ...Expr) *SelectBuilder {
	s.groupBy = exprs
	return s
}

// OrderBy appends ORDER BY terms.
func (s *SelectBuilder) OrderBy(orders ...Order) *SelectBuilder {
	s.orderBy = append(s.orderBy, orders...)
	return s
}

// Limit sets LIMIT n; n <= 0 means no limit.
func (s *SelectBuilder) Limit(n int64) *SelectBuilder {
	s.limit = n
	return s
}

func (s *SelectBuilder) renderTo(b *buffer) {
	b.write("SELECT ")
	if s.distinct {
		b.write("DISTINCT ")
	}
	for i, c := range s.columns {
		if i > 0 {
			b.write(", ")
		}
		c.render(b)
	}
	b.write(" FROM ")
	s.from.render(b)
	for _, j := range s.joins {
		b.write(j.kind)
		j.item.render(b)
		b.write(" ON ")
		j.left.render(b)
		b.write(" = ")
		j.right.render(b)
	}
	if s.where != nil && !s.where.IsEmpty() {
		b.write(" WHERE ")
		s.where.renderTo(b)
	}
	if len(s.groupBy) > 0 {
		b.write(" GROUP BY ")
		for i, g := range s.groupBy {
			if i > 0 {
				b.write(", ")
			}
			g.render(b)
		}
	}
	if len(s.orderBy) > 0 {
		b.write(" ORDER BY ")
		for i, o := range s.orderBy {
			if i > 0 {
				b.write(", ")
			}
			o.render(b)
		}
	}
	if s.limit > 0 {
		b.write(" LIMIT ")
		b.write(intLiteral(s.limit))
	}
}

// Build renders the statement.
func (s *SelectBuilder) Build() Statement {
	b := &buffer{}
	s.renderTo(b)
	return b.statement()
}

// InsertBuilder renders INSERT INTO ... VALUES.
type InsertBuilder struct {
	table      Table
	columns    []Column
	values     []interface{}
	ignoreDups bool
	returning  Column
}

// Insert starts an INSERT into t.
func Insert(t Table) *InsertBuilder {
	return &InsertBuilder{table: t}
}

// Value sets a column. v is bound unless it is an Expr such as ResolveID.
func (i *InsertBuilder) Value(col Column, v interface{}) *InsertBuilder {
	i.columns = append(i.columns, col)
	i.values = append(i.values, v)
	return i
}

// OnConflictDoNothing skips rows violating a unique constraint. Both
// backends accept the clause without a conflict target.
func (i *InsertBuilder) OnConflictDoNothing() *InsertBuilder {
	i.ignoreDups = true
	return i
}

// Returning renders RETURNING col, used to read back generated ids since
// DuckDB does not report LastInsertId.
func (i *InsertBuilder) Returning(col Column) *InsertBuilder {
	i.returning = col
	return i
}

// Columns returns the columns in the order their values are bound, so a
// batch can reuse the statement text with one parameter set per row.
func (i *InsertBuilder) Columns() []Column {
	return i.columns
}

// Build renders the statement.
func (i *InsertBuilder) Build() Statement {
	b := &buffer{}
	b.write("INSERT INTO ")
	b.write(string(i.table))
	b.write(" (")
	b.write(joinColumns(i.columns))
	b.write(") VALUES (")
	for n, v := range i.values {
		if n > 0 {
			b.write(", ")
		}
		b.value(v)
	}
	b.write(")")
	if i.ignoreDups {
		b.write(" ON CONFLICT DO NOTHING")
	}
	if i.returning != "" {
		b.write(" RETURNING ")
		b.write(string(i.returning))
	}
	return b.statement()
}

type assignment struct {
	col   Column
	value interface{}
	incr  bool
}

// UpdateBuilder renders UPDATE ... SET ... WHERE.
type UpdateBuilder struct {
	table Table
	sets  []assignment
	where *WhereBuilder
}

// Update starts an UPDATE of t.
func Update(t Table) *UpdateBuilder {
	return &UpdateBuilder{table: t}
}

// Set assigns a bound value or expression.
func (u *UpdateBuilder) Set(col Column, v interface{}) *UpdateBuilder {
	u.sets = append(u.sets, assignment{col: col, value: v})
	return u
}

// Increment renders col = col + ?.
func (u *UpdateBuilder) Increment(col Column, by int64) *UpdateBuilder {
	u.sets = append(u.sets, assignment{col: col, value: by, incr: true})
	return u
}

// Where sets the filter. An UPDATE without a filter touches every row.
func (u *UpdateBuilder) Where(w *WhereBuilder) *UpdateBuilder {
	u.where = w
	return u
}

// Build renders the statement.
func (u *UpdateBuilder) Build() Statement {
	b := &buffer{}
	b.write("UPDATE ")
	b.write(string(u.table))
	b.write(" SET ")
	for n, s := range u.sets {
		if n > 0 {
			b.write(", ")
		}
		b.write(string(s.col))
		b.write(" = ")
		if s.incr {
			b.write(string(s.col))
			b.write(" + ")
		}
		b.value(s.value)
	}
	if u.where != nil && !u.where.IsEmpty() {
		b.write(" WHERE ")
		u.where.renderTo(b)
	}
	return b.statement()
}

// DeleteBuilder renders DELETE FROM ... WHERE.
type DeleteBuilder struct {
	table Table
	where *WhereBuilder
}

// Delete starts a DELETE from t.
func Delete(t Table) *DeleteBuilder {
	return &DeleteBuilder{table: t}
}

// Where sets the filter. A DELETE without a filter empties the table.
func (d *DeleteBuilder) Where(w *WhereBuilder) *DeleteBuilder {
	d.where = w
	return d
}

// Build renders the statement.
func (d *DeleteBuilder) Build() Statement {
	b := &buffer{}
	b.write("DELETE FROM ")
	b.write(string(d.table))
	if d.where != nil && !d.where.IsEmpty() {
		b.write(" WHERE ")
		d.where.renderTo(b)
	}
	return b.statement()
}
