// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package query

import (
	"strings"
)

// Index is the name of an index, declared as a constant like Table.
type Index string

// ColumnType is the portable type of a column.
type ColumnType int

const (
	Integer ColumnType = iota + 1
	BigInt
	Double
	Boolean
	Varchar
	Text
)

// ColumnDef describes one column of a table. The zero default means "no
// DEFAULT clause".
type ColumnDef struct {
	Name       Column
	Type       ColumnType
	Length     int
	notNull    bool
	unique     bool
	defaultSQL func(Dialect) string
}

// Col starts a column definition.
func Col(name Column, t ColumnType) ColumnDef {
	return ColumnDef{Name: name, Type: t}
}

// VarcharCol starts a length-limited text column.
func VarcharCol(name Column, length int) ColumnDef {
	return ColumnDef{Name: name, Type: Varchar, Length: length}
}

// NotNull marks the column NOT NULL.
func (c ColumnDef) NotNull() ColumnDef {
	c.notNull = true
	return c
}

// Unique adds a column-level UNIQUE constraint.
func (c ColumnDef) Unique() ColumnDef {
	c.unique = true
	return c
}

// DefaultInt sets an integer default.
func (c ColumnDef) DefaultInt(n int64) ColumnDef {
	c.defaultSQL = func(Dialect) string { return intLiteral(n) }
	return c
}

// DefaultBool sets a boolean default in the dialect's representation.
func (c ColumnDef) DefaultBool(v bool) ColumnDef {
	c.defaultSQL = func(d Dialect) string { return d.BoolLiteral(v) }
	return c
}

// render writes the column definition. withConstraints is false for
// ALTER TABLE ADD COLUMN, where DuckDB rejects NOT NULL and CHECK clauses.
func (c ColumnDef) render(d Dialect, withConstraints bool) string {
	var sb strings.Builder
	sb.WriteString(string(c.Name))
	sb.WriteString(" ")
	sb.WriteString(d.typeName(c.Type, c.Length))
	if withConstraints && c.notNull {
		sb.WriteString(" NOT NULL")
	}
	if withConstraints && c.unique {
		sb.WriteString(" UNIQUE")
	}
	if c.defaultSQL != nil {
		sb.WriteString(" DEFAULT ")
		sb.WriteString(c.defaultSQL(d))
	}
	if withConstraints && c.Type == Varchar && d.EnforcesTextLength() {
		sb.WriteString(" CHECK (length(")
		sb.WriteString(string(c.Name))
		sb.WriteString(") <= ")
		sb.WriteString(intLiteral(int64(c.Length)))
		sb.WriteString(")")
	}
	return sb.String()
}

type foreignKey struct {
	col      Column
	refTable Table
	refCol   Column
}

// CreateTableBuilder renders CREATE TABLE IF NOT EXISTS for a dialect.
//
// Example:
//
//	query.CreateTable(schema.Worlds).
//	    ID().
//	    Column(query.VarcharCol(schema.WorldName, 100).NotNull()).
//	    Column(query.Col(schema.WorldServerID, query.BigInt).NotNull()).
//	    ForeignKey(schema.WorldServerID, schema.Servers, schema.ID).
//	    UniqueTogether(schema.WorldName, schema.WorldServerID).
//	    Build(query.DuckDB)
type CreateTableBuilder struct {
	table   Table
	withID  bool
	columns []ColumnDef
	fks     []foreignKey
	uniques [][]Column
}

// CreateTable starts a table definition.
func CreateTable(t Table) *CreateTableBuilder {
	return &CreateTableBuilder{table: t}
}

// ID adds the auto-increment surrogate key column "id".
func (b *CreateTableBuilder) ID() *CreateTableBuilder {
	b.withID = true
	return b
}

// Column appends a column.
func (b *CreateTableBuilder) Column(c ColumnDef) *CreateTableBuilder {
	b.columns = append(b.columns, c)
	return b
}

// ForeignKey references refTable(refCol). Only emitted where the dialect
// uses foreign keys.
func (b *CreateTableBuilder) ForeignKey(col Column, refTable Table, refCol Column) *CreateTableBuilder {
	b.fks = append(b.fks, foreignKey{col: col, refTable: refTable, refCol: refCol})
	return b
}

// UniqueTogether adds a table-level UNIQUE constraint.
func (b *CreateTableBuilder) UniqueTogether(cols ...Column) *CreateTableBuilder {
	b.uniques = append(b.uniques, cols)
	return b
}

// Table returns the table being defined.
func (b *CreateTableBuilder) Table() Table {
	return b.table
}

// Build returns the statements creating the table, in execution order.
func (b *CreateTableBuilder) Build(d Dialect) []string {
	return b.BuildAs(d, b.table)
}

// BuildAs renders the definition under another table name, used when a
// table is rebuilt through a copy.
func (b *CreateTableBuilder) BuildAs(d Dialect, name Table) []string {
	var stmts []string
	var defs []string

	if b.withID {
		pre, def := d.idColumn(name)
		stmts = append(stmts, pre...)
		defs = append(defs, def)
	}
	for _, c := range b.columns {
		defs = append(defs, c.render(d, true))
	}
	for _, cols := range b.uniques {
		defs = append(defs, "UNIQUE ("+joinColumns(cols)+")")
	}
	if d.UsesForeignKeys() {
		for _, fk := range b.fks {
			defs = append(defs, "FOREIGN KEY ("+string(fk.col)+") REFERENCES "+string(fk.refTable)+" ("+string(fk.refCol)+")")
		}
	}

	stmts = append(stmts, "CREATE TABLE IF NOT EXISTS "+string(name)+" (\n\t"+strings.Join(defs, ",\n\t")+"\n)")
	return stmts
}

// ColumnNames lists every column including id, in definition order.
func (b *CreateTableBuilder) ColumnNames() []Column {
	var cols []Column
	if b.withID {
		cols = append(cols, "id")
	}
	for _, c := range b.columns {
		cols = append(cols, c.Name)
	}
	return cols
}

// AddColumn renders ALTER TABLE ADD COLUMN. Constraints are omitted; the
// default fills existing rows.
func AddColumn(d Dialect, t Table, c ColumnDef) string {
	return "ALTER TABLE " + string(t) + " ADD COLUMN " + c.render(d, false)
}

// DropColumn renders ALTER TABLE DROP COLUMN.
func DropColumn(t Table, c Column) string {
	return "ALTER TABLE " + string(t) + " DROP COLUMN " + string(c)
}

// AlterColumnType renders ALTER TABLE ALTER COLUMN TYPE. SQLite rejects the
// statement; see Dialect.SupportsAlterColumnType.
func AlterColumnType(d Dialect, t Table, c Column, to ColumnType) string {
	return "ALTER TABLE " + string(t) + " ALTER COLUMN " + string(c) + " TYPE " + d.typeName(to, 0)
}

// DropTable renders DROP TABLE IF EXISTS.
func DropTable(t Table) string {
	return "DROP TABLE IF EXISTS " + string(t)
}

// RenameTable renders ALTER TABLE ... RENAME TO.
func RenameTable(from, to Table) string {
	return "ALTER TABLE " + string(from) + " RENAME TO " + string(to)
}

// CreateIndex renders CREATE [UNIQUE] INDEX IF NOT EXISTS.
func CreateIndex(name Index, unique bool, t Table, cols ...Column) string {
	kind := "INDEX"
	if unique {
		kind = "UNIQUE INDEX"
	}
	return "CREATE " + kind + " IF NOT EXISTS " + string(name) + " ON " + string(t) + " (" + joinColumns(cols) + ")"
}

// CopyRows renders INSERT INTO to (cols) SELECT cols FROM from.
func CopyRows(from, to Table, cols []Column) string {
	list := joinColumns(cols)
	return "INSERT INTO " + string(to) + " (" + list + ") SELECT " + list + " FROM " + string(from)
}

func joinColumns(cols []Column) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
