// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package query

import (
	"fmt"
	"strings"
)

// Dialect selects the SQL variant emitted for DDL and catalogue lookups.
// DML is written in the subset both backends accept and does not vary.
type Dialect int

const (
	// SQLite is the embedded single-file store (modernc.org/sqlite).
	SQLite Dialect = iota + 1
	// DuckDB is the embedded columnar store (duckdb-go).
	DuckDB
)

// ParseDialect maps a configuration value to a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return SQLite, nil
	case "duckdb":
		return DuckDB, nil
	default:
		return 0, fmt.Errorf("unsupported database dialect %q (expected sqlite or duckdb)", name)
	}
}

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case DuckDB:
		return "duckdb"
	default:
		return "unknown"
	}
}

// DriverName is the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case DuckDB:
		return "duckdb"
	default:
		return "sqlite"
	}
}

// EnforcesTextLength reports whether VARCHAR(n) limits are checked by the
// backend. SQLite ignores the length, so DuckDB tables carry an explicit
// CHECK constraint and callers clip values to keep both stores identical.
func (d Dialect) EnforcesTextLength() bool {
	return d == DuckDB
}

// SupportsAlterColumnType reports whether ALTER TABLE ... ALTER COLUMN ...
// TYPE is available. SQLite has no column alteration at all.
func (d Dialect) SupportsAlterColumnType() bool {
	return d == DuckDB
}

// UsesForeignKeys reports whether REFERENCES clauses are emitted. DuckDB
// rejects updates to rows referenced by a foreign key, so referential
// integrity there relies on the ordered cascade in the remove transactions.
func (d Dialect) UsesForeignKeys() bool {
	return d == SQLite
}

// BoolLiteral renders a boolean for DDL defaults.
func (d Dialect) BoolLiteral(v bool) string {
	if d == DuckDB {
		if v {
			return "TRUE"
		}
		return "FALSE"
	}
	if v {
		return "1"
	}
	return "0"
}

func (d Dialect) typeName(t ColumnType, length int) string {
	switch t {
	case Integer:
		return "INTEGER"
	case BigInt:
		return "BIGINT"
	case Double:
		return "DOUBLE"
	case Boolean:
		if d == DuckDB {
			return "BOOLEAN"
		}
		return "INTEGER"
	case Varchar:
		return fmt.Sprintf("VARCHAR(%d)", length)
	default:
		return "TEXT"
	}
}

func sequenceName(t Table) string {
	return string(t) + "_seq"
}

// idColumn returns the statements that must precede CREATE TABLE and the
// definition of the auto-increment surrogate key.
func (d Dialect) idColumn(t Table) (pre []string, def string) {
	if d == DuckDB {
		return []string{"CREATE SEQUENCE IF NOT EXISTS " + sequenceName(t)},
			"id BIGINT PRIMARY KEY DEFAULT nextval('" + sequenceName(t) + "')"
	}
	return nil, "id INTEGER PRIMARY KEY AUTOINCREMENT"
}

// TableExists returns a statement counting tables named t.
func (d Dialect) TableExists(t Table) Statement {
	if d == DuckDB {
		return Statement{
			SQL:  "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = ?",
			Args: []interface{}{string(t)},
		}
	}
	return Statement{
		SQL:  "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		Args: []interface{}{string(t)},
	}
}

// ColumnExists returns a statement counting columns named c on t.
func (d Dialect) ColumnExists(t Table, c Column) Statement {
	if d == DuckDB {
		return Statement{
			SQL:  "SELECT COUNT(*) FROM information_schema.columns WHERE table_name = ? AND column_name = ?",
			Args: []interface{}{string(t), string(c)},
		}
	}
	return Statement{
		SQL:  "SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?",
		Args: []interface{}{string(t), string(c)},
	}
}

// IndexExists returns a statement counting indexes named name.
func (d Dialect) IndexExists(name Index) Statement {
	if d == DuckDB {
		return Statement{
			SQL:  "SELECT COUNT(*) FROM duckdb_indexes() WHERE index_name = ?",
			Args: []interface{}{string(name)},
		}
	}
	return Statement{
		SQL:  "SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?",
		Args: []interface{}{string(name)},
	}
}

// ColumnType returns a statement selecting the declared type of t.c. The
// result is upper-case on both backends, e.g. "DOUBLE" or "INTEGER".
func (d Dialect) ColumnType(t Table, c Column) Statement {
	if d == DuckDB {
		return Statement{
			SQL:  "SELECT UPPER(data_type) FROM information_schema.columns WHERE table_name = ? AND column_name = ?",
			Args: []interface{}{string(t), string(c)},
		}
	}
	return Statement{
		SQL:  "SELECT UPPER(type) FROM pragma_table_info(?) WHERE name = ?",
		Args: []interface{}{string(t), string(c)},
	}
}
