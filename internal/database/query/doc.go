// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

// Package query builds SQL statements for the two supported backends.
//
// # Overview
//
// Every statement in the store is produced here. Table, column, alias and
// index names are distinct string types whose values are declared as
// constants in the schema package; caller supplied values are always bound
// as "?" parameters. Nothing accepts a plain string as statement text, so
// the only way to inject text is an explicit type conversion.
//
// DDL depends on the Dialect:
//
//	stmts := query.CreateTable(schema.Users).
//	    ID().
//	    Column(query.VarcharCol(schema.UserUUID, 36).NotNull().Unique()).
//	    Build(query.DuckDB)
//	// CREATE SEQUENCE IF NOT EXISTS plan_users_seq
//	// CREATE TABLE IF NOT EXISTS plan_users (id BIGINT PRIMARY KEY DEFAULT nextval('plan_users_seq'), ...)
//
// DML is portable and does not take a Dialect:
//
//	stmt := query.Insert(schema.Ping).
//	    Value(schema.PingUserID, query.ResolveID(schema.Users, query.K(schema.UserUUID, playerUUID))).
//	    Value(schema.PingDate, date).
//	    Build()
//
// # Dimension Resolution
//
// ResolveID renders "(SELECT id FROM t WHERE key = ? LIMIT 1)". Fact inserts
// inline it instead of looking the id up in a separate round trip. Nested
// keys are allowed, e.g. a world is resolved by name and by the id of its
// server, which is itself resolved by uuid.
//
// # Where Clauses
//
// WhereBuilder joins clauses with AND and returns "1=1" when empty:
//
//	wb := query.NewWhereBuilder().
//	    Gte(schema.TPSDate, after).
//	    In(schema.TPSServerID, ids...)
//	where, args := wb.Build()
package query
