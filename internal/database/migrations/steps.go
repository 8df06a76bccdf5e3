// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package migrations

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

// Step is one versioned schema change.
//
// Steps MUST be append-only: never modify or remove a step once stores
// carry its version.
type Step struct {
	Version int
	Name    string

	// Applied inspects the catalogue and data and reports whether the
	// step's work is already present, e.g. on a store created at the
	// latest shape.
	Applied func(ctx context.Context, ex database.Executor) (bool, error)

	// Apply performs the schema change. It manages its own transactions
	// so dialects that reject DDL mixed with DML can split the work.
	Apply func(ctx context.Context, db *database.DB) error

	// Batch, when set, makes the step heavy: after Apply it rewrites rows
	// in id order, limit rows per transaction, and may run in the
	// background.
	Batch BatchFunc
}

// BatchFunc rewrites up to limit rows with id > afterID and returns the
// highest id it touched and the number of rows. Zero rows ends the backfill.
type BatchFunc func(ctx context.Context, tx *database.Tx, afterID int64, limit int) (lastID int64, rows int, err error)

// Heavy reports whether the step rewrites rows in batches.
func (s Step) Heavy() bool {
	return s.Batch != nil
}

// Steps returns every migration step in version order.
func Steps() []Step {
	return []Step{
		{
			Version: 1,
			Name:    "server_capacity",
			Applied: columnExists(schema.Servers, schema.ServerMaxPlayers),
			Apply:   addColumn(schema.Servers, query.Col(schema.ServerMaxPlayers, query.Integer).DefaultInt(-1)),
		},
		{
			Version: 2,
			Name:    "session_afk_time",
			Applied: columnExists(schema.Sessions, schema.SessionAFKTime),
			Apply:   addColumn(schema.Sessions, query.Col(schema.SessionAFKTime, query.BigInt).DefaultInt(0)),
		},
		{
			Version: 3,
			Name:    "user_info_operator",
			Applied: columnExists(schema.UserInfo, schema.UserInfoOpped),
			Apply:   addColumn(schema.UserInfo, query.Col(schema.UserInfoOpped, query.Boolean).DefaultBool(false)),
		},
		{
			Version: 4,
			Name:    "kill_server_scope",
			Applied: killServerScopeApplied,
			Apply:   applyKillServerScope,
		},
		{
			Version: 5,
			Name:    "geolocation_ip_hash",
			Applied: ipHashApplied,
			Apply:   addColumn(schema.GeoInfo, query.VarcharCol(schema.GeoIPHash, schema.IPHashLength)),
			Batch:   hashAddresses,
		},
		{
			Version: 6,
			Name:    "geolocation_drop_raw_ip",
			Applied: negate(columnExists(schema.GeoInfo, schema.GeoLegacyIP)),
			Apply:   dropRawAddresses,
		},
		{
			Version: 7,
			Name:    "tps_cpu_precision",
			Applied: cpuUsageIsDouble,
			Apply:   widenCPUUsage,
		},
		{
			Version: 8,
			Name:    "drop_obsolete_tables",
			Applied: obsoleteTablesDropped,
			Apply:   dropObsoleteTables,
		},
		{
			Version: 9,
			Name:    "user_info_unique",
			Applied: indexExists(schema.IdxUserInfoUnique),
			Apply:   uniqueUserInfo,
		},
	}
}

// LatestVersion is the version of a fully migrated store.
func LatestVersion() int {
	steps := Steps()
	return steps[len(steps)-1].Version
}

// Catalogue checks

func count(ctx context.Context, ex database.Executor, stmt query.Statement) (int64, error) {
	return database.QueryRow(ctx, ex, stmt, database.ScanInt64)
}

func columnExists(t query.Table, c query.Column) func(context.Context, database.Executor) (bool, error) {
	return func(ctx context.Context, ex database.Executor) (bool, error) {
		n, err := count(ctx, ex, ex.Dialect().ColumnExists(t, c))
		return n > 0, err
	}
}

func tableExists(ctx context.Context, ex database.Executor, t query.Table) (bool, error) {
	n, err := count(ctx, ex, ex.Dialect().TableExists(t))
	return n > 0, err
}

func indexExists(name query.Index) func(context.Context, database.Executor) (bool, error) {
	return func(ctx context.Context, ex database.Executor) (bool, error) {
		n, err := count(ctx, ex, ex.Dialect().IndexExists(name))
		return n > 0, err
	}
}

func negate(check func(context.Context, database.Executor) (bool, error)) func(context.Context, database.Executor) (bool, error) {
	return func(ctx context.Context, ex database.Executor) (bool, error) {
		ok, err := check(ctx, ex)
		return !ok, err
	}
}

func addColumn(t query.Table, c query.ColumnDef) func(context.Context, *database.DB) error {
	return func(ctx context.Context, db *database.DB) error {
		exists, err := columnExists(t, c.Name)(ctx, db)
		if err != nil || exists {
			return err
		}
		_, err = db.Execute(ctx, query.Statement{SQL: query.AddColumn(db.Dialect(), t, c)})
		return err
	}
}

// v4: kills carry the server of their session.

func killServerScopeApplied(ctx context.Context, ex database.Executor) (bool, error) {
	exists, err := columnExists(schema.Kills, schema.KillServerID)(ctx, ex)
	if err != nil || !exists {
		return false, err
	}
	missing, err := count(ctx, ex, query.Select(query.Count(query.Fragment("*"))).
		From(schema.Kills, "").
		Where(query.NewWhereBuilder().IsNull(schema.KillServerID)).
		Build())
	return missing == 0, err
}

func applyKillServerScope(ctx context.Context, db *database.DB) error {
	if err := addColumn(schema.Kills, query.Col(schema.KillServerID, query.BigInt))(ctx, db); err != nil {
		return err
	}

	// Correlated on the outer table name; both dialects resolve it.
	sessionServer := query.Select(query.Q("s", schema.SessionServerID)).
		From(schema.Sessions, "s").
		Where(query.NewWhereBuilder().Eq(query.Q("s", schema.ID), query.Q(query.Alias(schema.Kills), schema.KillSessionID)))
	_, err := db.Execute(ctx, query.Update(schema.Kills).
		Set(schema.KillServerID, query.Sub(sessionServer)).
		Where(query.NewWhereBuilder().IsNull(schema.KillServerID)).
		Build())
	return err
}

// v5: raw addresses are replaced by their SHA-256.

func ipHashApplied(ctx context.Context, ex database.Executor) (bool, error) {
	hashed, err := columnExists(schema.GeoInfo, schema.GeoIPHash)(ctx, ex)
	if err != nil || !hashed {
		return false, err
	}
	raw, err := columnExists(schema.GeoInfo, schema.GeoLegacyIP)(ctx, ex)
	if err != nil || !raw {
		return true, err
	}
	pending, err := count(ctx, ex, query.Select(query.Count(query.Fragment("*"))).
		From(schema.GeoInfo, "").
		Where(unhashedRows()).
		Build())
	return pending == 0, err
}

func unhashedRows() *query.WhereBuilder {
	return query.NewWhereBuilder().
		IsNull(schema.GeoIPHash).
		IsNotNull(schema.GeoLegacyIP)
}

type rawAddress struct {
	id int64
	ip string
}

func hashAddresses(ctx context.Context, tx *database.Tx, afterID int64, limit int) (int64, int, error) {
	stmt := query.Select(schema.ID, schema.GeoLegacyIP).
		From(schema.GeoInfo, "").
		Where(unhashedRows().Gt(schema.ID, afterID)).
		OrderBy(query.Asc(schema.ID)).
		Limit(int64(limit)).
		Build()

	rows, err := database.QueryRows(ctx, tx, stmt, func(r *sql.Rows) (rawAddress, error) {
		var a rawAddress
		err := r.Scan(&a.id, &a.ip)
		return a, err
	})
	if err != nil || len(rows) == 0 {
		return afterID, 0, err
	}

	_, err = tx.ExecBatch(ctx, func(add func(query.Statement) error) error {
		for _, a := range rows {
			update := query.Update(schema.GeoInfo).
				Set(schema.GeoIPHash, models.HashIP(a.ip)).
				Where(query.NewWhereBuilder().Eq(schema.ID, a.id)).
				Build()
			if err := add(update); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return afterID, 0, err
	}
	return rows[len(rows)-1].id, len(rows), nil
}

// v6: the raw address column is dropped; rows that collapse onto the same
// (user, hash) keep the most recent id.

func dedupeGeoInfo() query.Statement {
	latest := query.Select(query.Max(schema.ID)).
		From(schema.GeoInfo, "").
		GroupBy(schema.GeoUserID, schema.GeoIPHash)
	return query.Delete(schema.GeoInfo).
		Where(query.NewWhereBuilder().NotInSelect(schema.ID, latest)).
		Build()
}

func dropRawAddresses(ctx context.Context, db *database.DB) error {
	if _, err := db.Execute(ctx, dedupeGeoInfo()); err != nil {
		return fmt.Errorf("failed to deduplicate geolocations: %w", err)
	}

	if db.Dialect() == query.DuckDB {
		_, err := db.Execute(ctx, query.Statement{SQL: query.DropColumn(schema.GeoInfo, schema.GeoLegacyIP)})
		return err
	}

	// SQLite copies the rows into a table of the current shape, which also
	// sheds the constraints older versions declared on the raw column.
	def := schema.GeoInfoTable()
	return db.InTransaction(ctx, func(tx *database.Tx) error {
		stmts := []string{query.DropTable(schema.GeoInfoRebuild)}
		stmts = append(stmts, def.BuildAs(query.SQLite, schema.GeoInfoRebuild)...)
		stmts = append(stmts,
			query.CopyRows(schema.GeoInfo, schema.GeoInfoRebuild, def.ColumnNames()),
			query.DropTable(schema.GeoInfo),
			query.RenameTable(schema.GeoInfoRebuild, schema.GeoInfo),
		)
		return tx.ExecDDL(ctx, stmts...)
	})
}

// v7: cpu usage keeps its fraction.

func cpuUsageIsDouble(ctx context.Context, ex database.Executor) (bool, error) {
	typ, err := database.QueryRow(ctx, ex, ex.Dialect().ColumnType(schema.TPS, schema.TPSCPUUsage), database.ScanString)
	if err != nil {
		return false, err
	}
	return typ == "DOUBLE", nil
}

// widenCPUUsage only changes the declared type on DuckDB. SQLite column
// types are affinities and already store the fraction.
func widenCPUUsage(ctx context.Context, db *database.DB) error {
	ddl := query.AlterColumnType(db.Dialect(), schema.TPS, schema.TPSCPUUsage, query.Double)
	return db.ExecuteBestEffort(ctx, ddl, query.SQLite)
}

// v8: tables of removed features.

var obsoleteTables = []query.Table{schema.LegacyActions, schema.LegacyIPs, schema.LegacyCommandUses}

func obsoleteTablesDropped(ctx context.Context, ex database.Executor) (bool, error) {
	for _, t := range obsoleteTables {
		exists, err := tableExists(ctx, ex, t)
		if err != nil || exists {
			return false, err
		}
	}
	return true, nil
}

func dropObsoleteTables(ctx context.Context, db *database.DB) error {
	return db.InTransaction(ctx, func(tx *database.Tx) error {
		for _, t := range obsoleteTables {
			if err := tx.ExecDDL(ctx, query.DropTable(t)); err != nil {
				return err
			}
		}
		return nil
	})
}

// v9: one user info row per (player, server).

func uniqueUserInfo(ctx context.Context, db *database.DB) error {
	latest := query.Select(query.Max(schema.ID)).
		From(schema.UserInfo, "").
		GroupBy(schema.UserInfoUserID, schema.UserInfoServerID)
	dedupe := query.Delete(schema.UserInfo).
		Where(query.NewWhereBuilder().NotInSelect(schema.ID, latest)).
		Build()
	if _, err := db.Execute(ctx, dedupe); err != nil {
		return fmt.Errorf("failed to deduplicate user info: %w", err)
	}

	index := query.CreateIndex(schema.IdxUserInfoUnique, true, schema.UserInfo, schema.UserInfoUserID, schema.UserInfoServerID)
	_, err := db.Execute(ctx, query.Statement{SQL: index})
	return err
}
