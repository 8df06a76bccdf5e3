// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package queries

import (
	"context"
	"database/sql"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

func selectServers() *query.SelectBuilder {
	return query.Select(
		schema.ID,
		schema.ServerUUID,
		schema.ServerName,
		schema.ServerWebAddress,
		schema.ServerInstalled,
		schema.ServerProxy,
		schema.ServerMaxPlayers,
		schema.ServerPlanVersion,
	).From(schema.Servers, "")
}

func scanServer(rows *sql.Rows) (models.Server, error) {
	var (
		s                          models.Server
		name, address, planVersion sql.NullString
	)
	err := rows.Scan(&s.ID, &s.UUID, &name, &address, &s.Installed, &s.Proxy, &s.MaxPlayers, &planVersion)
	s.Name, s.WebAddress, s.PlanVersion = name.String, address.String, planVersion.String
	return s, err
}

// Servers returns every registered server in registration order.
func Servers() database.Query[[]models.Server] {
	return database.NewQuery("Servers", func(ctx context.Context, ex database.Executor) ([]models.Server, error) {
		return database.QueryRows(ctx, ex, selectServers().OrderBy(query.Asc(schema.ID)).Build(), scanServer)
	})
}

// ServerByUUID returns one server, or database.ErrNotFound.
func ServerByUUID(serverUUID string) database.Query[models.Server] {
	return database.NewQuery("ServerByUUID", func(ctx context.Context, ex database.Executor) (models.Server, error) {
		stmt := selectServers().Where(query.NewWhereBuilder().Eq(schema.ServerUUID, serverUUID)).Limit(1).Build()
		return database.QueryRow(ctx, ex, stmt, scanServer)
	})
}

// Worlds returns the worlds seen on the server, by name.
func Worlds(serverUUID string) database.Query[[]models.World] {
	return database.NewQuery("Worlds", func(ctx context.Context, ex database.Executor) ([]models.World, error) {
		stmt := query.Select(schema.WorldName).
			From(schema.Worlds, "").
			Where(query.NewWhereBuilder().Eq(schema.WorldServerID, serverRef(serverUUID))).
			OrderBy(query.Asc(schema.WorldName)).
			Build()
		return database.QueryRows(ctx, ex, stmt, func(rows *sql.Rows) (models.World, error) {
			w := models.World{ServerUUID: serverUUID}
			err := rows.Scan(&w.Name)
			return w, err
		})
	})
}

// CommandUsage returns the command counters of the server, most used first.
func CommandUsage(serverUUID string) database.Query[[]models.CommandUse] {
	return database.NewQuery("CommandUsage", func(ctx context.Context, ex database.Executor) ([]models.CommandUse, error) {
		stmt := query.Select(schema.CommandName, schema.CommandTimesUsed).
			From(schema.CommandUse, "").
			Where(query.NewWhereBuilder().Eq(schema.CommandServerID, serverRef(serverUUID))).
			OrderBy(query.Desc(schema.CommandTimesUsed), query.Asc(schema.CommandName)).
			Build()
		return database.QueryRows(ctx, ex, stmt, func(rows *sql.Rows) (models.CommandUse, error) {
			c := models.CommandUse{ServerUUID: serverUUID}
			err := rows.Scan(&c.Command, &c.TimesUsed)
			return c, err
		})
	})
}

// TPS returns the performance samples of the server taken at or after
// after, oldest first.
func TPS(serverUUID string, after int64) database.Query[[]models.TPS] {
	return database.NewQuery("TPS", func(ctx context.Context, ex database.Executor) ([]models.TPS, error) {
		stmt := selectTPS(serverUUID, after).OrderBy(query.Asc(schema.TPSDate)).Build()
		return database.QueryRows(ctx, ex, stmt, tpsMapper(serverUUID))
	})
}

func selectTPS(serverUUID string, after int64) *query.SelectBuilder {
	return query.Select(
		schema.TPSDate,
		schema.TPSValue,
		schema.TPSPlayersOnline,
		schema.TPSCPUUsage,
		schema.TPSRAMUsage,
		schema.TPSEntities,
		schema.TPSChunksLoaded,
		schema.TPSFreeDiskSpace,
	).
		From(schema.TPS, "").
		Where(query.NewWhereBuilder().
			Eq(schema.TPSServerID, serverRef(serverUUID)).
			Gte(schema.TPSDate, after))
}

func tpsMapper(serverUUID string) database.RowMapper[models.TPS] {
	return func(rows *sql.Rows) (models.TPS, error) {
		t := models.TPS{ServerUUID: serverUUID}
		err := rows.Scan(&t.Date, &t.TPS, &t.PlayersOnline, &t.CPUUsage, &t.RAMUsage, &t.Entities, &t.ChunksLoaded, &t.FreeDiskSpace)
		return t, err
	}
}

func serverRef(serverUUID string) query.Expr {
	return query.ResolveID(schema.Servers, query.K(schema.ServerUUID, serverUUID))
}

func playerRef(playerUUID string) query.Expr {
	return query.ResolveID(schema.Users, query.K(schema.UserUUID, playerUUID))
}
