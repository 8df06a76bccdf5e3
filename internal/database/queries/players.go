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

func selectPlayers() *query.SelectBuilder {
	return query.Select(schema.ID, schema.UserUUID, schema.UserName, schema.UserRegistered, schema.UserTimesKicked).
		From(schema.Users, "")
}

func scanPlayer(rows *sql.Rows) (models.Player, error) {
	var p models.Player
	err := rows.Scan(&p.ID, &p.UUID, &p.Name, &p.Registered, &p.TimesKicked)
	return p, err
}

// PlayerUUIDs returns the uuid of every known player.
func PlayerUUIDs() database.Query[[]string] {
	return database.NewQuery("PlayerUUIDs", func(ctx context.Context, ex database.Executor) ([]string, error) {
		stmt := query.Select(schema.UserUUID).From(schema.Users, "").OrderBy(query.Asc(schema.ID)).Build()
		return database.QueryRows(ctx, ex, stmt, database.ScanString)
	})
}

// Players returns every known player in registration order.
func Players() database.Query[[]models.Player] {
	return database.NewQuery("Players", func(ctx context.Context, ex database.Executor) ([]models.Player, error) {
		return database.QueryRows(ctx, ex, selectPlayers().OrderBy(query.Asc(schema.ID)).Build(), scanPlayer)
	})
}

// Player returns one player, or database.ErrNotFound.
func Player(playerUUID string) database.Query[models.Player] {
	return database.NewQuery("Player", func(ctx context.Context, ex database.Executor) (models.Player, error) {
		stmt := selectPlayers().Where(query.NewWhereBuilder().Eq(schema.UserUUID, playerUUID)).Limit(1).Build()
		return database.QueryRow(ctx, ex, stmt, scanPlayer)
	})
}

// UserInfos returns the per-server registrations of the player.
func UserInfos(playerUUID string) database.Query[[]models.UserInfo] {
	return database.NewQuery("UserInfos", func(ctx context.Context, ex database.Executor) ([]models.UserInfo, error) {
		stmt := query.Select(
			query.Q("s", schema.ServerUUID),
			query.Q("i", schema.UserInfoRegistered),
			query.Q("i", schema.UserInfoOpped),
			query.Q("i", schema.UserInfoBanned),
		).
			From(schema.UserInfo, "i").
			Join(schema.Servers, "s", query.Q("i", schema.UserInfoServerID), query.Q("s", schema.ID)).
			Where(query.NewWhereBuilder().Eq(query.Q("i", schema.UserInfoUserID), playerRef(playerUUID))).
			OrderBy(query.Asc(query.Q("i", schema.UserInfoRegistered))).
			Build()
		return database.QueryRows(ctx, ex, stmt, func(rows *sql.Rows) (models.UserInfo, error) {
			u := models.UserInfo{PlayerUUID: playerUUID}
			err := rows.Scan(&u.ServerUUID, &u.Registered, &u.Opped, &u.Banned)
			return u, err
		})
	})
}

// GeoInfo returns the hashed addresses the player connected from, oldest
// first.
func GeoInfo(playerUUID string) database.Query[[]models.GeoInfo] {
	return database.NewQuery("GeoInfo", func(ctx context.Context, ex database.Executor) ([]models.GeoInfo, error) {
		stmt := query.Select(schema.GeoIPHash, schema.GeoGeolocation, schema.GeoLastUsed).
			From(schema.GeoInfo, "").
			Where(query.NewWhereBuilder().Eq(schema.GeoUserID, playerRef(playerUUID))).
			OrderBy(query.Asc(schema.GeoLastUsed), query.Asc(schema.ID)).
			Build()
		return database.QueryRows(ctx, ex, stmt, func(rows *sql.Rows) (models.GeoInfo, error) {
			g := models.GeoInfo{PlayerUUID: playerUUID}
			err := rows.Scan(&g.IPHash, &g.Geolocation, &g.LastUsed)
			return g, err
		})
	})
}

// Nicknames returns the display names of the player on every server.
func Nicknames(playerUUID string) database.Query[[]models.Nickname] {
	return database.NewQuery("Nicknames", func(ctx context.Context, ex database.Executor) ([]models.Nickname, error) {
		stmt := query.Select(query.Q("s", schema.ServerUUID), query.Q("n", schema.NicknameText), query.Q("n", schema.NicknameLastUsed)).
			From(schema.Nicknames, "n").
			Join(schema.Servers, "s", query.Q("n", schema.NicknameServerID), query.Q("s", schema.ID)).
			Where(query.NewWhereBuilder().Eq(query.Q("n", schema.NicknameUserID), playerRef(playerUUID))).
			OrderBy(query.Asc(query.Q("n", schema.NicknameLastUsed)), query.Asc(query.Q("n", schema.ID))).
			Build()
		return database.QueryRows(ctx, ex, stmt, func(rows *sql.Rows) (models.Nickname, error) {
			n := models.Nickname{PlayerUUID: playerUUID}
			err := rows.Scan(&n.ServerUUID, &n.Name, &n.LastUsed)
			return n, err
		})
	})
}

// Pings returns the latency samples taken on the server at or after after.
func Pings(serverUUID string, after int64) database.Query[[]models.Ping] {
	return database.NewQuery("Pings", func(ctx context.Context, ex database.Executor) ([]models.Ping, error) {
		stmt := query.Select(
			query.Q("u", schema.UserUUID),
			query.Q("p", schema.PingDate),
			query.Q("p", schema.PingMin),
			query.Q("p", schema.PingMax),
			query.Q("p", schema.PingAvg),
		).
			From(schema.Ping, "p").
			Join(schema.Users, "u", query.Q("p", schema.PingUserID), query.Q("u", schema.ID)).
			Where(query.NewWhereBuilder().
				Eq(query.Q("p", schema.PingServerID), serverRef(serverUUID)).
				Gte(query.Q("p", schema.PingDate), after)).
			OrderBy(query.Asc(query.Q("p", schema.PingDate)), query.Asc(query.Q("p", schema.ID))).
			Build()
		return database.QueryRows(ctx, ex, stmt, func(rows *sql.Rows) (models.Ping, error) {
			p := models.Ping{ServerUUID: serverUUID}
			err := rows.Scan(&p.PlayerUUID, &p.Date, &p.Min, &p.Max, &p.Avg)
			return p, err
		})
	})
}

// CountPlayerReferences counts the rows in every table that point at the
// player. It is 0 for an unknown or removed player.
func CountPlayerReferences(playerUUID string) database.Query[int64] {
	return database.NewQuery("CountPlayerReferences", func(ctx context.Context, ex database.Executor) (int64, error) {
		refs := []struct {
			table query.Table
			col   query.Column
		}{
			{schema.UserInfo, schema.UserInfoUserID},
			{schema.Sessions, schema.SessionUserID},
			{schema.WorldTimes, schema.WorldTimeUserID},
			{schema.Kills, schema.KillKillerID},
			{schema.Kills, schema.KillVictimID},
			{schema.Ping, schema.PingUserID},
			{schema.GeoInfo, schema.GeoUserID},
			{schema.Nicknames, schema.NicknameUserID},
			{schema.ExtUserValues, schema.ExtValueUserID},
		}
		var total int64
		for _, r := range refs {
			stmt := query.Select(query.Count(query.Fragment("*"))).
				From(r.table, "").
				Where(query.NewWhereBuilder().Eq(r.col, playerRef(playerUUID))).
				Build()
			n, err := database.QueryRow(ctx, ex, stmt, database.ScanInt64)
			if err != nil {
				return 0, err
			}
			total += n
		}
		return total, nil
	})
}
