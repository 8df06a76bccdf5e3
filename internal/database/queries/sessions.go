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

// sessionScope restricts the sessions table read under alias.
type sessionScope func(alias query.Alias) *query.WhereBuilder

// Sessions returns the sessions played on the server, oldest first, with
// their world times and kills.
func Sessions(serverUUID string) database.Query[[]models.Session] {
	return database.NewQuery("Sessions", func(ctx context.Context, ex database.Executor) ([]models.Session, error) {
		return loadSessions(ctx, ex, func(a query.Alias) *query.WhereBuilder {
			return query.NewWhereBuilder().Eq(query.Q(a, schema.SessionServerID), serverRef(serverUUID))
		})
	})
}

// SessionsOfPlayer returns the sessions of the player on every server.
func SessionsOfPlayer(playerUUID string) database.Query[[]models.Session] {
	return database.NewQuery("SessionsOfPlayer", func(ctx context.Context, ex database.Executor) ([]models.Session, error) {
		return loadSessions(ctx, ex, func(a query.Alias) *query.WhereBuilder {
			return query.NewWhereBuilder().Eq(query.Q(a, schema.SessionUserID), playerRef(playerUUID))
		})
	})
}

// loadSessions reads sessions, world times and kills in three statements
// and assembles them by session id.
func loadSessions(ctx context.Context, ex database.Executor, scope sessionScope) ([]models.Session, error) {
	stmt := query.Select(
		query.Q("s", schema.ID),
		query.Q("u", schema.UserUUID),
		query.Q("sv", schema.ServerUUID),
		query.Q("s", schema.SessionStart),
		query.Q("s", schema.SessionEnd),
		query.Q("s", schema.SessionMobKills),
		query.Q("s", schema.SessionDeaths),
		query.Q("s", schema.SessionAFKTime),
	).
		From(schema.Sessions, "s").
		Join(schema.Users, "u", query.Q("s", schema.SessionUserID), query.Q("u", schema.ID)).
		Join(schema.Servers, "sv", query.Q("s", schema.SessionServerID), query.Q("sv", schema.ID)).
		Where(scope("s")).
		OrderBy(query.Asc(query.Q("s", schema.SessionStart)), query.Asc(query.Q("s", schema.ID))).
		Build()

	sessions, err := database.QueryRows(ctx, ex, stmt, func(rows *sql.Rows) (models.Session, error) {
		var s models.Session
		err := rows.Scan(&s.ID, &s.PlayerUUID, &s.ServerUUID, &s.Start, &s.End, &s.MobKills, &s.Deaths, &s.AFKTime)
		return s, err
	})
	if err != nil || len(sessions) == 0 {
		return sessions, err
	}

	byID := make(map[int64]*models.Session, len(sessions))
	for i := range sessions {
		byID[sessions[i].ID] = &sessions[i]
	}
	inScope := query.Select(query.Q("s", schema.ID)).From(schema.Sessions, "s").Where(scope("s"))

	if err := loadWorldTimes(ctx, ex, inScope, byID); err != nil {
		return nil, err
	}
	if err := loadKills(ctx, ex, inScope, byID); err != nil {
		return nil, err
	}
	return sessions, nil
}

func loadWorldTimes(ctx context.Context, ex database.Executor, inScope *query.SelectBuilder, byID map[int64]*models.Session) error {
	stmt := query.Select(
		query.Q("t", schema.WorldTimeSessionID),
		query.Q("w", schema.WorldName),
		query.Q("t", schema.WorldTimeSurvival),
		query.Q("t", schema.WorldTimeCreative),
		query.Q("t", schema.WorldTimeAdventure),
		query.Q("t", schema.WorldTimeSpectator),
	).
		From(schema.WorldTimes, "t").
		Join(schema.Worlds, "w", query.Q("t", schema.WorldTimeWorldID), query.Q("w", schema.ID)).
		Where(query.NewWhereBuilder().InSelect(query.Q("t", schema.WorldTimeSessionID), inScope)).
		Build()

	return ex.Rows(ctx, stmt, func(rows *sql.Rows) error {
		var (
			sessionID int64
			world     string
			times     [4]int64
		)
		if err := rows.Scan(&sessionID, &world, &times[0], &times[1], &times[2], &times[3]); err != nil {
			return err
		}
		s, ok := byID[sessionID]
		if !ok {
			return nil
		}
		if s.WorldTimes == nil {
			s.WorldTimes = make(models.WorldTimes)
		}
		gm := make(models.GMTimes, len(models.GameModes))
		for i, mode := range models.GameModes {
			if times[i] > 0 {
				gm[mode] = times[i]
			}
		}
		s.WorldTimes[world] = gm
		return nil
	})
}

func loadKills(ctx context.Context, ex database.Executor, inScope *query.SelectBuilder, byID map[int64]*models.Session) error {
	stmt := query.Select(
		query.Q("k", schema.KillSessionID),
		query.Q("killer", schema.UserUUID),
		query.Q("victim", schema.UserUUID),
		query.Q("k", schema.KillDate),
		query.Q("k", schema.KillWeapon),
	).
		From(schema.Kills, "k").
		Join(schema.Users, "killer", query.Q("k", schema.KillKillerID), query.Q("killer", schema.ID)).
		Join(schema.Users, "victim", query.Q("k", schema.KillVictimID), query.Q("victim", schema.ID)).
		Where(query.NewWhereBuilder().InSelect(query.Q("k", schema.KillSessionID), inScope)).
		OrderBy(query.Asc(query.Q("k", schema.KillDate)), query.Asc(query.Q("k", schema.ID))).
		Build()

	return ex.Rows(ctx, stmt, func(rows *sql.Rows) error {
		var (
			sessionID int64
			k         models.Kill
			weapon    sql.NullString
		)
		if err := rows.Scan(&sessionID, &k.KillerUUID, &k.VictimUUID, &k.Date, &weapon); err != nil {
			return err
		}
		k.Weapon = weapon.String
		if s, ok := byID[sessionID]; ok {
			s.Kills = append(s.Kills, k)
		}
		return nil
	})
}
