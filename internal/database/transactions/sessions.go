// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package transactions

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

// StoreSession writes a finished session with its world times and kills
// in one transaction. The player and server must be registered.
func StoreSession(s *models.Session) database.Transaction {
	return requireVersion(killScopeVersion, validated("StoreSession", s, func(ctx context.Context, tx *database.Tx) error {
		uid, err := playerID(ctx, tx, s.PlayerUUID)
		if err != nil {
			return err
		}
		sid, err := serverID(ctx, tx, s.ServerUUID)
		if err != nil {
			return err
		}

		id, ok, err := tx.InsertID(ctx, sessionInsert(s).Returning(schema.ID).Build())
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("session insert returned no id")
		}
		s.ID = id
		return storeDependents(ctx, tx, s, uid, sid)
	}))
}

func sessionInsert(s *models.Session) *query.InsertBuilder {
	return query.Insert(schema.Sessions).
		Value(schema.SessionUserID, query.ResolveID(schema.Users, query.K(schema.UserUUID, s.PlayerUUID))).
		Value(schema.SessionServerID, query.ResolveID(schema.Servers, query.K(schema.ServerUUID, s.ServerUUID))).
		Value(schema.SessionStart, s.Start).
		Value(schema.SessionEnd, s.End).
		Value(schema.SessionMobKills, s.MobKills).
		Value(schema.SessionDeaths, s.Deaths).
		Value(schema.SessionAFKTime, s.AFKTime)
}

// storeDependents writes the world times and kills of a session whose id
// is known.
func storeDependents(ctx context.Context, tx *database.Tx, s *models.Session, userID, serverID int64) error {
	for _, world := range slices.Sorted(maps.Keys(s.WorldTimes)) {
		worldID, err := EnsureWorld(ctx, tx, serverID, world)
		if err != nil {
			return err
		}
		parent := sessionParent{id: s.ID, userID: userID, serverID: serverID}
		if _, err := tx.Exec(ctx, worldTimeInsert(parent, worldID, s.WorldTimes[world])); err != nil {
			return err
		}
	}

	if len(s.Kills) == 0 {
		return nil
	}
	_, err := tx.ExecBatch(ctx, func(add func(query.Statement) error) error {
		for _, k := range s.Kills {
			if err := add(killInsert(&k, serverID, s.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

func worldTimeInsert(p sessionParent, worldID int64, gm models.GMTimes) query.Statement {
	return query.Insert(schema.WorldTimes).
		Value(schema.WorldTimeSessionID, p.id).
		Value(schema.WorldTimeWorldID, worldID).
		Value(schema.WorldTimeUserID, p.userID).
		Value(schema.WorldTimeServerID, p.serverID).
		Value(schema.WorldTimeSurvival, gm[models.Survival]).
		Value(schema.WorldTimeCreative, gm[models.Creative]).
		Value(schema.WorldTimeAdventure, gm[models.Adventure]).
		Value(schema.WorldTimeSpectator, gm[models.Spectator]).
		Build()
}

// killInsert scopes the kill to the server of its session.
func killInsert(k *models.Kill, serverID, sessionID int64) query.Statement {
	return query.Insert(schema.Kills).
		Value(schema.KillKillerID, query.ResolveID(schema.Users, query.K(schema.UserUUID, k.KillerUUID))).
		Value(schema.KillVictimID, query.ResolveID(schema.Users, query.K(schema.UserUUID, k.VictimUUID))).
		Value(schema.KillServerID, serverID).
		Value(schema.KillSessionID, sessionID).
		Value(schema.KillDate, k.Date).
		Value(schema.KillWeapon, models.Clip(k.Weapon, schema.WeaponLength)).
		Build()
}
