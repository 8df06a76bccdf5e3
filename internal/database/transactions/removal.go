// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package transactions

import (
	"context"
	"errors"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
)

// RemovePlayer deletes the player and every row that references them,
// including kills where they were the victim. Removing an unknown player
// is a no-op.
func RemovePlayer(playerUUID string) database.Transaction {
	return database.NewTransaction("RemovePlayer", func(ctx context.Context, tx *database.Tx) error {
		uid, err := playerID(ctx, tx, playerUUID)
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		ownSessions := query.Select(schema.ID).From(schema.Sessions, "").
			Where(query.NewWhereBuilder().Eq(schema.SessionUserID, uid))

		stmts := []query.Statement{
			query.Delete(schema.ExtUserValues).Where(query.NewWhereBuilder().Eq(schema.ExtValueUserID, uid)).Build(),
			query.Delete(schema.WorldTimes).Where(query.NewWhereBuilder().Or(
				query.NewWhereBuilder().Eq(schema.WorldTimeUserID, uid),
				query.NewWhereBuilder().InSelect(schema.WorldTimeSessionID, ownSessions),
			)).Build(),
			query.Delete(schema.Kills).Where(query.NewWhereBuilder().Or(
				query.NewWhereBuilder().Eq(schema.KillKillerID, uid),
				query.NewWhereBuilder().Eq(schema.KillVictimID, uid),
				query.NewWhereBuilder().InSelect(schema.KillSessionID, ownSessions),
			)).Build(),
			query.Delete(schema.Sessions).Where(query.NewWhereBuilder().Eq(schema.SessionUserID, uid)).Build(),
			query.Delete(schema.Ping).Where(query.NewWhereBuilder().Eq(schema.PingUserID, uid)).Build(),
			query.Delete(schema.GeoInfo).Where(query.NewWhereBuilder().Eq(schema.GeoUserID, uid)).Build(),
			query.Delete(schema.Nicknames).Where(query.NewWhereBuilder().Eq(schema.NicknameUserID, uid)).Build(),
			query.Delete(schema.UserInfo).Where(query.NewWhereBuilder().Eq(schema.UserInfoUserID, uid)).Build(),
			query.Delete(schema.Users).Where(query.NewWhereBuilder().Eq(schema.ID, uid)).Build(),
		}

		var removed int64
		for _, stmt := range stmts {
			n, err := tx.Exec(ctx, stmt)
			if err != nil {
				return err
			}
			removed += n
		}
		logging.CtxInfo(ctx).Str("player_uuid", playerUUID).Int64("rows", removed).Msg("Player removed")
		return nil
	})
}

// RemoveEverything empties every data table. The schema version is kept.
func RemoveEverything() database.Transaction {
	return database.NewTransaction("RemoveEverything", func(ctx context.Context, tx *database.Tx) error {
		for _, table := range schema.DeletionOrder() {
			if _, err := tx.Exec(ctx, query.Delete(table).Build()); err != nil {
				return err
			}
		}
		logging.CtxWarn(ctx).Msg("All stored data removed")
		return nil
	})
}
