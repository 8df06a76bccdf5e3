// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package transactions

import (
	"context"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

// RegisterPlayer records the player and their registration on the server.
// Registering again is a no-op; the first registration date is kept.
// Without the unique registration index a repeat would add a second row,
// so the store must be fully migrated.
func RegisterPlayer(serverUUID string, p *models.Player) database.Transaction {
	return requireVersion(userInfoUniqueVersion, validated("RegisterPlayer", p, func(ctx context.Context, tx *database.Tx) error {
		sid, err := serverID(ctx, tx, serverUUID)
		if err != nil {
			return err
		}
		uid, err := EnsurePlayer(ctx, tx, p.UUID, p.Name, p.Registered)
		if err != nil {
			return err
		}
		_, err = EnsureUserInfo(ctx, tx, uid, sid, p.Registered)
		return err
	}))
}

// UpdateName changes the display name of a registered player.
func UpdateName(playerUUID, name string) database.Transaction {
	return database.NewTransaction("UpdateName", func(ctx context.Context, tx *database.Tx) error {
		_, err := tx.Exec(ctx, query.Update(schema.Users).
			Set(schema.UserName, models.Clip(name, schema.NameLength)).
			Where(query.NewWhereBuilder().Eq(schema.UserUUID, playerUUID)).
			Build())
		return err
	})
}

func userInfoScope(playerUUID, serverUUID string) *query.WhereBuilder {
	return query.NewWhereBuilder().
		Eq(schema.UserInfoUserID, query.ResolveID(schema.Users, query.K(schema.UserUUID, playerUUID))).
		Eq(schema.UserInfoServerID, query.ResolveID(schema.Servers, query.K(schema.ServerUUID, serverUUID)))
}

// SetBanStatus updates the player's ban flag on one server.
func SetBanStatus(playerUUID, serverUUID string, banned bool) database.Transaction {
	return database.NewTransaction("SetBanStatus", func(ctx context.Context, tx *database.Tx) error {
		_, err := tx.Exec(ctx, query.Update(schema.UserInfo).
			Set(schema.UserInfoBanned, banned).
			Where(userInfoScope(playerUUID, serverUUID)).
			Build())
		return err
	})
}

// SetOperatorStatus updates the player's operator flag on one server.
func SetOperatorStatus(playerUUID, serverUUID string, opped bool) database.Transaction {
	return requireVersion(operatorVersion, database.NewTransaction("SetOperatorStatus", func(ctx context.Context, tx *database.Tx) error {
		_, err := tx.Exec(ctx, query.Update(schema.UserInfo).
			Set(schema.UserInfoOpped, opped).
			Where(userInfoScope(playerUUID, serverUUID)).
			Build())
		return err
	}))
}

// IncrementKicks adds one to the player's kick counter.
func IncrementKicks(playerUUID string) database.Transaction {
	return database.NewTransaction("IncrementKicks", func(ctx context.Context, tx *database.Tx) error {
		_, err := tx.Exec(ctx, query.Update(schema.Users).
			Increment(schema.UserTimesKicked, 1).
			Where(query.NewWhereBuilder().Eq(schema.UserUUID, playerUUID)).
			Build())
		return err
	})
}

// StoreGeoInfo records that the player connected from a hashed address.
// A known (player, address) pair gets its geolocation and last use updated.
func StoreGeoInfo(g *models.GeoInfo) database.Transaction {
	return requireVersion(geoHashVersion, validated("StoreGeoInfo", g, func(ctx context.Context, tx *database.Tx) error {
		uid, err := playerID(ctx, tx, g.PlayerUUID)
		if err != nil {
			return err
		}
		geolocation := models.Clip(g.Geolocation, schema.GeolocationLength)

		n, err := tx.Exec(ctx, query.Update(schema.GeoInfo).
			Set(schema.GeoGeolocation, geolocation).
			Set(schema.GeoLastUsed, g.LastUsed).
			Where(query.NewWhereBuilder().Eq(schema.GeoUserID, uid).Eq(schema.GeoIPHash, g.IPHash)).
			Build())
		if err != nil || n > 0 {
			return err
		}
		_, err = tx.Exec(ctx, query.Insert(schema.GeoInfo).
			Value(schema.GeoUserID, uid).
			Value(schema.GeoIPHash, g.IPHash).
			Value(schema.GeoGeolocation, geolocation).
			Value(schema.GeoLastUsed, g.LastUsed).
			Build())
		return err
	}))
}

// StoreNickname records a display name seen for the player on a server.
// Seeing a known nickname again only moves its last use.
func StoreNickname(n *models.Nickname) database.Transaction {
	return validated("StoreNickname", n, func(ctx context.Context, tx *database.Tx) error {
		uid, err := playerID(ctx, tx, n.PlayerUUID)
		if err != nil {
			return err
		}
		sid, err := serverID(ctx, tx, n.ServerUUID)
		if err != nil {
			return err
		}
		nickname := models.Clip(n.Name, schema.NicknameLength)

		updated, err := tx.Exec(ctx, query.Update(schema.Nicknames).
			Set(schema.NicknameLastUsed, n.LastUsed).
			Where(query.NewWhereBuilder().
				Eq(schema.NicknameUserID, uid).
				Eq(schema.NicknameServerID, sid).
				Eq(schema.NicknameText, nickname)).
			Build())
		if err != nil || updated > 0 {
			return err
		}
		_, err = tx.Exec(ctx, query.Insert(schema.Nicknames).
			Value(schema.NicknameUserID, uid).
			Value(schema.NicknameServerID, sid).
			Value(schema.NicknameText, nickname).
			Value(schema.NicknameLastUsed, n.LastUsed).
			Build())
		return err
	})
}
