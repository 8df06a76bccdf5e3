// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package transactions

import (
	"context"
	"fmt"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

// bulkInsert validates every item, then writes them as one prepared batch.
// Dimension references inside row are ResolveID expressions, so the batch
// never reads ids back.
func bulkInsert[T any](name string, items []T, row func(*T) *query.InsertBuilder) database.Transaction {
	return database.NewTransaction(name, func(ctx context.Context, tx *database.Tx) error {
		for i := range items {
			if err := models.Validate(&items[i]); err != nil {
				return fmt.Errorf("invalid %s item %d: %w", name, i, err)
			}
		}
		_, err := tx.ExecBatch(ctx, func(add func(query.Statement) error) error {
			for i := range items {
				if err := add(row(&items[i]).Build()); err != nil {
					return err
				}
			}
			return nil
		})
		return err
	})
}

// BulkInsertServers registers servers, skipping UUIDs already present.
func BulkInsertServers(servers []models.Server) database.Transaction {
	return requireVersion(serverCapacityVersion, bulkInsert("BulkInsertServers", servers, func(s *models.Server) *query.InsertBuilder {
		return query.Insert(schema.Servers).
			Value(schema.ServerUUID, s.UUID).
			Value(schema.ServerName, models.Clip(s.Name, schema.ServerNameLength)).
			Value(schema.ServerWebAddress, models.Clip(s.WebAddress, schema.WebAddressLength)).
			Value(schema.ServerInstalled, s.Installed).
			Value(schema.ServerProxy, s.Proxy).
			Value(schema.ServerMaxPlayers, s.MaxPlayers).
			Value(schema.ServerPlanVersion, s.PlanVersion).
			OnConflictDoNothing()
	}))
}

// BulkInsertPlayers registers players, skipping UUIDs already present.
func BulkInsertPlayers(players []models.Player) database.Transaction {
	return bulkInsert("BulkInsertPlayers", players, func(p *models.Player) *query.InsertBuilder {
		return query.Insert(schema.Users).
			Value(schema.UserUUID, p.UUID).
			Value(schema.UserName, models.Clip(p.Name, schema.NameLength)).
			Value(schema.UserRegistered, p.Registered).
			Value(schema.UserTimesKicked, p.TimesKicked).
			OnConflictDoNothing()
	})
}

// BulkInsertUserInfo registers players on servers, skipping known
// (player, server) pairs.
func BulkInsertUserInfo(infos []models.UserInfo) database.Transaction {
	return requireVersion(userInfoUniqueVersion, bulkInsert("BulkInsertUserInfo", infos, func(u *models.UserInfo) *query.InsertBuilder {
		return query.Insert(schema.UserInfo).
			Value(schema.UserInfoUserID, query.ResolveID(schema.Users, query.K(schema.UserUUID, u.PlayerUUID))).
			Value(schema.UserInfoServerID, query.ResolveID(schema.Servers, query.K(schema.ServerUUID, u.ServerUUID))).
			Value(schema.UserInfoRegistered, u.Registered).
			Value(schema.UserInfoOpped, u.Opped).
			Value(schema.UserInfoBanned, u.Banned).
			OnConflictDoNothing()
	}))
}

// BulkInsertWorlds registers worlds on their servers.
func BulkInsertWorlds(worlds []models.World) database.Transaction {
	return bulkInsert("BulkInsertWorlds", worlds, func(w *models.World) *query.InsertBuilder {
		return query.Insert(schema.Worlds).
			Value(schema.WorldName, models.Clip(w.Name, schema.WorldNameLength)).
			Value(schema.WorldServerID, query.ResolveID(schema.Servers, query.K(schema.ServerUUID, w.ServerUUID))).
			OnConflictDoNothing()
	})
}

// BulkInsertPings stores latency samples.
func BulkInsertPings(pings []models.Ping) database.Transaction {
	return bulkInsert("BulkInsertPings", pings, pingInsert)
}

// BulkInsertTPS stores performance samples.
func BulkInsertTPS(samples []models.TPS) database.Transaction {
	return bulkInsert("BulkInsertTPS", samples, tpsInsert)
}

// BulkInsertGeoInfo stores hashed addresses, skipping known
// (player, address) pairs.
func BulkInsertGeoInfo(geo []models.GeoInfo) database.Transaction {
	return requireVersion(geoHashVersion, bulkInsert("BulkInsertGeoInfo", geo, func(g *models.GeoInfo) *query.InsertBuilder {
		return query.Insert(schema.GeoInfo).
			Value(schema.GeoUserID, query.ResolveID(schema.Users, query.K(schema.UserUUID, g.PlayerUUID))).
			Value(schema.GeoIPHash, g.IPHash).
			Value(schema.GeoGeolocation, models.Clip(g.Geolocation, schema.GeolocationLength)).
			Value(schema.GeoLastUsed, g.LastUsed).
			OnConflictDoNothing()
	}))
}

// BulkInsertNicknames stores nicknames as given. plan_nicknames has no
// unique key, so every row is written; StoreNickname keeps live capture
// free of repeats.
func BulkInsertNicknames(nicknames []models.Nickname) database.Transaction {
	return bulkInsert("BulkInsertNicknames", nicknames, func(n *models.Nickname) *query.InsertBuilder {
		return query.Insert(schema.Nicknames).
			Value(schema.NicknameUserID, query.ResolveID(schema.Users, query.K(schema.UserUUID, n.PlayerUUID))).
			Value(schema.NicknameServerID, query.ResolveID(schema.Servers, query.K(schema.ServerUUID, n.ServerUUID))).
			Value(schema.NicknameText, models.Clip(n.Name, schema.NicknameLength)).
			Value(schema.NicknameLastUsed, n.LastUsed)
	})
}

// BulkInsertCommandUse stores command counters, skipping known
// (server, command) pairs.
func BulkInsertCommandUse(uses []models.CommandUse) database.Transaction {
	return bulkInsert("BulkInsertCommandUse", uses, func(c *models.CommandUse) *query.InsertBuilder {
		return query.Insert(schema.CommandUse).
			Value(schema.CommandServerID, query.ResolveID(schema.Servers, query.K(schema.ServerUUID, c.ServerUUID))).
			Value(schema.CommandName, models.Clip(c.Command, schema.CommandLength)).
			Value(schema.CommandTimesUsed, c.TimesUsed).
			OnConflictDoNothing()
	})
}
