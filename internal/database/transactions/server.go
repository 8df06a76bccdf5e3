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

// StoreServerInfo registers the server or refreshes its details.
func StoreServerInfo(s *models.Server) database.Transaction {
	return requireVersion(serverCapacityVersion, validated("StoreServerInfo", s, func(ctx context.Context, tx *database.Tx) error {
		n, err := tx.Exec(ctx, query.Update(schema.Servers).
			Set(schema.ServerName, models.Clip(s.Name, schema.ServerNameLength)).
			Set(schema.ServerWebAddress, models.Clip(s.WebAddress, schema.WebAddressLength)).
			Set(schema.ServerInstalled, s.Installed).
			Set(schema.ServerProxy, s.Proxy).
			Set(schema.ServerMaxPlayers, s.MaxPlayers).
			Set(schema.ServerPlanVersion, s.PlanVersion).
			Where(query.NewWhereBuilder().Eq(schema.ServerUUID, s.UUID)).
			Build())
		if err != nil || n > 0 {
			return err
		}
		_, err = EnsureServer(ctx, tx, s)
		return err
	}))
}

// StorePing records one latency sample.
func StorePing(p *models.Ping) database.Transaction {
	return validated("StorePing", p, func(ctx context.Context, tx *database.Tx) error {
		_, err := tx.Exec(ctx, pingInsert(p).Build())
		return err
	})
}

func pingInsert(p *models.Ping) *query.InsertBuilder {
	return query.Insert(schema.Ping).
		Value(schema.PingUserID, query.ResolveID(schema.Users, query.K(schema.UserUUID, p.PlayerUUID))).
		Value(schema.PingServerID, query.ResolveID(schema.Servers, query.K(schema.ServerUUID, p.ServerUUID))).
		Value(schema.PingDate, p.Date).
		Value(schema.PingMin, p.Min).
		Value(schema.PingMax, p.Max).
		Value(schema.PingAvg, p.Avg)
}

// StoreTPS records one performance sample.
func StoreTPS(t *models.TPS) database.Transaction {
	return validated("StoreTPS", t, func(ctx context.Context, tx *database.Tx) error {
		_, err := tx.Exec(ctx, tpsInsert(t).Build())
		return err
	})
}

func tpsInsert(t *models.TPS) *query.InsertBuilder {
	return query.Insert(schema.TPS).
		Value(schema.TPSServerID, query.ResolveID(schema.Servers, query.K(schema.ServerUUID, t.ServerUUID))).
		Value(schema.TPSDate, t.Date).
		Value(schema.TPSValue, t.TPS).
		Value(schema.TPSPlayersOnline, t.PlayersOnline).
		Value(schema.TPSCPUUsage, t.CPUUsage).
		Value(schema.TPSRAMUsage, t.RAMUsage).
		Value(schema.TPSEntities, t.Entities).
		Value(schema.TPSChunksLoaded, t.ChunksLoaded).
		Value(schema.TPSFreeDiskSpace, t.FreeDiskSpace)
}

// RecordCommandUse counts one use of command on the server.
func RecordCommandUse(serverUUID, command string) database.Transaction {
	return database.NewTransaction("RecordCommandUse", func(ctx context.Context, tx *database.Tx) error {
		sid, err := serverID(ctx, tx, serverUUID)
		if err != nil {
			return err
		}
		command = models.Clip(command, schema.CommandLength)

		n, err := tx.Exec(ctx, query.Update(schema.CommandUse).
			Increment(schema.CommandTimesUsed, 1).
			Where(query.NewWhereBuilder().Eq(schema.CommandServerID, sid).Eq(schema.CommandName, command)).
			Build())
		if err != nil || n > 0 {
			return err
		}
		_, err = tx.Exec(ctx, query.Insert(schema.CommandUse).
			Value(schema.CommandServerID, sid).
			Value(schema.CommandName, command).
			Value(schema.CommandTimesUsed, 1).
			Build())
		return err
	})
}
