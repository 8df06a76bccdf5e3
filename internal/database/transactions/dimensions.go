// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package transactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
	"github.com/plan-player-analytics/Plan-sub001/internal/metrics"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

// ensure inserts a dimension row unless its natural key already exists and
// returns the id of whichever row holds the key.
//
// The insert skips duplicates with ON CONFLICT DO NOTHING. A concurrent
// writer can still win the race between our check and our insert; SQLite
// reports that as a UNIQUE failure and DuckDB as a write-write conflict.
// Both are benign: the row we wanted exists, so it is re-selected.
func ensure(ctx context.Context, tx *database.Tx, table query.Table, insert *query.InsertBuilder, keys ...query.Key) (int64, error) {
	id, inserted, err := tx.InsertID(ctx, insert.OnConflictDoNothing().Returning(schema.ID).Build())
	switch {
	case err == nil && inserted:
		return id, nil
	case err != nil && !database.IsConstraintViolation(err):
		return 0, err
	case err != nil:
		metrics.DBBenignConflicts.WithLabelValues(string(table)).Inc()
		logging.CtxDebug(ctx).Err(err).Str("table", string(table)).Msg("Concurrent insert of the same key, re-selecting")
	}

	where := query.NewWhereBuilder()
	for _, k := range keys {
		where.Eq(k.Col, k.Value)
	}
	id, err = database.QueryRow(ctx, tx, query.Select(schema.ID).From(table, "").Where(where).Limit(1).Build(), database.ScanInt64)
	if errors.Is(err, database.ErrNotFound) {
		return 0, fmt.Errorf("failed to resolve %s row after insert: %w", table, err)
	}
	return id, err
}

// EnsureServer returns the id of the server with s.UUID, registering it
// with s's details when missing. Existing rows are left unchanged.
func EnsureServer(ctx context.Context, tx *database.Tx, s *models.Server) (int64, error) {
	insert := query.Insert(schema.Servers).
		Value(schema.ServerUUID, s.UUID).
		Value(schema.ServerName, models.Clip(s.Name, schema.ServerNameLength)).
		Value(schema.ServerWebAddress, models.Clip(s.WebAddress, schema.WebAddressLength)).
		Value(schema.ServerInstalled, s.Installed).
		Value(schema.ServerProxy, s.Proxy).
		Value(schema.ServerMaxPlayers, s.MaxPlayers).
		Value(schema.ServerPlanVersion, s.PlanVersion)
	return ensure(ctx, tx, schema.Servers, insert, query.K(schema.ServerUUID, s.UUID))
}

// EnsurePlayer returns the id of the player with uuid, creating the row
// with name and registered when missing.
func EnsurePlayer(ctx context.Context, tx *database.Tx, uuid, name string, registered int64) (int64, error) {
	insert := query.Insert(schema.Users).
		Value(schema.UserUUID, uuid).
		Value(schema.UserName, models.Clip(name, schema.NameLength)).
		Value(schema.UserRegistered, registered).
		Value(schema.UserTimesKicked, 0)
	return ensure(ctx, tx, schema.Users, insert, query.K(schema.UserUUID, uuid))
}

// EnsureWorld returns the id of the world called name on serverID.
func EnsureWorld(ctx context.Context, tx *database.Tx, serverID int64, name string) (int64, error) {
	name = models.Clip(name, schema.WorldNameLength)
	insert := query.Insert(schema.Worlds).
		Value(schema.WorldName, name).
		Value(schema.WorldServerID, serverID)
	return ensure(ctx, tx, schema.Worlds, insert, query.K(schema.WorldName, name), query.K(schema.WorldServerID, serverID))
}

// EnsureUserInfo returns the id of the registration of userID on serverID.
// The unique index on the pair exists from the user info migration on;
// callers must be gated on userInfoUniqueVersion.
func EnsureUserInfo(ctx context.Context, tx *database.Tx, userID, serverID, registered int64) (int64, error) {
	insert := query.Insert(schema.UserInfo).
		Value(schema.UserInfoUserID, userID).
		Value(schema.UserInfoServerID, serverID).
		Value(schema.UserInfoRegistered, registered).
		Value(schema.UserInfoOpped, false).
		Value(schema.UserInfoBanned, false)
	return ensure(ctx, tx, schema.UserInfo, insert, query.K(schema.UserInfoUserID, userID), query.K(schema.UserInfoServerID, serverID))
}

// playerID resolves a player that must already exist.
func playerID(ctx context.Context, tx *database.Tx, uuid string) (int64, error) {
	return lookupID(ctx, tx, schema.Users, query.K(schema.UserUUID, uuid))
}

// serverID resolves a server that must already exist.
func serverID(ctx context.Context, tx *database.Tx, uuid string) (int64, error) {
	return lookupID(ctx, tx, schema.Servers, query.K(schema.ServerUUID, uuid))
}

func lookupID(ctx context.Context, tx *database.Tx, table query.Table, key query.Key) (int64, error) {
	stmt := query.Select(schema.ID).From(table, "").Where(query.NewWhereBuilder().Eq(key.Col, key.Value)).Limit(1).Build()
	id, err := database.QueryRow(ctx, tx, stmt, database.ScanInt64)
	if errors.Is(err, database.ErrNotFound) {
		return 0, fmt.Errorf("%s %v is not registered: %w", table, key.Value, err)
	}
	return id, err
}
