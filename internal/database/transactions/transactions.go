// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package transactions

import (
	"context"
	"fmt"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

// Minimum schema versions of the columns and indexes writes depend on.
const (
	serverCapacityVersion = 1 // plan_servers.max_players
	operatorVersion       = 3 // plan_user_info.opped
	killScopeVersion      = 4 // plan_kills.server_id, after plan_sessions.afk_time
	geoHashVersion        = 6 // plan_geo_information.ip_hash only
	userInfoUniqueVersion = 9 // unique (user_id, server_id) on plan_user_info
)

// gated is a Transaction that needs the store at a minimum version.
type gated struct {
	database.Transaction
	version int
}

func (g gated) RequiredSchemaVersion() int { return g.version }

// requireVersion marks t as runnable only once the store reaches version.
func requireVersion(version int, t database.Transaction) database.Transaction {
	return gated{Transaction: t, version: version}
}

// validated wraps fn so v is validated before anything is written.
func validated(name string, v interface{}, fn func(ctx context.Context, tx *database.Tx) error) database.Transaction {
	return database.NewTransaction(name, func(ctx context.Context, tx *database.Tx) error {
		if err := models.Validate(v); err != nil {
			return fmt.Errorf("invalid %s input: %w", name, err)
		}
		return fn(ctx, tx)
	})
}
