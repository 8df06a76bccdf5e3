// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package transactions

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

const (
	testServer = "0f0e6a1c-2b3d-4e5f-8a9b-0c1d2e3f4a5b"
	testAlice  = "a1a1a1a1-b2b2-4c3c-8d4d-e5e5e5e5e5e5"
	testBob    = "b0b0b0b0-1111-4222-8333-444455556666"
)

// seedServer registers testServer with alice and bob on it.
func seedServer(t *testing.T, db *database.DB) {
	t.Helper()
	ctx := context.Background()
	steps := []database.Transaction{
		StoreServerInfo(&models.Server{UUID: testServer, Name: "Survival", Installed: true, MaxPlayers: 20}),
		RegisterPlayer(testServer, &models.Player{UUID: testAlice, Name: "Alice", Registered: 1000}),
		RegisterPlayer(testServer, &models.Player{UUID: testBob, Name: "Bob", Registered: 2000}),
	}
	for _, tr := range steps {
		if err := db.ExecuteTransaction(ctx, tr); err != nil {
			t.Fatalf("%s failed: %v", tr.Name(), err)
		}
	}
}

func newSession(player string, start, end int64) models.Session {
	return models.Session{
		PlayerUUID: player,
		ServerUUID: testServer,
		Start:      start,
		End:        end,
		MobKills:   1,
		Deaths:     2,
		AFKTime:    (end - start) / 10,
	}
}

func randomPlayer() models.Player {
	id := uuid.New().String()
	return models.Player{UUID: id, Name: id[:8], Registered: 1000}
}

func count(t *testing.T, ex database.Executor, table query.Table, where *query.WhereBuilder) int64 {
	t.Helper()
	sel := query.Select(query.Count(query.Fragment("*"))).From(table, "")
	if where != nil {
		sel = sel.Where(where)
	}
	n, err := database.QueryRow(context.Background(), ex, sel.Build(), database.ScanInt64)
	if err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

func userIs(col query.Column, playerUUID string) *query.WhereBuilder {
	return query.NewWhereBuilder().Eq(col, query.ResolveID(schema.Users, query.K(schema.UserUUID, playerUUID)))
}
