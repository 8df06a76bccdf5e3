// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package queries

import (
	"context"
	"testing"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/transactions"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

const (
	lobby   = "5c1d9e2a-7f3b-4c6d-9e8f-0a1b2c3d4e5f"
	arena   = "6d2e0f3b-8a4c-4d7e-8f90-1b2c3d4e5f60"
	alice   = "a1a1a1a1-b2b2-4c3c-8d4d-e5e5e5e5e5e5"
	bob     = "b0b0b0b0-1111-4222-8333-444455556666"
	charlie = "c3c3c3c3-dddd-4eee-8fff-000011112222"
)

func run(t *testing.T, db *database.DB, trs ...database.Transaction) {
	t.Helper()
	for _, tr := range trs {
		if err := db.ExecuteTransaction(context.Background(), tr); err != nil {
			t.Fatalf("%s failed: %v", tr.Name(), err)
		}
	}
}

func mustRun[T any](t *testing.T, db *database.DB, q database.Query[T]) T {
	t.Helper()
	v, err := database.Run(context.Background(), db, q)
	if err != nil {
		t.Fatalf("%s failed: %v", q.Name(), err)
	}
	return v
}

// seedNetwork registers two servers, alice and bob on the lobby and
// charlie on the arena.
func seedNetwork(t *testing.T, db *database.DB) {
	t.Helper()
	run(t, db,
		transactions.StoreServerInfo(&models.Server{UUID: lobby, Name: "Lobby", Installed: true, MaxPlayers: 50, PlanVersion: "5.6"}),
		transactions.StoreServerInfo(&models.Server{UUID: arena, Name: "Arena", Proxy: true, MaxPlayers: -1}),
		transactions.RegisterPlayer(lobby, &models.Player{UUID: alice, Name: "Alice", Registered: 1000}),
		transactions.RegisterPlayer(lobby, &models.Player{UUID: bob, Name: "Bob", Registered: 2000}),
		transactions.RegisterPlayer(arena, &models.Player{UUID: charlie, Name: "Charlie", Registered: 3000}),
	)
}
