// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package transactions

import (
	"context"
	"testing"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/dbtest"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/extension"
)

func TestStoreExtensionPlayerValues_Replaces(t *testing.T) {
	dbtest.ForEachDialect(t, func(t *testing.T, db *database.DB) {
		seedServer(t, db)
		ctx := context.Background()

		first := []extension.Datum{
			{Provider: "isMember", Value: extension.BooleanValue(true), Provides: "member"},
			{Provider: "rank", Value: extension.StringValue("Knight"), Condition: "member"},
			{Provider: "share", Value: extension.PercentageValue(0.25)},
		}
		second := []extension.Datum{
			{Provider: "isMember", Value: extension.BooleanValue(false), Provides: "member"},
			{Provider: "rank", Value: extension.StringValue("Knight"), Condition: "member"},
		}
		for i, datums := range [][]extension.Datum{first, second} {
			if err := db.ExecuteTransaction(ctx, StoreExtensionPlayerValues("Guilds", testServer, testAlice, int64(1000+i), datums)); err != nil {
				t.Fatalf("StoreExtensionPlayerValues failed: %v", err)
			}
		}

		if n := count(t, db, schema.ExtUserValues, nil); n != 1 {
			t.Errorf("Expected only the ungated value to remain, got %d", n)
		}
		if n := count(t, db, schema.ExtPlugins, nil); n != 1 {
			t.Errorf("Expected one plugin row, got %d", n)
		}
		updated, err := database.QueryRow(ctx, db, query.Select(schema.ExtPluginLastUpdated).From(schema.ExtPlugins, "").Build(), database.ScanInt64)
		if err != nil || updated != 1001 {
			t.Errorf("Expected last update 1001, got %d (%v)", updated, err)
		}
	})
}

func TestStoreExtensionServerValues(t *testing.T) {
	dbtest.ForEachDialect(t, func(t *testing.T, db *database.DB) {
		seedServer(t, db)
		ctx := context.Background()

		datums := []extension.Datum{
			{Provider: "guilds", Value: extension.NumberValue(12)},
			{Provider: "taxRate", Value: extension.DoubleValue(0.1)},
		}
		if err := db.ExecuteTransaction(ctx, StoreExtensionServerValues("Guilds", testServer, 1000, datums)); err != nil {
			t.Fatalf("StoreExtensionServerValues failed: %v", err)
		}
		if n := count(t, db, schema.ExtServerValues, nil); n != 2 {
			t.Errorf("Expected 2 server values, got %d", n)
		}
	})
}

func TestStoreExtensionValues_Invalid(t *testing.T) {
	db := dbtest.New(t, query.SQLite)
	seedServer(t, db)
	ctx := context.Background()

	tests := []struct {
		name string
		tr   database.Transaction
	}{
		{"empty plugin", StoreExtensionServerValues("", testServer, 1, nil)},
		{"unknown server", StoreExtensionServerValues("Guilds", "00000000-0000-4000-8000-000000000000", 1, nil)},
		{"unknown player", StoreExtensionPlayerValues("Guilds", testServer, "00000000-0000-4000-8000-000000000000", 1, nil)},
		{"empty provider", StoreExtensionServerValues("Guilds", testServer, 1, []extension.Datum{{Value: extension.NumberValue(1)}})},
		{"missing kind", StoreExtensionServerValues("Guilds", testServer, 1, []extension.Datum{{Provider: "x"}})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := db.ExecuteTransaction(ctx, tt.tr); err == nil {
				t.Error("Expected the transaction to fail")
			}
		})
	}
	if n := count(t, db, schema.ExtPlugins, nil); n != 0 {
		t.Errorf("Expected failed transactions to leave no plugin rows, got %d", n)
	}
}
