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
	"github.com/plan-player-analytics/Plan-sub001/internal/extension"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

// StoreExtensionPlayerValues replaces the values plugin holds for the
// player on the server. Datums whose conditions do not hold are dropped.
func StoreExtensionPlayerValues(plugin, serverUUID, playerUUID string, now int64, datums []extension.Datum) database.Transaction {
	return database.NewTransaction("StoreExtensionPlayerValues", func(ctx context.Context, tx *database.Tx) error {
		if err := checkDatums(datums); err != nil {
			return err
		}
		pluginID, err := ensurePlugin(ctx, tx, plugin, serverUUID, now)
		if err != nil {
			return err
		}
		uid, err := playerID(ctx, tx, playerUUID)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, query.Delete(schema.ExtUserValues).
			Where(query.NewWhereBuilder().Eq(schema.ExtValuePluginID, pluginID).Eq(schema.ExtValueUserID, uid)).
			Build())
		if err != nil {
			return err
		}
		return insertValues(ctx, tx, extension.Evaluate(datums), func(d *extension.Datum) *query.InsertBuilder {
			return valueInsert(schema.ExtUserValues, pluginID, d).Value(schema.ExtValueUserID, uid)
		})
	})
}

// StoreExtensionServerValues replaces the server-wide values of plugin.
func StoreExtensionServerValues(plugin, serverUUID string, now int64, datums []extension.Datum) database.Transaction {
	return database.NewTransaction("StoreExtensionServerValues", func(ctx context.Context, tx *database.Tx) error {
		if err := checkDatums(datums); err != nil {
			return err
		}
		pluginID, err := ensurePlugin(ctx, tx, plugin, serverUUID, now)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, query.Delete(schema.ExtServerValues).
			Where(query.NewWhereBuilder().Eq(schema.ExtValuePluginID, pluginID)).
			Build())
		if err != nil {
			return err
		}
		return insertValues(ctx, tx, extension.Evaluate(datums), func(d *extension.Datum) *query.InsertBuilder {
			return valueInsert(schema.ExtServerValues, pluginID, d)
		})
	})
}

func checkDatums(datums []extension.Datum) error {
	for _, d := range datums {
		if d.Provider == "" {
			return fmt.Errorf("invalid extension datum: empty provider name")
		}
		if !d.Value.Kind.Valid() {
			return fmt.Errorf("invalid extension datum %q: %s", d.Provider, d.Value.Kind)
		}
	}
	return nil
}

// ensurePlugin registers plugin on the server and stamps it with now.
func ensurePlugin(ctx context.Context, tx *database.Tx, plugin, serverUUID string, now int64) (int64, error) {
	if plugin == "" {
		return 0, fmt.Errorf("invalid extension plugin: empty name")
	}
	sid, err := serverID(ctx, tx, serverUUID)
	if err != nil {
		return 0, err
	}
	plugin = models.Clip(plugin, schema.PluginNameLength)
	insert := query.Insert(schema.ExtPlugins).
		Value(schema.ExtPluginName, plugin).
		Value(schema.ExtPluginServerID, sid).
		Value(schema.ExtPluginLastUpdated, now)
	id, err := ensure(ctx, tx, schema.ExtPlugins, insert, query.K(schema.ExtPluginName, plugin), query.K(schema.ExtPluginServerID, sid))
	if err != nil {
		return 0, err
	}
	_, err = tx.Exec(ctx, query.Update(schema.ExtPlugins).
		Set(schema.ExtPluginLastUpdated, now).
		Where(query.NewWhereBuilder().Eq(schema.ID, id)).
		Build())
	return id, err
}

func insertValues(ctx context.Context, tx *database.Tx, datums []extension.Datum, row func(*extension.Datum) *query.InsertBuilder) error {
	// Values of different kinds fill different columns, so each row is its
	// own statement.
	for i := range datums {
		if _, err := tx.Exec(ctx, row(&datums[i]).Build()); err != nil {
			return err
		}
	}
	return nil
}

func valueInsert(table query.Table, pluginID int64, d *extension.Datum) *query.InsertBuilder {
	b := query.Insert(table).
		Value(schema.ExtValuePluginID, pluginID).
		Value(schema.ExtValueProvider, models.Clip(d.Provider, schema.ProviderLength)).
		Value(schema.ExtValueKind, int(d.Value.Kind))
	switch d.Value.Kind {
	case extension.Boolean:
		b.Value(schema.ExtValueBoolean, d.Value.Boolean)
	case extension.Number:
		b.Value(schema.ExtValueNumber, d.Value.Number)
	case extension.Double:
		b.Value(schema.ExtValueDouble, d.Value.Double)
	case extension.Percentage:
		b.Value(schema.ExtValuePercentage, d.Value.Double)
	default:
		b.Value(schema.ExtValueString, d.Value.Text)
	}
	return b
}
