// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package queries

import (
	"context"
	"database/sql"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/extension"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

// WebUsers returns every web user including the password hash.
func WebUsers() database.Query[[]models.WebUser] {
	return database.NewQuery("WebUsers", func(ctx context.Context, ex database.Executor) ([]models.WebUser, error) {
		stmt := query.Select(schema.ID, schema.WebUserName, schema.WebUserLinkedTo, schema.WebUserPassHash, schema.WebUserPermission).
			From(schema.WebUsers, "").
			OrderBy(query.Asc(schema.ID)).
			Build()
		return database.QueryRows(ctx, ex, stmt, func(rows *sql.Rows) (models.WebUser, error) {
			var (
				u        models.WebUser
				linkedTo sql.NullString
			)
			err := rows.Scan(&u.ID, &u.Username, &linkedTo, &u.PassHash, &u.PermissionLevel)
			u.LinkedTo = linkedTo.String
			return u, err
		})
	})
}

// WebUserPreferences returns the stored preference JSON of the user, or
// database.ErrNotFound when none was saved.
func WebUserPreferences(username string) database.Query[string] {
	return database.NewQuery("WebUserPreferences", func(ctx context.Context, ex database.Executor) (string, error) {
		stmt := query.Select(query.Q("p", schema.PrefPreferences)).
			From(schema.WebPreferences, "p").
			Join(schema.WebUsers, "w", query.Q("p", schema.PrefWebUserID), query.Q("w", schema.ID)).
			Where(query.NewWhereBuilder().Eq(query.Q("w", schema.WebUserName), username)).
			Limit(1).
			Build()
		return database.QueryRow(ctx, ex, stmt, database.ScanString)
	})
}

// MailboxFetch returns the entries under key that expire after now.
func MailboxFetch(key string, now int64) database.Query[[]models.MailboxEntry] {
	return database.NewQuery("MailboxFetch", func(ctx context.Context, ex database.Executor) ([]models.MailboxEntry, error) {
		stmt := query.Select(schema.MailboxSender, schema.MailboxExpiry, schema.MailboxPayload).
			From(schema.Mailbox, "").
			Where(query.NewWhereBuilder().Eq(schema.MailboxKey, key).Gt(schema.MailboxExpiry, now)).
			OrderBy(query.Asc(schema.MailboxExpiry), query.Asc(schema.ID)).
			Build()
		return database.QueryRows(ctx, ex, stmt, func(rows *sql.Rows) (models.MailboxEntry, error) {
			var payload string
			m := models.MailboxEntry{Key: key}
			err := rows.Scan(&m.Sender, &m.Expiry, &payload)
			m.Payload = []byte(payload)
			return m, err
		})
	})
}

// ExtensionValue is one stored extension datum.
type ExtensionValue struct {
	Plugin     string
	ServerUUID string
	Provider   string
	Value      extension.Value
}

// ExtensionValuesOfPlayer returns what every plugin stored about the player,
// by plugin and provider name.
func ExtensionValuesOfPlayer(playerUUID string) database.Query[[]ExtensionValue] {
	return database.NewQuery("ExtensionValuesOfPlayer", func(ctx context.Context, ex database.Executor) ([]ExtensionValue, error) {
		stmt := selectExtensionValues(schema.ExtUserValues).
			Where(query.NewWhereBuilder().Eq(query.Q("v", schema.ExtValueUserID), playerRef(playerUUID))).
			OrderBy(query.Asc(query.Q("pl", schema.ExtPluginName)), query.Asc(query.Q("v", schema.ExtValueProvider))).
			Build()
		return database.QueryRows(ctx, ex, stmt, scanExtensionValue)
	})
}

// ExtensionValuesOfServer returns the server-wide values of every plugin
// on the server.
func ExtensionValuesOfServer(serverUUID string) database.Query[[]ExtensionValue] {
	return database.NewQuery("ExtensionValuesOfServer", func(ctx context.Context, ex database.Executor) ([]ExtensionValue, error) {
		stmt := selectExtensionValues(schema.ExtServerValues).
			Where(query.NewWhereBuilder().Eq(query.Q("sv", schema.ServerUUID), serverUUID)).
			OrderBy(query.Asc(query.Q("pl", schema.ExtPluginName)), query.Asc(query.Q("v", schema.ExtValueProvider))).
			Build()
		return database.QueryRows(ctx, ex, stmt, scanExtensionValue)
	})
}

func selectExtensionValues(table query.Table) *query.SelectBuilder {
	return query.Select(
		query.Q("pl", schema.ExtPluginName),
		query.Q("sv", schema.ServerUUID),
		query.Q("v", schema.ExtValueProvider),
		query.Q("v", schema.ExtValueKind),
		query.Q("v", schema.ExtValueBoolean),
		query.Q("v", schema.ExtValueNumber),
		query.Q("v", schema.ExtValueDouble),
		query.Q("v", schema.ExtValuePercentage),
		query.Q("v", schema.ExtValueString),
	).
		From(table, "v").
		Join(schema.ExtPlugins, "pl", query.Q("v", schema.ExtValuePluginID), query.Q("pl", schema.ID)).
		Join(schema.Servers, "sv", query.Q("pl", schema.ExtPluginServerID), query.Q("sv", schema.ID))
}

func scanExtensionValue(rows *sql.Rows) (ExtensionValue, error) {
	var (
		v          ExtensionValue
		kind       int
		boolean    sql.NullBool
		number     sql.NullInt64
		double     sql.NullFloat64
		percentage sql.NullFloat64
		text       sql.NullString
	)
	if err := rows.Scan(&v.Plugin, &v.ServerUUID, &v.Provider, &kind, &boolean, &number, &double, &percentage, &text); err != nil {
		return v, err
	}
	v.Value = extension.Value{Kind: extension.Kind(kind)}
	switch v.Value.Kind {
	case extension.Boolean:
		v.Value.Boolean = boolean.Bool
	case extension.Number:
		v.Value.Number = number.Int64
	case extension.Double:
		v.Value.Double = double.Float64
	case extension.Percentage:
		v.Value.Double = percentage.Float64
	default:
		v.Value.Text = text.String
	}
	return v, nil
}
