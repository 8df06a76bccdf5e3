// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package transactions

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

// RegisterWebUser stores a web user created with models.NewWebUser. An
// existing username is rejected as a constraint violation.
func RegisterWebUser(u *models.WebUser) database.Transaction {
	return validated("RegisterWebUser", u, func(ctx context.Context, tx *database.Tx) error {
		id, _, err := tx.InsertID(ctx, webUserInsert(u).Returning(schema.ID).Build())
		if err != nil {
			return err
		}
		u.ID = id
		return nil
	})
}

func webUserInsert(u *models.WebUser) *query.InsertBuilder {
	var linked interface{}
	if u.LinkedTo != "" {
		linked = u.LinkedTo
	}
	return query.Insert(schema.WebUsers).
		Value(schema.WebUserName, u.Username).
		Value(schema.WebUserLinkedTo, linked).
		Value(schema.WebUserPassHash, u.PassHash).
		Value(schema.WebUserPermission, u.PermissionLevel)
}

// RemoveWebUser deletes the web user and their preferences.
func RemoveWebUser(username string) database.Transaction {
	return database.NewTransaction("RemoveWebUser", func(ctx context.Context, tx *database.Tx) error {
		id, err := lookupID(ctx, tx, schema.WebUsers, query.K(schema.WebUserName, username))
		if errors.Is(err, database.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, query.Delete(schema.WebPreferences).Where(query.NewWhereBuilder().Eq(schema.PrefWebUserID, id)).Build()); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, query.Delete(schema.WebUsers).Where(query.NewWhereBuilder().Eq(schema.ID, id)).Build())
		return err
	})
}

// StoreWebUserPreferences replaces the user's preferences with prefs
// encoded as JSON.
func StoreWebUserPreferences(username string, prefs interface{}) database.Transaction {
	return database.NewTransaction("StoreWebUserPreferences", func(ctx context.Context, tx *database.Tx) error {
		data, err := json.Marshal(prefs)
		if err != nil {
			return fmt.Errorf("failed to encode preferences: %w", err)
		}
		id, err := lookupID(ctx, tx, schema.WebUsers, query.K(schema.WebUserName, username))
		if err != nil {
			return err
		}

		n, err := tx.Exec(ctx, query.Update(schema.WebPreferences).
			Set(schema.PrefPreferences, string(data)).
			Where(query.NewWhereBuilder().Eq(schema.PrefWebUserID, id)).
			Build())
		if err != nil || n > 0 {
			return err
		}
		_, err = tx.Exec(ctx, query.Insert(schema.WebPreferences).
			Value(schema.PrefWebUserID, id).
			Value(schema.PrefPreferences, string(data)).
			Build())
		return err
	})
}
