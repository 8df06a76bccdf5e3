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
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
	"github.com/plan-player-analytics/Plan-sub001/internal/metrics"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

// StoreMailboxEntry leaves a message for other instances sharing the store.
// payload is encoded as JSON and replaces any entry with the same key from
// the same sender.
func StoreMailboxEntry(key, sender string, expiry int64, payload interface{}) database.Transaction {
	return database.NewTransaction("StoreMailboxEntry", func(ctx context.Context, tx *database.Tx) error {
		entry, err := models.NewMailboxEntry(key, sender, expiry, payload)
		if err != nil {
			return err
		}
		if err := models.Validate(entry); err != nil {
			return err
		}

		_, err = tx.Exec(ctx, query.Delete(schema.Mailbox).
			Where(query.NewWhereBuilder().Eq(schema.MailboxKey, entry.Key).Eq(schema.MailboxSender, entry.Sender)).
			Build())
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, query.Insert(schema.Mailbox).
			Value(schema.MailboxKey, entry.Key).
			Value(schema.MailboxSender, entry.Sender).
			Value(schema.MailboxExpiry, entry.Expiry).
			Value(schema.MailboxPayload, string(entry.Payload)).
			Build())
		return err
	})
}

// PurgeExpiredMailbox removes entries whose expiry is at or before now.
func PurgeExpiredMailbox(now int64) database.Transaction {
	return database.NewTransaction("PurgeExpiredMailbox", func(ctx context.Context, tx *database.Tx) error {
		n, err := tx.Exec(ctx, query.Delete(schema.Mailbox).
			Where(query.NewWhereBuilder().Lte(schema.MailboxExpiry, now)).
			Build())
		if err != nil {
			return err
		}
		if n > 0 {
			metrics.MailboxPurged.Add(float64(n))
			logging.CtxDebug(ctx).Int64("entries", n).Msg("Expired mailbox entries purged")
		}
		return nil
	})
}
