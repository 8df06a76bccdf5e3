// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// MailboxEntry is a message left in the shared store for other server
// processes. Entries are unique per (Key, Sender); storing again replaces.
type MailboxEntry struct {
	Key     string `json:"key" validate:"required,max=50"`
	Sender  string `json:"sender" validate:"required,uuid"`
	Expiry  int64  `json:"expiry" validate:"epoch_ms"`
	Payload []byte `json:"payload"`
}

// NewMailboxEntry encodes payload as JSON.
func NewMailboxEntry(key, sender string, expiry int64, payload interface{}) (*MailboxEntry, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode mailbox payload: %w", err)
	}
	return &MailboxEntry{Key: key, Sender: sender, Expiry: expiry, Payload: data}, nil
}

// Decode unmarshals the payload into v.
func (m *MailboxEntry) Decode(v interface{}) error {
	if err := json.Unmarshal(m.Payload, v); err != nil {
		return fmt.Errorf("failed to decode mailbox payload %s: %w", m.Key, err)
	}
	return nil
}

// Expired reports whether the entry is past its expiry at now.
func (m *MailboxEntry) Expired(now int64) bool {
	return m.Expiry <= now
}
