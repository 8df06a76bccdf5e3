// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package transactions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

type sessionKey struct {
	player string
	server string
	start  int64
}

func keyOf(s *models.Session) sessionKey {
	return sessionKey{player: s.PlayerUUID, server: s.ServerUUID, start: s.Start}
}

type sessionParent struct {
	id       int64
	userID   int64
	serverID int64
}

// SessionBulkLoad stores many sessions with their world times and kills.
//
// Session ids are generated by the store, so dependents cannot be bound
// until the parents exist. The load runs in three phases inside one
// transaction: InsertParents writes every session in one batch,
// MatchParentIDs reads the new ids back by (player, server, start), and
// InsertDependents writes world times and kills against those ids.
//
// Only rows inserted by this load take part in matching. Two sessions in
// one load with the same key would be indistinguishable, so such a load is
// rejected with database.ErrAmbiguousSessionMatch before anything is
// written.
type SessionBulkLoad struct {
	sessions []models.Session
	maxID    int64
	parents  []sessionParent
}

// NewSessionBulkLoad prepares a load of sessions. The slice is not copied;
// ids are written into it by MatchParentIDs.
func NewSessionBulkLoad(sessions []models.Session) *SessionBulkLoad {
	return &SessionBulkLoad{sessions: sessions}
}

func (l *SessionBulkLoad) Name() string { return "SessionBulkLoad" }

// RequiredSchemaVersion implements database.VersionGated.
func (l *SessionBulkLoad) RequiredSchemaVersion() int { return killScopeVersion }

// Sessions returns the loaded sessions with their ids filled in.
func (l *SessionBulkLoad) Sessions() []models.Session {
	return l.sessions
}

// Execute validates the batch and runs the three phases in order.
func (l *SessionBulkLoad) Execute(ctx context.Context, tx *database.Tx) error {
	if len(l.sessions) == 0 {
		return nil
	}
	if err := l.validate(); err != nil {
		return err
	}
	if err := l.InsertParents(ctx, tx); err != nil {
		return fmt.Errorf("failed to insert sessions: %w", err)
	}
	if err := l.MatchParentIDs(ctx, tx); err != nil {
		return fmt.Errorf("failed to match session ids: %w", err)
	}
	if err := l.InsertDependents(ctx, tx); err != nil {
		return fmt.Errorf("failed to insert session dependents: %w", err)
	}
	return nil
}

func (l *SessionBulkLoad) validate() error {
	seen := make(map[sessionKey]int, len(l.sessions))
	for i := range l.sessions {
		s := &l.sessions[i]
		if err := models.Validate(s); err != nil {
			return fmt.Errorf("invalid session %d: %w", i, err)
		}
		k := keyOf(s)
		if first, dup := seen[k]; dup {
			return fmt.Errorf("%w: sessions %d and %d share player %s, server %s and start %d",
				database.ErrAmbiguousSessionMatch, first, i, k.player, k.server, k.start)
		}
		seen[k] = i
	}
	return nil
}

// InsertParents records the current maximum session id and inserts every
// session in one prepared batch.
func (l *SessionBulkLoad) InsertParents(ctx context.Context, tx *database.Tx) error {
	maxID, err := database.QueryRow(ctx, tx, query.Select(query.Max(schema.ID)).From(schema.Sessions, "").Build(), database.ScanNullInt64)
	if err != nil {
		return err
	}
	l.maxID = maxID.Int64

	_, err = tx.ExecBatch(ctx, func(add func(query.Statement) error) error {
		for i := range l.sessions {
			if err := add(sessionInsert(&l.sessions[i]).Build()); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

// MatchParentIDs reads back the sessions inserted after the recorded
// maximum id and assigns each its generated id.
func (l *SessionBulkLoad) MatchParentIDs(ctx context.Context, tx *database.Tx) error {
	const s, u, sv query.Alias = "s", "u", "sv"
	stmt := query.Select(query.Q(s, schema.ID), query.Q(s, schema.SessionUserID), query.Q(s, schema.SessionServerID),
		query.Q(u, schema.UserUUID), query.Q(sv, schema.ServerUUID), query.Q(s, schema.SessionStart)).
		From(schema.Sessions, s).
		Join(schema.Users, u, query.Q(u, schema.ID), query.Q(s, schema.SessionUserID)).
		Join(schema.Servers, sv, query.Q(sv, schema.ID), query.Q(s, schema.SessionServerID)).
		Where(query.NewWhereBuilder().Gt(query.Q(s, schema.ID), l.maxID)).
		Build()

	matched := make(map[sessionKey]sessionParent, len(l.sessions))
	err := tx.Rows(ctx, stmt, func(rows *sql.Rows) error {
		var (
			p sessionParent
			k sessionKey
		)
		if err := rows.Scan(&p.id, &p.userID, &p.serverID, &k.player, &k.server, &k.start); err != nil {
			return err
		}
		if _, dup := matched[k]; dup {
			return fmt.Errorf("%w: player %s, server %s, start %d", database.ErrAmbiguousSessionMatch, k.player, k.server, k.start)
		}
		matched[k] = p
		return nil
	})
	if err != nil {
		return err
	}

	l.parents = make([]sessionParent, len(l.sessions))
	for i := range l.sessions {
		k := keyOf(&l.sessions[i])
		p, ok := matched[k]
		if !ok {
			return fmt.Errorf("inserted session for player %s at %d not found", k.player, k.start)
		}
		l.sessions[i].ID = p.id
		l.parents[i] = p
	}
	return nil
}

// InsertDependents writes world times and kills for every matched session,
// each kind as one prepared batch.
func (l *SessionBulkLoad) InsertDependents(ctx context.Context, tx *database.Tx) error {
	type worldKey struct {
		serverID int64
		name     string
	}
	worlds := make(map[worldKey]int64)
	for i := range l.sessions {
		for name := range l.sessions[i].WorldTimes {
			k := worldKey{serverID: l.parents[i].serverID, name: name}
			if _, ok := worlds[k]; ok {
				continue
			}
			id, err := EnsureWorld(ctx, tx, k.serverID, name)
			if err != nil {
				return err
			}
			worlds[k] = id
		}
	}

	_, err := tx.ExecBatch(ctx, func(add func(query.Statement) error) error {
		for i := range l.sessions {
			s, p := &l.sessions[i], l.parents[i]
			for name, gm := range s.WorldTimes {
				if err := add(worldTimeInsert(p, worlds[worldKey{serverID: p.serverID, name: name}], gm)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	_, err = tx.ExecBatch(ctx, func(add func(query.Statement) error) error {
		for i := range l.sessions {
			s, p := &l.sessions[i], l.parents[i]
			for j := range s.Kills {
				if err := add(killInsert(&s.Kills[j], p.serverID, p.id)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return err
}
