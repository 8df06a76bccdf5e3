// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

/*
copy.go - Store to Store Copy

Copy reads every entity from one store through the queries package and
replays it into another through the bulk transactions. Because both sides
go through the dialect-aware builder, the stores may use different
backends: a SQLite store can be moved to DuckDB and back.

Order of Operations:
  - servers, players, worlds (dimensions first)
  - user info, geolocations, nicknames (per player)
  - sessions with world times and kills, pings, tps, commands (per server)
  - web users and their preferences
  - extension values

Each step commits on its own. A failed copy leaves a partial target, so
callers copy into a fresh store or pass Overwrite to start from empty.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/goccy/go-json"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/queries"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/transactions"
	"github.com/plan-player-analytics/Plan-sub001/internal/extension"
	"github.com/plan-player-analytics/Plan-sub001/internal/logging"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

// DefaultSessionBatchSize bounds how many sessions one bulk load writes.
const DefaultSessionBatchSize = 500

// ErrTargetNotEmpty is returned when the target already holds servers and
// Overwrite was not requested.
var ErrTargetNotEmpty = errors.New("target store is not empty")

// Options tunes a copy.
type Options struct {
	// Overwrite removes everything from the target before copying.
	Overwrite bool

	// SessionBatchSize bounds each session bulk load. Zero uses
	// DefaultSessionBatchSize.
	SessionBatchSize int

	// Now stamps extension plugins in the target. Defaults to time.Now.
	Now func() time.Time
}

// Report counts what a copy wrote.
type Report struct {
	Servers    int
	Players    int
	Worlds     int
	UserInfo   int
	GeoInfo    int
	Nicknames  int
	Sessions   int
	Pings      int
	TPS        int
	Commands   int
	WebUsers   int
	Extensions int
	Duration   time.Duration
}

// copier carries the state of one copy.
type copier struct {
	from, to *database.DB
	opts     Options
	report   *Report
	servers  []models.Server
	players  []models.Player
}

// Copy copies every entity from one store into another. Both stores must
// be at the same schema version.
func Copy(ctx context.Context, from, to *database.DB, opts Options) (*Report, error) {
	if opts.SessionBatchSize <= 0 {
		opts.SessionBatchSize = DefaultSessionBatchSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if fv, tv := from.SchemaVersion(), to.SchemaVersion(); fv != tv {
		return nil, fmt.Errorf("%w: source is at version %d, target at %d", database.ErrSchemaNotReady, fv, tv)
	}

	start := time.Now()
	c := &copier{from: from, to: to, opts: opts, report: &Report{}}

	if err := c.prepareTarget(ctx); err != nil {
		return nil, err
	}

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"dimensions", c.copyDimensions},
		{"players", c.copyPlayerData},
		{"servers", c.copyServerData},
		{"web users", c.copyWebUsers},
		{"extensions", c.copyExtensions},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return c.report, fmt.Errorf("failed to copy %s: %w", step.name, err)
		}
		logging.CtxDebug(ctx).Str("step", step.name).Msg("Copy step finished")
	}

	if err := to.Checkpoint(ctx); err != nil {
		logging.CtxWarn(ctx).Err(err).Msg("Failed to checkpoint copy target")
	}

	c.report.Duration = time.Since(start)
	logging.CtxInfo(ctx).
		Str("from", from.Dialect().String()).
		Str("to", to.Dialect().String()).
		Int("servers", c.report.Servers).
		Int("players", c.report.Players).
		Int("sessions", c.report.Sessions).
		Dur("duration", c.report.Duration).
		Msg("Store copied")
	return c.report, nil
}

func (c *copier) prepareTarget(ctx context.Context) error {
	existing, err := database.Run(ctx, c.to, queries.Servers())
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}
	if !c.opts.Overwrite {
		return fmt.Errorf("%w: it holds %d servers", ErrTargetNotEmpty, len(existing))
	}
	return c.to.ExecuteTransaction(ctx, transactions.RemoveEverything())
}

func (c *copier) write(ctx context.Context, t database.Transaction) error {
	return c.to.ExecuteTransaction(ctx, t)
}

func (c *copier) copyDimensions(ctx context.Context) error {
	var err error
	if c.servers, err = database.Run(ctx, c.from, queries.Servers()); err != nil {
		return err
	}
	if c.players, err = database.Run(ctx, c.from, queries.Players()); err != nil {
		return err
	}

	var worlds []models.World
	for _, s := range c.servers {
		w, err := database.Run(ctx, c.from, queries.Worlds(s.UUID))
		if err != nil {
			return err
		}
		worlds = append(worlds, w...)
	}

	for _, t := range []database.Transaction{
		transactions.BulkInsertServers(c.servers),
		transactions.BulkInsertPlayers(c.players),
		transactions.BulkInsertWorlds(worlds),
	} {
		if err := c.write(ctx, t); err != nil {
			return err
		}
	}
	c.report.Servers, c.report.Players, c.report.Worlds = len(c.servers), len(c.players), len(worlds)
	return nil
}

func (c *copier) copyPlayerData(ctx context.Context) error {
	var (
		infos     []models.UserInfo
		geo       []models.GeoInfo
		nicknames []models.Nickname
	)
	for _, p := range c.players {
		i, err := database.Run(ctx, c.from, queries.UserInfos(p.UUID))
		if err != nil {
			return err
		}
		g, err := database.Run(ctx, c.from, queries.GeoInfo(p.UUID))
		if err != nil {
			return err
		}
		n, err := database.Run(ctx, c.from, queries.Nicknames(p.UUID))
		if err != nil {
			return err
		}
		infos, geo, nicknames = append(infos, i...), append(geo, g...), append(nicknames, n...)
	}

	for _, t := range []database.Transaction{
		transactions.BulkInsertUserInfo(infos),
		transactions.BulkInsertGeoInfo(geo),
		transactions.BulkInsertNicknames(nicknames),
	} {
		if err := c.write(ctx, t); err != nil {
			return err
		}
	}
	c.report.UserInfo, c.report.GeoInfo, c.report.Nicknames = len(infos), len(geo), len(nicknames)
	return nil
}

func (c *copier) copyServerData(ctx context.Context) error {
	for _, s := range c.servers {
		sessions, err := database.Run(ctx, c.from, queries.Sessions(s.UUID))
		if err != nil {
			return err
		}
		for chunk := range slices.Chunk(sessions, c.opts.SessionBatchSize) {
			if err := c.write(ctx, transactions.NewSessionBulkLoad(chunk)); err != nil {
				return err
			}
		}

		pings, err := database.Run(ctx, c.from, queries.Pings(s.UUID, 0))
		if err != nil {
			return err
		}
		tps, err := database.Run(ctx, c.from, queries.TPS(s.UUID, 0))
		if err != nil {
			return err
		}
		commands, err := database.Run(ctx, c.from, queries.CommandUsage(s.UUID))
		if err != nil {
			return err
		}
		for _, t := range []database.Transaction{
			transactions.BulkInsertPings(pings),
			transactions.BulkInsertTPS(tps),
			transactions.BulkInsertCommandUse(commands),
		} {
			if err := c.write(ctx, t); err != nil {
				return err
			}
		}

		c.report.Sessions += len(sessions)
		c.report.Pings += len(pings)
		c.report.TPS += len(tps)
		c.report.Commands += len(commands)
	}
	return nil
}

func (c *copier) copyWebUsers(ctx context.Context) error {
	users, err := database.Run(ctx, c.from, queries.WebUsers())
	if err != nil {
		return err
	}
	for i := range users {
		u := users[i]
		u.ID = 0
		if err := c.write(ctx, transactions.RegisterWebUser(&u)); err != nil {
			return err
		}

		prefs, err := database.Run(ctx, c.from, queries.WebUserPreferences(u.Username))
		if errors.Is(err, database.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := c.write(ctx, transactions.StoreWebUserPreferences(u.Username, json.RawMessage(prefs))); err != nil {
			return err
		}
	}
	c.report.WebUsers = len(users)
	return nil
}

// pluginScope identifies the values one plugin holds for one subject.
type pluginScope struct {
	plugin string
	server string
}

func (c *copier) copyExtensions(ctx context.Context) error {
	now := c.opts.Now().UnixMilli()

	for _, p := range c.players {
		values, err := database.Run(ctx, c.from, queries.ExtensionValuesOfPlayer(p.UUID))
		if err != nil {
			return err
		}
		for scope, datums := range groupByPlugin(values) {
			if err := c.write(ctx, transactions.StoreExtensionPlayerValues(scope.plugin, scope.server, p.UUID, now, datums)); err != nil {
				return err
			}
		}
		c.report.Extensions += len(values)
	}

	for _, s := range c.servers {
		values, err := database.Run(ctx, c.from, queries.ExtensionValuesOfServer(s.UUID))
		if err != nil {
			return err
		}
		for scope, datums := range groupByPlugin(values) {
			if err := c.write(ctx, transactions.StoreExtensionServerValues(scope.plugin, scope.server, now, datums)); err != nil {
				return err
			}
		}
		c.report.Extensions += len(values)
	}
	return nil
}

// groupByPlugin turns stored values back into datums. Conditions were
// applied when the values were first stored, so the datums are ungated.
func groupByPlugin(values []queries.ExtensionValue) map[pluginScope][]extension.Datum {
	out := make(map[pluginScope][]extension.Datum)
	for _, v := range values {
		key := pluginScope{plugin: v.Plugin, server: v.ServerUUID}
		out[key] = append(out[key], extension.Datum{Provider: v.Provider, Value: v.Value})
	}
	return out
}
