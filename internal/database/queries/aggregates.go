// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/plan-player-analytics/Plan-sub001/internal/database"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/query"
	"github.com/plan-player-analytics/Plan-sub001/internal/database/schema"
	"github.com/plan-player-analytics/Plan-sub001/internal/models"
)

const weekMillis int64 = 7 * 24 * 60 * 60 * 1000

// Activity groups, most active first.
const (
	VeryActive = "Very Active"
	Active     = "Active"
	Regular    = "Regular"
	Irregular  = "Irregular"
	Inactive   = "Inactive"
)

// ActivityGroups lists the group labels from most to least active.
var ActivityGroups = []string{VeryActive, Active, Regular, Irregular, Inactive}

// ActivityIndex scores weekly active playtimes against threshold, the
// playtime per week at which a player counts as active. The result is in
// [0, 5).
func ActivityIndex(threshold int64, weeks ...int64) float64 {
	if len(weeks) == 0 || threshold <= 0 {
		return 0
	}
	var sum float64
	for _, w := range weeks {
		sum += 1 / (math.Pi/2*(float64(w)/float64(threshold)) + 1)
	}
	return 5 - 5*sum/float64(len(weeks))
}

// ActivityGroup returns the label of an activity index.
func ActivityGroup(index float64) string {
	switch {
	case index >= 3.75:
		return VeryActive
	case index >= 3:
		return Active
	case index >= 2:
		return Regular
	case index >= 1:
		return Irregular
	default:
		return Inactive
	}
}

// ActivityIndexGroups counts the players registered on the server per
// activity group, using active playtime in the three weeks before date.
// Every group is present in the result.
func ActivityIndexGroups(serverUUID string, date, threshold int64) database.Query[map[string]int] {
	return database.NewQuery("ActivityIndexGroups", func(ctx context.Context, ex database.Executor) (map[string]int, error) {
		if threshold <= 0 {
			return nil, fmt.Errorf("activity threshold must be positive, got %d", threshold)
		}

		registered, err := database.QueryRows(ctx, ex, query.Select(schema.UserInfoUserID).
			From(schema.UserInfo, "").
			Where(query.NewWhereBuilder().Eq(schema.UserInfoServerID, serverRef(serverUUID))).
			Build(), database.ScanInt64)
		if err != nil {
			return nil, err
		}

		weeks := make(map[int64]*[3]int64, len(registered))
		for _, uid := range registered {
			weeks[uid] = new([3]int64)
		}
		for i := range 3 {
			to := date - int64(i)*weekMillis
			if err := weeklyPlaytime(ctx, ex, serverUUID, to-weekMillis, to, func(uid, active int64) {
				if w, ok := weeks[uid]; ok {
					w[i] = active
				}
			}); err != nil {
				return nil, err
			}
		}

		groups := make(map[string]int, len(ActivityGroups))
		for _, g := range ActivityGroups {
			groups[g] = 0
		}
		for _, w := range weeks {
			groups[ActivityGroup(ActivityIndex(threshold, w[:]...))]++
		}
		return groups, nil
	})
}

// weeklyPlaytime reports the active playtime per player of sessions on
// the server started in [from, to).
func weeklyPlaytime(ctx context.Context, ex database.Executor, serverUUID string, from, to int64, fn func(uid, active int64)) error {
	stmt := query.Select(
		schema.SessionUserID,
		query.Sum(query.Minus(schema.SessionEnd, schema.SessionStart, schema.SessionAFKTime)),
	).
		From(schema.Sessions, "").
		Where(query.NewWhereBuilder().
			Eq(schema.SessionServerID, serverRef(serverUUID)).
			Gte(schema.SessionStart, from).
			Lt(schema.SessionStart, to)).
		GroupBy(schema.SessionUserID).
		Build()
	return ex.Rows(ctx, stmt, func(rows *sql.Rows) error {
		var uid, active int64
		if err := rows.Scan(&uid, &active); err != nil {
			return err
		}
		fn(uid, active)
		return nil
	})
}

// latestGeolocations selects each player's most recent geolocation as
// (user_id, geolocation).
func latestGeolocations() *query.SelectBuilder {
	ranked := query.Select(
		schema.GeoUserID,
		schema.GeoGeolocation,
		query.As(query.RowNumber(schema.GeoUserID, query.Desc(schema.GeoLastUsed), query.Desc(schema.ID)), "rn"),
	).From(schema.GeoInfo, "")

	return query.Select(query.Q("r", schema.GeoUserID), query.Q("r", schema.GeoGeolocation)).
		FromSelect(ranked, "r").
		Where(query.NewWhereBuilder().Cond("r.rn = 1"))
}

// GeolocationCounts counts players by their most recent geolocation.
func GeolocationCounts() database.Query[map[string]int] {
	return database.NewQuery("GeolocationCounts", func(ctx context.Context, ex database.Executor) (map[string]int, error) {
		stmt := query.Select(query.Q("g", schema.GeoGeolocation), query.Count(query.Fragment("*"))).
			FromSelect(latestGeolocations(), "g").
			GroupBy(query.Q("g", schema.GeoGeolocation)).
			Build()

		counts := make(map[string]int)
		err := ex.Rows(ctx, stmt, func(rows *sql.Rows) error {
			var (
				geo string
				n   int
			)
			if err := rows.Scan(&geo, &n); err != nil {
				return err
			}
			counts[geo] = n
			return nil
		})
		if err != nil {
			return nil, err
		}
		return counts, nil
	})
}

// PeakOnline returns the TPS sample of the server with the most players
// online at or after after. Of equal samples the latest wins. It returns
// nil when the server has no samples in range.
func PeakOnline(serverUUID string, after int64) database.Query[*models.TPS] {
	return database.NewQuery("PeakOnline", func(ctx context.Context, ex database.Executor) (*models.TPS, error) {
		stmt := selectTPS(serverUUID, after).
			OrderBy(query.Desc(schema.TPSPlayersOnline), query.Desc(schema.TPSDate)).
			Limit(1).
			Build()
		peak, err := database.QueryRow(ctx, ex, stmt, tpsMapper(serverUUID))
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &peak, nil
	})
}

// PingStats summarizes latency samples in milliseconds.
type PingStats struct {
	Avg float64
	Min int
	Max int
}

// PingAverages summarizes the latency of the server's players at or after
// after, grouped by each player's most recent geolocation. Players with no
// known geolocation are left out.
func PingAverages(serverUUID string, after int64) database.Query[map[string]PingStats] {
	return database.NewQuery("PingAverages", func(ctx context.Context, ex database.Executor) (map[string]PingStats, error) {
		stmt := query.Select(
			query.Q("g", schema.GeoGeolocation),
			query.Avg(query.Q("p", schema.PingAvg)),
			query.Min(query.Q("p", schema.PingMin)),
			query.Max(query.Q("p", schema.PingMax)),
		).
			FromSelect(latestGeolocations(), "g").
			Join(schema.Ping, "p", query.Q("g", schema.GeoUserID), query.Q("p", schema.PingUserID)).
			Where(query.NewWhereBuilder().
				Eq(query.Q("p", schema.PingServerID), serverRef(serverUUID)).
				Gte(query.Q("p", schema.PingDate), after)).
			GroupBy(query.Q("g", schema.GeoGeolocation)).
			Build()

		stats := make(map[string]PingStats)
		err := ex.Rows(ctx, stmt, func(rows *sql.Rows) error {
			var (
				geo string
				s   PingStats
			)
			if err := rows.Scan(&geo, &s.Avg, &s.Min, &s.Max); err != nil {
				return err
			}
			stats[geo] = s
			return nil
		})
		if err != nil {
			return nil, err
		}
		return stats, nil
	})
}
