// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

/*
Package queries holds the read side of the store.

Every constructor returns a database.Query value scoped by explicit server
or player uuids. Queries run through database.Run on the pool or directly
on a *database.Tx when they must observe uncommitted writes:

	peak, err := database.Run(ctx, db, queries.PeakOnline(serverUUID, since))
	if err != nil {
	    return err
	}
	if peak != nil {
	    fmt.Println(peak.PlayersOnline, peak.Date)
	}

# Enumerations

Servers, Players, UserInfos, Sessions and the other enumerations return
the models the transactions package writes, so a store can be read back
and replayed into another one (see the backup package).

# Aggregations

ActivityIndexGroups buckets registered players by recent active playtime.
GeolocationCounts and PingAverages use each player's latest geolocation,
picked with ROW_NUMBER() so both dialects agree. PeakOnline returns the
busiest TPS sample, preferring the latest of equal samples.
*/
package queries
