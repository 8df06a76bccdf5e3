// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package models

import "slices"

// GameMode is one of the four tracked game modes.
type GameMode string

const (
	Survival  GameMode = "SURVIVAL"
	Creative  GameMode = "CREATIVE"
	Adventure GameMode = "ADVENTURE"
	Spectator GameMode = "SPECTATOR"
)

// GameModes lists the tracked modes in storage column order.
var GameModes = []GameMode{Survival, Creative, Adventure, Spectator}

// Tracked reports whether m has a storage column.
func (m GameMode) Tracked() bool {
	return slices.Contains(GameModes, m)
}

// GMTimes holds milliseconds spent per game mode in one world.
type GMTimes map[GameMode]int64

// Total is the sum over all modes.
func (g GMTimes) Total() int64 {
	var total int64
	for _, ms := range g {
		total += ms
	}
	return total
}

// WorldTimes maps world name to the per-mode time spent in it.
type WorldTimes map[string]GMTimes

// Total is the time spent across all worlds.
func (w WorldTimes) Total() int64 {
	var total int64
	for _, gm := range w {
		total += gm.Total()
	}
	return total
}

// Kill is a player kill inside a session.
type Kill struct {
	KillerUUID string `json:"killer_uuid" validate:"required,uuid"`
	VictimUUID string `json:"victim_uuid" validate:"required,uuid"`
	Date       int64  `json:"date" validate:"epoch_ms"`
	Weapon     string `json:"weapon"`
}

// Session is one continuous stay of a player on a server, together with
// its dependent world times and kills.
type Session struct {
	ID         int64      `json:"id"`
	PlayerUUID string     `json:"player_uuid" validate:"required,uuid"`
	ServerUUID string     `json:"server_uuid" validate:"required,uuid"`
	Start      int64      `json:"start" validate:"epoch_ms"`
	End        int64      `json:"end" validate:"epoch_ms,gtefield=Start"`
	MobKills   int        `json:"mob_kills" validate:"gte=0"`
	Deaths     int        `json:"deaths" validate:"gte=0"`
	AFKTime    int64      `json:"afk_time" validate:"gte=0"`
	WorldTimes WorldTimes `json:"world_times,omitempty"`
	Kills      []Kill     `json:"kills,omitempty" validate:"dive"`
}

// Length is the wall-clock duration in milliseconds.
func (s *Session) Length() int64 {
	return s.End - s.Start
}

// ActivePlaytime is the length minus time spent AFK, never negative.
func (s *Session) ActivePlaytime() int64 {
	active := s.Length() - s.AFKTime
	if active < 0 {
		return 0
	}
	return active
}
