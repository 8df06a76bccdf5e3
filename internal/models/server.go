// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package models

// Server is one cooperating game-server process.
type Server struct {
	ID          int64  `json:"id"`
	UUID        string `json:"uuid" validate:"required,uuid"`
	Name        string `json:"name"`
	WebAddress  string `json:"web_address,omitempty"`
	Installed   bool   `json:"is_installed"`
	Proxy       bool   `json:"is_proxy"`
	MaxPlayers  int    `json:"max_players" validate:"gte=-1"` // -1 = unknown
	PlanVersion string `json:"plan_version,omitempty"`
}

// World is a named world on a server.
type World struct {
	ServerUUID string `json:"server_uuid" validate:"required,uuid"`
	Name       string `json:"name" validate:"required"`
}

// CommandUse counts how often a command was run on a server.
type CommandUse struct {
	ServerUUID string `json:"server_uuid" validate:"required,uuid"`
	Command    string `json:"command" validate:"required"`
	TimesUsed  int    `json:"times_used" validate:"gte=0"`
}

// TPS is one performance sample of a server.
type TPS struct {
	ServerUUID    string  `json:"server_uuid" validate:"required,uuid"`
	Date          int64   `json:"date" validate:"epoch_ms"`
	TPS           float64 `json:"tps" validate:"gte=0"`
	PlayersOnline int     `json:"players_online" validate:"gte=0"`
	CPUUsage      float64 `json:"cpu_usage"` // -1 when unavailable
	RAMUsage      int64   `json:"ram_usage"`
	Entities      int     `json:"entities"`
	ChunksLoaded  int     `json:"chunks_loaded"`
	FreeDiskSpace int64   `json:"free_disk_space"` // -1 when unavailable
}
