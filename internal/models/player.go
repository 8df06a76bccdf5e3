// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package models

import (
	"crypto/sha256"
	"encoding/hex"
)

// Player is a network-wide player identity.
type Player struct {
	ID          int64  `json:"id"`
	UUID        string `json:"uuid" validate:"required,uuid"`
	Name        string `json:"name" validate:"required"`
	Registered  int64  `json:"registered" validate:"epoch_ms"`
	TimesKicked int    `json:"times_kicked" validate:"gte=0"`
}

// UserInfo is a player's registration on one server.
type UserInfo struct {
	PlayerUUID string `json:"player_uuid" validate:"required,uuid"`
	ServerUUID string `json:"server_uuid" validate:"required,uuid"`
	Registered int64  `json:"registered" validate:"epoch_ms"`
	Opped      bool   `json:"opped"`
	Banned     bool   `json:"banned"`
}

// GeoInfo is a geolocation seen for a player, keyed by the hash of the
// address it was resolved from. The address itself is never stored.
type GeoInfo struct {
	PlayerUUID  string `json:"player_uuid" validate:"required,uuid"`
	IPHash      string `json:"ip_hash" validate:"required"`
	Geolocation string `json:"geolocation" validate:"required"`
	LastUsed    int64  `json:"last_used" validate:"epoch_ms"`
}

// Nickname is a display name a player used on a server.
type Nickname struct {
	PlayerUUID string `json:"player_uuid" validate:"required,uuid"`
	ServerUUID string `json:"server_uuid" validate:"required,uuid"`
	Name       string `json:"name" validate:"required"`
	LastUsed   int64  `json:"last_used" validate:"epoch_ms"`
}

// Ping is one aggregated latency sample. 0 <= Min <= Avg <= Max is
// checked by a struct-level rule.
type Ping struct {
	PlayerUUID string  `json:"player_uuid" validate:"required,uuid"`
	ServerUUID string  `json:"server_uuid" validate:"required,uuid"`
	Date       int64   `json:"date" validate:"epoch_ms"`
	Min        int     `json:"min" validate:"gte=0"`
	Max        int     `json:"max"`
	Avg        float64 `json:"avg"`
}

// HashIP returns the hex SHA-256 of a raw address, the form in which
// addresses are kept.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// NewGeoInfo builds a GeoInfo from a raw address.
func NewGeoInfo(playerUUID, ip, geolocation string, lastUsed int64) GeoInfo {
	return GeoInfo{
		PlayerUUID:  playerUUID,
		IPHash:      HashIP(ip),
		Geolocation: geolocation,
		LastUsed:    lastUsed,
	}
}
