// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package schema

import "github.com/plan-player-analytics/Plan-sub001/internal/database/query"

// Tables
const (
	Version         query.Table = "plan_version"
	Servers         query.Table = "plan_servers"
	Users           query.Table = "plan_users"
	UserInfo        query.Table = "plan_user_info"
	Worlds          query.Table = "plan_worlds"
	Sessions        query.Table = "plan_sessions"
	WorldTimes      query.Table = "plan_world_times"
	Kills           query.Table = "plan_kills"
	Ping            query.Table = "plan_ping"
	TPS             query.Table = "plan_tps"
	GeoInfo         query.Table = "plan_geolocations"
	Nicknames       query.Table = "plan_nicknames"
	CommandUse      query.Table = "plan_commandusages"
	WebUsers        query.Table = "plan_security"
	WebPreferences  query.Table = "plan_web_user_preferences"
	Mailbox         query.Table = "plan_transfer"
	ExtPlugins      query.Table = "plan_extension_plugins"
	ExtUserValues   query.Table = "plan_extension_user_values"
	ExtServerValues query.Table = "plan_extension_server_values"

	// GeoInfoRebuild is the temporary copy used when SQLite drops a column.
	GeoInfoRebuild query.Table = "plan_geolocations_rebuild"

	// Tables removed by the obsolete table migration.
	LegacyActions     query.Table = "plan_actions"
	LegacyIPs         query.Table = "plan_ips"
	LegacyCommandUses query.Table = "plan_commandusages_old"
)

// ID is the surrogate key column present on every table except Version.
const ID query.Column = "id"

const VersionNumber query.Column = "version"

const (
	ServerUUID        query.Column = "uuid"
	ServerName        query.Column = "name"
	ServerWebAddress  query.Column = "web_address"
	ServerInstalled   query.Column = "is_installed"
	ServerProxy       query.Column = "is_proxy"
	ServerMaxPlayers  query.Column = "max_players"
	ServerPlanVersion query.Column = "plan_version"
)

const (
	UserUUID        query.Column = "uuid"
	UserName        query.Column = "name"
	UserRegistered  query.Column = "registered"
	UserTimesKicked query.Column = "times_kicked"
)

const (
	UserInfoUserID     query.Column = "user_id"
	UserInfoServerID   query.Column = "server_id"
	UserInfoRegistered query.Column = "registered"
	UserInfoOpped      query.Column = "opped"
	UserInfoBanned     query.Column = "banned"
)

const (
	WorldName     query.Column = "world_name"
	WorldServerID query.Column = "server_id"
)

const (
	SessionUserID   query.Column = "user_id"
	SessionServerID query.Column = "server_id"
	SessionStart    query.Column = "session_start"
	SessionEnd      query.Column = "session_end"
	SessionMobKills query.Column = "mob_kills"
	SessionDeaths   query.Column = "deaths"
	SessionAFKTime  query.Column = "afk_time"
)

const (
	WorldTimeSessionID query.Column = "session_id"
	WorldTimeWorldID   query.Column = "world_id"
	WorldTimeUserID    query.Column = "user_id"
	WorldTimeServerID  query.Column = "server_id"
	WorldTimeSurvival  query.Column = "survival_time"
	WorldTimeCreative  query.Column = "creative_time"
	WorldTimeAdventure query.Column = "adventure_time"
	WorldTimeSpectator query.Column = "spectator_time"
)

const (
	KillKillerID  query.Column = "killer_id"
	KillVictimID  query.Column = "victim_id"
	KillServerID  query.Column = "server_id"
	KillSessionID query.Column = "session_id"
	KillDate      query.Column = "kill_date"
	KillWeapon    query.Column = "weapon"
)

const (
	PingUserID   query.Column = "user_id"
	PingServerID query.Column = "server_id"
	PingDate     query.Column = "ping_date"
	PingMin      query.Column = "min_ping"
	PingMax      query.Column = "max_ping"
	PingAvg      query.Column = "avg_ping"
)

const (
	TPSServerID      query.Column = "server_id"
	TPSDate          query.Column = "tps_date"
	TPSValue         query.Column = "tps"
	TPSPlayersOnline query.Column = "players_online"
	TPSCPUUsage      query.Column = "cpu_usage"
	TPSRAMUsage      query.Column = "ram_usage"
	TPSEntities      query.Column = "entities"
	TPSChunksLoaded  query.Column = "chunks_loaded"
	TPSFreeDiskSpace query.Column = "free_disk_space"
)

const (
	GeoUserID      query.Column = "user_id"
	GeoIPHash      query.Column = "ip_hash"
	GeoLegacyIP    query.Column = "ip"
	GeoGeolocation query.Column = "geolocation"
	GeoLastUsed    query.Column = "last_used"
)

const (
	NicknameUserID   query.Column = "user_id"
	NicknameServerID query.Column = "server_id"
	NicknameText     query.Column = "nickname"
	NicknameLastUsed query.Column = "last_used"
)

const (
	CommandServerID  query.Column = "server_id"
	CommandName      query.Column = "command"
	CommandTimesUsed query.Column = "times_used"
)

const (
	WebUserName       query.Column = "username"
	WebUserLinkedTo   query.Column = "linked_to_uuid"
	WebUserPassHash   query.Column = "salted_pass_hash"
	WebUserPermission query.Column = "permission_level"
)

const (
	PrefWebUserID   query.Column = "web_user_id"
	PrefPreferences query.Column = "preferences"
)

const (
	MailboxKey     query.Column = "msg_key"
	MailboxSender  query.Column = "sender_uuid"
	MailboxExpiry  query.Column = "expiry_date"
	MailboxPayload query.Column = "payload"
)

const (
	ExtPluginName        query.Column = "name"
	ExtPluginServerID    query.Column = "server_id"
	ExtPluginLastUpdated query.Column = "last_updated"

	ExtValuePluginID   query.Column = "plugin_id"
	ExtValueUserID     query.Column = "user_id"
	ExtValueProvider   query.Column = "provider_name"
	ExtValueKind       query.Column = "kind"
	ExtValueBoolean    query.Column = "boolean_value"
	ExtValueNumber     query.Column = "long_value"
	ExtValueDouble     query.Column = "double_value"
	ExtValuePercentage query.Column = "percentage_value"
	ExtValueString     query.Column = "string_value"
)

// Indexes
const (
	IdxUserInfoUnique   query.Index = "idx_user_info_unique"
	IdxGeoInfoUnique    query.Index = "idx_geolocations_user_hash"
	IdxSessionsUser     query.Index = "idx_sessions_user"
	IdxSessionsServer   query.Index = "idx_sessions_server_start"
	IdxPingUser         query.Index = "idx_ping_user_date"
	IdxTPSServerDate    query.Index = "idx_tps_server_date"
	IdxNicknamesUser    query.Index = "idx_nicknames_user"
	IdxWorldTimeSession query.Index = "idx_world_times_session"
	IdxKillsSession     query.Index = "idx_kills_session"
)

// Column lengths. Values are clipped to these before binding so SQLite and
// DuckDB stores hold identical text.
const (
	UUIDLength        = 36
	NameLength        = 36
	ServerNameLength  = 100
	WebAddressLength  = 100
	WorldNameLength   = 100
	WeaponLength      = 30
	GeolocationLength = 50
	IPHashLength      = 200
	LegacyIPLength    = 39
	NicknameLength    = 75
	CommandLength     = 20
	WebUserNameLength = 100
	PassHashLength    = 100
	MailboxKeyLength  = 50
	ProviderLength    = 50
	PluginNameLength  = 50
	StringValueLength = 50
)
