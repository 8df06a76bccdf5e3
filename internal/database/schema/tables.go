// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package schema

import (
	q "github.com/plan-player-analytics/Plan-sub001/internal/database/query"
)

// VersionTable holds the single schema version row.
func VersionTable() *q.CreateTableBuilder {
	return q.CreateTable(Version).
		Column(q.Col(VersionNumber, q.Integer).NotNull())
}

func ServersTable() *q.CreateTableBuilder {
	return q.CreateTable(Servers).
		ID().
		Column(q.VarcharCol(ServerUUID, UUIDLength).NotNull().Unique()).
		Column(q.VarcharCol(ServerName, ServerNameLength)).
		Column(q.VarcharCol(ServerWebAddress, WebAddressLength)).
		Column(q.Col(ServerInstalled, q.Boolean).NotNull().DefaultBool(true)).
		Column(q.Col(ServerProxy, q.Boolean).NotNull().DefaultBool(false)).
		Column(q.Col(ServerMaxPlayers, q.Integer).NotNull().DefaultInt(-1)).
		Column(q.VarcharCol(ServerPlanVersion, 18))
}

func UsersTable() *q.CreateTableBuilder {
	return q.CreateTable(Users).
		ID().
		Column(q.VarcharCol(UserUUID, UUIDLength).NotNull().Unique()).
		Column(q.VarcharCol(UserName, NameLength).NotNull()).
		Column(q.Col(UserRegistered, q.BigInt).NotNull()).
		Column(q.Col(UserTimesKicked, q.Integer).NotNull().DefaultInt(0))
}

// UserInfoTable has no table-level uniqueness; the (user_id, server_id)
// unique index is created by the migration that deduplicates old stores.
func UserInfoTable() *q.CreateTableBuilder {
	return q.CreateTable(UserInfo).
		ID().
		Column(q.Col(UserInfoUserID, q.BigInt).NotNull()).
		Column(q.Col(UserInfoServerID, q.BigInt).NotNull()).
		Column(q.Col(UserInfoRegistered, q.BigInt).NotNull()).
		Column(q.Col(UserInfoOpped, q.Boolean).NotNull().DefaultBool(false)).
		Column(q.Col(UserInfoBanned, q.Boolean).NotNull().DefaultBool(false)).
		ForeignKey(UserInfoUserID, Users, ID).
		ForeignKey(UserInfoServerID, Servers, ID)
}

func WorldsTable() *q.CreateTableBuilder {
	return q.CreateTable(Worlds).
		ID().
		Column(q.VarcharCol(WorldName, WorldNameLength).NotNull()).
		Column(q.Col(WorldServerID, q.BigInt).NotNull()).
		ForeignKey(WorldServerID, Servers, ID).
		UniqueTogether(WorldName, WorldServerID)
}

func SessionsTable() *q.CreateTableBuilder {
	return q.CreateTable(Sessions).
		ID().
		Column(q.Col(SessionUserID, q.BigInt).NotNull()).
		Column(q.Col(SessionServerID, q.BigInt).NotNull()).
		Column(q.Col(SessionStart, q.BigInt).NotNull()).
		Column(q.Col(SessionEnd, q.BigInt).NotNull()).
		Column(q.Col(SessionMobKills, q.Integer).NotNull().DefaultInt(0)).
		Column(q.Col(SessionDeaths, q.Integer).NotNull().DefaultInt(0)).
		Column(q.Col(SessionAFKTime, q.BigInt).NotNull().DefaultInt(0)).
		ForeignKey(SessionUserID, Users, ID).
		ForeignKey(SessionServerID, Servers, ID)
}

func WorldTimesTable() *q.CreateTableBuilder {
	return q.CreateTable(WorldTimes).
		ID().
		Column(q.Col(WorldTimeSessionID, q.BigInt).NotNull()).
		Column(q.Col(WorldTimeWorldID, q.BigInt).NotNull()).
		Column(q.Col(WorldTimeUserID, q.BigInt).NotNull()).
		Column(q.Col(WorldTimeServerID, q.BigInt).NotNull()).
		Column(q.Col(WorldTimeSurvival, q.BigInt).NotNull().DefaultInt(0)).
		Column(q.Col(WorldTimeCreative, q.BigInt).NotNull().DefaultInt(0)).
		Column(q.Col(WorldTimeAdventure, q.BigInt).NotNull().DefaultInt(0)).
		Column(q.Col(WorldTimeSpectator, q.BigInt).NotNull().DefaultInt(0)).
		ForeignKey(WorldTimeSessionID, Sessions, ID).
		ForeignKey(WorldTimeWorldID, Worlds, ID).
		ForeignKey(WorldTimeUserID, Users, ID).
		ForeignKey(WorldTimeServerID, Servers, ID)
}

func KillsTable() *q.CreateTableBuilder {
	return q.CreateTable(Kills).
		ID().
		Column(q.Col(KillKillerID, q.BigInt).NotNull()).
		Column(q.Col(KillVictimID, q.BigInt).NotNull()).
		Column(q.Col(KillServerID, q.BigInt)).
		Column(q.Col(KillSessionID, q.BigInt).NotNull()).
		Column(q.Col(KillDate, q.BigInt).NotNull()).
		Column(q.VarcharCol(KillWeapon, WeaponLength).NotNull()).
		ForeignKey(KillKillerID, Users, ID).
		ForeignKey(KillVictimID, Users, ID).
		ForeignKey(KillSessionID, Sessions, ID)
}

func PingTable() *q.CreateTableBuilder {
	return q.CreateTable(Ping).
		ID().
		Column(q.Col(PingUserID, q.BigInt).NotNull()).
		Column(q.Col(PingServerID, q.BigInt).NotNull()).
		Column(q.Col(PingDate, q.BigInt).NotNull()).
		Column(q.Col(PingMax, q.Integer).NotNull()).
		Column(q.Col(PingMin, q.Integer).NotNull()).
		Column(q.Col(PingAvg, q.Double).NotNull()).
		ForeignKey(PingUserID, Users, ID).
		ForeignKey(PingServerID, Servers, ID)
}

func TPSTable() *q.CreateTableBuilder {
	return q.CreateTable(TPS).
		ID().
		Column(q.Col(TPSServerID, q.BigInt).NotNull()).
		Column(q.Col(TPSDate, q.BigInt).NotNull()).
		Column(q.Col(TPSValue, q.Double).NotNull()).
		Column(q.Col(TPSPlayersOnline, q.Integer).NotNull()).
		Column(q.Col(TPSCPUUsage, q.Double).NotNull()).
		Column(q.Col(TPSRAMUsage, q.BigInt).NotNull()).
		Column(q.Col(TPSEntities, q.Integer).NotNull()).
		Column(q.Col(TPSChunksLoaded, q.Integer).NotNull()).
		Column(q.Col(TPSFreeDiskSpace, q.BigInt).NotNull().DefaultInt(-1)).
		ForeignKey(TPSServerID, Servers, ID)
}

// GeoInfoTable is the current shape; stores older than the address hash
// migration carry a raw "ip" column instead of ip_hash.
func GeoInfoTable() *q.CreateTableBuilder {
	return q.CreateTable(GeoInfo).
		ID().
		Column(q.Col(GeoUserID, q.BigInt).NotNull()).
		Column(q.VarcharCol(GeoIPHash, IPHashLength)).
		Column(q.VarcharCol(GeoGeolocation, GeolocationLength).NotNull()).
		Column(q.Col(GeoLastUsed, q.BigInt).NotNull().DefaultInt(0)).
		ForeignKey(GeoUserID, Users, ID)
}

func NicknamesTable() *q.CreateTableBuilder {
	return q.CreateTable(Nicknames).
		ID().
		Column(q.Col(NicknameUserID, q.BigInt).NotNull()).
		Column(q.Col(NicknameServerID, q.BigInt).NotNull()).
		Column(q.VarcharCol(NicknameText, NicknameLength).NotNull()).
		Column(q.Col(NicknameLastUsed, q.BigInt).NotNull()).
		ForeignKey(NicknameUserID, Users, ID).
		ForeignKey(NicknameServerID, Servers, ID)
}

func CommandUseTable() *q.CreateTableBuilder {
	return q.CreateTable(CommandUse).
		ID().
		Column(q.Col(CommandServerID, q.BigInt).NotNull()).
		Column(q.VarcharCol(CommandName, CommandLength).NotNull()).
		Column(q.Col(CommandTimesUsed, q.Integer).NotNull().DefaultInt(0)).
		ForeignKey(CommandServerID, Servers, ID).
		UniqueTogether(CommandServerID, CommandName)
}

func WebUsersTable() *q.CreateTableBuilder {
	return q.CreateTable(WebUsers).
		ID().
		Column(q.VarcharCol(WebUserName, WebUserNameLength).NotNull().Unique()).
		Column(q.VarcharCol(WebUserLinkedTo, UUIDLength)).
		Column(q.VarcharCol(WebUserPassHash, PassHashLength).NotNull()).
		Column(q.Col(WebUserPermission, q.Integer).NotNull())
}

func WebPreferencesTable() *q.CreateTableBuilder {
	return q.CreateTable(WebPreferences).
		ID().
		Column(q.Col(PrefWebUserID, q.BigInt).NotNull()).
		Column(q.Col(PrefPreferences, q.Text).NotNull()).
		ForeignKey(PrefWebUserID, WebUsers, ID)
}

// MailboxTable is not unique on (msg_key, sender_uuid): replacing an entry
// deletes and re-inserts inside one transaction, which DuckDB reports as a
// duplicate key when a unique constraint covers the pair.
func MailboxTable() *q.CreateTableBuilder {
	return q.CreateTable(Mailbox).
		ID().
		Column(q.VarcharCol(MailboxKey, MailboxKeyLength).NotNull()).
		Column(q.VarcharCol(MailboxSender, UUIDLength).NotNull()).
		Column(q.Col(MailboxExpiry, q.BigInt).NotNull()).
		Column(q.Col(MailboxPayload, q.Text).NotNull())
}

func ExtPluginsTable() *q.CreateTableBuilder {
	return q.CreateTable(ExtPlugins).
		ID().
		Column(q.VarcharCol(ExtPluginName, PluginNameLength).NotNull()).
		Column(q.Col(ExtPluginServerID, q.BigInt).NotNull()).
		Column(q.Col(ExtPluginLastUpdated, q.BigInt).NotNull()).
		ForeignKey(ExtPluginServerID, Servers, ID).
		UniqueTogether(ExtPluginName, ExtPluginServerID)
}

func extValueColumns(b *q.CreateTableBuilder) *q.CreateTableBuilder {
	return b.
		Column(q.VarcharCol(ExtValueProvider, ProviderLength).NotNull()).
		Column(q.Col(ExtValueKind, q.Integer).NotNull()).
		Column(q.Col(ExtValueBoolean, q.Boolean)).
		Column(q.Col(ExtValueNumber, q.BigInt)).
		Column(q.Col(ExtValueDouble, q.Double)).
		Column(q.Col(ExtValuePercentage, q.Double)).
		Column(q.Col(ExtValueString, q.Text))
}

func ExtUserValuesTable() *q.CreateTableBuilder {
	b := q.CreateTable(ExtUserValues).
		ID().
		Column(q.Col(ExtValuePluginID, q.BigInt).NotNull()).
		Column(q.Col(ExtValueUserID, q.BigInt).NotNull())
	return extValueColumns(b).
		ForeignKey(ExtValuePluginID, ExtPlugins, ID).
		ForeignKey(ExtValueUserID, Users, ID)
}

func ExtServerValuesTable() *q.CreateTableBuilder {
	b := q.CreateTable(ExtServerValues).
		ID().
		Column(q.Col(ExtValuePluginID, q.BigInt).NotNull())
	return extValueColumns(b).
		ForeignKey(ExtValuePluginID, ExtPlugins, ID)
}

// All returns every table definition, parents before children.
func All() []*q.CreateTableBuilder {
	return []*q.CreateTableBuilder{
		VersionTable(),
		ServersTable(),
		UsersTable(),
		UserInfoTable(),
		WorldsTable(),
		SessionsTable(),
		WorldTimesTable(),
		KillsTable(),
		PingTable(),
		TPSTable(),
		GeoInfoTable(),
		NicknamesTable(),
		CommandUseTable(),
		WebUsersTable(),
		WebPreferencesTable(),
		MailboxTable(),
		ExtPluginsTable(),
		ExtUserValuesTable(),
		ExtServerValuesTable(),
	}
}

// DeletionOrder lists the data tables children first, so deletes never
// violate a foreign key.
func DeletionOrder() []q.Table {
	return []q.Table{
		ExtUserValues,
		ExtServerValues,
		ExtPlugins,
		WorldTimes,
		Kills,
		Sessions,
		Ping,
		GeoInfo,
		Nicknames,
		UserInfo,
		CommandUse,
		TPS,
		Worlds,
		WebPreferences,
		WebUsers,
		Mailbox,
		Users,
		Servers,
	}
}

// IndexDef is a secondary index created once the schema is current.
type IndexDef struct {
	Name    q.Index
	Unique  bool
	Table   q.Table
	Columns []q.Column
}

// SQL renders the CREATE INDEX statement.
func (i IndexDef) SQL() string {
	return q.CreateIndex(i.Name, i.Unique, i.Table, i.Columns...)
}

// Indexes are created after migrations finish because DuckDB refuses to
// alter a table that an index depends on.
func Indexes() []IndexDef {
	return []IndexDef{
		{Name: IdxGeoInfoUnique, Unique: true, Table: GeoInfo, Columns: []q.Column{GeoUserID, GeoIPHash}},
		{Name: IdxSessionsUser, Table: Sessions, Columns: []q.Column{SessionUserID}},
		{Name: IdxSessionsServer, Table: Sessions, Columns: []q.Column{SessionServerID, SessionStart}},
		{Name: IdxPingUser, Table: Ping, Columns: []q.Column{PingUserID, PingDate}},
		{Name: IdxTPSServerDate, Table: TPS, Columns: []q.Column{TPSServerID, TPSDate}},
		{Name: IdxNicknamesUser, Table: Nicknames, Columns: []q.Column{NicknameUserID}},
		{Name: IdxWorldTimeSession, Table: WorldTimes, Columns: []q.Column{WorldTimeSessionID}},
		{Name: IdxKillsSession, Table: Kills, Columns: []q.Column{KillSessionID}},
	}
}
