package world

import (
	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/gvas/wire"
	"github.com/paledit/paledit/internal/props"
)

// GroupSaveDataMap member layout.
const (
	guildName       = "group_name"
	guildPlayers    = "players"
	guildPlayerUID  = "player_uid"
	guildPlayerInfo = "player_info"
	guildPlayerName = "player_name"
	guildLastOnline = "last_online_real_time"
)

// GuildMember holds one players entry of a guild.
type GuildMember struct {
	PlayerUId  gvas.GUID
	Name       string
	LastOnline uint64 // last_online_real_time ticks
}

// GuildInfo is a read-only listing of one GroupSaveDataMap entry.
type GuildInfo struct {
	ID      gvas.GUID
	Name    string
	Members []*GuildMember
}

// MemberCount returns the number of members in the guild.
func (g *GuildInfo) MemberCount() int {
	return len(g.Members)
}

// GuildManager indexes guilds by id and players by guild.
type GuildManager struct {
	guilds      map[gvas.GUID]*GuildInfo
	order       []gvas.GUID
	playerGuild map[gvas.GUID]gvas.GUID // playerUID → guildID
}

// NewGuildManager creates an empty GuildManager.
func NewGuildManager() *GuildManager {
	return &GuildManager{
		guilds:      make(map[gvas.GUID]*GuildInfo),
		playerGuild: make(map[gvas.GUID]gvas.GUID),
	}
}

// loadGuilds reads GroupSaveDataMap. Entries without a parsable key or
// RawData are skipped; groups without players are kept.
func loadGuilds(worldData *gvas.Properties, log *zap.Logger) *GuildManager {
	gm := NewGuildManager()
	m, ok := props.GetMap(worldData, keyGroupMap)
	if !ok {
		return gm
	}
	for _, e := range m.Entries {
		id, err := wire.ParseGUID(e.Key)
		if err != nil {
			log.Debug("公會: 跳過無效鍵值", zap.String("key", e.Key), zap.Error(err))
			continue
		}
		raw, ok := props.GetStruct(e.Value, keyRawData)
		if !ok {
			log.Debug("公會: 缺少 RawData", zap.String("group", e.Key))
			continue
		}
		g := &GuildInfo{ID: id}
		g.Name, _ = props.GetStr(raw, guildName)
		if players, ok := props.GetArray(raw, guildPlayers); ok {
			for _, it := range players.Items {
				uid, ok := props.GetGUID(it, guildPlayerUID)
				if !ok {
					continue
				}
				member := &GuildMember{PlayerUId: uid}
				if info, ok := props.GetStruct(it, guildPlayerInfo); ok {
					member.Name, _ = props.GetStr(info, guildPlayerName)
					member.LastOnline, _ = props.GetInt64(info, guildLastOnline)
				}
				g.Members = append(g.Members, member)
			}
		}
		gm.add(g)
	}
	return gm
}

func (gm *GuildManager) add(g *GuildInfo) {
	if _, dup := gm.guilds[g.ID]; !dup {
		gm.order = append(gm.order, g.ID)
	}
	gm.guilds[g.ID] = g
	for _, m := range g.Members {
		gm.playerGuild[m.PlayerUId] = g.ID
	}
}

// Get returns a guild by id, or nil.
func (gm *GuildManager) Get(id gvas.GUID) *GuildInfo {
	return gm.guilds[id]
}

// OfPlayer returns the guild a player belongs to, or nil.
func (gm *GuildManager) OfPlayer(uid gvas.GUID) *GuildInfo {
	id, ok := gm.playerGuild[uid]
	if !ok {
		return nil
	}
	return gm.guilds[id]
}

// All returns guilds in save order.
func (gm *GuildManager) All() []*GuildInfo {
	out := make([]*GuildInfo, 0, len(gm.order))
	for _, id := range gm.order {
		out = append(out, gm.guilds[id])
	}
	return out
}

func (gm *GuildManager) Count() int {
	return len(gm.guilds)
}
