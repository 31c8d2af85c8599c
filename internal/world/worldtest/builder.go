// Package worldtest builds minimal Level.sav trees for tests.
package worldtest

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/paledit/paledit/internal/data"
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/props"
)

// GUID returns a deterministic id whose last byte is n and first byte is hi.
func GUID(hi, n byte) gvas.GUID {
	var g gvas.GUID
	g[0] = hi
	g[15] = n
	return g
}

// Tables loads the shipped YAML tables.
func Tables(t testing.TB) *data.Tables {
	t.Helper()
	_, file, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(file), "..", "..", "..", "data", "yaml")
	tables, err := data.LoadTables(dir, "en")
	if err != nil {
		t.Fatalf("load tables: %v", err)
	}
	return tables
}

// Builder assembles worldSaveData with a character map and a group map.
type Builder struct {
	chars  *gvas.Map
	groups *gvas.Map
}

func New() *Builder {
	return &Builder{
		chars:  props.MapOf(gvas.PropStruct, gvas.PropStruct),
		groups: props.MapOf(gvas.PropStruct, gvas.PropStruct),
	}
}

// Entry builds one character map value around param.
func Entry(uid, iid gvas.GUID, param *gvas.Properties) *gvas.Properties {
	key := gvas.NewProperties()
	key.Set("PlayerUId", props.GUID(uid))
	key.Set("InstanceId", props.GUID(iid))
	key.Set("DebugName", gvas.NewStr(""))

	raw := gvas.NewProperties()
	raw.Set("SaveParameter", props.Struct("PalIndividualCharacterSaveParameter", param))
	raw.Set("GroupId", props.GUID(gvas.GUID{}))

	entry := gvas.NewProperties()
	entry.Set("Key", props.Struct("PalInstanceID", key))
	entry.Set("RawData", props.Struct("PalCharacterRawData", raw))
	return entry
}

// AddEntry appends a raw map entry.
func (b *Builder) AddEntry(key string, entry *gvas.Properties) {
	b.chars.Entries = append(b.chars.Entries, gvas.MapEntry{Key: key, Value: entry})
}

// AddPlayer appends a player record and returns its SaveParameter.
func (b *Builder) AddPlayer(uid, iid gvas.GUID, nick string, level int32) *gvas.Properties {
	param := gvas.NewProperties()
	param.Set("CharacterType", gvas.NewEnum("EPalCharacterType::Player"))
	param.Set("NickName", gvas.NewStr(nick))
	param.Set("Level", gvas.Int32(level))
	b.AddEntry(iid.String(), Entry(uid, iid, param))
	return param
}

// AddPal appends a pal record and returns its SaveParameter. A zero owner
// leaves OwnerPlayerUId unset.
func (b *Builder) AddPal(iid, owner gvas.GUID, characterID string, level int32) *gvas.Properties {
	param := gvas.NewProperties()
	param.Set("CharacterID", gvas.NewName(characterID))
	param.Set("Level", gvas.Int32(level))
	param.Set("Gender", gvas.NewEnum(data.GenderMale))
	if !owner.IsZero() {
		param.Set("OwnerPlayerUId", props.GUID(owner))
	}
	b.AddEntry(iid.String(), Entry(gvas.GUID{}, iid, param))
	return param
}

// Member is one guild player.
type Member struct {
	UID        gvas.GUID
	Name       string
	LastOnline uint64
}

// AddGuild appends a GroupSaveDataMap entry.
func (b *Builder) AddGuild(id gvas.GUID, name string, members ...Member) {
	items := make([]*gvas.Properties, 0, len(members))
	for _, m := range members {
		info := gvas.NewProperties()
		info.Set("player_name", gvas.NewStr(m.Name))
		info.Set("last_online_real_time", gvas.Int64(m.LastOnline))
		it := gvas.NewProperties()
		it.Set("player_uid", props.GUID(m.UID))
		it.Set("player_info", props.Struct("PalGuildPlayerInfo", info))
		items = append(items, it)
	}
	raw := gvas.NewProperties()
	raw.Set("group_name", gvas.NewStr(name))
	raw.Set("players", props.StructArray(items...))
	value := gvas.NewProperties()
	value.Set("GroupType", gvas.NewEnum("EPalGroupType::Guild"))
	value.Set("RawData", props.Struct("PalGroupRawData", raw))
	b.groups.Entries = append(b.groups.Entries, gvas.MapEntry{Key: id.String(), Value: value})
}

// Root returns the top-level property list.
func (b *Builder) Root() *gvas.Properties {
	world := gvas.NewProperties()
	world.Set("CharacterSaveParameterMap", b.chars)
	world.Set("GroupSaveDataMap", b.groups)
	root := gvas.NewProperties()
	root.Set("worldSaveData", props.Struct("PalWorldSaveData", world))
	return root
}

// Document wraps Root with a header.
func (b *Builder) Document() *gvas.Document {
	return &gvas.Document{
		Header:     gvas.Header{Version: 3, EngineMajor: 5, EngineMinor: 1, EnginePatch: 1, SaveGameVersion: 7},
		Properties: b.Root(),
	}
}

// PlayerSave builds a Players/<uid>.sav root with party and palbox ids.
func PlayerSave(uid, iid, otomo, storage gvas.GUID) *gvas.Properties {
	ind := gvas.NewProperties()
	ind.Set("PlayerUId", props.GUID(uid))
	ind.Set("InstanceId", props.GUID(iid))

	container := func(id gvas.GUID) *gvas.Struct {
		f := gvas.NewProperties()
		f.Set("ID", props.GUID(id))
		return props.Struct(props.StructContainerID, f)
	}

	save := gvas.NewProperties()
	save.Set("IndividualId", props.Struct("PalInstanceID", ind))
	save.Set("OtomoCharacterContainerId", container(otomo))
	save.Set("PalStorageContainerId", container(storage))
	save.Set("TechnologPoint", gvas.Int32(3))

	root := gvas.NewProperties()
	root.Set("SaveData", props.Struct("PalWorldPlayerSaveData", save))
	return root
}
