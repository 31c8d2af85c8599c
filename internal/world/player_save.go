package world

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/props"
)

const (
	techViewingCage  = "DisplayCharacter"
	techSkillUnlock  = "SkillUnlock_"
	recordKeyType    = gvas.PropName
	captureValueType = gvas.PropInt32
	paldeckValueType = gvas.PropBool
)

// recordKeyAliases maps species keys to the spelling RecordData uses.
var recordKeyAliases = map[string]string{
	"PlantSlime_Flower": "PlantSlime",
	"SheepBall":         "Sheepball",
	"LazyCatFish":       "LazyCatfish",
	"Blueplatypus":      "BluePlatypus",
}

func (pl *Player) containerID(field string) (gvas.GUID, bool) {
	if pl.save == nil {
		return gvas.GUID{}, false
	}
	c, ok := props.GetStruct(pl.save, field)
	if !ok {
		return gvas.GUID{}, false
	}
	return props.GetGUID(c, "ID")
}

// OtomoContainerID is the party container.
func (pl *Player) OtomoContainerID() (gvas.GUID, bool) {
	return pl.containerID(fieldOtomoContainer)
}

func (pl *Player) PalStorageContainerID() (gvas.GUID, bool) {
	return pl.containerID(fieldPalStorage)
}

// --- technologies ---

func (pl *Player) UnlockedTechnologies() []string {
	if pl.save == nil {
		return nil
	}
	v, _ := props.Names(pl.save, fieldUnlockedRecipes)
	return v
}

// ToggleTechnology unlocks or locks a recipe technology. Redundant toggles
// are warned about and ignored.
func (pl *Player) ToggleTechnology(tech string, unlock bool) bool {
	if pl.save == nil {
		pl.warn("切換科技: 無玩家存檔", zap.String("tech", tech))
		return false
	}
	cur := pl.UnlockedTechnologies()
	has := slices.Contains(cur, tech)
	var next []string
	switch {
	case unlock && has:
		pl.warn("解鎖科技: 已解鎖", zap.String("tech", tech))
		return false
	case !unlock && !has:
		pl.warn("鎖定科技: 尚未解鎖", zap.String("tech", tech))
		return false
	case unlock:
		next = append(slices.Clone(cur), tech)
	default:
		next = slices.DeleteFunc(slices.Clone(cur), func(s string) bool { return s == tech })
	}
	props.SetNames(pl.save, fieldUnlockedRecipes, next)
	pl.changed(fieldUnlockedRecipes, cur, next)
	return true
}

func (pl *Player) HasViewingCage() bool {
	return slices.Contains(pl.UnlockedTechnologies(), techViewingCage)
}

func (pl *Player) UnlockViewingCage() bool {
	return pl.ToggleTechnology(techViewingCage, true)
}

func (pl *Player) TechnologyPoint() (int, bool) {
	return pl.saveInt(fieldTechPoint)
}

func (pl *Player) SetTechnologyPoint(v int) bool {
	return pl.setSaveInt(fieldTechPoint, v)
}

func (pl *Player) BossTechnologyPoint() (int, bool) {
	return pl.saveInt(fieldBossTechPoint)
}

func (pl *Player) SetBossTechnologyPoint(v int) bool {
	return pl.setSaveInt(fieldBossTechPoint, v)
}

func (pl *Player) saveInt(field string) (int, bool) {
	if pl.save == nil {
		return 0, false
	}
	v, ok := props.GetInt32(pl.save, field)
	return int(v), ok
}

func (pl *Player) setSaveInt(field string, v int) bool {
	if pl.save == nil {
		pl.warn("設定數值: 無玩家存檔", zap.String("field", field))
		return false
	}
	if v < 0 {
		pl.warn("設定數值: 不可為負數", zap.String("field", field), zap.Int("value", v))
		return false
	}
	old, _ := pl.saveInt(field)
	props.SetInt32(pl.save, field, int32(v))
	pl.changed(field, old, v)
	return true
}

// --- capture records ---

func (pl *Player) recordData() *gvas.Properties {
	rd := props.EnsureStruct(pl.save, fieldRecordData, structRecordData)
	props.EnsureMap(rd, fieldCaptureCount, recordKeyType, captureValueType)
	props.EnsureMap(rd, fieldPaldeckUnlock, recordKeyType, paldeckValueType)
	return rd
}

// recordEntry finds a RecordData map entry, ignoring key case.
func recordEntry(m *gvas.Map, name string) *gvas.Properties {
	for _, e := range m.Entries {
		if strings.EqualFold(e.Key, name) {
			return e.Value
		}
	}
	return nil
}

// CaptureCount returns PalCaptureCount for a species, 0 when absent.
func (pl *Player) CaptureCount(name string) int {
	if pl.save == nil {
		return 0
	}
	m, ok := pl.recordMap(fieldCaptureCount)
	if !ok {
		return 0
	}
	e := recordEntry(m, name)
	if e == nil {
		return 0
	}
	v, _ := props.GetInt32(e, props.ValueKey)
	return int(v)
}

func (pl *Player) PaldeckUnlocked(name string) bool {
	if pl.save == nil {
		return false
	}
	m, ok := pl.recordMap(fieldPaldeckUnlock)
	if !ok {
		return false
	}
	e := recordEntry(m, name)
	if e == nil {
		return false
	}
	v, _ := props.GetBool(e, props.ValueKey)
	return v
}

func (pl *Player) recordMap(field string) (*gvas.Map, bool) {
	rd, ok := props.GetStruct(pl.save, fieldRecordData)
	if !ok {
		return nil, false
	}
	return props.GetMap(rd, field)
}

func (pl *Player) incCaptureCount(name string) {
	m, _ := props.GetMap(pl.recordData(), fieldCaptureCount)
	old := 0
	if e := recordEntry(m, name); e != nil {
		v, _ := props.GetInt32(e, props.ValueKey)
		old = int(v)
		props.SetInt32(e, props.ValueKey, v+1)
	} else {
		pl.env.log.Info("新增捕獲記錄", zap.String("player", pl.ID()), zap.String("species", name))
		props.Put(m, name, props.Element(props.Int32(1)))
	}
	pl.changed(fieldCaptureCount+"."+name, old, old+1)
}

func (pl *Player) unlockPaldeck(name string) {
	m, _ := props.GetMap(pl.recordData(), fieldPaldeckUnlock)
	if e := recordEntry(m, name); e != nil {
		props.SetBool(e, props.ValueKey, true)
	} else {
		props.Put(m, name, props.Element(props.Bool(true)))
	}
	pl.changed(fieldPaldeckUnlock+"."+name, false, true)
}

// SaveNewPalRecords credits every pal added this session to the paldeck,
// capture counts and species technology. Call once before writing.
func (pl *Player) SaveNewPalRecords() {
	if pl.save == nil {
		return
	}
	for _, id := range pl.order {
		if _, ok := pl.newPals[id]; !ok {
			continue
		}
		p := pl.pals[id]
		info, ok := p.Info()
		if !ok || info.Invalid {
			pl.env.log.Info("記錄: 跳過無效帕魯", zap.String("pal", p.ID()))
			continue
		}
		if p.IsHuman() || info.SortingKey == "" {
			pl.env.log.Info("記錄: 跳過非圖鑑角色", zap.String("pal", p.ID()))
			continue
		}

		key := p.RawSpecieKey()
		if alias, ok := recordKeyAliases[key]; ok {
			key = alias
		}
		pl.unlockPaldeck(key)
		pl.incCaptureCount(key)

		tech := techSkillUnlock + key
		if pl.env.lookup.HasTechnology(tech) {
			pl.ToggleTechnology(tech, true)
		} else {
			pl.warn("記錄: 找不到科技", zap.String("tech", tech))
		}
		p.isNew = false
	}
	clear(pl.newPals)
}

