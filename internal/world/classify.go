package world

import (
	"go.uber.org/zap"

	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/props"
)

// Classification splits the character map into players, owned pals and
// ownerless pals, each in map order.
type Classification struct {
	Players   []*Record
	Owned     []*Record
	Ownerless []*Record
	Dropped   int
}

// characterMap returns worldSaveData.CharacterSaveParameterMap.
func characterMap(root *gvas.Properties) (*gvas.Map, error) {
	world, ok := props.GetStruct(root, keyWorldSaveData)
	if !ok {
		return nil, perr.NotFoundf("%s not found", keyWorldSaveData)
	}
	m, ok := props.GetMap(world, keyCharacterMap)
	if !ok {
		return nil, perr.NotFoundf("%s.%s not found", keyWorldSaveData, keyCharacterMap)
	}
	return m, nil
}

// Classify walks the character map. Malformed records and duplicate
// InstanceIds are dropped with a warning; the walk always continues.
func Classify(root *gvas.Properties, log *zap.Logger) (*Classification, error) {
	if log == nil {
		log = zap.NewNop()
	}
	m, err := characterMap(root)
	if err != nil {
		return nil, err
	}

	c := &Classification{}
	seen := make(map[gvas.GUID]struct{}, len(m.Entries))
	players := make(map[gvas.GUID]struct{})
	for i, e := range m.Entries {
		rec, err := ResolveRecord(e.Key, e.Value)
		if err != nil {
			log.Warn("分類: 跳過無效記錄",
				zap.Int("index", i), zap.String("key", e.Key), zap.Error(err))
			c.Dropped++
			continue
		}
		if _, dup := seen[rec.InstanceId]; dup {
			log.Warn("分類: InstanceId 重複",
				zap.Int("index", i), zap.String("instance", rec.ID()))
			c.Dropped++
			continue
		}
		seen[rec.InstanceId] = struct{}{}

		switch {
		case rec.IsPlayer:
			if _, dup := players[rec.PlayerUId]; dup {
				log.Warn("分類: PlayerUId 重複",
					zap.Int("index", i), zap.String("player", rec.PlayerUId.String()))
				c.Dropped++
				continue
			}
			players[rec.PlayerUId] = struct{}{}
			c.Players = append(c.Players, rec)
		case rec.Owner.IsZero():
			c.Ownerless = append(c.Ownerless, rec)
		default:
			c.Owned = append(c.Owned, rec)
		}
	}
	return c, nil
}
