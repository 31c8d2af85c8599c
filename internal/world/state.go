package world

import (
	"slices"

	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/core/event"
	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/gvas/wire"
	"github.com/paledit/paledit/internal/props"
)

// Options carries the collaborators shared by every entity of a save.
type Options struct {
	Lookup Lookup
	Log    *zap.Logger
	Bus    *event.Bus // optional; nil disables change events

	// PlayerSaves maps PlayerUId to the root properties of Players/<uid>.sav.
	PlayerSaves map[gvas.GUID]*gvas.Properties
}

func (o Options) env() *env {
	return newEnv(o.Lookup, o.Log, o.Bus)
}

// State is the entity view of one loaded Level.sav.
// Not safe for concurrent use; callers serialize access per save.
type State struct {
	env       *env
	doc       *gvas.Document
	charMap   *gvas.Map
	players   map[gvas.GUID]*Player // PlayerUId → player
	order     []gvas.GUID
	pals      map[gvas.GUID]*Pal // InstanceId → pal, owned and ownerless
	ownerless []gvas.GUID
	guilds    *GuildManager
}

// Load classifies the character map and builds every entity. Records that
// fail validation are logged and skipped.
func Load(doc *gvas.Document, opts Options) (*State, error) {
	if opts.Lookup == nil {
		return nil, perr.New(perr.CodeInternal, "world: lookup is required")
	}
	e := opts.env()
	cls, err := Classify(doc.Properties, e.log)
	if err != nil {
		return nil, err
	}
	charMap, _ := characterMap(doc.Properties)
	worldData, _ := props.GetStruct(doc.Properties, keyWorldSaveData)

	s := &State{
		env:     e,
		doc:     doc,
		charMap: charMap,
		players: make(map[gvas.GUID]*Player, len(cls.Players)),
		pals:    make(map[gvas.GUID]*Pal, len(cls.Owned)+len(cls.Ownerless)),
		guilds:  loadGuilds(worldData, e.log),
	}

	for _, rec := range cls.Players {
		pl, err := newPlayer(rec, opts.PlayerSaves[rec.PlayerUId], e)
		if err != nil {
			e.log.Warn("載入玩家失敗", zap.String("player", rec.PlayerUId.String()), zap.Error(err))
			continue
		}
		s.players[rec.PlayerUId] = pl
		s.order = append(s.order, rec.PlayerUId)
	}
	for _, rec := range cls.Owned {
		p, err := newPal(rec, e)
		if err != nil {
			e.log.Warn("載入帕魯失敗", zap.String("pal", rec.ID()), zap.Error(err))
			continue
		}
		s.pals[rec.InstanceId] = p
		if pl := s.players[rec.Owner]; pl != nil {
			pl.AddPal(p)
		} else {
			e.log.Debug("帕魯擁有者未載入", zap.String("pal", rec.ID()), zap.String("owner", rec.Owner.String()))
		}
	}
	for _, rec := range cls.Ownerless {
		p, err := newPal(rec, e)
		if err != nil {
			e.log.Warn("載入帕魯失敗", zap.String("pal", rec.ID()), zap.Error(err))
			continue
		}
		s.pals[rec.InstanceId] = p
		s.ownerless = append(s.ownerless, rec.InstanceId)
	}

	e.log.Info("存檔載入完成",
		zap.Int("players", len(s.players)),
		zap.Int("pals", len(s.pals)),
		zap.Int("ownerless", len(s.ownerless)),
		zap.Int("guilds", s.guilds.Count()),
		zap.Int("dropped", cls.Dropped))
	return s, nil
}

func (s *State) Document() *gvas.Document { return s.doc }
func (s *State) Guilds() *GuildManager    { return s.guilds }
func (s *State) PlayerCount() int         { return len(s.players) }
func (s *State) PalCount() int            { return len(s.pals) }

// Player returns a player by PlayerUId, or nil.
func (s *State) Player(uid gvas.GUID) *Player {
	return s.players[uid]
}

// PlayerByID accepts any GUID text form.
func (s *State) PlayerByID(id string) *Player {
	g, err := wire.ParseGUID(id)
	if err != nil {
		return nil
	}
	return s.players[g]
}

// Players returns players in save order.
func (s *State) Players() []*Player {
	out := make([]*Player, 0, len(s.order))
	for _, uid := range s.order {
		out = append(out, s.players[uid])
	}
	return out
}

// Pal returns a pal by InstanceId, or nil.
func (s *State) Pal(id gvas.GUID) *Pal {
	return s.pals[id]
}

// PalByID accepts any GUID text form.
func (s *State) PalByID(id string) *Pal {
	g, err := wire.ParseGUID(id)
	if err != nil {
		return nil
	}
	return s.pals[g]
}

// Pals returns all pals in character map order.
func (s *State) Pals() []*Pal {
	out := make([]*Pal, 0, len(s.pals))
	for _, e := range s.charMap.Entries {
		key, ok := props.GetStruct(e.Value, keyRecordKey)
		if !ok {
			continue
		}
		id, _ := props.GetGUID(key, keyInstanceID)
		if p := s.pals[id]; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// OwnerlessPals returns pals without an owner, e.g. base workers.
func (s *State) OwnerlessPals() []*Pal {
	out := make([]*Pal, 0, len(s.ownerless))
	for _, id := range s.ownerless {
		out = append(out, s.pals[id])
	}
	return out
}

// ClonePal deep-copies src's record under a fresh InstanceId and appends
// it to the character map and the owner's index.
func (s *State) ClonePal(src *Pal) (*Pal, error) {
	if s.pals[src.InstanceID()] != src {
		return nil, perr.NotFoundf("pal %s is not part of this save", src.ID())
	}
	entry := src.rec.Entry.Clone()
	id := wire.NewGUID()
	rec, err := ResolveRecord(id.String(), entry)
	if err != nil {
		return nil, perr.Wrap(err, "clone pal")
	}
	props.SetGUID(rec.Key, keyInstanceID, id)
	rec.InstanceId = id
	// TODO: allocate a free slot in CharacterContainerSaveData instead of
	// sharing the source pal's SlotID.
	p, err := newPal(rec, s.env)
	if err != nil {
		return nil, err
	}
	p.isNew = true
	props.Put(s.charMap, rec.MapKey, entry)
	s.pals[id] = p

	if pl := s.players[rec.Owner]; pl != nil && !rec.Owner.IsZero() {
		pl.AddPal(p)
	} else {
		s.ownerless = append(s.ownerless, id)
	}
	if s.env.bus != nil {
		event.Emit(s.env.bus, event.PalCloned{Source: src.ID(), Clone: p.ID()})
	}
	return p, nil
}

// DeletePal removes a pal record from the save and every index.
func (s *State) DeletePal(id gvas.GUID) bool {
	p := s.pals[id]
	if p == nil {
		s.env.log.Warn("刪除帕魯: 找不到", zap.String("pal", id.String()))
		return false
	}
	props.Drop(s.charMap, p.rec.MapKey)
	delete(s.pals, id)
	if owner, ok := p.Owner(); ok {
		if pl := s.players[owner]; pl != nil {
			pl.RemovePal(id)
		}
	}
	for i, g := range s.ownerless {
		if g == id {
			s.ownerless = append(s.ownerless[:i], s.ownerless[i+1:]...)
			break
		}
	}
	if s.env.bus != nil {
		event.Emit(s.env.bus, event.PalDeleted{ID: id.String()})
	}
	return true
}

// TransferPal hands p to the player uid, or makes it ownerless when uid is
// zero, moving it between the owner indexes.
func (s *State) TransferPal(p *Pal, uid gvas.GUID) bool {
	if s.pals[p.InstanceID()] != p {
		s.env.log.Warn("轉移帕魯: 不屬於此存檔", zap.String("pal", p.ID()),
			zap.Error(perr.Invariantf("pal %s is not part of this save", p.ID())))
		return false
	}
	var to *Player
	if !uid.IsZero() {
		if to = s.players[uid]; to == nil {
			s.env.log.Warn("轉移帕魯: 找不到玩家", zap.String("pal", p.ID()), zap.String("player", uid.String()),
				zap.Error(perr.Invariantf("player %s is not loaded", uid)))
			return false
		}
	}
	id := p.InstanceID()
	if owner, ok := p.Owner(); ok {
		if pl := s.players[owner]; pl != nil {
			pl.RemovePal(id)
		}
	}
	s.ownerless = slices.DeleteFunc(s.ownerless, func(g gvas.GUID) bool { return g == id })

	p.setOwner(uid)
	if to != nil {
		to.AddPal(p)
	} else {
		s.ownerless = append(s.ownerless, id)
	}
	return true
}

// SaveNewPalRecords runs Player.SaveNewPalRecords for every player.
func (s *State) SaveNewPalRecords() {
	for _, pl := range s.Players() {
		pl.SaveNewPalRecords()
	}
}
