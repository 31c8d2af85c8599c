package world

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/core/event"
	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/props"
)

// StatusName is a GotStatusPointList entry name as stored in the save.
type StatusName string

const (
	StatusMaxHP       StatusName = "最大HP"
	StatusMaxSP       StatusName = "最大SP"
	StatusAttack      StatusName = "攻撃力"
	StatusCarryWeight StatusName = "所持重量"
	StatusCaptureRate StatusName = "捕獲率"
	StatusWorkSpeed   StatusName = "作業速度"
)

var (
	statusNames   = []StatusName{StatusMaxHP, StatusMaxSP, StatusAttack, StatusCarryWeight, StatusCaptureRate, StatusWorkSpeed}
	exStatusNames = []StatusName{StatusMaxHP, StatusMaxSP, StatusAttack, StatusCarryWeight, StatusWorkSpeed}
)

const maxStatusPoint = 65535

// Player is a view over a player record plus, when loaded, the SaveData of
// its Players/<uid>.sav file. The player is the canonical owner of its pal
// index; pals only carry the owner id.
type Player struct {
	env  *env
	rec  *Record
	save *gvas.Properties // SaveData fields, nil without a player save

	pals    map[gvas.GUID]*Pal
	order   []gvas.GUID
	newPals map[gvas.GUID]struct{}
}

// NewPlayer validates rec and, when saveRoot is non-nil, checks that its
// SaveData.IndividualId matches the record.
func NewPlayer(rec *Record, saveRoot *gvas.Properties, opts Options) (*Player, error) {
	return newPlayer(rec, saveRoot, opts.env())
}

func newPlayer(rec *Record, saveRoot *gvas.Properties, e *env) (*Player, error) {
	if rec == nil || rec.Param == nil {
		return nil, perr.Validation("player record is nil")
	}
	if rec.InstanceId.IsZero() {
		return nil, perr.Validationf("player record %q has no InstanceId", rec.MapKey)
	}
	if !rec.IsPlayer {
		return nil, perr.Validationf("record %s is a pal, not a player", rec.ID()).
			WithMeta("instance", rec.ID())
	}
	pl := &Player{
		env:     e,
		rec:     rec,
		pals:    make(map[gvas.GUID]*Pal),
		newPals: make(map[gvas.GUID]struct{}),
	}
	if saveRoot == nil {
		return pl, nil
	}

	save, ok := props.GetStruct(saveRoot, keySaveData)
	if !ok {
		return nil, perr.Validationf("player save %s missing %s", rec.PlayerUId, keySaveData)
	}
	ind, ok := props.GetStruct(save, keyIndividualID)
	if !ok {
		return nil, perr.Validationf("player save %s missing %s", rec.PlayerUId, keyIndividualID)
	}
	uid, _ := props.GetGUID(ind, keyPlayerUID)
	if uid != rec.PlayerUId {
		return nil, perr.Validationf("PlayerUId mismatch: Level.sav %s, player save %s", rec.PlayerUId, uid)
	}
	iid, _ := props.GetGUID(ind, keyInstanceID)
	if iid != rec.InstanceId {
		return nil, perr.Validationf("InstanceId mismatch: Level.sav %s, player save %s", rec.InstanceId, iid)
	}
	pl.save = save
	return pl, nil
}

func (pl *Player) Record() *Record         { return pl.rec }
func (pl *Player) PlayerUId() gvas.GUID    { return pl.rec.PlayerUId }
func (pl *Player) InstanceID() gvas.GUID   { return pl.rec.InstanceId }
func (pl *Player) ID() string              { return pl.rec.PlayerUId.String() }
func (pl *Player) HasSaveData() bool       { return pl.save != nil }
func (pl *Player) param() *gvas.Properties { return pl.rec.Param }

func (pl *Player) warn(msg string, f ...zap.Field) {
	err := perr.Invariantf("player %s: %s", pl.ID(), msg)
	pl.env.log.Warn(msg, append([]zap.Field{zap.String("player", pl.ID()), zap.Error(err)}, f...)...)
}

func (pl *Player) changed(field string, oldV, newV any) {
	pl.env.changed(event.EntityPlayer, pl.ID(), field, oldV, newV)
}

func (pl *Player) String() string {
	nick, _ := pl.NickName()
	return nick + " " + pl.ID()
}

func (pl *Player) NickName() (string, bool) {
	return props.GetStr(pl.param(), fieldNickName)
}

// SetNickName stores name; an empty name removes the field.
func (pl *Player) SetNickName(name string) {
	old, _ := pl.NickName()
	if name == "" {
		props.Remove(pl.param(), fieldNickName)
	} else {
		props.SetStr(pl.param(), fieldNickName, name)
	}
	pl.changed(fieldNickName, old, name)
}

func (pl *Player) Level() int {
	if v, ok := props.GetInt32(pl.param(), fieldLevel); ok {
		return int(v)
	}
	return 1
}

func (pl *Player) Exp() uint64 {
	v, _ := props.GetInt64(pl.param(), fieldExp)
	return v
}

func (pl *Player) UnusedStatusPoint() int {
	v, _ := props.GetInt32(pl.param(), fieldUnusedStatus)
	return int(v)
}

// SetUnusedStatusPoint clamps to the uint16 range.
func (pl *Player) SetUnusedStatusPoint(v int) {
	v = clamp(0, maxStatusPoint, v)
	old := pl.UnusedStatusPoint()
	props.SetInt32(pl.param(), fieldUnusedStatus, int32(v))
	pl.changed(fieldUnusedStatus, old, v)
}

// SetLevel moves the level and credits or debits one unused status point
// per level. Levelling down past the unused points is rejected.
func (pl *Player) SetLevel(level int) bool {
	level = clamp(1, MaxInvalidLevel, level)
	old := pl.Level()
	unused := pl.UnusedStatusPoint() + level - old
	if unused < 0 {
		pl.warn("設定等級: 狀態點數不足",
			zap.Int("level", level), zap.Int("unused", pl.UnusedStatusPoint()))
		return false
	}
	props.SetInt32(pl.param(), fieldLevel, int32(level))
	pl.changed(fieldLevel, old, level)

	oldExp := pl.Exp()
	exp := pl.env.lookup.PlayerLevelExp(level)
	props.SetInt64(pl.param(), fieldExp, exp)
	pl.changed(fieldExp, oldExp, exp)

	pl.SetUnusedStatusPoint(unused)
	return true
}

// --- status points ---

func statusList(names []StatusName) *gvas.Array {
	items := make([]*gvas.Properties, len(names))
	for i, n := range names {
		items[i] = props.StatusPoint(string(n), 0)
	}
	return props.StructArray(items...)
}

func (pl *Player) statusArray(field string, names []StatusName) *gvas.Array {
	if a, ok := props.GetArray(pl.param(), field); ok && len(a.Items) > 0 {
		return a
	}
	a := statusList(names)
	pl.param().Set(field, a)
	return a
}

func findStatus(a *gvas.Array, name StatusName) *gvas.Properties {
	for _, it := range a.Items {
		if n, _ := props.GetName(it, "StatusName"); n == string(name) {
			return it
		}
	}
	return nil
}

// StatusPoint reads GotStatusPointList, creating the default list when absent.
func (pl *Player) StatusPoint(name StatusName) (int, bool) {
	it := findStatus(pl.statusArray(fieldStatusPoints, statusNames), name)
	if it == nil {
		return 0, false
	}
	v, ok := props.GetInt32(it, "StatusPoint")
	return int(v), ok
}

// ExStatusPoint reads GotExStatusPointList. There is no capture-rate entry.
func (pl *Player) ExStatusPoint(name StatusName) (int, bool) {
	it := findStatus(pl.statusArray(fieldExStatusPoints, exStatusNames), name)
	if it == nil {
		return 0, false
	}
	v, ok := props.GetInt32(it, "StatusPoint")
	return int(v), ok
}

func (pl *Player) SetStatusPoint(name StatusName, v int) bool {
	return pl.setStatus(fieldStatusPoints, statusNames, name, v)
}

func (pl *Player) SetExStatusPoint(name StatusName, v int) bool {
	return pl.setStatus(fieldExStatusPoints, exStatusNames, name, v)
}

func (pl *Player) setStatus(field string, names []StatusName, name StatusName, v int) bool {
	if !slices.Contains(names, name) {
		pl.warn("設定狀態點數: 未知的狀態", zap.String("status", string(name)))
		return false
	}
	a := pl.statusArray(field, names)
	it := findStatus(a, name)
	if it == nil {
		it = props.StatusPoint(string(name), 0)
		a.Items = append(a.Items, it)
	}
	v = clamp(0, maxStatusPoint, v)
	old, _ := props.GetInt32(it, "StatusPoint")
	props.SetInt32(it, "StatusPoint", int32(v))
	pl.changed(field+"."+string(name), old, v)
	return true
}

// --- pal index ---

// AddPal indexes a pal under this player. False when already present.
func (pl *Player) AddPal(p *Pal) bool {
	id := p.InstanceID()
	if _, ok := pl.pals[id]; ok {
		return false
	}
	pl.pals[id] = p
	pl.order = append(pl.order, id)
	if p.IsNew() {
		pl.newPals[id] = struct{}{}
	}
	return true
}

// RemovePal drops a pal from the index and returns it.
func (pl *Player) RemovePal(id gvas.GUID) (*Pal, bool) {
	p, ok := pl.pals[id]
	if !ok {
		return nil, false
	}
	delete(pl.pals, id)
	delete(pl.newPals, id)
	pl.order = slices.DeleteFunc(pl.order, func(g gvas.GUID) bool { return g == id })
	return p, true
}

// Pal returns an indexed pal, or nil.
func (pl *Player) Pal(id gvas.GUID) *Pal {
	return pl.pals[id]
}

// Pals returns the indexed pals in insertion order.
func (pl *Player) Pals() []*Pal {
	out := make([]*Pal, 0, len(pl.order))
	for _, id := range pl.order {
		out = append(out, pl.pals[id])
	}
	return out
}

// SortedPals orders by paldeck: pals before humans, then paldeck number,
// tower, boss, rare and level.
func (pl *Player) SortedPals() []*Pal {
	out := pl.Pals()
	slices.SortStableFunc(out, comparePaldeck)
	return out
}

func comparePaldeck(a, b *Pal) int {
	if c := compareBool(a.IsHuman(), b.IsHuman()); c != 0 {
		return c
	}
	if c := compareAlnum(sortingKey(a), sortingKey(b)); c != 0 {
		return c
	}
	if c := compareBool(a.IsTower(), b.IsTower()); c != 0 {
		return c
	}
	if c := compareBool(a.IsBoss(), b.IsBoss()); c != 0 {
		return c
	}
	if c := compareBool(a.IsRare(), b.IsRare()); c != 0 {
		return c
	}
	return cmp.Compare(a.Level(), b.Level())
}

func sortingKey(p *Pal) string {
	if info, ok := p.Info(); ok {
		return info.SortingKey
	}
	return ""
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// compareAlnum compares digit runs numerically, so "12B" sorts after "9".
func compareAlnum(a, b string) int {
	ca, cb := alnumChunks(a), alnumChunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		na, errA := strconv.Atoi(ca[i])
		nb, errB := strconv.Atoi(cb[i])
		var c int
		if errA == nil && errB == nil {
			c = cmp.Compare(na, nb)
		} else {
			c = strings.Compare(strings.ToLower(ca[i]), strings.ToLower(cb[i]))
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(len(ca), len(cb))
}

func alnumChunks(s string) []string {
	var out []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || unicode.IsDigit(rune(s[i])) != unicode.IsDigit(rune(s[i-1])) {
			out = append(out, s[start:i])
			start = i
		}
	}
	return out
}

// InPalbox reports whether p sits in this player's party or palbox container.
func (pl *Player) InPalbox(p *Pal) bool {
	c, ok := p.ContainerID()
	if !ok {
		return false
	}
	if otomo, ok := pl.OtomoContainerID(); ok && otomo == c {
		return true
	}
	storage, ok := pl.PalStorageContainerID()
	return ok && storage == c
}
