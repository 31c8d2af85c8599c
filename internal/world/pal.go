package world

import (
	"strings"

	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/core/event"
	"github.com/paledit/paledit/internal/data"
	perr "github.com/paledit/paledit/internal/errors"
	"github.com/paledit/paledit/internal/gvas"
	"github.com/paledit/paledit/internal/props"
)

// Pal is a view over one non-player character record. All reads and
// writes go straight to the document tree.
// Not safe for concurrent use; callers serialize access per save.
type Pal struct {
	env   *env
	rec   *Record
	isNew bool // created by ClonePal during this session

	name nameCache
}

type nameKey struct {
	lang, dataKey, nick string
	rare, boss, tower   bool
	gender              string
}

type nameCache struct {
	valid bool
	key   nameKey
	value string
}

// NewPal validates rec and wraps it.
func NewPal(rec *Record, opts Options) (*Pal, error) {
	return newPal(rec, opts.env())
}

func newPal(rec *Record, e *env) (*Pal, error) {
	if rec == nil || rec.Param == nil {
		return nil, perr.Validation("pal record is nil")
	}
	if rec.InstanceId.IsZero() {
		return nil, perr.Validationf("pal record %q has no InstanceId", rec.MapKey)
	}
	if rec.IsPlayer {
		return nil, perr.Validationf("record %s is a player, not a pal", rec.ID()).
			WithMeta("instance", rec.ID())
	}
	return &Pal{env: e, rec: rec}, nil
}

func (p *Pal) Record() *Record         { return p.rec }
func (p *Pal) InstanceID() gvas.GUID   { return p.rec.InstanceId }
func (p *Pal) ID() string              { return p.rec.ID() }
func (p *Pal) IsNew() bool             { return p.isNew }
func (p *Pal) param() *gvas.Properties { return p.rec.Param }

// warn logs a rejected mutation with its invariant error attached.
func (p *Pal) warn(msg string, f ...zap.Field) {
	err := perr.Invariantf("pal %s: %s", p.ID(), msg)
	p.env.log.Warn(msg, append([]zap.Field{zap.String("pal", p.ID()), zap.Error(err)}, f...)...)
}

func (p *Pal) changed(field string, oldV, newV any) {
	p.name.valid = false
	p.env.changed(event.EntityPal, p.ID(), field, oldV, newV)
}

// Owner returns OwnerPlayerUId when set and non-zero.
func (p *Pal) Owner() (gvas.GUID, bool) {
	g, ok := props.GetGUID(p.param(), fieldOwnerPlayerUID)
	if !ok || g.IsZero() {
		return gvas.GUID{}, false
	}
	return g, true
}

// setOwner rewrites OwnerPlayerUId; the zero GUID makes the pal ownerless.
// State.TransferPal keeps the owner indexes in step with it.
func (p *Pal) setOwner(uid gvas.GUID) {
	old, _ := p.Owner()
	props.SetGUID(p.param(), fieldOwnerPlayerUID, uid)
	p.rec.Owner = uid
	p.changed(fieldOwnerPlayerUID, old, uid)
}

// OldOwners lists OldOwnerPlayerUIds.
func (p *Pal) OldOwners() []gvas.GUID {
	a, ok := props.GetArray(p.param(), fieldOldOwners)
	if !ok {
		return nil
	}
	var out []gvas.GUID
	for _, it := range a.Items {
		if g, ok := props.GetGUID(it, props.ValueKey); ok {
			out = append(out, g)
		}
	}
	return out
}

func (p *Pal) GroupID() (gvas.GUID, bool) {
	return props.GetGUID(p.rec.Raw, keyGroupID)
}

// SlotID returns the container id and slot index the pal occupies.
func (p *Pal) SlotID() (gvas.GUID, int32, bool) {
	return props.GetSlotID(p.param(), fieldSlotID)
}

func (p *Pal) ContainerID() (gvas.GUID, bool) {
	c, _, ok := p.SlotID()
	return c, ok
}

// IsExpedition reports whether the pal is out on an expedition.
func (p *Pal) IsExpedition() bool {
	return p.param().Has(fieldExpedition)
}

// --- basic fields ---

func (p *Pal) NickName() (string, bool) {
	return props.GetStr(p.param(), fieldNickName)
}

// SetNickName stores name; an empty name removes the field.
func (p *Pal) SetNickName(name string) {
	old, _ := p.NickName()
	if name == "" {
		props.Remove(p.param(), fieldNickName)
	} else {
		props.SetStr(p.param(), fieldNickName, name)
	}
	p.changed(fieldNickName, old, name)
}

func (p *Pal) IsFavorite() bool {
	v, _ := props.GetBool(p.param(), fieldIsFavorite)
	return v
}

func (p *Pal) SetFavorite(v bool) {
	old := p.IsFavorite()
	props.SetBool(p.param(), fieldIsFavorite, v)
	p.changed(fieldIsFavorite, old, v)
}

func (p *Pal) Gender() (string, bool) {
	return props.GetEnum(p.param(), fieldGender)
}

// SetGender accepts EPalGenderType values only.
func (p *Pal) SetGender(gender string) bool {
	if gender != data.GenderMale && gender != data.GenderFemale {
		p.warn("設定性別: 未知的值", zap.String("gender", gender))
		return false
	}
	old, _ := p.Gender()
	props.SetEnum(p.param(), fieldGender, gender)
	p.changed(fieldGender, old, gender)
	return true
}

func (p *Pal) removeGender() {
	if old, ok := p.Gender(); ok {
		props.Remove(p.param(), fieldGender)
		p.changed(fieldGender, old, "")
	}
}

func (p *Pal) Exp() uint64 {
	v, _ := props.GetInt64(p.param(), fieldExp)
	return v
}

func (p *Pal) HP() (uint64, bool) {
	return props.GetFixedPoint64(p.param(), fieldHP)
}

func (p *Pal) SetHP(v uint64) {
	old, _ := p.HP()
	props.SetFixedPoint64(p.param(), fieldHP, v)
	p.changed(fieldHP, old, v)
}

func (p *Pal) Sanity() (float32, bool) {
	return props.GetFloat(p.param(), fieldSanity)
}

func (p *Pal) FullStomach() (float32, bool) {
	return props.GetFloat(p.param(), fieldFullStomach)
}

// Sickness returns the WorkerSick enum when the pal is ill.
func (p *Pal) Sickness() (string, bool) {
	return props.GetEnum(p.param(), fieldWorkerSick)
}

func (p *Pal) Hunger() (string, bool) {
	return props.GetEnum(p.param(), fieldHungerType)
}

func (p *Pal) PhysicalHealth() (string, bool) {
	return props.GetEnum(p.param(), fieldPhysicalHealth)
}

// IsFainted reports a running revive timer or a dying health state.
func (p *Pal) IsFainted() bool {
	if p.param().Has(fieldReviveTimer) {
		return true
	}
	h, ok := p.PhysicalHealth()
	return ok && h == physicalHealthDying
}

// Heal clears sickness, hunger and the revive timer, refills stomach and
// sanity, then sets HP to the computed maximum.
func (p *Pal) Heal() {
	for _, f := range []string{fieldReviveTimer, fieldPhysicalHealth, fieldWorkerSick, fieldHungerType} {
		if props.Remove(p.param(), f) {
			p.changed(f, "set", "")
		}
	}
	stomach := float32(150)
	if info, ok := p.Info(); ok && info.Stats.Food > 0 {
		stomach = float32(info.Stats.Food)
	}
	props.SetFloat(p.param(), fieldFullStomach, stomach)
	props.SetFloat(p.param(), fieldSanity, 100)
	p.RefreshHP()
}

// RefreshHP sets current HP to MaxHP. No-op when stats are unknown.
func (p *Pal) RefreshHP() {
	if hp, ok := p.MaxHP(); ok {
		p.SetHP(uint64(hp))
	}
}

// --- display ---

// DisplayName renders markers, the localized species name, the nickname
// and a gender symbol. Cached until one of its inputs is written.
func (p *Pal) DisplayName() string {
	gender, _ := p.Gender()
	nick, _ := p.NickName()
	key := nameKey{
		lang:    p.env.lookup.Language(),
		dataKey: p.DataKey(),
		nick:    nick,
		rare:    p.IsRare(),
		boss:    p.IsBoss(),
		tower:   p.IsTower(),
		gender:  gender,
	}
	if p.name.valid && p.name.key == key {
		return p.name.value
	}

	var b strings.Builder
	if key.rare {
		b.WriteString("✨")
	}
	if key.boss {
		b.WriteString("💀")
	}
	if key.tower {
		b.WriteString("🗼")
	}
	if n, ok := p.env.lookup.PalName(key.dataKey); ok {
		b.WriteString(n)
	} else {
		b.WriteString(key.dataKey)
	}
	if nick != "" {
		b.WriteString(" (" + nick + ")")
	}
	switch gender {
	case data.GenderFemale:
		b.WriteString("♀")
	case data.GenderMale:
		b.WriteString("♂")
	}

	p.name = nameCache{valid: true, key: key, value: b.String()}
	return p.name.value
}

func (p *Pal) String() string { return p.DisplayName() + " " + p.ID() }
