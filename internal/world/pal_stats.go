package world

import (
	"math"

	"github.com/paledit/paledit/internal/props"
)

const (
	MaxLevel        = 60  // highest level the game displays
	MaxInvalidLevel = 100 // highest level the save accepts
	MaxRank         = 255
	topCondenser    = 5 // Rank at which every positive suitability gains +1
)

// Talent is an individual-value field.
type Talent string

const (
	TalentHP      Talent = fieldTalentHP
	TalentMelee   Talent = fieldTalentMelee
	TalentShot    Talent = fieldTalentShot
	TalentDefense Talent = fieldTalentDefense
)

// SoulRank is a per-stat upgrade field.
type SoulRank string

const (
	RankHP         SoulRank = fieldRankHP
	RankAttack     SoulRank = fieldRankAttack
	RankDefence    SoulRank = fieldRankDefence
	RankCraftSpeed SoulRank = fieldRankCraftSpeed
)

func clamp(lo, hi, v int) int {
	return max(lo, min(hi, v))
}

func (p *Pal) getInt(field string) (int, bool) {
	v, ok := props.GetInt32(p.param(), field)
	return int(v), ok
}

// Level defaults to 1 when absent.
func (p *Pal) Level() int {
	if v, ok := p.getInt(fieldLevel); ok {
		return v
	}
	return 1
}

// SetLevel clamps to [1,MaxInvalidLevel] and sets Exp from the level table.
// Moves and HP are left alone; see ApplyLevel.
func (p *Pal) SetLevel(level int) {
	level = clamp(1, MaxInvalidLevel, level)
	old := p.Level()
	props.SetInt32(p.param(), fieldLevel, int32(level))
	p.changed(fieldLevel, old, level)

	oldExp := p.Exp()
	exp := p.env.lookup.PalLevelExp(level)
	props.SetInt64(p.param(), fieldExp, exp)
	p.changed(fieldExp, oldExp, exp)
}

// ApplyLevel sets the level, learns the moves it unlocks and refreshes HP.
func (p *Pal) ApplyLevel(level int) {
	p.SetLevel(level)
	p.LearnLevelMoves()
	p.RefreshHP()
}

// Rank is the condenser rank; 1 (no stars) when absent.
func (p *Pal) Rank() int {
	if v, ok := p.getInt(fieldRank); ok {
		return v
	}
	return 1
}

// SetRank clamps to [1,255]; rank 1 removes the field.
func (p *Pal) SetRank(rank int) {
	rank = clamp(1, MaxRank, rank)
	old := p.Rank()
	if rank == 1 {
		props.Remove(p.param(), fieldRank)
	} else {
		props.SetInt32(p.param(), fieldRank, int32(rank))
	}
	p.changed(fieldRank, old, rank)
}

func (p *Pal) SoulRank(r SoulRank) int {
	v, _ := p.getInt(string(r))
	return v
}

// SetSoulRank clamps to [0,255]; 0 removes the field.
func (p *Pal) SetSoulRank(r SoulRank, rank int) {
	rank = clamp(0, MaxRank, rank)
	old := p.SoulRank(r)
	if rank == 0 {
		props.Remove(p.param(), string(r))
	} else {
		props.SetInt32(p.param(), string(r), int32(rank))
	}
	p.changed(string(r), old, rank)
}

func (p *Pal) Talent(t Talent) int {
	v, _ := p.getInt(string(t))
	return v
}

// SetTalent clamps to [0,255].
func (p *Pal) SetTalent(t Talent, v int) {
	v = clamp(0, 255, v)
	old := p.Talent(t)
	props.SetInt32(p.param(), string(t), int32(v))
	p.changed(string(t), old, v)
}

// passiveBuff sums one buff over the equipped passives.
func (p *Pal) passiveBuff(pick func(hp, atk, def, cs float64) float64) float64 {
	var total float64
	for _, id := range p.Passives() {
		if s, ok := p.env.lookup.PassiveSkill(id); ok {
			b := s.Buffs
			total += pick(b.HP, b.Attack, b.Defense, b.CraftSpeed)
		}
	}
	return total
}

func iv(talent int) float64 { return float64(talent) * 0.3 / 100 }

func (p *Pal) condenserBonus() float64 { return float64(p.Rank()-1) * 0.05 }

func (p *Pal) soulBonus(r SoulRank) float64 { return float64(p.SoulRank(r)) * 0.03 }

// MaxHP in FixedPoint64 units (x1000). False when the species has no stats.
func (p *Pal) MaxHP() (int64, bool) {
	info, ok := p.Info()
	if !ok {
		return 0, false
	}
	level := float64(p.Level())
	bonus := p.passiveBuff(func(hp, _, _, _ float64) float64 { return hp })
	scale := 1.0
	if p.IsRawBoss() {
		scale = 1.2
	}
	base := math.Floor(500 + 5*level + float64(info.Stats.HP)*0.5*level*(1+iv(p.Talent(TalentHP))))
	hp := math.Floor(base * (1 + bonus) * (1 + p.soulBonus(RankHP)) * (1 + p.condenserBonus()) * scale)
	return int64(hp) * 1000, true
}

func (p *Pal) Attack() (int64, bool) {
	info, ok := p.Info()
	if !ok {
		return 0, false
	}
	level := float64(p.Level())
	bonus := p.passiveBuff(func(_, atk, _, _ float64) float64 { return atk })
	raw := math.Floor(100 + float64(info.Stats.Attack)*0.075*level*(1+iv(p.Talent(TalentShot))))
	base := math.Floor(raw * (1 + p.soulBonus(RankAttack)) * (1 + p.condenserBonus()))
	return int64(math.Floor(base * (1 + bonus))), true
}

func (p *Pal) Defense() (int64, bool) {
	info, ok := p.Info()
	if !ok {
		return 0, false
	}
	level := float64(p.Level())
	bonus := p.passiveBuff(func(_, _, def, _ float64) float64 { return def })
	raw := math.Floor(50 + math.Ceil(float64(info.Stats.Defense)*0.075*level)*(1+iv(p.Talent(TalentDefense))))
	base := math.Floor(raw * (1 + p.soulBonus(RankDefence)) * (1 + p.condenserBonus()))
	return int64(math.Floor(base * (1 + bonus))), true
}

func (p *Pal) CraftSpeed() (int64, bool) {
	info, ok := p.Info()
	if !ok {
		return 0, false
	}
	bonus := p.passiveBuff(func(_, _, _, cs float64) float64 { return cs })
	base := math.Floor(float64(info.Stats.CraftSpeed) * (1 + p.soulBonus(RankCraftSpeed)))
	return int64(math.Floor(base * (1 + bonus))), true
}
