package world

import (
	"slices"

	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/props"
)

const (
	MaxEquippedMoves = 3
	MaxPassives      = 4
	humanPunch       = "EPalWazaID::Human_Punch"
)

func (p *Pal) Passives() []string {
	v, _ := props.Names(p.param(), fieldPassives)
	return v
}

func (p *Pal) MasteredMoves() []string {
	v, _ := props.Enums(p.param(), fieldMasteredWaza)
	return v
}

func (p *Pal) EquippedMoves() []string {
	v, _ := props.Enums(p.param(), fieldEquipWaza)
	return v
}

// AddPassive rejects unknown ids, duplicates and a full list.
func (p *Pal) AddPassive(id string) bool {
	if _, ok := p.env.lookup.PassiveSkill(id); !ok {
		p.warn("新增被動技能: 未知的技能", zap.String("skill", id))
		return false
	}
	cur := p.Passives()
	if slices.Contains(cur, id) {
		p.warn("新增被動技能: 已存在", zap.String("skill", id))
		return false
	}
	if len(cur) >= MaxPassives {
		p.warn("新增被動技能: 欄位已滿", zap.Strings("passives", cur))
		return false
	}
	next := append(slices.Clone(cur), id)
	props.SetNames(p.param(), fieldPassives, next)
	p.changed(fieldPassives, cur, next)
	return true
}

func (p *Pal) RemovePassive(id string) bool {
	cur := p.Passives()
	i := slices.Index(cur, id)
	if i < 0 {
		p.warn("移除被動技能: 不存在", zap.String("skill", id))
		return false
	}
	next := slices.Delete(slices.Clone(cur), i, i+1)
	props.SetNames(p.param(), fieldPassives, next)
	p.changed(fieldPassives, cur, next)
	return true
}

// MasterMove learns a move and equips it when a slot is free.
func (p *Pal) MasterMove(id string) bool {
	if _, ok := p.env.lookup.ActiveSkill(id); !ok {
		p.warn("習得招式: 未知的招式", zap.String("move", id))
		return false
	}
	cur := p.MasteredMoves()
	if slices.Contains(cur, id) {
		return false
	}
	next := append(slices.Clone(cur), id)
	props.SetEnums(p.param(), fieldMasteredWaza, next)
	p.changed(fieldMasteredWaza, cur, next)

	if len(p.EquippedMoves()) < MaxEquippedMoves {
		p.EquipMove(id)
	}
	return true
}

// ForgetMove un-masters a move and un-equips it.
func (p *Pal) ForgetMove(id string) bool {
	cur := p.MasteredMoves()
	i := slices.Index(cur, id)
	if i < 0 {
		p.warn("遺忘招式: 尚未習得", zap.String("move", id))
		return false
	}
	p.unequip(id)
	next := slices.Delete(slices.Clone(cur), i, i+1)
	props.SetEnums(p.param(), fieldMasteredWaza, next)
	p.changed(fieldMasteredWaza, cur, next)
	return true
}

// EquipMove requires the move to be mastered and a free slot.
func (p *Pal) EquipMove(id string) bool {
	if !slices.Contains(p.MasteredMoves(), id) {
		p.warn("裝備招式: 尚未習得", zap.String("move", id))
		return false
	}
	cur := p.EquippedMoves()
	if slices.Contains(cur, id) {
		p.warn("裝備招式: 已裝備", zap.String("move", id))
		return false
	}
	if len(cur) >= MaxEquippedMoves {
		p.warn("裝備招式: 欄位已滿", zap.Strings("equipped", cur))
		return false
	}
	next := append(slices.Clone(cur), id)
	props.SetEnums(p.param(), fieldEquipWaza, next)
	p.changed(fieldEquipWaza, cur, next)
	return true
}

func (p *Pal) UnequipMove(id string) bool {
	if !p.unequip(id) {
		p.warn("卸下招式: 未裝備", zap.String("move", id))
		return false
	}
	return true
}

func (p *Pal) unequip(id string) bool {
	cur := p.EquippedMoves()
	i := slices.Index(cur, id)
	if i < 0 {
		return false
	}
	next := slices.Delete(slices.Clone(cur), i, i+1)
	props.SetEnums(p.param(), fieldEquipWaza, next)
	p.changed(fieldEquipWaza, cur, next)
	return true
}

// validMove: humans only punch; pals may keep any known non-unique move
// and the unique moves of their own species.
func (p *Pal) validMove(id string) bool {
	if p.IsHuman() {
		return id == humanPunch
	}
	skill, ok := p.env.lookup.ActiveSkill(id)
	if !ok {
		return false
	}
	if !skill.Unique {
		return true
	}
	info, ok := p.Info()
	return ok && info.Learns(id)
}

func (p *Pal) removeInvalidMoves() {
	for _, id := range p.EquippedMoves() {
		if !p.validMove(id) {
			p.unequip(id)
		}
	}
	for _, id := range p.MasteredMoves() {
		if !p.validMove(id) {
			p.ForgetMove(id)
		}
	}
}

// LearnLevelMoves masters every move the species learns at or below the
// current level.
func (p *Pal) LearnLevelMoves() {
	if p.IsHuman() {
		p.MasterMove(humanPunch)
		return
	}
	info, ok := p.Info()
	if !ok {
		return
	}
	for _, id := range info.MovesUpTo(p.Level()) {
		p.MasterMove(id)
	}
}

// EquipAllLevelMoves replaces the equipped set with the first mastered
// level moves.
func (p *Pal) EquipAllLevelMoves() {
	info, ok := p.Info()
	if !ok {
		return
	}
	moves := info.MovesUpTo(p.Level())
	if len(moves) == 0 {
		return
	}
	cur := p.EquippedMoves()
	mastered := p.MasteredMoves()
	var next []string
	for _, id := range moves {
		if len(next) == MaxEquippedMoves {
			break
		}
		if slices.Contains(mastered, id) && !slices.Contains(next, id) {
			next = append(next, id)
		}
	}
	props.SetEnums(p.param(), fieldEquipWaza, next)
	p.changed(fieldEquipWaza, cur, next)
}
