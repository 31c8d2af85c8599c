package world

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/paledit/paledit/internal/data"
	"github.com/paledit/paledit/internal/props"
)

var (
	reOilrig       = regexp.MustCompile(`^(.+)_Oilrig`)
	reSummon       = regexp.MustCompile(`^SUMMON_(.+)`)
	reSummonKey    = regexp.MustCompile(`SUMMON_([A-Za-z_]+?)(?:_MAX)?(?:_\d+.*)?$`)
	reTowerKey     = regexp.MustCompile(`GYM_([A-Za-z_]+?)(?:_\d+.*)?$`)
	reRaid         = regexp.MustCompile(`RAID_([A-Za-z_]+?)(?:_\d+)?$`)
	reRaidKey      = regexp.MustCompile(`RAID_([A-Za-z_]+?)(?:_\d+.*)?$`)
	rePredator     = regexp.MustCompile(`PREDATOR_([A-Za-z_]+?)(?:_\d+)?$`)
	rePredatorKey  = regexp.MustCompile(`PREDATOR_([A-Za-z_]+?)(?:_\d+.*)?$`)
	dataKeyAliases = map[string]string{
		"Sheepball":      "SheepBall",
		"LazyCatFish":    "LazyCatfish",
		"Police_HandGun": "Police_Handgun",
		"Blueplatypus":   "BluePlatypus",
	}
)

// species is everything derivable from a CharacterID alone.
type species struct {
	id       string
	raw      string // role and variant markers stripped
	dataKey  string // lookup key
	human    bool
	boss     bool // BOSS_/Boss_ marker, independent of the rare flag
	tower    bool
	raid     bool
	predator bool
	oilrig   bool
	summon   bool
}

func deriveSpecies(id string, lk Lookup) species {
	s := species{
		id:       id,
		boss:     strings.Contains(id, "BOSS_") || strings.Contains(id, "Boss_"),
		tower:    strings.Contains(id, "GYM_"),
		raid:     reRaid.MatchString(id),
		predator: rePredator.MatchString(id),
		oilrig:   reOilrig.MatchString(id),
		summon:   reSummon.MatchString(id),
	}
	if info, ok := lk.Pal(id); ok && info.Human {
		s.human = true
	}
	s.raw = rawSpecieKey(s)

	switch {
	case s.human, s.tower, s.raid, s.predator, s.oilrig, s.summon:
		s.dataKey = id
	default:
		s.dataKey = s.raw
		if alias, ok := dataKeyAliases[s.raw]; ok {
			s.dataKey = alias
		}
	}
	return s
}

// rawSpecieKey strips markers in fixed order. Every check runs; at most
// one normally matches.
func rawSpecieKey(s species) string {
	key := s.id
	if s.human {
		return key
	}
	if s.boss {
		if _, after, ok := strings.Cut(key, "Boss_"); ok {
			key = after
		} else if _, after, ok := strings.Cut(key, "BOSS_"); ok {
			key = after
		}
	}
	if s.oilrig {
		key, _, _ = strings.Cut(key, "_Oilrig")
	}
	if s.summon {
		if m := reSummonKey.FindStringSubmatch(s.id); m != nil {
			key = m[1]
		}
	}
	if s.tower {
		if m := reTowerKey.FindStringSubmatch(s.id); m != nil {
			key = m[1]
		}
	}
	if s.raid {
		if m := reRaidKey.FindStringSubmatch(s.id); m != nil {
			key = m[1]
		}
	}
	if s.predator {
		if m := rePredatorKey.FindStringSubmatch(s.id); m != nil {
			key = m[1]
		}
	}
	return key
}

func (p *Pal) species() species {
	return deriveSpecies(p.CharacterID(), p.env.lookup)
}

func (p *Pal) CharacterID() string {
	id, _ := props.GetName(p.param(), fieldCharacterID)
	return id
}

// RawSpecieKey is the CharacterID without boss/tower/raid/... markers.
func (p *Pal) RawSpecieKey() string { return p.species().raw }

// DataKey is the key used against the lookup tables.
func (p *Pal) DataKey() string { return p.species().dataKey }

func (p *Pal) Info() (*data.PalInfo, bool) {
	return p.env.lookup.Pal(p.DataKey())
}

func (p *Pal) IsHuman() bool    { return p.species().human }
func (p *Pal) IsTower() bool    { return p.species().tower }
func (p *Pal) IsRaid() bool     { return p.species().raid }
func (p *Pal) IsPredator() bool { return p.species().predator }
func (p *Pal) IsOilrig() bool   { return p.species().oilrig }
func (p *Pal) IsSummon() bool   { return p.species().summon }

// IsRawBoss reports the BOSS_ marker regardless of the rare flag.
func (p *Pal) IsRawBoss() bool { return p.species().boss }

// IsPal reports a non-human species with a paldeck entry.
func (p *Pal) IsPal() bool {
	info, ok := p.Info()
	return ok && info.SortingKey != "" && !p.IsHuman()
}

// IsBoss is the displayed boss state: rare pals never show as boss.
func (p *Pal) IsBoss() bool {
	return p.IsRawBoss() && !p.IsRare()
}

func (p *Pal) IsRare() bool {
	v, _ := props.GetBool(p.param(), fieldIsRare)
	return v
}

// SetBoss toggles the BOSS_ marker. Setting it clears the rare flag;
// clearing it on a rare pal is a no-op.
func (p *Pal) SetBoss(v bool) {
	rare := p.IsRare()
	if rare && !v {
		return
	}
	if rare && v {
		p.SetRare(false)
	}
	p.setRawBoss(v)
	p.RefreshHP()
}

func (p *Pal) setRawBoss(v bool) {
	s := p.species()
	switch {
	case !v:
		if s.id != s.raw {
			p.ApplySpeciesChange(s.raw)
		}
	case !s.boss:
		p.ApplySpeciesChange("BOSS_" + s.raw)
	}
}

// SetRare toggles IsRarePal. A rare pal always carries the BOSS_ marker;
// clearing rare on a displayed boss is a no-op.
func (p *Pal) SetRare(v bool) {
	if p.IsBoss() && !v {
		return
	}
	old := p.IsRare()
	props.SetBool(p.param(), fieldIsRare, v)
	p.changed(fieldIsRare, old, v)

	raw := p.IsRawBoss()
	if v && !raw {
		p.setRawBoss(true)
	} else if !v && raw {
		p.setRawBoss(false)
	}
	p.RefreshHP()
}

// SetTower switches between the GYM_ variant and the plain species.
func (p *Pal) SetTower(v bool) {
	s := p.species()
	if v == s.tower {
		return
	}
	if v {
		p.ApplySpeciesChange("GYM_" + s.raw)
	} else {
		p.ApplySpeciesChange(s.raw)
	}
}

// SetSpecies validates id against the lookup tables before running the
// species-change cascade.
func (p *Pal) SetSpecies(id string) bool {
	if id == "" {
		p.warn("設定種類: 空白 ID")
		return false
	}
	s := deriveSpecies(id, p.env.lookup)
	info, ok := p.env.lookup.Pal(s.dataKey)
	if !ok {
		p.warn("設定種類: 未知的種類", zap.String("id", id))
		return false
	}
	if info.Invalid {
		p.warn("設定種類: 此種類不可編輯", zap.String("id", id))
		return false
	}
	p.ApplySpeciesChange(id)
	return true
}

// ApplySpeciesChange writes CharacterID and reconciles everything that
// depends on it: gender, invalid moves, suitability bonuses, level moves
// and health. Moves and suitabilities are only touched when the stripped
// species key actually changes.
func (p *Pal) ApplySpeciesChange(id string) {
	before := p.species()
	props.SetName(p.param(), fieldCharacterID, id)
	p.changed(fieldCharacterID, before.id, id)
	after := p.species()
	info, known := p.env.lookup.Pal(after.dataKey)

	// (a) gender
	if after.tower && known && info.FixedGender != "" {
		p.SetGender(info.FixedGender)
	}
	if _, has := p.Gender(); has && after.human {
		p.removeGender()
	} else if !has && p.IsPal() {
		p.SetGender(data.GenderFemale)
	}

	if after.raw != before.raw {
		// (b) moves
		p.removeInvalidMoves()
		// (c) suitability bonuses
		added := p.AddedSuitabilities()
		for _, suit := range data.Suitabilities {
			rank, ok := added[suit]
			if !ok {
				continue
			}
			base := 0
			if known {
				base = info.Suitability(suit)
			}
			if !known || base == 0 {
				p.SetWorkSuitability(suit, 0)
			} else if rank+base > maxSuitabilityRank {
				p.SetWorkSuitability(suit, maxSuitabilityRank)
			}
		}
	}

	// (d) level moves
	p.LearnLevelMoves()
	if after.tower || after.raid || after.predator {
		p.EquipAllLevelMoves()
	}
	// (e) heal
	p.Heal()
}
