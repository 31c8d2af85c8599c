package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ActiveSkill is an EPalWazaID move.
type ActiveSkill struct {
	ID     string // EPalWazaID::...
	Unique bool   // species-exclusive
	Power  int
	I18n   map[string]string
}

// PassiveBuffs are fractional bonuses (0.2 = +20%).
type PassiveBuffs struct {
	HP         float64
	Attack     float64
	Defense    float64
	CraftSpeed float64
	MoveSpeed  float64
}

// PassiveSkill is a PassiveSkillList entry.
type PassiveSkill struct {
	ID    string
	Rank  int
	Buffs PassiveBuffs
	I18n  map[string]string
}

// ActiveSkillTable holds moves indexed by ID.
type ActiveSkillTable struct {
	skills map[string]*ActiveSkill
}

// Get returns a move by ID, or nil if not found.
func (t *ActiveSkillTable) Get(id string) *ActiveSkill {
	return t.skills[id]
}

func (t *ActiveSkillTable) Count() int {
	return len(t.skills)
}

// PassiveSkillTable holds passives indexed by ID.
type PassiveSkillTable struct {
	skills map[string]*PassiveSkill
}

// Get returns a passive by ID, or nil if not found.
func (t *PassiveSkillTable) Get(id string) *PassiveSkill {
	return t.skills[id]
}

func (t *PassiveSkillTable) Count() int {
	return len(t.skills)
}

// --- YAML loading ---

type activeSkillEntry struct {
	ID     string            `yaml:"id"`
	Unique bool              `yaml:"unique"`
	Power  int               `yaml:"power"`
	I18n   map[string]string `yaml:"i18n"`
}

type activeSkillListFile struct {
	Skills []activeSkillEntry `yaml:"active_skills"`
}

type passiveBuffEntry struct {
	HP         float64 `yaml:"hp"`
	Attack     float64 `yaml:"attack"`
	Defense    float64 `yaml:"defense"`
	CraftSpeed float64 `yaml:"craft_speed"`
	MoveSpeed  float64 `yaml:"move_speed"`
}

type passiveSkillEntry struct {
	ID    string            `yaml:"id"`
	Rank  int               `yaml:"rank"`
	Buffs passiveBuffEntry  `yaml:"buffs"`
	I18n  map[string]string `yaml:"i18n"`
}

type passiveSkillListFile struct {
	Skills []passiveSkillEntry `yaml:"passive_skills"`
}

// LoadActiveSkillTable loads move definitions from YAML.
func LoadActiveSkillTable(path string) (*ActiveSkillTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read active skills: %w", err)
	}
	return ParseActiveSkillTable(raw)
}

func ParseActiveSkillTable(raw []byte) (*ActiveSkillTable, error) {
	var f activeSkillListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse active skills: %w", err)
	}
	t := &ActiveSkillTable{skills: make(map[string]*ActiveSkill, len(f.Skills))}
	for i := range f.Skills {
		e := &f.Skills[i]
		t.skills[e.ID] = &ActiveSkill{
			ID:     e.ID,
			Unique: e.Unique,
			Power:  e.Power,
			I18n:   e.I18n,
		}
	}
	return t, nil
}

// LoadPassiveSkillTable loads passive definitions from YAML.
func LoadPassiveSkillTable(path string) (*PassiveSkillTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read passive skills: %w", err)
	}
	return ParsePassiveSkillTable(raw)
}

func ParsePassiveSkillTable(raw []byte) (*PassiveSkillTable, error) {
	var f passiveSkillListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse passive skills: %w", err)
	}
	t := &PassiveSkillTable{skills: make(map[string]*PassiveSkill, len(f.Skills))}
	for i := range f.Skills {
		e := &f.Skills[i]
		t.skills[e.ID] = &PassiveSkill{
			ID:   e.ID,
			Rank: e.Rank,
			Buffs: PassiveBuffs{
				HP:         e.Buffs.HP,
				Attack:     e.Buffs.Attack,
				Defense:    e.Buffs.Defense,
				CraftSpeed: e.Buffs.CraftSpeed,
				MoveSpeed:  e.Buffs.MoveSpeed,
			},
			I18n: e.I18n,
		}
	}
	return t, nil
}
