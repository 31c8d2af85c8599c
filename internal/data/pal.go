package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Gender enum values.
const (
	GenderMale   = "EPalGenderType::Male"
	GenderFemale = "EPalGenderType::Female"
)

// PalStats holds the species base stats.
type PalStats struct {
	HP         int
	Attack     int
	Defense    int
	Melee      int
	CraftSpeed int
	Food       int // max stomach; 0 = unknown
}

// LevelMove is one level-up move.
type LevelMove struct {
	Level int
	Move  string // EPalWazaID::...
}

// PalInfo holds one species (or human / variant) template.
type PalInfo struct {
	Key         string
	SortingKey  string // paldeck number, e.g. "012B"; empty for humans and variants
	Human       bool
	Invalid     bool
	FixedGender string // set for tower bosses with a canonical gender
	Stats       PalStats
	// Suitabilities maps EPalWorkSuitability values to base rank.
	Suitabilities map[string]int
	Moves         []LevelMove // sorted by level
	I18n          map[string]string
}

// MovesUpTo returns the moves learned at or below level, in learn order.
func (p *PalInfo) MovesUpTo(level int) []string {
	var out []string
	for _, m := range p.Moves {
		if m.Level > level {
			break
		}
		out = append(out, m.Move)
	}
	return out
}

// Learns reports whether move appears anywhere in the species move table.
func (p *PalInfo) Learns(move string) bool {
	for _, m := range p.Moves {
		if m.Move == move {
			return true
		}
	}
	return false
}

// Suitability returns the base rank for value (0 when absent).
func (p *PalInfo) Suitability(value string) int {
	return p.Suitabilities[value]
}

// PalTable holds all species indexed by key.
type PalTable struct {
	pals map[string]*PalInfo
}

// Get returns a species by key, or nil if not found.
func (t *PalTable) Get(key string) *PalInfo {
	return t.pals[key]
}

// Count returns total loaded species.
func (t *PalTable) Count() int {
	return len(t.pals)
}

// All returns all species sorted by key.
func (t *PalTable) All() []*PalInfo {
	result := make([]*PalInfo, 0, len(t.pals))
	for _, p := range t.pals {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result
}

// --- YAML loading ---

type palStatsEntry struct {
	HP         int `yaml:"hp"`
	Attack     int `yaml:"atk"`
	Defense    int `yaml:"def"`
	Melee      int `yaml:"melee"`
	CraftSpeed int `yaml:"craft_speed"`
	Food       int `yaml:"food"`
}

type levelMoveEntry struct {
	Level int    `yaml:"level"`
	Move  string `yaml:"move"`
}

type palEntry struct {
	Key           string            `yaml:"key"`
	SortingKey    string            `yaml:"sorting_key"`
	Human         bool              `yaml:"human"`
	Invalid       bool              `yaml:"invalid"`
	Gender        string            `yaml:"gender"` // "male" / "female" / ""
	Stats         palStatsEntry     `yaml:"stats"`
	Suitabilities map[string]int    `yaml:"suitabilities"`
	Moves         []levelMoveEntry  `yaml:"moves"`
	I18n          map[string]string `yaml:"i18n"`
}

type palListFile struct {
	Pals []palEntry `yaml:"pals"`
}

// LoadPalTable loads species definitions from YAML.
func LoadPalTable(path string) (*PalTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pals: %w", err)
	}
	return ParsePalTable(raw)
}

// ParsePalTable parses species definitions.
func ParsePalTable(raw []byte) (*PalTable, error) {
	var f palListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse pals: %w", err)
	}
	t := &PalTable{pals: make(map[string]*PalInfo, len(f.Pals))}
	for i := range f.Pals {
		e := &f.Pals[i]
		if e.Key == "" {
			return nil, fmt.Errorf("parse pals: entry %d has no key", i)
		}
		info := &PalInfo{
			Key:        e.Key,
			SortingKey: e.SortingKey,
			Human:      e.Human,
			Invalid:    e.Invalid,
			Stats: PalStats{
				HP:         e.Stats.HP,
				Attack:     e.Stats.Attack,
				Defense:    e.Stats.Defense,
				Melee:      e.Stats.Melee,
				CraftSpeed: e.Stats.CraftSpeed,
				Food:       e.Stats.Food,
			},
			Suitabilities: make(map[string]int, len(e.Suitabilities)),
			I18n:          e.I18n,
		}
		switch e.Gender {
		case "male":
			info.FixedGender = GenderMale
		case "female":
			info.FixedGender = GenderFemale
		case "":
		default:
			return nil, fmt.Errorf("parse pals: %s: unknown gender %q", e.Key, e.Gender)
		}
		for name, rank := range e.Suitabilities {
			info.Suitabilities[SuitabilityPrefix+name] = rank
		}
		for _, m := range e.Moves {
			info.Moves = append(info.Moves, LevelMove{Level: m.Level, Move: m.Move})
		}
		sort.SliceStable(info.Moves, func(a, b int) bool { return info.Moves[a].Level < info.Moves[b].Level })
		t.pals[e.Key] = info
	}
	return t, nil
}
