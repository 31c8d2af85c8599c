package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExpTable maps a level to the cumulative exp required to reach it.
type ExpTable struct {
	pal    map[int]uint64
	player map[int]uint64
	max    int
}

// Pal returns the cumulative pal exp for level; levels past the table clamp
// to the last entry.
func (t *ExpTable) Pal(level int) uint64 {
	return lookupExp(t.pal, min(level, t.max))
}

// Player returns the cumulative player exp for level.
func (t *ExpTable) Player(level int) uint64 {
	return lookupExp(t.player, min(level, t.max))
}

// MaxLevel returns the highest level in the table.
func (t *ExpTable) MaxLevel() int {
	return t.max
}

func lookupExp(m map[int]uint64, level int) uint64 {
	for l := level; l > 0; l-- {
		if v, ok := m[l]; ok {
			return v
		}
	}
	return 0
}

type expEntry struct {
	Level  int    `yaml:"level"`
	Pal    uint64 `yaml:"pal"`
	Player uint64 `yaml:"player"`
}

type expListFile struct {
	Levels []expEntry `yaml:"levels"`
}

// LoadExpTable loads the level exp curve from YAML.
func LoadExpTable(path string) (*ExpTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exp: %w", err)
	}
	return ParseExpTable(raw)
}

func ParseExpTable(raw []byte) (*ExpTable, error) {
	var f expListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse exp: %w", err)
	}
	t := &ExpTable{
		pal:    make(map[int]uint64, len(f.Levels)),
		player: make(map[int]uint64, len(f.Levels)),
	}
	for _, e := range f.Levels {
		t.pal[e.Level] = e.Pal
		t.player[e.Level] = e.Player
		t.max = max(t.max, e.Level)
	}
	return t, nil
}
