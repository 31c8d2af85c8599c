package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Technology is an unlockable recipe technology.
type Technology struct {
	ID    string
	Level int
	I18n  map[string]string
}

// TechnologyTable holds technologies indexed by ID.
type TechnologyTable struct {
	techs map[string]*Technology
}

// Get returns a technology by ID, or nil if not found.
func (t *TechnologyTable) Get(id string) *Technology {
	return t.techs[id]
}

func (t *TechnologyTable) Count() int {
	return len(t.techs)
}

type technologyEntry struct {
	ID    string            `yaml:"id"`
	Level int               `yaml:"level"`
	I18n  map[string]string `yaml:"i18n"`
}

type technologyListFile struct {
	Technologies []technologyEntry `yaml:"technologies"`
}

// LoadTechnologyTable loads technology definitions from YAML.
func LoadTechnologyTable(path string) (*TechnologyTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read technologies: %w", err)
	}
	return ParseTechnologyTable(raw)
}

func ParseTechnologyTable(raw []byte) (*TechnologyTable, error) {
	var f technologyListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse technologies: %w", err)
	}
	t := &TechnologyTable{techs: make(map[string]*Technology, len(f.Technologies))}
	for i := range f.Technologies {
		e := &f.Technologies[i]
		t.techs[e.ID] = &Technology{ID: e.ID, Level: e.Level, I18n: e.I18n}
	}
	return t, nil
}
