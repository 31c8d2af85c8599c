package data

import (
	"fmt"
	"path/filepath"
	"sort"

	"golang.org/x/text/language"
)

// DefaultLanguage is used when no configured language matches a table.
const DefaultLanguage = "en"

// Tables bundles every lookup table the editor reads.
type Tables struct {
	Pals     *PalTable
	Actives  *ActiveSkillTable
	Passives *PassiveSkillTable
	Techs    *TechnologyTable
	Exp      *ExpTable

	lang string
}

// LoadTables loads every table from dir and selects the display language.
func LoadTables(dir, lang string) (*Tables, error) {
	pals, err := LoadPalTable(filepath.Join(dir, "pals.yaml"))
	if err != nil {
		return nil, err
	}
	actives, err := LoadActiveSkillTable(filepath.Join(dir, "active_skills.yaml"))
	if err != nil {
		return nil, err
	}
	passives, err := LoadPassiveSkillTable(filepath.Join(dir, "passive_skills.yaml"))
	if err != nil {
		return nil, err
	}
	techs, err := LoadTechnologyTable(filepath.Join(dir, "technologies.yaml"))
	if err != nil {
		return nil, err
	}
	exp, err := LoadExpTable(filepath.Join(dir, "exp.yaml"))
	if err != nil {
		return nil, err
	}
	t := &Tables{Pals: pals, Actives: actives, Passives: passives, Techs: techs, Exp: exp}
	if err := t.SetLanguage(lang); err != nil {
		return nil, err
	}
	return t, nil
}

// SetLanguage picks the closest language the pal table carries names for.
func (t *Tables) SetLanguage(lang string) error {
	if lang == "" {
		lang = DefaultLanguage
	}
	want, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}

	keys := []string{DefaultLanguage}
	if t.Pals != nil {
		seen := map[string]bool{DefaultLanguage: true}
		var extra []string
		for _, p := range t.Pals.pals {
			for k := range p.I18n {
				if !seen[k] {
					seen[k] = true
					extra = append(extra, k)
				}
			}
		}
		sort.Strings(extra)
		keys = append(keys, extra...)
	}
	supported := make([]language.Tag, len(keys))
	for i, k := range keys {
		supported[i] = language.Make(k)
	}
	_, idx, _ := language.NewMatcher(supported).Match(want)
	t.lang = keys[idx]
	return nil
}

// Language returns the selected i18n key.
func (t *Tables) Language() string {
	if t.lang == "" {
		return DefaultLanguage
	}
	return t.lang
}

func (t *Tables) localize(names map[string]string) (string, bool) {
	if s, ok := names[t.Language()]; ok && s != "" {
		return s, true
	}
	if s, ok := names[DefaultLanguage]; ok && s != "" {
		return s, true
	}
	return "", false
}

// Pal returns the species template for key.
func (t *Tables) Pal(key string) (*PalInfo, bool) {
	if t.Pals == nil {
		return nil, false
	}
	p := t.Pals.Get(key)
	return p, p != nil
}

// ActiveSkill returns a move by EPalWazaID value.
func (t *Tables) ActiveSkill(id string) (*ActiveSkill, bool) {
	if t.Actives == nil {
		return nil, false
	}
	s := t.Actives.Get(id)
	return s, s != nil
}

// PassiveSkill returns a passive by ID.
func (t *Tables) PassiveSkill(id string) (*PassiveSkill, bool) {
	if t.Passives == nil {
		return nil, false
	}
	s := t.Passives.Get(id)
	return s, s != nil
}

// HasTechnology reports whether id is a known technology.
func (t *Tables) HasTechnology(id string) bool {
	return t.Techs != nil && t.Techs.Get(id) != nil
}

func (t *Tables) PalLevelExp(level int) uint64 {
	if t.Exp == nil {
		return 0
	}
	return t.Exp.Pal(level)
}

func (t *Tables) PlayerLevelExp(level int) uint64 {
	if t.Exp == nil {
		return 0
	}
	return t.Exp.Player(level)
}

// PalName returns the localized species name.
func (t *Tables) PalName(key string) (string, bool) {
	p, ok := t.Pal(key)
	if !ok {
		return "", false
	}
	return t.localize(p.I18n)
}

// ActiveSkillName returns the localized move name.
func (t *Tables) ActiveSkillName(id string) (string, bool) {
	s, ok := t.ActiveSkill(id)
	if !ok {
		return "", false
	}
	return t.localize(s.I18n)
}

// PassiveSkillName returns the localized passive name.
func (t *Tables) PassiveSkillName(id string) (string, bool) {
	s, ok := t.PassiveSkill(id)
	if !ok {
		return "", false
	}
	return t.localize(s.I18n)
}
