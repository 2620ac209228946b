// Package archetype defines the base archetype catalog: the stat
// templates, growth rates, and skill theme pools that seed every
// generated class tree.
package archetype

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownArchetype indicates a base archetype key outside the catalog.
var ErrUnknownArchetype = errors.New("unknown base archetype")

// Stats holds the five core attributes of a class.
type Stats struct {
	HP  int `yaml:"hp" json:"hp"`
	MP  int `yaml:"mp" json:"mp"`
	STR int `yaml:"str" json:"str"`
	INT int `yaml:"int" json:"int"`
	DEX int `yaml:"dex" json:"dex"`
}

// Scale returns the stats multiplied by a rarity multiplier, truncated
// to integers the same way the stat templates are balanced.
func (s Stats) Scale(multiplier float64) Stats {
	return Stats{
		HP:  int(float64(s.HP) * multiplier),
		MP:  int(float64(s.MP) * multiplier),
		STR: int(float64(s.STR) * multiplier),
		INT: int(float64(s.INT) * multiplier),
		DEX: int(float64(s.DEX) * multiplier),
	}
}

// Add returns the stats with n increments of growth applied.
func (s Stats) Add(growth Stats, n int) Stats {
	if n <= 0 {
		return s
	}
	return Stats{
		HP:  s.HP + growth.HP*n,
		MP:  s.MP + growth.MP*n,
		STR: s.STR + growth.STR*n,
		INT: s.INT + growth.INT*n,
		DEX: s.DEX + growth.DEX*n,
	}
}

// Total returns the sum of all attributes, used for balance checks.
func (s Stats) Total() int {
	return s.HP + s.MP + s.STR + s.INT + s.DEX
}

// SkillTemplate is one skill entry in a theme pool.
type SkillTemplate struct {
	Name   string `yaml:"name" json:"name"`
	Kind   string `yaml:"kind" json:"kind"` // "active" or "passive"
	Effect string `yaml:"effect" json:"effect"`
}

// Archetype is a root category under which a tree of derived classes grows.
type Archetype struct {
	Key         string   `yaml:"key" json:"key"`
	Name        string   `yaml:"name" json:"name"`
	Description string   `yaml:"description" json:"description"`
	BaseStats   Stats    `yaml:"base_stats" json:"base_stats"`
	Growth      Stats    `yaml:"growth" json:"growth"`
	Themes      []string `yaml:"themes" json:"themes"`
}

// Catalog holds the archetypes available to a generation run plus the
// shared skill theme pools they draw from.
type Catalog struct {
	archetypes map[string]Archetype
	themes     map[string][]SkillTemplate
	order      []string
}

// NewCatalog builds a catalog from explicit archetypes and theme pools.
func NewCatalog(archetypes []Archetype, themes map[string][]SkillTemplate) (*Catalog, error) {
	if len(archetypes) == 0 {
		return nil, errors.New("at least one archetype is required")
	}
	c := &Catalog{
		archetypes: make(map[string]Archetype, len(archetypes)),
		themes:     make(map[string][]SkillTemplate, len(themes)),
	}
	for theme, pool := range themes {
		c.themes[theme] = append([]SkillTemplate(nil), pool...)
	}
	for _, a := range archetypes {
		if a.Key == "" {
			return nil, errors.New("archetype key is required")
		}
		if _, exists := c.archetypes[a.Key]; exists {
			return nil, fmt.Errorf("duplicate archetype key %q", a.Key)
		}
		for _, theme := range a.Themes {
			if len(c.themes[theme]) == 0 {
				return nil, fmt.Errorf("archetype %q references empty skill theme %q", a.Key, theme)
			}
		}
		c.archetypes[a.Key] = a
		c.order = append(c.order, a.Key)
	}
	return c, nil
}

// Get resolves an archetype by key.
func (c *Catalog) Get(key string) (Archetype, error) {
	a, ok := c.archetypes[key]
	if !ok {
		return Archetype{}, fmt.Errorf("%w: %q", ErrUnknownArchetype, key)
	}
	return a, nil
}

// Has reports whether the catalog contains the given key.
func (c *Catalog) Has(key string) bool {
	_, ok := c.archetypes[key]
	return ok
}

// Keys returns all archetype keys in catalog order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.order...)
}

// SkillPool returns the combined skill templates for the given themes.
func (c *Catalog) SkillPool(themes []string) []SkillTemplate {
	var pool []SkillTemplate
	for _, theme := range themes {
		pool = append(pool, c.themes[theme]...)
	}
	return pool
}

// Themes returns the theme names defined in the catalog, sorted.
func (c *Catalog) Themes() []string {
	out := make([]string, 0, len(c.themes))
	for theme := range c.themes {
		out = append(out, theme)
	}
	sort.Strings(out)
	return out
}
