package candidate

import (
	"encoding/hex"
	"fmt"
	"math/rand"

	"github.com/bergenthala/ai-class-generator/internal/forge/archetype"
	"github.com/bergenthala/ai-class-generator/internal/forge/rarity"
)

// Chance that the first generated skill is upgraded one tier above the
// class tier.
const skillUpgradeChance = 0.3

// Factory synthesizes class records from an archetype catalog.
type Factory struct {
	catalog *archetype.Catalog
	rng     *rand.Rand
}

// NewFactory creates a factory drawing randomness from rng.
func NewFactory(catalog *archetype.Catalog, rng *rand.Rand) *Factory {
	return &Factory{catalog: catalog, rng: rng}
}

// Forge builds a class for the given archetype at the given tier and
// level. Stats are the archetype template scaled by the tier multiplier
// plus one growth increment per level beyond the first. Identifiers are
// drawn from the factory's random source so a seeded run reproduces the
// same forest.
func (f *Factory) Forge(arch archetype.Archetype, tier rarity.Tier, level int) Class {
	if level < 1 {
		level = 1
	}

	stats := arch.BaseStats.Scale(rarity.Multiplier(tier)).Add(arch.Growth, level-1)
	growth := arch.Growth.Scale(rarity.Multiplier(tier))

	description := arch.Description
	if tier >= rarity.Legendary {
		description = fmt.Sprintf("[%s] %s", tier, description)
	}

	return Class{
		ID:          f.newID("class"),
		Name:        f.name(arch, level),
		Archetype:   arch.Key,
		Tier:        tier,
		Level:       level,
		Stats:       stats,
		Growth:      growth,
		Skills:      f.skills(arch, tier),
		Description: description,
	}
}

// name produces a display name like "Crimson Blademaster (Warrior Lv.3)".
func (f *Factory) name(arch archetype.Archetype, level int) string {
	adj := adjectives[f.rng.Intn(len(adjectives))]
	pool := epithets[arch.Key]
	if len(pool) == 0 {
		pool = genericEpithets
	}
	epithet := pool[f.rng.Intn(len(pool))]
	return fmt.Sprintf("%s %s (%s Lv.%d)", adj, epithet, arch.Name, level)
}

// skills draws from the archetype's theme pool without replacement.
// Count grows with tier; the first skill has a chance to land one tier
// above the class itself.
func (f *Factory) skills(arch archetype.Archetype, tier rarity.Tier) []Skill {
	pool := f.catalog.SkillPool(arch.Themes)
	count := skillCount(tier)
	if count > len(pool) {
		count = len(pool)
	}

	out := make([]Skill, 0, count)
	for _, idx := range f.rng.Perm(len(pool))[:count] {
		tmpl := pool[idx]
		out = append(out, Skill{
			ID:     f.newID("skill"),
			Name:   tmpl.Name,
			Kind:   tmpl.Kind,
			Tier:   tier,
			Effect: tmpl.Effect,
		})
	}

	if len(out) > 1 && f.rng.Float64() < skillUpgradeChance {
		if next, ok := rarity.NextStrict(tier); ok {
			out[0].Tier = next
		}
	}
	return out
}

// skillCount maps a class tier to how many skills it grants.
func skillCount(tier rarity.Tier) int {
	switch {
	case tier >= rarity.God:
		return 5
	case tier >= rarity.Unique:
		return 4
	case tier >= rarity.Magic:
		return 3
	default:
		return 2
	}
}

func (f *Factory) newID(prefix string) string {
	var raw [12]byte
	f.rng.Read(raw[:])
	return prefix + "_" + hex.EncodeToString(raw[:])
}
