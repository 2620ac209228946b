package candidate

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/bergenthala/ai-class-generator/internal/forge/archetype"
	"github.com/bergenthala/ai-class-generator/internal/forge/rarity"
)

func testFactory(t *testing.T, seed int64) (*Factory, *archetype.Catalog) {
	t.Helper()
	catalog := archetype.Builtin()
	return NewFactory(catalog, rand.New(rand.NewSource(seed))), catalog
}

func mustGet(t *testing.T, catalog *archetype.Catalog, key string) archetype.Archetype {
	t.Helper()
	arch, err := catalog.Get(key)
	if err != nil {
		t.Fatalf("Get(%s): %v", key, err)
	}
	return arch
}

func TestForgePopulatesClass(t *testing.T) {
	factory, catalog := testFactory(t, 1)
	warrior := mustGet(t, catalog, "warrior")

	class := factory.Forge(warrior, rarity.Rare, 3)
	if class.ID == "" || !strings.HasPrefix(class.ID, "class_") {
		t.Fatalf("unexpected id %q", class.ID)
	}
	if class.Archetype != "warrior" {
		t.Fatalf("archetype = %q, want warrior", class.Archetype)
	}
	if class.Tier != rarity.Rare {
		t.Fatalf("tier = %s, want Rare", class.Tier)
	}
	if class.Level != 3 {
		t.Fatalf("level = %d, want 3", class.Level)
	}
	if !strings.Contains(class.Name, "Warrior Lv.3") {
		t.Fatalf("name %q should carry archetype and level", class.Name)
	}
	if class.ParentID != "" {
		t.Fatalf("factory must not link nodes, got parent %q", class.ParentID)
	}
	if class.Stats.STR <= class.Stats.INT {
		t.Fatalf("warrior stats should favor STR: %+v", class.Stats)
	}
}

func TestForgeScalesStatsByTier(t *testing.T) {
	factory, catalog := testFactory(t, 2)
	mage := mustGet(t, catalog, "mage")

	common := factory.Forge(mage, rarity.Common, 1)
	epic := factory.Forge(mage, rarity.Epic, 1)
	if epic.Stats.Total() <= common.Stats.Total() {
		t.Fatalf("epic total %d should exceed common total %d", epic.Stats.Total(), common.Stats.Total())
	}

	lvl1 := factory.Forge(mage, rarity.Common, 1)
	lvl5 := factory.Forge(mage, rarity.Common, 5)
	if lvl5.Stats.Total() <= lvl1.Stats.Total() {
		t.Fatalf("level 5 total %d should exceed level 1 total %d", lvl5.Stats.Total(), lvl1.Stats.Total())
	}
}

func TestForgeSkillCountGrowsWithTier(t *testing.T) {
	factory, catalog := testFactory(t, 3)
	warrior := mustGet(t, catalog, "warrior")

	cases := []struct {
		tier rarity.Tier
		want int
	}{
		{rarity.Common, 2},
		{rarity.Uncommon, 2},
		{rarity.Magic, 3},
		{rarity.Epic, 3},
		{rarity.Unique, 4},
		{rarity.Mythic, 4},
		{rarity.God, 5},
		{rarity.Forbidden, 5},
	}
	for _, tc := range cases {
		class := factory.Forge(warrior, tc.tier, 1)
		if len(class.Skills) != tc.want {
			t.Fatalf("%s: got %d skills, want %d", tc.tier, len(class.Skills), tc.want)
		}
		for _, skill := range class.Skills {
			if skill.Kind != "active" && skill.Kind != "passive" {
				t.Fatalf("skill %q has kind %q", skill.Name, skill.Kind)
			}
			if skill.Tier < tc.tier {
				t.Fatalf("skill %q tier %s below class tier %s", skill.Name, skill.Tier, tc.tier)
			}
		}
	}
}

func TestForgeSkillsAreDistinct(t *testing.T) {
	factory, catalog := testFactory(t, 4)
	wanderer := mustGet(t, catalog, "wanderer")

	for i := 0; i < 50; i++ {
		class := factory.Forge(wanderer, rarity.God, 1)
		seen := make(map[string]bool)
		for _, skill := range class.Skills {
			if seen[skill.Name] {
				t.Fatalf("duplicate skill %q in one class", skill.Name)
			}
			seen[skill.Name] = true
		}
	}
}

func TestForgeDeterministicForSeed(t *testing.T) {
	factoryA, catalog := testFactory(t, 99)
	factoryB := NewFactory(catalog, rand.New(rand.NewSource(99)))
	priest := mustGet(t, catalog, "priest")

	a := factoryA.Forge(priest, rarity.Magic, 2)
	b := factoryB.Forge(priest, rarity.Magic, 2)
	if a.ID != b.ID || a.Name != b.Name {
		t.Fatalf("same seed should reproduce the same class: %q/%q vs %q/%q", a.ID, a.Name, b.ID, b.Name)
	}
}

func TestForgeHighTierDescription(t *testing.T) {
	factory, catalog := testFactory(t, 5)
	thief := mustGet(t, catalog, "thief")

	class := factory.Forge(thief, rarity.Mythic, 1)
	if !strings.HasPrefix(class.Description, "[Mythic]") {
		t.Fatalf("expected tier-prefixed description, got %q", class.Description)
	}

	plain := factory.Forge(thief, rarity.Rare, 1)
	if strings.HasPrefix(plain.Description, "[") {
		t.Fatalf("rare description should not carry a tier prefix: %q", plain.Description)
	}
}
