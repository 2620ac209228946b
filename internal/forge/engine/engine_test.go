package engine

import (
	"errors"
	"testing"

	"github.com/bergenthala/ai-class-generator/internal/forge/archetype"
	"github.com/bergenthala/ai-class-generator/internal/forge/candidate"
	"github.com/bergenthala/ai-class-generator/internal/forge/rarity"
)

func mustNew(t *testing.T, cfg Config) *Generator {
	t.Helper()
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNewValidation(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrNoTargets) {
		t.Fatalf("empty targets: got %v, want ErrNoTargets", err)
	}
	if _, err := New(Config{Targets: map[string]int{"warrior": 0}}); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("zero target: got %v, want ErrInvalidTarget", err)
	}
	if _, err := New(Config{Targets: map[string]int{"necromancer": 3}}); !errors.Is(err, archetype.ErrUnknownArchetype) {
		t.Fatalf("unknown base: got %v, want ErrUnknownArchetype", err)
	}
}

func TestRunSingleBaseReachesTargetExactly(t *testing.T) {
	g := mustNew(t, Config{Targets: map[string]int{"warrior": 5}, Seed: 42})
	res := g.Run()

	if res.State != StateDone {
		t.Fatalf("state = %s, want done", res.State)
	}
	forest := res.Forests["warrior"]
	if len(forest.Nodes) != 5 {
		t.Fatalf("got %d nodes, want exactly 5", len(forest.Nodes))
	}
	if len(res.Shortfall) != 0 {
		t.Fatalf("done run reported shortfall %v", res.Shortfall)
	}
	if res.Iterations < 5 {
		t.Fatalf("iterations = %d, want >= 5", res.Iterations)
	}
}

func TestRunRequirementsBeforeNormalGrowth(t *testing.T) {
	g := mustNew(t, Config{Targets: map[string]int{"mage": 12}, Seed: 7})
	res := g.Run()

	if res.State != StateDone {
		t.Fatalf("state = %s, want done", res.State)
	}
	nodes := res.Forests["mage"].Nodes
	if len(nodes) != 12 {
		t.Fatalf("got %d nodes, want 12", len(nodes))
	}

	// The first four accepted nodes fill the requirement slots: direct
	// children at level 1, one Common, one Uncommon, two above Uncommon.
	for i := 0; i < 4; i++ {
		if res.Modes[nodes[i].ID] != ModeForcedMinimum {
			t.Fatalf("node %d planned as %s, want forced-minimum", i, res.Modes[nodes[i].ID])
		}
		if nodes[i].ParentID != "mage" || nodes[i].Level != 1 {
			t.Fatalf("node %d is not a direct child: %+v", i, nodes[i])
		}
	}
	if nodes[0].Tier != rarity.Common {
		t.Fatalf("first slot tier = %s, want Common", nodes[0].Tier)
	}
	if nodes[1].Tier != rarity.Uncommon {
		t.Fatalf("second slot tier = %s, want Uncommon", nodes[1].Tier)
	}
	if nodes[2].Tier <= rarity.Uncommon || nodes[3].Tier <= rarity.Uncommon {
		t.Fatalf("higher slots got %s and %s, want above Uncommon", nodes[2].Tier, nodes[3].Tier)
	}
	for i := 4; i < len(nodes); i++ {
		if res.Modes[nodes[i].ID] == ModeForcedMinimum {
			t.Fatalf("node %d forced after requirements were met", i)
		}
	}
}

func TestRunStructuralInvariants(t *testing.T) {
	g := mustNew(t, Config{Targets: map[string]int{"warrior": 40}, Seed: 11})
	res := g.Run()

	if res.State != StateDone {
		t.Fatalf("state = %s, want done", res.State)
	}
	forest := res.Forests["warrior"]
	byID := make(map[string]candidate.Class, len(forest.Nodes))
	for _, n := range forest.Nodes {
		if _, dup := byID[n.ID]; dup {
			t.Fatalf("duplicate node id %s", n.ID)
		}
		byID[n.ID] = n
	}

	for _, n := range forest.Nodes {
		if n.Level < 1 || n.Level > DefaultTuning().MaxDepth {
			t.Fatalf("node %s at level %d outside 1..%d", n.ID, n.Level, DefaultTuning().MaxDepth)
		}
		if n.ParentID == "warrior" {
			if n.Level != 1 {
				t.Fatalf("direct child %s at level %d", n.ID, n.Level)
			}
			continue
		}
		parent, ok := byID[n.ParentID]
		if !ok {
			t.Fatalf("node %s references unknown parent %s", n.ID, n.ParentID)
		}
		if n.Level <= parent.Level || n.Level > parent.Level+2 {
			t.Fatalf("node %s level %d under parent level %d", n.ID, n.Level, parent.Level)
		}
		if rarity.Compare(n.Tier, parent.Tier) < 0 {
			t.Fatalf("node %s tier %s below parent tier %s", n.ID, n.Tier, parent.Tier)
		}
		if parent.Tier >= rarity.Unique && rarity.Compare(n.Tier, parent.Tier) <= 0 {
			t.Fatalf("child of %s parent must escalate strictly, got %s", parent.Tier, n.Tier)
		}
		if parent.Tier == rarity.Forbidden {
			t.Fatalf("Forbidden node %s acquired a child", parent.ID)
		}
	}
}

func TestRunCommonPathIsAChain(t *testing.T) {
	g := mustNew(t, Config{Targets: map[string]int{"priest": 40}, Seed: 3})
	res := g.Run()

	forest := res.Forests["priest"]
	if len(forest.CommonPath) == 0 {
		t.Fatal("a 40-node run should start the common path")
	}
	if len(forest.CommonPath) > DefaultTuning().PathTargetLength {
		t.Fatalf("path length %d exceeds target %d", len(forest.CommonPath), DefaultTuning().PathTargetLength)
	}
	byID := make(map[string]candidate.Class)
	for _, n := range forest.Nodes {
		byID[n.ID] = n
	}
	prevParent := "priest"
	for i, id := range forest.CommonPath {
		n, ok := byID[id]
		if !ok {
			t.Fatalf("path id %s not in forest", id)
		}
		if n.Tier != rarity.Common {
			t.Fatalf("path node %s has tier %s", id, n.Tier)
		}
		if n.Level != i+1 {
			t.Fatalf("path node %s at level %d, want %d", id, n.Level, i+1)
		}
		if n.ParentID != prevParent {
			t.Fatalf("path node %s hangs off %s, want %s", id, n.ParentID, prevParent)
		}
		prevParent = id
	}
}

func TestRunMultipleBases(t *testing.T) {
	targets := map[string]int{"warrior": 4, "mage": 4, "thief": 4}
	g := mustNew(t, Config{Targets: targets, Seed: 21})
	res := g.Run()

	if res.State != StateDone {
		t.Fatalf("state = %s, want done", res.State)
	}
	for base, want := range targets {
		forest := res.Forests[base]
		if len(forest.Nodes) != want {
			t.Fatalf("%s: got %d nodes, want %d", base, len(forest.Nodes), want)
		}
		for _, n := range forest.Nodes {
			if n.Archetype != base {
				t.Fatalf("%s forest holds %s node %s", base, n.Archetype, n.ID)
			}
			if n.ParentID != base && !res.Forests[base].contains(n.ParentID) {
				t.Fatalf("%s node %s references parent %s outside its forest", base, n.ID, n.ParentID)
			}
		}
	}
	if got := len(res.Classes()); got != 12 {
		t.Fatalf("Classes() returned %d, want 12", got)
	}
}

func (f Forest) contains(id string) bool {
	for _, n := range f.Nodes {
		if n.ID == id {
			return true
		}
	}
	return false
}

func TestRunDeterministicForSeed(t *testing.T) {
	cfg := Config{Targets: map[string]int{"wanderer": 15}, Seed: 99}
	a := mustNew(t, cfg).Run()
	b := mustNew(t, cfg).Run()

	if a.State != b.State || a.Iterations != b.Iterations {
		t.Fatalf("runs diverged: %s/%d vs %s/%d", a.State, a.Iterations, b.State, b.Iterations)
	}
	an, bn := a.Forests["wanderer"].Nodes, b.Forests["wanderer"].Nodes
	if len(an) != len(bn) {
		t.Fatalf("node counts diverged: %d vs %d", len(an), len(bn))
	}
	for i := range an {
		if an[i].ID != bn[i].ID || an[i].Name != bn[i].Name || an[i].Tier != bn[i].Tier {
			t.Fatalf("node %d diverged: %+v vs %+v", i, an[i], bn[i])
		}
	}
}

func TestRunBudgetExhausted(t *testing.T) {
	g := mustNew(t, Config{Targets: map[string]int{"warrior": 10}, Seed: 5})
	// Every forged candidate carries the same identifier, so only the
	// first is admitted and the ceiling must fire.
	g.forge = func(arch archetype.Archetype, tier rarity.Tier, level int) candidate.Class {
		return candidate.Class{
			ID:        "class_stuck",
			Name:      "Stuck",
			Archetype: arch.Key,
			Tier:      tier,
			Level:     level,
		}
	}
	res := g.Run()

	ceiling := 10 * DefaultTuning().CeilingMultiplier
	if res.State != StateBudgetExhausted {
		t.Fatalf("state = %s, want budget-exhausted", res.State)
	}
	if res.Iterations != ceiling {
		t.Fatalf("iterations = %d, want %d", res.Iterations, ceiling)
	}
	if res.Shortfall["warrior"] != 9 {
		t.Fatalf("shortfall = %v, want warrior:9", res.Shortfall)
	}
	if len(res.Forests["warrior"].Nodes) != 1 {
		t.Fatalf("got %d nodes, want the single admitted one", len(res.Forests["warrior"].Nodes))
	}
	if res.Rejections[RejectDuplicatePlacement] != ceiling-1 {
		t.Fatalf("rejections = %v, want %d duplicate placements", res.Rejections, ceiling-1)
	}
}

func TestAdmitReasons(t *testing.T) {
	g := mustNew(t, Config{Targets: map[string]int{"warrior": 5}, Seed: 1})
	g.ids["class_a"] = struct{}{}
	g.parents["class_a"] = "warrior"

	adm := g.admit(candidate.Class{ID: "class_a", ParentID: "warrior"})
	if adm.Accepted || adm.Reason != RejectDuplicatePlacement {
		t.Fatalf("repeat edge: got %+v, want duplicate-placement", adm)
	}
	adm = g.admit(candidate.Class{ID: "class_a", ParentID: "other"})
	if adm.Accepted || adm.Reason != RejectDuplicateID {
		t.Fatalf("id clash under new parent: got %+v, want duplicate-id", adm)
	}
	if adm = g.admit(candidate.Class{ID: "class_b", ParentID: "warrior"}); !adm.Accepted {
		t.Fatalf("fresh candidate rejected: %+v", adm)
	}
}

func TestRunAbsoluteIterationCeiling(t *testing.T) {
	g := mustNew(t, Config{
		Targets: map[string]int{"warrior": 10},
		Seed:    5,
		Tuning:  Tuning{MaxIterations: 1},
	})
	res := g.Run()

	if res.State != StateBudgetExhausted {
		t.Fatalf("state = %s, want budget-exhausted", res.State)
	}
	if res.Iterations != 1 {
		t.Fatalf("iterations = %d, want exactly 1", res.Iterations)
	}
	if res.Shortfall["warrior"] != 9 {
		t.Fatalf("shortfall = %v, want warrior:9", res.Shortfall)
	}
}

func TestRunDisabledChances(t *testing.T) {
	g := mustNew(t, Config{
		Targets: map[string]int{"warrior": 25},
		Seed:    17,
		Tuning: Tuning{
			LevelSkipChance: -1,
			PathStartChance: -1,
			PathExtendEarly: -1,
			PathExtendMid:   -1,
			PathExtendLate:  -1,
		},
	})
	res := g.Run()

	if res.State != StateDone {
		t.Fatalf("state = %s, want done", res.State)
	}
	forest := res.Forests["warrior"]
	if len(forest.CommonPath) != 0 {
		t.Fatalf("path %v grew with the start chance disabled", forest.CommonPath)
	}
	byID := make(map[string]candidate.Class)
	for _, n := range forest.Nodes {
		byID[n.ID] = n
	}
	for _, n := range forest.Nodes {
		parentLevel := 0
		if n.ParentID != "warrior" {
			parentLevel = byID[n.ParentID].Level
		}
		if n.Level != parentLevel+1 {
			t.Fatalf("node %s skipped to level %d under parent level %d", n.ID, n.Level, parentLevel)
		}
	}
}

func TestRunDegenerateTuning(t *testing.T) {
	g := mustNew(t, Config{
		Targets: map[string]int{"thief": 10},
		Seed:    13,
		Tuning:  Tuning{PathTargetLength: 1, MaxDepth: 2, CeilingMultiplier: 50},
	})
	res := g.Run()

	if res.State != StateDone {
		t.Fatalf("state = %s, want done", res.State)
	}
	forest := res.Forests["thief"]
	if len(forest.CommonPath) > 1 {
		t.Fatalf("path %v exceeds target length 1", forest.CommonPath)
	}
	for _, n := range forest.Nodes {
		if n.Level > 2 {
			t.Fatalf("node %s at level %d with max depth 2", n.ID, n.Level)
		}
	}
}
