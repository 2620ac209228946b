package engine

import (
	"github.com/bergenthala/ai-class-generator/internal/forge/candidate"
	"github.com/bergenthala/ai-class-generator/internal/forge/rarity"
	"github.com/bergenthala/ai-class-generator/internal/forge/tree"
)

// Mode classifies how a candidate's placement was decided.
type Mode int

const (
	// ModeForcedMinimum fills an unmet requirement slot with a direct
	// child of the base root.
	ModeForcedMinimum Mode = iota
	// ModeCommonPath starts or extends the Common chain.
	ModeCommonPath
	// ModeNormal grows the tree from a weighted parent draw.
	ModeNormal
)

func (m Mode) String() string {
	switch m {
	case ModeForcedMinimum:
		return "forced-minimum"
	case ModeCommonPath:
		return "common-path"
	case ModeNormal:
		return "normal"
	default:
		return "unknown"
	}
}

// Plan is a fully-decided placement for the next candidate: where it
// hangs, at which level, and at which tier.
type Plan struct {
	Base     string
	Mode     Mode
	Tier     rarity.Tier
	ParentID string
	Level    int
	Slot     tree.SlotKind // meaningful only for ModeForcedMinimum
}

// plan decides the next placement for the selected base. Unmet
// requirement slots take absolute priority; then an incomplete common
// path may claim the iteration; otherwise the tree grows normally.
func (g *Generator) plan(base string) Plan {
	st := g.states[base]

	if slot, ok := st.NextUnmetSlot(); ok {
		return Plan{
			Base:     base,
			Mode:     ModeForcedMinimum,
			Tier:     slot.DrawTier(g.rng),
			ParentID: st.Base(),
			Level:    1,
			Slot:     slot,
		}
	}

	if st.PathLen() < g.tuning.PathTargetLength && g.rng.Float64() < g.pathChance(st.PathLen()) {
		parentID := st.Base()
		level := 1
		if tail, ok := st.PathTail(); ok {
			parentID = tail.ID
			level = st.PathLen() + 1
		}
		return Plan{
			Base:     base,
			Mode:     ModeCommonPath,
			Tier:     rarity.Common,
			ParentID: parentID,
			Level:    level,
		}
	}

	return g.normalPlan(base, st)
}

// pathChance returns the probability of claiming this iteration for the
// common path, easing off as the chain approaches its target length.
func (g *Generator) pathChance(length int) float64 {
	t := g.tuning
	if length == 0 {
		return t.PathStartChance
	}
	ratio := float64(length) / float64(t.PathTargetLength)
	switch {
	case ratio < 0.5:
		return t.PathExtendEarly
	case ratio < 0.8:
		return t.PathExtendMid
	default:
		return t.PathExtendLate
	}
}

// normalPlan draws a parent from the accepted nodes, favoring shallow
// parents and, while the common path is incomplete, its members. The
// child lands one level below its parent (occasionally two) and draws a
// tier no lower than the parent's.
func (g *Generator) normalPlan(base string, st *tree.State) Plan {
	parents := make([]candidate.Class, 0, st.Len())
	weights := make([]float64, 0, st.Len())
	total := 0.0
	pathIncomplete := st.PathLen() < g.tuning.PathTargetLength
	for _, n := range st.Nodes() {
		if n.Level >= g.tuning.MaxDepth || n.Tier == rarity.Forbidden {
			continue
		}
		w := 1.0 / float64(n.Level+1)
		if pathIncomplete && st.OnPath(n.ID) {
			if st.IsPathTail(n.ID) {
				w *= g.tuning.PathTailBoost
			} else {
				w *= g.tuning.PathBoost
			}
		}
		parents = append(parents, n)
		weights = append(weights, w)
		total += w
	}
	if len(parents) == 0 {
		// Requirement slots guarantee level-1 nodes exist, so this only
		// fires for degenerate tunings with MaxDepth 1.
		return Plan{
			Base:     base,
			Mode:     ModeNormal,
			Tier:     rarity.Draw(g.rng),
			ParentID: st.Base(),
			Level:    1,
		}
	}

	parent := parents[len(parents)-1]
	r := g.rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if r <= cum {
			parent = parents[i]
			break
		}
	}

	level := parent.Level + 1
	if parent.Level < g.tuning.MaxDepth-1 && g.rng.Float64() < g.tuning.LevelSkipChance {
		level = parent.Level + 2
	}
	if level > g.tuning.MaxDepth {
		level = g.tuning.MaxDepth
	}

	return Plan{
		Base:     base,
		Mode:     ModeNormal,
		Tier:     rarity.DrawAtLeast(g.rng, parent.Tier),
		ParentID: parent.ID,
		Level:    level,
	}
}
