// Package engine orchestrates bounded class forest generation: one tree
// per requested base archetype, grown candidate by candidate under a
// hard iteration ceiling. A run is deterministic for a given seed.
package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/bergenthala/ai-class-generator/internal/forge/archetype"
	"github.com/bergenthala/ai-class-generator/internal/forge/candidate"
	"github.com/bergenthala/ai-class-generator/internal/forge/rarity"
	"github.com/bergenthala/ai-class-generator/internal/forge/tree"
)

var (
	// ErrNoTargets is returned when a run is configured without bases.
	ErrNoTargets = errors.New("engine: at least one base target required")
	// ErrInvalidTarget is returned for a zero or negative target size.
	ErrInvalidTarget = errors.New("engine: target size must be positive")
)

// RunState is the terminal (or in-flight) state of a generation run.
type RunState int

const (
	StateRunning RunState = iota
	// StateDone means every base reached its target exactly.
	StateDone
	// StateBudgetExhausted means the iteration ceiling fired first.
	StateBudgetExhausted
)

func (s RunState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateBudgetExhausted:
		return "budget-exhausted"
	default:
		return "unknown"
	}
}

// RejectReason classifies why an admission check refused a candidate.
type RejectReason int

const (
	// RejectDuplicateID means the candidate's identifier already exists
	// somewhere in the run.
	RejectDuplicateID RejectReason = iota
	// RejectDuplicatePlacement means the intended parent already has
	// this exact child attached.
	RejectDuplicatePlacement
)

func (r RejectReason) String() string {
	switch r {
	case RejectDuplicateID:
		return "duplicate-id"
	case RejectDuplicatePlacement:
		return "duplicate-placement"
	default:
		return "unknown"
	}
}

// Admission is the outcome of checking one candidate against the run's
// accepted set. Reason is meaningful only when Accepted is false.
type Admission struct {
	Accepted bool
	Reason   RejectReason
}

// Config describes one generation run.
type Config struct {
	// Targets maps base archetype keys to the number of classes to
	// generate for each. Every key must exist in the catalog and every
	// target must be positive.
	Targets map[string]int
	// Seed drives all randomness; zero seeds from the clock.
	Seed int64
	// Tuning overrides convergence parameters; zero fields fall back to
	// DefaultTuning.
	Tuning Tuning
	// Catalog supplies the base archetypes; nil uses the builtin set.
	Catalog *archetype.Catalog
}

// Forest is the completed (or partial) tree of one base archetype.
type Forest struct {
	Base       string            `json:"base"`
	Nodes      []candidate.Class `json:"nodes"`
	CommonPath []string          `json:"common_path"`
}

// Result reports the outcome of a run.
type Result struct {
	State     RunState
	Forests   map[string]Forest
	Shortfall map[string]int
	// Modes records the placement mode each accepted node was planned
	// under, keyed by node identifier.
	Modes      map[string]Mode
	Iterations int
	Rejections map[RejectReason]int
}

// Classes flattens every forest into one slice, ordered by base key and
// acceptance order within each base.
func (r Result) Classes() []candidate.Class {
	keys := make([]string, 0, len(r.Forests))
	for k := range r.Forests {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []candidate.Class
	for _, k := range keys {
		out = append(out, r.Forests[k].Nodes...)
	}
	return out
}

// Generator drives one run. It is single-use: construct with New, call
// Run once, read the Result. Not safe for concurrent use.
type Generator struct {
	tuning Tuning
	rng    *rand.Rand
	forge  func(archetype.Archetype, rarity.Tier, int) candidate.Class

	bases   []string
	targets map[string]int
	archs   map[string]archetype.Archetype
	states  map[string]*tree.State

	roundRobin int
	iterations int
	ids        map[string]struct{}
	parents    map[string]string
	modes      map[string]Mode
	rejections map[RejectReason]int
}

// New validates the configuration and prepares a run. Unknown archetype
// keys and non-positive targets fail fast here rather than mid-run.
func New(cfg Config) (*Generator, error) {
	if len(cfg.Targets) == 0 {
		return nil, ErrNoTargets
	}
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = archetype.Builtin()
	}

	bases := make([]string, 0, len(cfg.Targets))
	for base := range cfg.Targets {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	archs := make(map[string]archetype.Archetype, len(bases))
	states := make(map[string]*tree.State, len(bases))
	for _, base := range bases {
		if cfg.Targets[base] <= 0 {
			return nil, fmt.Errorf("%w: base %q target %d", ErrInvalidTarget, base, cfg.Targets[base])
		}
		arch, err := catalog.Get(base)
		if err != nil {
			return nil, fmt.Errorf("resolve base %q: %w", base, err)
		}
		archs[base] = arch
		states[base] = tree.NewState(base)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	return &Generator{
		tuning:     cfg.Tuning.withDefaults(),
		rng:        rng,
		forge:      candidate.NewFactory(catalog, rng).Forge,
		bases:      bases,
		targets:    copyTargets(cfg.Targets),
		archs:      archs,
		states:     states,
		ids:        make(map[string]struct{}),
		parents:    make(map[string]string),
		modes:      make(map[string]Mode),
		rejections: make(map[RejectReason]int),
	}, nil
}

func copyTargets(in map[string]int) map[string]int {
	out := make(map[string]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Run drives the generation loop to a terminal state: done when every
// base holds exactly its target count, budget-exhausted when the
// iteration ceiling (total targets times the ceiling multiplier, or
// the absolute MaxIterations cap when set) fires first. Rejected
// candidates consume an iteration and are discarded.
func (g *Generator) Run() Result {
	total := 0
	for _, t := range g.targets {
		total += t
	}
	ceiling := total * g.tuning.CeilingMultiplier
	if g.tuning.MaxIterations > 0 {
		ceiling = g.tuning.MaxIterations
	}

	state := StateRunning
	for {
		if g.remaining() == 0 {
			state = StateDone
			break
		}
		if g.iterations >= ceiling {
			state = StateBudgetExhausted
			break
		}
		g.iterations++

		base := g.selectBase()
		plan := g.plan(base)
		node := g.forge(g.archs[base], plan.Tier, plan.Level)
		node.ParentID = plan.ParentID

		adm := g.admit(node)
		if !adm.Accepted {
			g.rejections[adm.Reason]++
			continue
		}
		g.ids[node.ID] = struct{}{}
		g.parents[node.ID] = node.ParentID
		g.modes[node.ID] = plan.Mode
		g.states[base].Attach(node, plan.Mode == ModeCommonPath, g.tuning.PathTargetLength)
	}

	return g.result(state)
}

// remaining returns how many accepted nodes the run still owes across
// all bases.
func (g *Generator) remaining() int {
	n := 0
	for _, base := range g.bases {
		if d := g.targets[base] - g.states[base].Len(); d > 0 {
			n += d
		}
	}
	return n
}

// admit checks a forged candidate against the run's accepted set. The
// placement check runs first so a repeat of an existing parent-child
// edge is reported as such rather than as a bare identifier clash.
func (g *Generator) admit(node candidate.Class) Admission {
	if parent, ok := g.parents[node.ID]; ok && parent == node.ParentID {
		return Admission{Reason: RejectDuplicatePlacement}
	}
	if _, ok := g.ids[node.ID]; ok {
		return Admission{Reason: RejectDuplicateID}
	}
	return Admission{Accepted: true}
}

func (g *Generator) result(state RunState) Result {
	res := Result{
		State:      state,
		Forests:    make(map[string]Forest, len(g.bases)),
		Shortfall:  make(map[string]int),
		Modes:      make(map[string]Mode, len(g.modes)),
		Iterations: g.iterations,
		Rejections: make(map[RejectReason]int, len(g.rejections)),
	}
	for _, base := range g.bases {
		st := g.states[base]
		res.Forests[base] = Forest{
			Base:       base,
			Nodes:      st.Nodes(),
			CommonPath: st.PathIDs(),
		}
		if short := g.targets[base] - st.Len(); short > 0 {
			res.Shortfall[base] = short
		}
	}
	for id, m := range g.modes {
		res.Modes[id] = m
	}
	for r, n := range g.rejections {
		res.Rejections[r] = n
	}
	return res
}
