package engine

// Tuning collects the convergence-rate parameters of a generation run.
// The defaults reproduce the balance the game shipped with; property
// tests exercise degenerate values as well, so every field is honored
// rather than assumed.
type Tuning struct {
	// CeilingMultiplier bounds the run: iteration ceiling is the total
	// target class count times this multiplier.
	CeilingMultiplier int
	// MaxIterations, when positive, caps iterations absolutely and
	// overrides the multiplier-derived ceiling.
	MaxIterations int
	// PathTargetLength is the desired common path chain length.
	PathTargetLength int
	// MaxDepth caps tree levels; nodes at MaxDepth accept no children.
	MaxDepth int
	// LevelSkipChance is the probability a normal-mode child lands two
	// levels below its parent instead of one.
	LevelSkipChance float64
	// PathBoost multiplies parent-selection weight for common path
	// nodes while the path is incomplete; PathTailBoost applies to the
	// chain tail instead.
	PathBoost     float64
	PathTailBoost float64
	// PathStartChance gates starting the common path; the extend
	// chances gate growing it at <50%, <80%, and >=80% completion.
	PathStartChance float64
	PathExtendEarly float64
	PathExtendMid   float64
	PathExtendLate  float64
}

// DefaultTuning returns the shipped convergence parameters.
func DefaultTuning() Tuning {
	return Tuning{
		CeilingMultiplier: 10,
		PathTargetLength:  10,
		MaxDepth:          10,
		LevelSkipChance:   0.2,
		PathBoost:         2.0,
		PathTailBoost:     3.0,
		PathStartChance:   0.70,
		PathExtendEarly:   0.75,
		PathExtendMid:     0.65,
		PathExtendLate:    0.60,
	}
}

// withDefaults fills unset fields from DefaultTuning so a caller may
// override a single knob without restating the rest. Zero means unset
// for every field; a negative chance or boost disables that behavior
// outright (resolved to 0), since probability zero is a meaningful
// degenerate tuning a plain zero value cannot express.
func (t Tuning) withDefaults() Tuning {
	def := DefaultTuning()
	if t.CeilingMultiplier <= 0 {
		t.CeilingMultiplier = def.CeilingMultiplier
	}
	if t.MaxIterations < 0 {
		t.MaxIterations = 0
	}
	if t.PathTargetLength <= 0 {
		t.PathTargetLength = def.PathTargetLength
	}
	if t.MaxDepth <= 0 {
		t.MaxDepth = def.MaxDepth
	}
	t.LevelSkipChance = resolve(t.LevelSkipChance, def.LevelSkipChance)
	t.PathBoost = resolve(t.PathBoost, def.PathBoost)
	t.PathTailBoost = resolve(t.PathTailBoost, def.PathTailBoost)
	t.PathStartChance = resolve(t.PathStartChance, def.PathStartChance)
	t.PathExtendEarly = resolve(t.PathExtendEarly, def.PathExtendEarly)
	t.PathExtendMid = resolve(t.PathExtendMid, def.PathExtendMid)
	t.PathExtendLate = resolve(t.PathExtendLate, def.PathExtendLate)
	return t
}

// resolve maps an unset (zero) field to its default and a negative one
// to an explicit zero.
func resolve(v, def float64) float64 {
	switch {
	case v == 0:
		return def
	case v < 0:
		return 0
	default:
		return v
	}
}
