package engine

// selectBase picks the base archetype for this iteration. Bases with
// unmet requirement slots (and room under their target) take priority in
// round-robin order so no base starves; once every base's requirements
// hold, bases below target are drawn with weight proportional to their
// deficit.
func (g *Generator) selectBase() string {
	var needy []string
	for _, b := range g.bases {
		if g.states[b].Len() >= g.targets[b] {
			continue
		}
		if !g.states[b].RequirementsMet() {
			needy = append(needy, b)
		}
	}
	if len(needy) > 0 {
		b := needy[g.roundRobin%len(needy)]
		g.roundRobin++
		return b
	}

	var below []string
	var weights []float64
	total := 0.0
	for _, b := range g.bases {
		deficit := g.targets[b] - g.states[b].Len()
		if deficit <= 0 {
			continue
		}
		below = append(below, b)
		weights = append(weights, float64(deficit))
		total += float64(deficit)
	}
	// The run loop only iterates while some base is below target.
	r := g.rng.Float64() * total
	cum := 0.0
	for i, w := range weights {
		cum += w
		if r <= cum {
			return below[i]
		}
	}
	return below[len(below)-1]
}
