// Package rarity defines the ordered tier scale that governs class
// progression: selection weights, stat multipliers, and the escalation
// rules applied along parent/child edges.
package rarity

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
)

// Tier is a rarity tier. Tiers are totally ordered from Common (lowest)
// to Forbidden (highest).
type Tier int

const (
	Common Tier = iota
	Uncommon
	Magic
	Rare
	Epic
	Unique
	Legendary
	Mythic
	God
	Forbidden
)

// tierCount is the number of defined tiers.
const tierCount = int(Forbidden) + 1

var tierNames = [tierCount]string{
	"Common", "Uncommon", "Magic", "Rare", "Epic",
	"Unique", "Legendary", "Mythic", "God", "Forbidden",
}

// Selection weights. Heavily skewed toward the low tiers so that normal
// growth produces mostly Common and Uncommon classes.
var weights = [tierCount]float64{
	54.899, 25.0, 8.0, 4.0, 3.0, 2.5, 2.0, 0.5, 0.1, 0.001,
}

// Stat multipliers applied to an archetype's base stat template.
var multipliers = [tierCount]float64{
	1.0, 1.1, 1.2, 1.35, 1.5, 1.7, 2.0, 2.5, 3.0, 4.0,
}

// ErrUnknownTier indicates a tier name outside the defined enumeration.
var ErrUnknownTier = errors.New("unknown rarity tier")

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return tierNames[t]
}

// Valid reports whether t is within the defined enumeration.
func (t Tier) Valid() bool {
	return t >= Common && t <= Forbidden
}

// Parse resolves a tier by its display name.
func Parse(name string) (Tier, error) {
	for i, n := range tierNames {
		if strings.EqualFold(n, name) {
			return Tier(i), nil
		}
	}
	return Common, fmt.Errorf("%w: %q", ErrUnknownTier, name)
}

// Tiers returns all tiers in ascending order.
func Tiers() []Tier {
	out := make([]Tier, tierCount)
	for i := range out {
		out[i] = Tier(i)
	}
	return out
}

// Weight returns the selection weight for a tier. Weights are positive
// and stateless: repeated lookups always return the same value.
func Weight(t Tier) float64 {
	if !t.Valid() {
		return 0
	}
	return weights[t]
}

// Multiplier returns the stat multiplier for a tier.
func Multiplier(t Tier) float64 {
	if !t.Valid() {
		return 1.0
	}
	return multipliers[t]
}

// Compare orders two tiers: -1 when a < b, 0 when equal, 1 when a > b.
func Compare(a, b Tier) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// NextStrict returns the tier strictly above t. The second return is
// false when t is already the highest tier.
func NextStrict(t Tier) (Tier, bool) {
	if t >= Forbidden {
		return Forbidden, false
	}
	return t + 1, true
}

// Draw selects a tier from the full weighted distribution.
func Draw(rng *rand.Rand) Tier {
	return drawFrom(rng, Common)
}

// DrawAtLeast selects a tier no lower than floor.
//
// Tiers below the floor are removed and the remaining weights are used
// proportionally, matching a rescaled distribution over the surviving
// tiers. When the floor is Unique or above, the draw resolves directly
// to the strict successor tier: a child below a Unique-or-above parent
// must escalate, never repeat. A Forbidden floor returns Forbidden.
func DrawAtLeast(rng *rand.Rand, floor Tier) Tier {
	if !floor.Valid() {
		floor = Common
	}
	if floor >= Unique {
		next, ok := NextStrict(floor)
		if !ok {
			return floor
		}
		return next
	}
	return drawFrom(rng, floor)
}

func drawFrom(rng *rand.Rand, floor Tier) Tier {
	var total float64
	for t := floor; t <= Forbidden; t++ {
		total += weights[t]
	}

	r := rng.Float64() * total
	var cumulative float64
	for t := floor; t <= Forbidden; t++ {
		cumulative += weights[t]
		if r <= cumulative {
			return t
		}
	}
	return Forbidden
}
