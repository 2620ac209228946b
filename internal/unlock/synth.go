package unlock

import (
	"encoding/hex"
	"math/rand"

	"github.com/bergenthala/ai-class-generator/internal/forge/candidate"
	"github.com/bergenthala/ai-class-generator/internal/forge/rarity"
)

// eventTypes are the player actions unlock conditions can threshold.
var eventTypes = []string{
	"read_book", "kill_monster", "craft_item", "explore", "meditate",
	"complete_quest", "defeat_boss", "discover_secret", "master_skill",
}

// EventTypes returns the known unlockable event names.
func EventTypes() []string {
	return append([]string(nil), eventTypes...)
}

// thresholdRanges gives the inclusive threshold bounds per tier. Higher
// tiers demand substantially more play.
var thresholdRanges = map[rarity.Tier][2]int{
	rarity.Common:    {10, 50},
	rarity.Uncommon:  {50, 200},
	rarity.Magic:     {200, 500},
	rarity.Rare:      {500, 1000},
	rarity.Epic:      {1000, 3000},
	rarity.Unique:    {3000, 5000},
	rarity.Legendary: {5000, 8000},
	rarity.Mythic:    {8000, 12000},
	rarity.God:       {12000, 20000},
	rarity.Forbidden: {20000, 50000},
}

// ThresholdRange returns the threshold bounds for a tier.
func ThresholdRange(t rarity.Tier) (low, high int) {
	r, ok := thresholdRanges[t]
	if !ok {
		r = thresholdRanges[rarity.Common]
	}
	return r[0], r[1]
}

// ForClass synthesizes the unlock condition guarding one generated
// class: a random event, a random aggregation, and a threshold drawn
// from the class tier's range.
func ForClass(rng *rand.Rand, class candidate.Class) Rule {
	low, high := ThresholdRange(class.Tier)
	agg := AggCount
	if rng.Intn(2) == 1 {
		agg = AggDistinctCount
	}
	return Rule{
		ID:           newRuleID(rng),
		EventName:    eventTypes[rng.Intn(len(eventTypes))],
		Agg:          agg,
		Threshold:    low + rng.Intn(high-low+1),
		ClassID:      class.ID,
		ArchetypeKey: class.Archetype,
		Tier:         class.Tier,
		ParentID:     class.ParentID,
		Level:        class.Level,
	}
}

// ForClasses synthesizes one rule per class, in order.
func ForClasses(rng *rand.Rand, classes []candidate.Class) []Rule {
	rules := make([]Rule, 0, len(classes))
	for _, class := range classes {
		rules = append(rules, ForClass(rng, class))
	}
	return rules
}

// BuiltinRules are the hand-tuned seed unlocks that exist before any
// forest has been generated. They carry no class identifier; the class
// is forged from the archetype and tier when the rule fires.
func BuiltinRules() []Rule {
	return []Rule{
		{
			ID:           "unlock_read_10000",
			EventName:    "read_book",
			Agg:          AggCount,
			Threshold:    10000,
			ArchetypeKey: "mage",
			Tier:         rarity.Epic,
			Level:        1,
		},
		{
			ID:           "unlock_kill_5000",
			EventName:    "kill_monster",
			Agg:          AggCount,
			Threshold:    5000,
			ArchetypeKey: "warrior",
			Tier:         rarity.Rare,
			Level:        1,
		},
		{
			ID:           "unlock_craft_100_unique",
			EventName:    "craft_item",
			Agg:          AggDistinctCount,
			Threshold:    100,
			ArchetypeKey: "thief",
			Tier:         rarity.Uncommon,
			Level:        1,
		},
	}
}

// rule IDs come from the run's rng so seeded generations reproduce
// their rule sets.
func newRuleID(rng *rand.Rand) string {
	buf := make([]byte, 4)
	rng.Read(buf)
	return "unlock_gen_" + hex.EncodeToString(buf)
}
