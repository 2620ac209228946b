// Package unlock evaluates threshold rules over aggregated player event
// statistics and decides which generated classes a player has earned.
package unlock

import (
	"errors"
	"fmt"
	"sort"

	"github.com/bergenthala/ai-class-generator/internal/forge/rarity"
)

// ErrUnknownRule is returned when a rule lookup fails.
var ErrUnknownRule = errors.New("unlock: unknown rule")

// Aggregation selects which statistic a rule thresholds against.
type Aggregation int

const (
	// AggCount thresholds the raw number of matching events.
	AggCount Aggregation = iota
	// AggDistinctCount thresholds the number of distinct subjects seen
	// across matching events.
	AggDistinctCount
)

func (a Aggregation) String() string {
	switch a {
	case AggCount:
		return "count"
	case AggDistinctCount:
		return "distinct_count"
	default:
		return "unknown"
	}
}

// ParseAggregation converts the wire form back to an Aggregation.
func ParseAggregation(s string) (Aggregation, error) {
	switch s {
	case "count":
		return AggCount, nil
	case "distinct_count":
		return AggDistinctCount, nil
	default:
		return 0, fmt.Errorf("unlock: unknown aggregation %q", s)
	}
}

// Rule grants a class when a player's statistics for one event reach a
// threshold. ClassID points at an already generated class; when empty,
// the archetype, tier, parent, and level describe a class to forge on
// unlock instead.
type Rule struct {
	ID        string      `json:"id"`
	EventName string      `json:"event_name"`
	Agg       Aggregation `json:"-"`
	Threshold int         `json:"threshold"`

	ClassID      string      `json:"class_id,omitempty"`
	ArchetypeKey string      `json:"archetype,omitempty"`
	Tier         rarity.Tier `json:"-"`
	ParentID     string      `json:"parent_id,omitempty"`
	Level        int         `json:"level,omitempty"`
}

// EventStats aggregates one event name for one player.
type EventStats struct {
	Count    int      `json:"count"`
	Distinct []string `json:"distinct_values,omitempty"`
}

// DistinctCount returns how many distinct subjects were observed.
func (s EventStats) DistinctCount() int {
	return len(s.Distinct)
}

func (s *EventStats) observe(distinctKey string) {
	s.Count++
	if distinctKey == "" {
		return
	}
	for _, v := range s.Distinct {
		if v == distinctKey {
			return
		}
	}
	s.Distinct = append(s.Distinct, distinctKey)
}

// PlayerStats maps event names to their aggregates for one player.
type PlayerStats map[string]*EventStats

// Observe folds one event into the aggregates.
func (p PlayerStats) Observe(eventName, distinctKey string) {
	stats, ok := p[eventName]
	if !ok {
		stats = &EventStats{}
		p[eventName] = stats
	}
	stats.observe(distinctKey)
}

// distinctMetadataKeys are checked in order when extracting the subject
// of an event for distinct counting.
var distinctMetadataKeys = []string{"book_id", "item_id", "monster_id", "crafted_item_id"}

// DistinctKey extracts the distinct-counting subject from event
// metadata: a well-known identifier key when present, otherwise the
// value of the lexically first key so repeated payloads stay stable.
func DistinctKey(metadata map[string]string) string {
	for _, key := range distinctMetadataKeys {
		if v, ok := metadata[key]; ok && v != "" {
			return v
		}
	}
	if len(metadata) == 0 {
		return ""
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return metadata[keys[0]]
}

// Evaluate reports whether the player's statistics satisfy the rule.
func Evaluate(rule Rule, stats PlayerStats) bool {
	es, ok := stats[rule.EventName]
	if !ok {
		return false
	}
	switch rule.Agg {
	case AggCount:
		return es.Count >= rule.Threshold
	case AggDistinctCount:
		return es.DistinctCount() >= rule.Threshold
	default:
		return false
	}
}

// CheckUnlocks returns the rules the player satisfies now and had not
// unlocked before, in input order.
func CheckUnlocks(rules []Rule, stats PlayerStats, unlocked map[string]bool) []Rule {
	var newly []Rule
	for _, rule := range rules {
		if unlocked[rule.ID] {
			continue
		}
		if Evaluate(rule, stats) {
			newly = append(newly, rule)
		}
	}
	return newly
}

// RuleByID finds a rule in the slice.
func RuleByID(rules []Rule, id string) (Rule, error) {
	for _, r := range rules {
		if r.ID == id {
			return r, nil
		}
	}
	return Rule{}, fmt.Errorf("%w: %s", ErrUnknownRule, id)
}
