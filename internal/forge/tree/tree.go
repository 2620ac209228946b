// Package tree tracks the mutable per-base state of a generation run:
// accepted nodes, minimum-requirement slots for direct children, and the
// common path chain extending from the root.
package tree

import (
	"math/rand"

	"github.com/bergenthala/ai-class-generator/internal/forge/candidate"
	"github.com/bergenthala/ai-class-generator/internal/forge/rarity"
)

// SlotKind identifies one minimum-requirement slot for direct children
// of a base root. The two higher-tier requirements are independent slots
// so partial satisfaction (one of two) is representable.
type SlotKind int

const (
	SlotCommon SlotKind = iota
	SlotUncommon
	SlotHigherFirst
	SlotHigherSecond
)

func (k SlotKind) String() string {
	switch k {
	case SlotCommon:
		return "common"
	case SlotUncommon:
		return "uncommon"
	case SlotHigherFirst:
		return "higher-1"
	case SlotHigherSecond:
		return "higher-2"
	default:
		return "unknown"
	}
}

// Admits reports whether a direct child of the given tier can satisfy
// this slot.
func (k SlotKind) Admits(t rarity.Tier) bool {
	switch k {
	case SlotCommon:
		return t == rarity.Common
	case SlotUncommon:
		return t == rarity.Uncommon
	case SlotHigherFirst, SlotHigherSecond:
		return t > rarity.Uncommon
	default:
		return false
	}
}

// DrawTier picks a tier that satisfies this slot. The first higher slot
// draws from the lower higher tiers only; the second may escalate to any
// tier above Uncommon.
func (k SlotKind) DrawTier(rng *rand.Rand) rarity.Tier {
	switch k {
	case SlotCommon:
		return rarity.Common
	case SlotUncommon:
		return rarity.Uncommon
	case SlotHigherFirst:
		low := []rarity.Tier{rarity.Magic, rarity.Rare, rarity.Epic}
		return low[rng.Intn(len(low))]
	default:
		span := int(rarity.Forbidden-rarity.Magic) + 1
		return rarity.Magic + rarity.Tier(rng.Intn(span))
	}
}

// Slot records whether one requirement has been satisfied and by whom.
type Slot struct {
	Kind   SlotKind
	NodeID string
}

// Satisfied reports whether a node has filled this slot.
func (s Slot) Satisfied() bool {
	return s.NodeID != ""
}

// State is the mutable tree of one base archetype within a run.
type State struct {
	base  string
	nodes []candidate.Class
	index map[string]int
	slots [4]Slot
	path  []string
}

// NewState creates an empty tree for the given base archetype key.
func NewState(base string) *State {
	s := &State{
		base:  base,
		index: make(map[string]int),
	}
	for i := range s.slots {
		s.slots[i].Kind = SlotKind(i)
	}
	return s
}

// Base returns the owning base archetype key. The base key doubles as
// the parent identifier of direct children (the root sits at level 0).
func (s *State) Base() string {
	return s.base
}

// Len returns the number of accepted nodes.
func (s *State) Len() int {
	return len(s.nodes)
}

// Nodes returns the accepted nodes in acceptance order.
func (s *State) Nodes() []candidate.Class {
	return append([]candidate.Class(nil), s.nodes...)
}

// Node looks up an accepted node by identifier.
func (s *State) Node(id string) (candidate.Class, bool) {
	idx, ok := s.index[id]
	if !ok {
		return candidate.Class{}, false
	}
	return s.nodes[idx], true
}

// Contains reports whether the identifier is accepted in this tree.
func (s *State) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Slots returns the requirement slots in priority order.
func (s *State) Slots() []Slot {
	return s.slots[:]
}

// NextUnmetSlot returns the first unsatisfied requirement slot.
func (s *State) NextUnmetSlot() (SlotKind, bool) {
	for _, slot := range s.slots {
		if !slot.Satisfied() {
			return slot.Kind, true
		}
	}
	return 0, false
}

// RequirementsMet reports whether every requirement slot is satisfied.
func (s *State) RequirementsMet() bool {
	_, unmet := s.NextUnmetSlot()
	return !unmet
}

// PathLen returns the current common path length.
func (s *State) PathLen() int {
	return len(s.path)
}

// PathIDs returns the common path node identifiers, root outward.
func (s *State) PathIDs() []string {
	return append([]string(nil), s.path...)
}

// PathTail returns the current chain tail, if the path has started.
func (s *State) PathTail() (candidate.Class, bool) {
	if len(s.path) == 0 {
		return candidate.Class{}, false
	}
	return s.Node(s.path[len(s.path)-1])
}

// OnPath reports whether a node is part of the common path.
func (s *State) OnPath(id string) bool {
	for _, pid := range s.path {
		if pid == id {
			return true
		}
	}
	return false
}

// IsPathTail reports whether a node is the current chain tail.
func (s *State) IsPathTail(id string) bool {
	return len(s.path) > 0 && s.path[len(s.path)-1] == id
}

// Attach records an accepted node: it appends the node, satisfies the
// first admitting requirement slot for direct children, and extends the
// common path when the node was planned onto it (or extends it naturally
// when a Common node lands on the chain tail at the next level).
func (s *State) Attach(node candidate.Class, onPath bool, pathTarget int) {
	s.index[node.ID] = len(s.nodes)
	s.nodes = append(s.nodes, node)

	if node.ParentID == s.base && node.Level == 1 {
		for i := range s.slots {
			if !s.slots[i].Satisfied() && s.slots[i].Kind.Admits(node.Tier) {
				s.slots[i].NodeID = node.ID
				break
			}
		}
	}

	if node.Tier != rarity.Common || node.Level != len(s.path)+1 {
		return
	}
	switch {
	case onPath:
		s.path = append(s.path, node.ID)
	case len(s.path) > 0 && len(s.path) < pathTarget && s.IsPathTail(node.ParentID):
		// A normal-mode Common child landing on the chain tail extends
		// the path without having been planned onto it.
		s.path = append(s.path, node.ID)
	}
}
