// Package candidate synthesizes fully-formed class records for a
// generation run. The factory knows nothing about tree placement: the
// orchestrator attaches parent and level from its plan.
package candidate

import (
	"github.com/bergenthala/ai-class-generator/internal/forge/archetype"
	"github.com/bergenthala/ai-class-generator/internal/forge/rarity"
)

// Skill is one ability granted by a class.
type Skill struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Kind   string      `json:"kind"`
	Tier   rarity.Tier `json:"tier"`
	Effect string      `json:"effect"`
}

// Class is one generated class record.
//
// ParentID is empty only for the base root; level counts root distance,
// with the base archetype itself at level 0.
type Class struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Archetype   string          `json:"archetype"`
	Tier        rarity.Tier     `json:"tier"`
	Level       int             `json:"level"`
	ParentID    string          `json:"parent_id,omitempty"`
	Stats       archetype.Stats `json:"stats"`
	Growth      archetype.Stats `json:"growth"`
	Skills      []Skill         `json:"skills"`
	Description string          `json:"description"`
}
