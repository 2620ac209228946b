package unlock

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bergenthala/ai-class-generator/internal/forge/rarity"
)

type ruleFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

type ruleSpec struct {
	ID        string `yaml:"id"`
	Event     string `yaml:"event"`
	Agg       string `yaml:"agg"`
	Threshold int    `yaml:"threshold"`
	ClassID   string `yaml:"class_id"`
	Archetype string `yaml:"archetype"`
	Tier      string `yaml:"tier"`
	ParentID  string `yaml:"parent_id"`
	Level     int    `yaml:"level"`
}

// Load reads unlock rules from YAML.
func Load(r io.Reader) ([]Rule, error) {
	var file ruleFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decode unlock rules: %w", err)
	}

	rules := make([]Rule, 0, len(file.Rules))
	for i, spec := range file.Rules {
		if spec.ID == "" {
			return nil, fmt.Errorf("unlock rule %d: missing id", i)
		}
		if spec.Event == "" {
			return nil, fmt.Errorf("unlock rule %q: missing event", spec.ID)
		}
		if spec.Threshold <= 0 {
			return nil, fmt.Errorf("unlock rule %q: threshold must be positive", spec.ID)
		}
		agg := AggCount
		if spec.Agg != "" {
			var err error
			if agg, err = ParseAggregation(spec.Agg); err != nil {
				return nil, fmt.Errorf("unlock rule %q: %w", spec.ID, err)
			}
		}
		tier := rarity.Common
		if spec.Tier != "" {
			var err error
			if tier, err = rarity.Parse(spec.Tier); err != nil {
				return nil, fmt.Errorf("unlock rule %q: %w", spec.ID, err)
			}
		}
		rules = append(rules, Rule{
			ID:           spec.ID,
			EventName:    spec.Event,
			Agg:          agg,
			Threshold:    spec.Threshold,
			ClassID:      spec.ClassID,
			ArchetypeKey: spec.Archetype,
			Tier:         tier,
			ParentID:     spec.ParentID,
			Level:        spec.Level,
		})
	}
	return rules, nil
}

// LoadFile reads unlock rules from a YAML file on disk.
func LoadFile(path string) ([]Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open unlock rules: %w", err)
	}
	defer f.Close()
	return Load(f)
}
