package archetype

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the on-disk YAML shape of a catalog.
type catalogFile struct {
	Archetypes []Archetype                `yaml:"archetypes"`
	Skills     map[string][]SkillTemplate `yaml:"skills"`
}

// Load reads a catalog from YAML. Theme pools missing from the document
// fall back to the builtin pools so a file can override archetypes alone.
func Load(r io.Reader) (*Catalog, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(file.Archetypes) == 0 {
		return nil, fmt.Errorf("catalog defines no archetypes")
	}

	themes := make(map[string][]SkillTemplate, len(builtinThemes))
	for theme, pool := range builtinThemes {
		themes[theme] = pool
	}
	for theme, pool := range file.Skills {
		themes[theme] = pool
	}

	return NewCatalog(file.Archetypes, themes)
}

// LoadFile reads a catalog from a YAML file on disk.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}
