// Package skills serves the fixed list of popular skills suggested to users.
package skills

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/skillsprint/roadmap-api/internal/domain"
)

//go:embed skills.yaml
var defaultCatalogYAML []byte

type Catalog struct {
	skills []string
	note   string
	index  map[string]struct{}
}

type catalogFile struct {
	Note   string   `yaml:"note"`
	Skills []string `yaml:"skills"`
}

// Default returns the built-in catalog. It panics if the embedded file is invalid,
// which is caught by the package tests.
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("skills: embedded catalog: %v", err))
	}
	return c
}

// Parse builds a catalog from YAML. Duplicate entries (after key normalization) are rejected.
func Parse(b []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if len(f.Skills) == 0 {
		return nil, fmt.Errorf("catalog has no skills")
	}
	c := &Catalog{
		skills: make([]string, 0, len(f.Skills)),
		note:   f.Note,
		index:  make(map[string]struct{}, len(f.Skills)),
	}
	for _, s := range f.Skills {
		key := domain.NormalizeSkillKey(s)
		if key == "" {
			return nil, fmt.Errorf("catalog has an empty skill")
		}
		if _, dup := c.index[key]; dup {
			return nil, fmt.Errorf("duplicate skill %q", s)
		}
		c.index[key] = struct{}{}
		c.skills = append(c.skills, s)
	}
	return c, nil
}

// List returns a copy of the skills in catalog order.
func (c *Catalog) List() []string {
	out := make([]string, len(c.skills))
	copy(out, c.skills)
	return out
}

func (c *Catalog) Note() string { return c.note }

// Contains reports whether name matches a catalog entry, ignoring case and spacing.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[domain.NormalizeSkillKey(name)]
	return ok
}
