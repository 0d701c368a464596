// Package vocabulary holds the closed provider-type vocabulary the plan
// generator prompts with and validates against.
package vocabulary

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var raw []byte

// Vocabulary constrains generated checklists.
type Vocabulary struct {
	ProviderTypes []string `yaml:"provider_types"`
	MinSteps      int      `yaml:"min_steps"`
	MaxSteps      int      `yaml:"max_steps"`

	typeSet map[string]struct{}
}

// Load parses the embedded vocabulary.
func Load() (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("parse vocabulary: %w", err)
	}
	if len(v.ProviderTypes) == 0 {
		return nil, fmt.Errorf("vocabulary has no provider types")
	}
	if v.MinSteps < 1 || v.MaxSteps < v.MinSteps {
		return nil, fmt.Errorf("vocabulary has invalid step bounds %d..%d", v.MinSteps, v.MaxSteps)
	}
	v.typeSet = make(map[string]struct{}, len(v.ProviderTypes))
	for _, t := range v.ProviderTypes {
		v.typeSet[t] = struct{}{}
	}
	return &v, nil
}

// ContainsType reports whether t is a known provider type.
func (v *Vocabulary) ContainsType(t string) bool {
	_, ok := v.typeSet[strings.ToLower(strings.TrimSpace(t))]
	return ok
}

// TypeList renders the vocabulary as a comma-separated list for prompts.
func (v *Vocabulary) TypeList() string {
	return strings.Join(v.ProviderTypes, ", ")
}
