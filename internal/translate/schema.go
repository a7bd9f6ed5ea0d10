package translate

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/matsen/citegraph/internal/enrich"
)

//go:embed schema.yaml
var defaultSchema []byte

// Schema describes the item types translators may produce.
type Schema struct {
	Version       int                 `yaml:"version"`
	ExtraFields   []string            `yaml:"extraFields"`
	ItemTypes     map[string][]string `yaml:"itemTypes"`
	CrossrefTypes map[string]string   `yaml:"crossrefTypes"`
	Fallback      string              `yaml:"fallback"`

	fields map[string]map[string]bool
	extra  map[string]bool
}

// ParseSchema parses and validates a YAML item schema.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing item schema: %w", err)
	}
	if len(s.ItemTypes) == 0 {
		return nil, fmt.Errorf("item schema defines no item types")
	}
	if _, ok := s.ItemTypes[s.Fallback]; !ok {
		return nil, fmt.Errorf("item schema fallback type %q is not defined", s.Fallback)
	}
	for crType, itemType := range s.CrossrefTypes {
		if _, ok := s.ItemTypes[itemType]; !ok {
			return nil, fmt.Errorf("crossref type %q maps to undefined item type %q", crType, itemType)
		}
	}

	s.fields = make(map[string]map[string]bool, len(s.ItemTypes))
	for t, fs := range s.ItemTypes {
		set := make(map[string]bool, len(fs)+1)
		set["itemType"] = true
		for _, f := range fs {
			set[f] = true
		}
		s.fields[t] = set
	}
	s.extra = make(map[string]bool, len(s.ExtraFields))
	for _, f := range s.ExtraFields {
		s.extra[f] = true
	}
	return &s, nil
}

// DefaultSchema parses the built-in item schema.
func DefaultSchema() (*Schema, error) {
	return ParseSchema(defaultSchema)
}

// ItemTypeForCrossref returns the item type for a Crossref work type.
func (s *Schema) ItemTypeForCrossref(crossrefType string) string {
	if t, ok := s.CrossrefTypes[crossrefType]; ok {
		return t
	}
	return s.Fallback
}

// Conform drops empty values and fields the candidate's item type does not
// allow. Extra fields are kept.
func (s *Schema) Conform(c enrich.Candidate) enrich.Candidate {
	itemType, _ := c["itemType"].(string)
	allowed := s.fields[itemType]

	out := make(enrich.Candidate, len(c))
	for k, v := range c {
		if isEmpty(v) && !s.extra[k] {
			continue
		}
		if allowed[k] || s.extra[k] {
			out[k] = v
		}
	}
	return out
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	}
	return false
}
