package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Descriptor is one entry of the declarative rule catalog. The catalog
// governs the declared vocabulary at load time; the decision cascade
// itself is fixed in code and does not read these entries. Preserved
// as-is from the wire contract (see DESIGN.md).
type Descriptor struct {
	Name        string `yaml:"name" json:"name"`
	Category    string `yaml:"category" json:"category"`
	Confidence  string `yaml:"confidence" json:"confidence"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

type catalogWire struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Confidence  any    `yaml:"confidence"` // any scalar, coerced to string
	Description string `yaml:"description"`
}

// LoadCatalog parses the rule catalog file and validates every descriptor
// against the closed vocabularies. Any violation is a fatal construction
// error naming the offending rule and the allowed set.
func LoadCatalog(path string) ([]Descriptor, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule catalog: %w", err)
	}
	return parseCatalog(b)
}

func parseCatalog(b []byte) ([]Descriptor, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse rule catalog: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("rule catalog must be a YAML list of rules")
	}
	if doc.Content[0].Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("rule catalog must be a YAML list of rules")
	}

	var wires []catalogWire
	if err := doc.Content[0].Decode(&wires); err != nil {
		return nil, fmt.Errorf("parse rule catalog: %w", err)
	}

	out := make([]Descriptor, 0, len(wires))
	for _, w := range wires {
		conf := ""
		if w.Confidence != nil {
			conf = fmt.Sprint(w.Confidence)
		}
		d := Descriptor{
			Name:        w.Name,
			Category:    strings.ToLower(strings.TrimSpace(w.Category)),
			Confidence:  strings.ToLower(strings.TrimSpace(conf)),
			Description: w.Description,
		}
		if !validCategory(d.Category) {
			return nil, fmt.Errorf("rule %q has invalid category %q; allowed: %s",
				d.Name, d.Category, strings.Join(AllowedCategories(), ", "))
		}
		if !validConfidence(d.Confidence) {
			return nil, fmt.Errorf("rule %q has invalid confidence %q; allowed: %s",
				d.Name, d.Confidence, strings.Join(AllowedConfidences(), ", "))
		}
		out = append(out, d)
	}
	return out, nil
}
