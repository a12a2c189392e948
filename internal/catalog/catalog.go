// Package catalog exposes the fixed governance checklist: rollout phases,
// sections and their items. The data is embedded and never changes at runtime.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"governance-backend/internal/assessment"
)

//go:embed governance.yaml
var governanceYAML []byte

// Phase describes one rollout stage.
type Phase struct {
	ID          int    `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Icon        string `json:"icon" yaml:"icon"`
}

type document struct {
	Phases   []Phase              `yaml:"phases"`
	Sections []assessment.Section `yaml:"sections"`
}

var builtin = mustParse(governanceYAML)

// Sections returns a fresh copy of the catalog with every item incomplete.
func Sections() []assessment.Section {
	return assessment.CloneSections(builtin.Sections)
}

// Phases returns the rollout phases in order.
func Phases() []Phase {
	return append([]Phase(nil), builtin.Phases...)
}

// ItemCount returns the number of items in the catalog.
func ItemCount() int {
	n := 0
	for _, s := range builtin.Sections {
		n += len(s.Items)
	}
	return n
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) ([]Phase, []assessment.Section, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := Validate(doc.Sections); err != nil {
		return nil, nil, err
	}
	return doc.Phases, doc.Sections, nil
}

// Validate checks the structural invariants of a catalog: unique item ids,
// known phases, priorities and categories, and items sharing their section's category.
func Validate(sections []assessment.Section) error {
	seen := make(map[string]string)
	var errs []error
	for _, s := range sections {
		if s.ID == "" {
			errs = append(errs, errors.New("section with empty id"))
		}
		if !s.Category.Valid() {
			errs = append(errs, fmt.Errorf("section %s: invalid category %q", s.ID, s.Category))
		}
		for _, item := range s.Items {
			if item.ID == "" {
				errs = append(errs, fmt.Errorf("section %s: item with empty id", s.ID))
				continue
			}
			if owner, dup := seen[item.ID]; dup {
				errs = append(errs, fmt.Errorf("item %s: duplicate id (also in %s)", item.ID, owner))
			}
			seen[item.ID] = s.ID
			if item.Phase < 1 || item.Phase > 3 {
				errs = append(errs, fmt.Errorf("item %s: invalid phase %d", item.ID, item.Phase))
			}
			if !item.Priority.Valid() {
				errs = append(errs, fmt.Errorf("item %s: invalid priority %q", item.ID, item.Priority))
			}
			if item.Category != s.Category {
				errs = append(errs, fmt.Errorf("item %s: category %q differs from section %q", item.ID, item.Category, s.Category))
			}
		}
	}
	return errors.Join(errs...)
}

func mustParse(data []byte) document {
	phases, sections, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return document{Phases: phases, Sections: sections}
}
