package templates

import (
	_ "embed"
	"fmt"
	"time"

	"ship-framework-be/pkg/ideation"

	"gopkg.in/yaml.v3"
)

//go:embed preloaded.yaml
var preloadedYAML []byte

type preloadedTemplate struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	CreatedAt time.Time         `yaml:"createdAt"`
	Inputs    map[string]string `yaml:"inputs"`
}

// Preloaded returns the templates offered to a workspace that has none stored.
func Preloaded(defs []ideation.Definition) ([]ideation.ProjectTemplate, error) {
	return parse(defs, preloadedYAML)
}

func parse(defs []ideation.Definition, data []byte) ([]ideation.ProjectTemplate, error) {
	var raw []preloadedTemplate
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse preloaded templates: %w", err)
	}

	out := make([]ideation.ProjectTemplate, 0, len(raw))
	for _, r := range raw {
		doc := ideation.NewDocument(defs)
		for key, input := range r.Inputs {
			id, ok := ideation.ParseStepID(key)
			if !ok {
				return nil, fmt.Errorf("template %s: unknown step %q", r.ID, key)
			}
			if step := doc.StepByID(id); step != nil {
				step.DraftInput = input
			}
		}
		out = append(out, ideation.ProjectTemplate{
			ID:        r.ID,
			Name:      r.Name,
			CreatedAt: r.CreatedAt.UTC(),
			Document:  doc,
		})
	}
	return out, nil
}
