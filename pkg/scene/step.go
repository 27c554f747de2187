package scene

import (
	"slices"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Layout selects the directional forces of a bubble chart step.
type Layout string

const (
	// LayoutCombined pulls every bubble toward the canvas center.
	LayoutCombined Layout = "combined"
	// LayoutSeparated pulls each bubble toward its category's placement.
	LayoutSeparated Layout = "separated"
)

// Step is one scroll position of the bubble chart.
type Step struct {
	Name   string `toml:"name" json:"name"`
	Layout Layout `toml:"layout" json:"layout"`

	// Highlight lists groups or entity labels filled with the highlight color.
	Highlight []string `toml:"highlight" json:"highlight,omitempty"`

	// Labels lists groups or entity labels whose text labels are shown.
	Labels []string `toml:"labels" json:"labels,omitempty"`

	CategoryLabels bool `toml:"category_labels" json:"category_labels"`

	// Restart reheats the simulation toward the alpha target. Steps that
	// only restyle leave the simulation alone.
	Restart bool `toml:"restart" json:"restart"`
}

// Step returns the bubble chart step called name.
func (c *Config) Step(name string) (Step, error) {
	for _, s := range c.Bubbles.Steps {
		if s.Name == name {
			return s, nil
		}
	}
	return Step{}, errors.New(errors.ErrCodeUnknownStep, "no step named %q", name)
}

// StepNames returns step names in scroll order.
func (c *Config) StepNames() []string {
	names := make([]string, len(c.Bubbles.Steps))
	for i, s := range c.Bubbles.Steps {
		names[i] = s.Name
	}
	return names
}

// Members expands group references into entity labels. A reference that
// is not a group name is taken as a label itself.
func (c *Config) Members(refs []string) []string {
	var out []string
	for _, ref := range refs {
		members, ok := c.Bubbles.Groups[ref]
		if !ok {
			members = []string{ref}
		}
		for _, m := range members {
			if !slices.Contains(out, m) {
				out = append(out, m)
			}
		}
	}
	return out
}
