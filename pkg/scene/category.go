package scene

import (
	"slices"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Placement is where a category gathers in the separated layout and
// where its label is drawn.
type Placement struct {
	X      float64 `toml:"x" json:"x"`
	Y      float64 `toml:"y" json:"y"`
	LabelX float64 `toml:"label_x" json:"label_x"`
	LabelY float64 `toml:"label_y" json:"label_y"`
}

// CategoryTable maps a category key to its placement.
type CategoryTable map[string]Placement

// Lookup returns the placement of key. Every category must have an entry;
// a missing one is an UNKNOWN_CATEGORY error rather than a zero placement.
func (t CategoryTable) Lookup(key string) (Placement, error) {
	p, ok := t[key]
	if !ok {
		return Placement{}, errors.New(errors.ErrCodeUnknownCategory, "no placement for category %q", key)
	}
	return p, nil
}

// Keys returns the category keys in sorted order.
func (t CategoryTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Check verifies that every category in used has an entry. The error
// lists all missing categories.
func (t CategoryTable) Check(used []string) error {
	var missing []string
	for _, c := range used {
		if _, ok := t[c]; !ok && !slices.Contains(missing, c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return errors.New(errors.ErrCodeUnknownCategory, "no placement for categories %q", missing)
	}
	return nil
}
