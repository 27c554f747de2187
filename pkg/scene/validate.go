package scene

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Validate checks the scene for values the charts cannot work with. All
// failures are INVALID_CONFIG errors naming the offending key.
func (c *Config) Validate() error {
	checks := []func() error{
		c.Cartogram.validate,
		c.Bubbles.validate,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid scene")
		}
	}
	return nil
}

func (c Canvas) validate(prefix string) error {
	if err := errors.ValidatePositive(prefix+".width", c.Width); err != nil {
		return err
	}
	if err := errors.ValidatePositive(prefix+".height", c.Height); err != nil {
		return err
	}
	if c.InnerWidth() <= 0 || c.InnerHeight() <= 0 {
		return fmt.Errorf("%s: margins leave no drawing area", prefix)
	}
	return nil
}

func (c *Cartogram) validate() error {
	if err := c.Canvas.validate("cartogram.canvas"); err != nil {
		return err
	}
	positive := map[string]float64{
		"cartogram.max_radius":      c.MaxRadius,
		"cartogram.alpha_threshold": c.AlphaThreshold,
	}
	for name, v := range positive {
		if err := errors.ValidatePositive(name, v); err != nil {
			return err
		}
	}
	nonNegative := map[string]float64{
		"cartogram.radius_stddev":   c.RadiusStdDev,
		"cartogram.link_padding":    c.LinkPadding,
		"cartogram.collide_padding": c.CollidePadding,
	}
	for name, v := range nonNegative {
		if err := errors.ValidateNonNegative(name, v); err != nil {
			return err
		}
	}
	fractions := map[string]float64{
		"cartogram.center_strength":  c.CenterStrength,
		"cartogram.anchor_strength":  c.AnchorStrength,
		"cartogram.collide_strength": c.CollideStrength,
		"cartogram.alpha_threshold":  c.AlphaThreshold,
	}
	for name, v := range fractions {
		if err := errors.ValidateFraction(name, v); err != nil {
			return err
		}
	}
	if c.SegmentsPerPerimeter < 3 {
		return fmt.Errorf("cartogram.segments_per_perimeter must be at least 3, got %d", c.SegmentsPerPerimeter)
	}
	if t := c.Timing; t.DelayMS < 0 || t.MorphMS <= 0 || t.HoldMS < 0 || t.ReturnMS <= 0 {
		return fmt.Errorf("cartogram.timing: morphs must be positive and delays non-negative")
	}
	if _, err := colorful.Hex(c.BaseFill); err != nil {
		return fmt.Errorf("cartogram.base_fill: %w", err)
	}
	return nil
}

func (b *Bubbles) validate() error {
	if err := b.Canvas.validate("bubbles.canvas"); err != nil {
		return err
	}
	if b.Columns.Label == "" || b.Columns.Category == "" || b.Columns.Value == "" {
		return fmt.Errorf("bubbles.columns: label, category and value are required")
	}
	for name, r := range map[string][]float64{
		"bubbles.radius_domain": b.RadiusDomain,
		"bubbles.radius_range":  b.RadiusRange,
		"bubbles.color_domain":  b.ColorDomain,
	} {
		if len(r) != 2 {
			return fmt.Errorf("%s must have two values, got %d", name, len(r))
		}
		if r[0] < 0 || r[1] <= r[0] {
			return fmt.Errorf("%s must be increasing and non-negative, got %v", name, r)
		}
	}
	if len(b.ColorRange) != 2 {
		return fmt.Errorf("bubbles.color_range must have two colors, got %d", len(b.ColorRange))
	}
	for _, hex := range append([]string{b.Highlight}, b.ColorRange...) {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("bubbles: color %q: %w", hex, err)
		}
	}
	if err := errors.ValidateFraction("bubbles.opacity", b.Opacity); err != nil {
		return err
	}
	if err := errors.ValidateFraction("bubbles.alpha_target", b.AlphaTarget); err != nil {
		return err
	}
	if err := errors.ValidateFraction("bubbles.collide_strength", b.CollideStrength); err != nil {
		return err
	}
	if err := errors.ValidateFinite("bubbles.charge", b.Charge); err != nil {
		return err
	}
	if len(b.Categories) == 0 {
		return fmt.Errorf("bubbles.categories is empty")
	}
	for key, p := range b.Categories {
		for _, v := range []float64{p.X, p.Y, p.LabelX, p.LabelY} {
			if err := errors.ValidateFinite("bubbles.categories."+key, v); err != nil {
				return err
			}
		}
	}
	return b.validateSteps()
}

func (b *Bubbles) validateSteps() error {
	if len(b.Steps) == 0 {
		return fmt.Errorf("bubbles.steps is empty")
	}
	seen := make(map[string]bool, len(b.Steps))
	for i, s := range b.Steps {
		if s.Name == "" {
			return fmt.Errorf("bubbles.steps[%d] has no name", i)
		}
		if seen[s.Name] {
			return fmt.Errorf("bubbles.steps: duplicate step %q", s.Name)
		}
		seen[s.Name] = true
		switch s.Layout {
		case LayoutCombined, LayoutSeparated:
		default:
			return fmt.Errorf("bubbles.steps.%s: unknown layout %q", s.Name, s.Layout)
		}
	}
	return nil
}
