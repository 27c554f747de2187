// Package morph turns a cleaned polygon shape into a circle and back.
//
// An [Interpolator] pairs every point of a shape's rings with a target
// point: the outer ring maps onto a pseudo-circle sampled at the same
// arc-length positions, and every secondary ring collapses onto the single
// pseudo-circle point nearest its centroid. Evaluating the interpolator at
// t blends each pair linearly, so t=0 is the original outline and t=1 is
// the circle.
package morph

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/matzehuels/cartoforce/pkg/errors"
	"github.com/matzehuels/cartoforce/pkg/geom"
)

// Interpolator blends a shape's rings toward their circular targets.
// It is immutable after New and safe for concurrent use.
type Interpolator struct {
	source []orb.Ring
	target []orb.Ring

	// Center and Radius of the target circle.
	Center orb.Point
	Radius float64
}

// New builds an interpolator that morphs shape into a circle of radius r
// centered at (x, y).
func New(shape *geom.Shape, x, y, r float64) (*Interpolator, error) {
	if err := validate(shape); err != nil {
		return nil, err
	}
	if err := errors.ValidateFinite("center x", x); err != nil {
		return nil, err
	}
	if err := errors.ValidateFinite("center y", y); err != nil {
		return nil, err
	}
	if err := errors.ValidatePositive("radius", r); err != nil {
		return nil, err
	}

	circle := PseudoCircle(shape, x, y, r)
	target := append([]orb.Ring{circle}, CollapseSecondary(shape, circle)...)

	return &Interpolator{
		source: shape.OrbRings(),
		target: target,
		Center: orb.Point{x, y},
		Radius: r,
	}, nil
}

func validate(shape *geom.Shape) error {
	if shape == nil || len(shape.Rings) == 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "shape has no rings")
	}
	outer := shape.Outer()
	if len(outer.Along) != outer.Len() {
		return errors.New(errors.ErrCodeInvalidGeometry, "outer ring is not parametrized by arc length")
	}
	if !(shape.Perimeter > 0) || math.IsInf(shape.Perimeter, 0) {
		return errors.New(errors.ErrCodeInvalidGeometry, "outer ring has zero perimeter")
	}
	return nil
}

// PseudoCircle samples a circle of radius r around (x, y) once per outer
// ring vertex. A vertex at arc length a is placed at the angle
//
//	StartAngle - 2π * a / Perimeter
//
// so the first sample lines up with the first vertex as seen from the
// shape's origin and samples keep the outline's arc-length spacing.
func PseudoCircle(shape *geom.Shape, x, y, r float64) orb.Ring {
	outer := shape.Outer()
	circle := make(orb.Ring, len(outer.Along))
	for i, along := range outer.Along {
		angle := shape.StartAngle - 2*math.Pi*(along/shape.Perimeter)
		circle[i] = orb.Point{math.Cos(angle)*r + x, math.Sin(angle)*r + y}
	}
	return circle
}

// CollapseSecondary maps every secondary ring onto a ring of identical
// points: the circle sample nearest the ring's centroid.
func CollapseSecondary(shape *geom.Shape, circle orb.Ring) []orb.Ring {
	secondary := shape.Secondary()
	out := make([]orb.Ring, len(secondary))
	for i, ring := range secondary {
		p := circle[geom.Nearest(circle, ring.Centroid)]
		collapsed := make(orb.Ring, ring.Len())
		for j := range collapsed {
			collapsed[j] = p
		}
		out[i] = collapsed
	}
	return out
}

// Rings returns the blended ring set at t, clamped to [0, 1].
func (m *Interpolator) Rings(t float64) []orb.Ring {
	t = clamp(t)
	out := make([]orb.Ring, len(m.source))
	for i, src := range m.source {
		dst := m.target[i]
		ring := make(orb.Ring, len(src))
		for j := range src {
			ring[j] = geom.Lerp(src[j], dst[j], t)
		}
		out[i] = ring
	}
	return out
}

// Source returns the original rings, outer first.
func (m *Interpolator) Source() []orb.Ring { return m.source }

// Target returns the circular targets, outer first.
func (m *Interpolator) Target() []orb.Ring { return m.target }

// Path renders the blended ring set at t as an SVG path. Above
// TruncateAbove only the outer ring is drawn, which avoids fill-rule
// artifacts once the secondary rings have all but vanished.
func (m *Interpolator) Path(t float64) string {
	t = clamp(t)
	d := PathString(m.Rings(t))
	if t > TruncateAbove {
		d = truncate(d)
	}
	return d
}

// Reverse renders the morph from circle back to outline: Path(1 - t).
func (m *Interpolator) Reverse(t float64) string {
	return m.Path(1 - clamp(t))
}

func clamp(t float64) float64 {
	switch {
	case math.IsNaN(t), t < 0:
		return 0
	case t > 1:
		return 1
	}
	return t
}
