package dataset

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Projections understood by Project.
const (
	ProjectionNone     = "none"
	ProjectionMercator = "mercator"
)

// Project converts longitude/latitude geometries in place. "none" leaves
// them untouched.
func Project(features []Feature, name string) error {
	var proj orb.Projection
	switch name {
	case "", ProjectionNone:
		return nil
	case ProjectionMercator:
		proj = project.WGS84.ToMercator
	default:
		return errors.New(errors.ErrCodeInvalidArgument, "unknown projection %q", name)
	}
	for i := range features {
		if features[i].Geometry != nil {
			features[i].Geometry = project.Geometry(orb.Clone(features[i].Geometry), proj)
		}
	}
	return nil
}

// Bound returns the bounding box of every feature geometry.
func Bound(features []Feature) (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		fb := f.Geometry.Bound()
		if !found {
			b, found = fb, true
			continue
		}
		b = b.Union(fb)
	}
	return b, found
}

// Fit scales and translates features so they fill a width×height canvas
// inside padding, preserving aspect ratio. The y axis is flipped, so
// north-up data ends up north-up on screen.
func Fit(features []Feature, width, height, padding float64) error {
	for name, v := range map[string]float64{"width": width, "height": height} {
		if err := errors.ValidatePositive(name, v); err != nil {
			return err
		}
	}
	if err := errors.ValidateNonNegative("padding", padding); err != nil {
		return err
	}
	b, ok := Bound(features)
	if !ok {
		return nil
	}
	w, h := b.Right()-b.Left(), b.Top()-b.Bottom()
	if w == 0 && h == 0 {
		return errors.New(errors.ErrCodeInvalidGeometry, "features have no extent")
	}
	// a zero extent on one axis divides to +Inf and drops out of the min
	k := math.Min((width-2*padding)/w, (height-2*padding)/h)
	ox := (width - k*w) / 2
	oy := (height - k*h) / 2

	toCanvas := func(p orb.Point) orb.Point {
		return orb.Point{ox + (p[0]-b.Left())*k, oy + (b.Top()-p[1])*k}
	}
	for i := range features {
		if features[i].Geometry != nil {
			features[i].Geometry = project.Geometry(orb.Clone(features[i].Geometry), toCanvas)
		}
	}
	return nil
}

// openRings drops the repeated closing point GeoJSON rings carry.
func openRings(g orb.Geometry) orb.Geometry {
	open := func(r orb.Ring) orb.Ring {
		if len(r) > 1 && r.Closed() {
			return r[:len(r)-1]
		}
		return r
	}
	switch g := g.(type) {
	case orb.Polygon:
		out := make(orb.Polygon, len(g))
		for i, r := range g {
			out[i] = open(r)
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(g))
		for i, p := range g {
			out[i] = openRings(p).(orb.Polygon)
		}
		return out
	}
	return g
}
