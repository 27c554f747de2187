package geom

import (
	"cmp"
	"math"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// DefaultSegmentsPerPerimeter is the number of segments the outer ring's
// perimeter is divided into when no absolute segment length is configured.
const DefaultSegmentsPerPerimeter = 72

// CleanupOptions configures [Cleanup].
type CleanupOptions struct {
	// MaxSegmentLength is the longest edge allowed on the outer ring after
	// bisection. When zero, Perimeter / SegmentsPerPerimeter is used.
	MaxSegmentLength float64

	// SegmentsPerPerimeter is used when MaxSegmentLength is zero.
	// Defaults to DefaultSegmentsPerPerimeter.
	SegmentsPerPerimeter int

	// Origin is the shape's pre-layout centroid, used to anchor the
	// starting angle. When nil, the planar centroid of the geometry is used.
	Origin *orb.Point
}

// Shape is a cleaned ring set ready for morphing.
//
// Rings[0] is the outer boundary (the largest ring by area); it is bisected
// and carries arc-length annotations. The remaining rings are secondary
// polygons (islands, exclaves) kept as they were.
type Shape struct {
	Rings []Ring

	// Perimeter is the closed arc length of Rings[0].
	Perimeter float64

	// StartAngle is the angle of Rings[0]'s first vertex as seen from Origin.
	// Pseudo-circle sampling starts here so the first samples line up.
	StartAngle float64

	// Origin is the pre-layout centroid of the whole geometry.
	Origin orb.Point
}

// Outer returns the outer boundary ring.
func (s *Shape) Outer() *Ring { return &s.Rings[0] }

// Secondary returns the rings after the outer boundary.
func (s *Shape) Secondary() []Ring { return s.Rings[1:] }

// OrbRings returns the ring points as plain orb rings, outer first.
func (s *Shape) OrbRings() []orb.Ring {
	out := make([]orb.Ring, len(s.Rings))
	for i := range s.Rings {
		out[i] = s.Rings[i].Points
	}
	return out
}

// Bound returns the bounding box of all rings.
func (s *Shape) Bound() orb.Bound {
	b := s.Rings[0].Points.Bound()
	for _, r := range s.Rings[1:] {
		b = b.Union(r.Points.Bound())
	}
	return b
}

// Cleanup normalizes a polygonal geometry into a [Shape].
//
// Supported geometries are orb.Polygon, orb.MultiPolygon and orb.Ring. Only
// the outer ring of each polygon is used; interior rings (holes) are not
// morphed. The input geometry is never modified.
//
// Cleanup fails with INVALID_GEOMETRY when the geometry has no rings, a ring
// has fewer than three points, or the outer ring has zero perimeter. It
// fails with INVALID_ARGUMENT when the options are out of range.
func Cleanup(g orb.Geometry, opts CleanupOptions) (*Shape, error) {
	raw, err := outerRings(g)
	if err != nil {
		return nil, err
	}

	rings := make([]Ring, len(raw))
	for i, pts := range raw {
		if len(pts) < 3 {
			return nil, errors.New(errors.ErrCodeInvalidGeometry, "ring %d has %d points, need at least 3", i, len(pts))
		}
		for _, p := range pts {
			if !isFinite(p) {
				return nil, errors.New(errors.ErrCodeInvalidGeometry, "ring %d has a non-finite coordinate", i)
			}
		}
		rings[i] = NewRing(pts)
	}
	slices.SortStableFunc(rings, func(a, b Ring) int {
		return cmp.Compare(math.Abs(b.Area), math.Abs(a.Area))
	})

	outer := &rings[0]
	perimeter := PerimeterLength(outer.Points)
	if perimeter == 0 || math.IsNaN(perimeter) || math.IsInf(perimeter, 0) {
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "outer ring has zero perimeter")
	}

	maxSeg := opts.MaxSegmentLength
	if maxSeg == 0 {
		segments := opts.SegmentsPerPerimeter
		if segments == 0 {
			segments = DefaultSegmentsPerPerimeter
		}
		if segments < 0 {
			return nil, errors.New(errors.ErrCodeInvalidArgument, "segments per perimeter must be positive, got %d", segments)
		}
		maxSeg = perimeter / float64(segments)
	}
	if err := outer.Bisect(maxSeg); err != nil {
		return nil, err
	}

	shape := &Shape{
		Rings:     rings,
		Perimeter: outer.ParametrizeArcLength(),
	}
	if opts.Origin != nil {
		shape.Origin = *opts.Origin
	} else {
		shape.Origin = origin(g, rings)
	}

	first := outer.Points[0]
	shape.StartAngle = math.Atan2(first[1]-shape.Origin[1], first[0]-shape.Origin[0])
	return shape, nil
}

// outerRings extracts the first ring of every polygon in g.
func outerRings(g orb.Geometry) ([]orb.Ring, error) {
	var rings []orb.Ring
	switch g := g.(type) {
	case orb.Ring:
		rings = []orb.Ring{g}
	case orb.Polygon:
		if len(g) > 0 {
			rings = []orb.Ring{g[0]}
		}
	case orb.MultiPolygon:
		for _, p := range g {
			if len(p) > 0 {
				rings = append(rings, p[0])
			}
		}
	case nil:
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "geometry is missing")
	default:
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "unsupported geometry type %s", g.GeoJSONType())
	}
	if len(rings) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidGeometry, "geometry has no rings")
	}
	for i, r := range rings {
		rings[i] = distinct(r)
	}
	return rings, nil
}

// distinct drops consecutive repeated vertices, including the closing
// point GeoJSON repeats, so closed and open rings clean up alike.
func distinct(r orb.Ring) orb.Ring {
	out := make(orb.Ring, 0, len(r))
	for _, p := range r {
		if len(out) == 0 || p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

// origin returns the planar centroid of g, falling back to the outer ring's
// centroid when the geometry has no area.
func origin(g orb.Geometry, rings []Ring) orb.Point {
	c, area := planar.CentroidArea(g)
	if area == 0 || !isFinite(c) {
		return rings[0].Centroid
	}
	return c
}
