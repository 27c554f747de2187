package geom

import (
	"github.com/paulmach/orb"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Ring is a closed polygon boundary together with the measurements the
// morph pipeline attaches to it.
type Ring struct {
	// Points are the ring vertices. The closing edge (last → first) is implicit.
	Points orb.Ring

	// Along holds the cumulative arc length of every vertex, starting at 0.
	// It is nil until ParametrizeArcLength runs and is reset by Bisect.
	Along []float64

	// Area is the signed shoelace area (positive for counter-clockwise
	// winding in a y-up frame).
	Area float64

	// Centroid is the area-weighted centroid.
	Centroid orb.Point
}

// NewRing copies points into a Ring and measures its area and centroid.
func NewRing(points orb.Ring) Ring {
	pts := make(orb.Ring, len(points))
	copy(pts, points)
	return Ring{
		Points:   pts,
		Area:     SignedArea(pts),
		Centroid: Centroid(pts),
	}
}

// Len returns the number of vertices.
func (r *Ring) Len() int { return len(r.Points) }

// SignedArea returns the signed area of a closed polygon. Counter-clockwise
// rings (in a y-up frame) are positive, clockwise rings negative.
func SignedArea(points []orb.Point) float64 {
	n := len(points)
	if n < 3 {
		return 0
	}
	var sum float64
	b := points[n-1]
	for _, a := range points {
		sum += b[0]*a[1] - a[0]*b[1]
		b = a
	}
	return sum / 2
}

// Centroid returns the area-weighted centroid of a closed polygon.
// Rings with zero area fall back to the mean of their vertices; an empty
// ring yields the origin.
func Centroid(points []orb.Point) orb.Point {
	n := len(points)
	if n == 0 {
		return orb.Point{}
	}

	var x, y, k float64
	b := points[n-1]
	for _, a := range points {
		c := b[0]*a[1] - a[0]*b[1]
		k += c * 3
		x += (b[0] + a[0]) * c
		y += (b[1] + a[1]) * c
		b = a
	}
	if k != 0 {
		return orb.Point{x / k, y / k}
	}

	var mx, my float64
	for _, p := range points {
		mx += p[0]
		my += p[1]
	}
	return orb.Point{mx / float64(n), my / float64(n)}
}

// PerimeterLength returns the length of the closed boundary through points,
// including the wrap-around edge from the last point to the first.
func PerimeterLength(points []orb.Point) float64 {
	n := len(points)
	if n < 2 {
		return 0
	}
	var total float64
	prev := points[n-1]
	for _, p := range points {
		total += Distance(prev, p)
		prev = p
	}
	return total
}

// Bisect inserts midpoints until no edge, including the wrap-around edge,
// is longer than maxSegmentLength. Existing vertices are kept in order, so
// the outline and the area are unchanged. Any previous arc-length
// annotation is discarded.
//
// maxSegmentLength must be finite and positive.
func (r *Ring) Bisect(maxSegmentLength float64) error {
	if err := errors.ValidatePositive("max segment length", maxSegmentLength); err != nil {
		return err
	}
	n := len(r.Points)
	if n == 0 {
		return nil
	}

	out := make(orb.Ring, 0, n)
	for i, a := range r.Points {
		b := r.Points[(i+1)%n]
		out = append(out, a)
		out = subdivide(out, a, b, maxSegmentLength)
	}
	r.Points = out
	r.Along = nil
	return nil
}

// subdivide appends the points strictly between a and b produced by
// repeated halving, in order from a to b.
func subdivide(out orb.Ring, a, b orb.Point, limit float64) orb.Ring {
	if Distance(a, b) <= limit {
		return out
	}
	m := Midpoint(a, b)
	out = subdivide(out, a, m, limit)
	out = append(out, m)
	return subdivide(out, m, b, limit)
}

// ParametrizeArcLength annotates every vertex with its cumulative distance
// from the first vertex and returns the closed perimeter: the last vertex's
// along value plus the wrap-around distance back to the first.
func (r *Ring) ParametrizeArcLength() float64 {
	n := len(r.Points)
	r.Along = make([]float64, n)
	if n == 0 {
		return 0
	}
	for i := 1; i < n; i++ {
		r.Along[i] = r.Along[i-1] + Distance(r.Points[i-1], r.Points[i])
	}
	return r.Along[n-1] + Distance(r.Points[n-1], r.Points[0])
}
