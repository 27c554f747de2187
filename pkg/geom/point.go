package geom

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Distance returns the Euclidean distance between a and b.
func Distance(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// Midpoint returns the arithmetic mean of a and b.
func Midpoint(a, b orb.Point) orb.Point {
	return orb.Point{a[0] + (b[0]-a[0])*0.5, a[1] + (b[1]-a[1])*0.5}
}

// Lerp returns the point a fraction t of the way from a to b.
func Lerp(a, b orb.Point, t float64) orb.Point {
	return orb.Point{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}

// Nearest returns the index of the point in pts closest to p, or -1 when
// pts is empty. Ties resolve to the lowest index.
func Nearest(pts []orb.Point, p orb.Point) int {
	best, bestDist := -1, math.Inf(1)
	for i, q := range pts {
		if d := Distance(p, q); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// isFinite reports whether both coordinates are finite numbers.
func isFinite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}
