package dataset

import (
	"math"
	"slices"

	"github.com/paulmach/orb"
)

// Neighbors returns, for every feature, the indices of the features it
// shares at least one boundary vertex with. Vertices are compared after
// snapping to a grid of the given tolerance; zero compares exactly.
// The relation is symmetric and every list is sorted.
func Neighbors(features []Feature, tolerance float64) [][]int {
	type key struct{ x, y float64 }
	snap := func(p orb.Point) key {
		if tolerance <= 0 {
			return key{p[0], p[1]}
		}
		return key{math.Round(p[0] / tolerance), math.Round(p[1] / tolerance)}
	}

	owners := make(map[key][]int)
	for i, f := range features {
		seen := make(map[key]bool)
		eachPoint(f.Geometry, func(p orb.Point) {
			k := snap(p)
			if seen[k] {
				return
			}
			seen[k] = true
			owners[k] = append(owners[k], i)
		})
	}

	sets := make([]map[int]bool, len(features))
	for i := range sets {
		sets[i] = make(map[int]bool)
	}
	for _, ids := range owners {
		for _, a := range ids {
			for _, b := range ids {
				if a != b {
					sets[a][b] = true
				}
			}
		}
	}

	out := make([][]int, len(features))
	for i, set := range sets {
		list := make([]int, 0, len(set))
		for j := range set {
			list = append(list, j)
		}
		slices.Sort(list)
		out[i] = list
	}
	return out
}

func eachPoint(g orb.Geometry, fn func(orb.Point)) {
	switch g := g.(type) {
	case orb.Ring:
		for _, p := range g {
			fn(p)
		}
	case orb.Polygon:
		for _, r := range g {
			eachPoint(r, fn)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			eachPoint(p, fn)
		}
	}
}
