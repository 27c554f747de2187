// Package geom provides the planar geometry utilities used to prepare
// polygon shapes for morphing.
//
// # Overview
//
// Points are [orb.Point] values (x, y). A [Ring] is a closed polygon
// boundary: the edge from the last point back to the first is always
// considered, whether or not the input repeats its first point at the end
// (GeoJSON rings do; hand-written rings usually don't).
//
// The preparation steps mirror what a morphing renderer needs:
//
//  1. [Cleanup] extracts the outer ring of every polygon in a geometry,
//     sorts rings by descending area so the outer boundary comes first,
//     and records each ring's signed area and centroid.
//  2. [Ring.Bisect] inserts midpoints until no edge exceeds a maximum
//     segment length. The polygon's outline (and therefore its area) is
//     unchanged; only the sampling density grows.
//  3. [Ring.ParametrizeArcLength] annotates every vertex with its cumulative
//     distance from the first vertex, which later places the matching
//     pseudo-circle samples.
//
// # Example
//
//	shape, err := geom.Cleanup(orb.Polygon{square}, geom.CleanupOptions{MaxSegmentLength: 3})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(len(shape.Outer().Points), shape.Perimeter)
//
// Degenerate input (no rings, fewer than three points, zero perimeter) is
// rejected with an INVALID_GEOMETRY error so callers can skip the single
// offending shape.
package geom
