package morph_test

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/matzehuels/cartoforce/pkg/geom"
	"github.com/matzehuels/cartoforce/pkg/morph"
)

func ExampleInterpolator_Path() {
	tri := orb.Polygon{{{0, 0}, {4, 0}, {4, 3}}}
	shape, _ := geom.Cleanup(tri, geom.CleanupOptions{MaxSegmentLength: 10})
	m, _ := morph.New(shape, 0, 0, 1)

	fmt.Println(m.Path(0))
	// Output: M 0,0 L 4,0 L 4,3 Z
}
