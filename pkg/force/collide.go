package force

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Collide separates overlapping circles. Each node is treated as a circle
// of the given radius around its predicted next position; overlapping
// pairs are pushed apart, the smaller circle moving further.
//
// Collide does not scale with alpha, so it keeps acting on a cold layout.
type Collide struct {
	radius     Accessor
	strength   float64
	iterations int

	nodes []*Node
	radii []float64
	rng   *rand.Rand
}

// NewCollide creates a collision force using radius for each node.
func NewCollide(radius Accessor) *Collide {
	return &Collide{radius: radius, strength: 1, iterations: 1}
}

// Strength sets how much of an overlap is resolved per iteration, in [0, 1].
func (c *Collide) Strength(s float64) *Collide {
	c.strength = s
	return c
}

// Iterations sets how many passes run per tick.
func (c *Collide) Iterations(n int) *Collide {
	c.iterations = n
	return c
}

func (c *Collide) Initialize(nodes []*Node, rng *rand.Rand) error {
	if err := errors.ValidateFraction("collide strength", c.strength); err != nil {
		return err
	}
	if c.iterations < 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "collide iterations must be at least 1, got %d", c.iterations)
	}
	radii := make([]float64, len(nodes))
	for i, n := range nodes {
		radii[i] = c.radius(n)
		if err := errors.ValidateNonNegative("collide radius", radii[i]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidArgument, err, "node %d", i)
		}
	}
	c.nodes, c.radii, c.rng = nodes, radii, rng
	return nil
}

func (c *Collide) Apply(float64) {
	if len(c.nodes) < 2 {
		return
	}
	for range c.iterations {
		tree := newQuadtree(len(c.nodes), func(i int) (float64, float64) {
			n := c.nodes[i]
			return n.X + n.VX, n.Y + n.VY
		})
		tree.visitAfter(func(q *quad) {
			q.r = 0
			if q.leaf() {
				for _, j := range q.items {
					q.r = math.Max(q.r, c.radii[j])
				}
				return
			}
			for _, ch := range q.children {
				if ch != nil {
					q.r = math.Max(q.r, ch.r)
				}
			}
		})

		for i, node := range c.nodes {
			ri := c.radii[i]
			ri2 := ri * ri
			xi, yi := node.X+node.VX, node.Y+node.VY
			tree.visit(func(q *quad) bool {
				if q.leaf() {
					for _, j := range q.items {
						if j > i {
							c.resolve(node, c.nodes[j], xi, yi, ri, ri2, c.radii[j])
						}
					}
					return true
				}
				r := q.r + ri
				return q.x0 > xi+r || q.x1 < xi-r || q.y0 > yi+r || q.y1 < yi-r
			})
		}
	}
}

func (c *Collide) resolve(node, other *Node, xi, yi, ri, ri2, rj float64) {
	r := ri + rj
	x := xi - other.X - other.VX
	y := yi - other.Y - other.VY
	l := x*x + y*y
	if l >= r*r {
		return
	}
	if x == 0 {
		x = jiggle(c.rng)
		l += x * x
	}
	if y == 0 {
		y = jiggle(c.rng)
		l += y * y
	}
	l = math.Sqrt(l)
	l = (r - l) / l * c.strength
	x *= l
	y *= l
	rj2 := rj * rj
	w := 0.5
	if ri2+rj2 > 0 {
		w = rj2 / (ri2 + rj2)
	}
	node.VX += x * w
	node.VY += y * w
	other.VX -= x * (1 - w)
	other.VY -= y * (1 - w)
}
