package force

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

const (
	DefaultManyBodyStrength = -30
	defaultTheta2           = 0.81
	defaultDistanceMin2     = 1
)

// ManyBody applies a charge between every pair of nodes. Negative
// strengths repel, positive strengths attract. Distant groups of nodes
// are approximated by their center of charge (Barnes–Hut).
type ManyBody struct {
	strength     Accessor
	theta2       float64
	distanceMin2 float64
	distanceMax2 float64

	nodes     []*Node
	strengths []float64
	rng       *rand.Rand
}

// NewManyBody creates a charge force with the default strength.
func NewManyBody() *ManyBody {
	return &ManyBody{
		strength:     Constant(DefaultManyBodyStrength),
		theta2:       defaultTheta2,
		distanceMin2: defaultDistanceMin2,
		distanceMax2: math.Inf(1),
	}
}

// Strength sets a uniform charge.
func (m *ManyBody) Strength(s float64) *ManyBody {
	m.strength = Constant(s)
	return m
}

// StrengthFunc sets a per-node charge.
func (m *ManyBody) StrengthFunc(fn Accessor) *ManyBody {
	m.strength = fn
	return m
}

// Theta sets the Barnes–Hut approximation criterion.
func (m *ManyBody) Theta(theta float64) *ManyBody {
	m.theta2 = theta * theta
	return m
}

// DistanceMax ignores nodes further apart than d.
func (m *ManyBody) DistanceMax(d float64) *ManyBody {
	m.distanceMax2 = d * d
	return m
}

func (m *ManyBody) Initialize(nodes []*Node, rng *rand.Rand) error {
	strengths := make([]float64, len(nodes))
	for i, n := range nodes {
		strengths[i] = m.strength(n)
		if err := errors.ValidateFinite("charge", strengths[i]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidArgument, err, "node %d", i)
		}
	}
	m.nodes, m.strengths, m.rng = nodes, strengths, rng
	return nil
}

func (m *ManyBody) Apply(alpha float64) {
	if len(m.nodes) < 2 {
		return
	}
	tree := newQuadtree(len(m.nodes), func(i int) (float64, float64) {
		return m.nodes[i].X, m.nodes[i].Y
	})
	tree.visitAfter(m.accumulate(tree))
	for _, node := range m.nodes {
		m.applyTo(tree, node, alpha)
	}
}

func (m *ManyBody) accumulate(tree *quadtree) func(q *quad) {
	return func(q *quad) {
		if q.leaf() {
			q.value = 0
			if len(q.items) > 0 {
				q.cx, q.cy = tree.xs[q.items[0]], tree.ys[q.items[0]]
			}
			for _, j := range q.items {
				q.value += m.strengths[j]
			}
			return
		}
		var strength, weight, x, y float64
		for _, c := range q.children {
			if c == nil || c.value == 0 {
				continue
			}
			w := math.Abs(c.value)
			strength += c.value
			weight += w
			x += w * c.cx
			y += w * c.cy
		}
		q.value = strength
		if weight > 0 {
			q.cx, q.cy = x/weight, y/weight
		}
	}
}

func (m *ManyBody) applyTo(tree *quadtree, node *Node, alpha float64) {
	tree.visit(func(q *quad) bool {
		if q.value == 0 {
			return true
		}
		x, y := q.cx-node.X, q.cy-node.Y
		w := q.x1 - q.x0
		l := x*x + y*y

		// far enough away to treat the cell as a single charge
		if w*w/m.theta2 < l {
			if l < m.distanceMax2 {
				x, y, l = m.separate(x, y, l)
				node.VX += x * q.value * alpha / l
				node.VY += y * q.value * alpha / l
			}
			return true
		}
		if !q.leaf() || l >= m.distanceMax2 {
			return false
		}

		if len(q.items) > 1 || q.items[0] != node.Index {
			x, y, l = m.separate(x, y, l)
		}
		for _, j := range q.items {
			if j == node.Index {
				continue
			}
			s := m.strengths[j] * alpha / l
			node.VX += x * s
			node.VY += y * s
		}
		return true
	})
}

func (m *ManyBody) separate(x, y, l float64) (float64, float64, float64) {
	if x == 0 {
		x = jiggle(m.rng)
		l += x * x
	}
	if y == 0 {
		y = jiggle(m.rng)
		l += y * y
	}
	if l < m.distanceMin2 {
		l = math.Sqrt(m.distanceMin2 * l)
	}
	return x, y, l
}
