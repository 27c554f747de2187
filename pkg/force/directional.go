package force

import (
	"math/rand/v2"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// DefaultDirectionalStrength is the pull applied by X and Y when no
// strength is set.
const DefaultDirectionalStrength = 0.1

type axis int

const (
	axisX axis = iota
	axisY
)

func (a axis) String() string {
	if a == axisX {
		return "x"
	}
	return "y"
}

// Directional pulls each node toward a per-node target on one axis:
//
//	v += (target - position) * strength * alpha
//
// Targets and strengths are evaluated once, when the force is installed.
type Directional struct {
	axis     axis
	target   Accessor
	strength Accessor

	nodes     []*Node
	targets   []float64
	strengths []float64
}

// X pulls every node toward the same x coordinate.
func X(x float64) *Directional { return XFunc(Constant(x)) }

// XFunc pulls each node toward its own x coordinate.
func XFunc(target Accessor) *Directional {
	return &Directional{axis: axisX, target: target, strength: Constant(DefaultDirectionalStrength)}
}

// Y pulls every node toward the same y coordinate.
func Y(y float64) *Directional { return YFunc(Constant(y)) }

// YFunc pulls each node toward its own y coordinate.
func YFunc(target Accessor) *Directional {
	return &Directional{axis: axisY, target: target, strength: Constant(DefaultDirectionalStrength)}
}

// Strength sets a uniform strength.
func (d *Directional) Strength(s float64) *Directional {
	d.strength = Constant(s)
	return d
}

// StrengthFunc sets a per-node strength.
func (d *Directional) StrengthFunc(fn Accessor) *Directional {
	d.strength = fn
	return d
}

// Initialize evaluates targets and strengths. A non-finite value is an
// INVALID_ARGUMENT error naming the node.
func (d *Directional) Initialize(nodes []*Node, _ *rand.Rand) error {
	targets := make([]float64, len(nodes))
	strengths := make([]float64, len(nodes))
	for i, n := range nodes {
		targets[i] = d.target(n)
		strengths[i] = d.strength(n)
		if err := errors.ValidateFinite(d.axis.String()+" target", targets[i]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidArgument, err, "node %d", i)
		}
		if err := errors.ValidateFinite(d.axis.String()+" strength", strengths[i]); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidArgument, err, "node %d", i)
		}
	}
	d.nodes, d.targets, d.strengths = nodes, targets, strengths
	return nil
}

func (d *Directional) Apply(alpha float64) {
	for i, n := range d.nodes {
		if d.axis == axisX {
			n.VX += (d.targets[i] - n.X) * d.strengths[i] * alpha
		} else {
			n.VY += (d.targets[i] - n.Y) * d.strengths[i] * alpha
		}
	}
}

// Center translates all nodes together so their mean position moves
// toward (x, y). It moves positions directly and leaves velocities and
// relative positions alone.
type Center struct {
	x, y     float64
	strength float64
	nodes    []*Node
}

// NewCenter creates a centering force with strength 1.
func NewCenter(x, y float64) *Center {
	return &Center{x: x, y: y, strength: 1}
}

// Strength sets the fraction of the offset removed per tick.
func (c *Center) Strength(s float64) *Center {
	c.strength = s
	return c
}

func (c *Center) Initialize(nodes []*Node, _ *rand.Rand) error {
	if err := errors.ValidateFinite("center x", c.x); err != nil {
		return err
	}
	if err := errors.ValidateFinite("center y", c.y); err != nil {
		return err
	}
	if err := errors.ValidateFraction("center strength", c.strength); err != nil {
		return err
	}
	c.nodes = nodes
	return nil
}

func (c *Center) Apply(float64) {
	if len(c.nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range c.nodes {
		sx += n.X
		sy += n.Y
	}
	k := float64(len(c.nodes))
	dx := (sx/k - c.x) * c.strength
	dy := (sy/k - c.y) * c.strength
	for _, n := range c.nodes {
		n.X -= dx
		n.Y -= dy
	}
}
