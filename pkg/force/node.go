package force

import "math"

// Node is a simulated circle.
type Node struct {
	// Index is the node's position in the simulation's node slice.
	// It is assigned by the simulation.
	Index int

	X, Y   float64
	VX, VY float64

	// FX and FY pin the node on an axis when non-nil. A pinned axis has
	// its position reset to the fixed value and its velocity zeroed every tick.
	FX, FY *float64

	Radius float64
}

// Fix pins the node at (x, y).
func (n *Node) Fix(x, y float64) {
	n.FX, n.FY = &x, &y
}

// Unfix releases both axes.
func (n *Node) Unfix() {
	n.FX, n.FY = nil, nil
}

// Accessor reads a per-node parameter.
type Accessor func(n *Node) float64

// Constant returns an accessor that ignores the node.
func Constant(v float64) Accessor {
	return func(*Node) float64 { return v }
}

// Radius reads the node's own radius.
func Radius(n *Node) float64 { return n.Radius }

// RadiusPlus returns an accessor for the node's radius plus padding.
func RadiusPlus(padding float64) Accessor {
	return func(n *Node) float64 { return n.Radius + padding }
}

const (
	initialRadius = 10
)

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// place positions nodes that have no position on a phyllotaxis spiral
// and clears unset velocities.
func place(nodes []*Node) {
	for i, n := range nodes {
		n.Index = i
		if n.FX != nil {
			n.X = *n.FX
		}
		if n.FY != nil {
			n.Y = *n.FY
		}
		if math.IsNaN(n.X) || math.IsNaN(n.Y) {
			r := initialRadius * math.Sqrt(0.5+float64(i))
			a := float64(i) * initialAngle
			n.X = r * math.Cos(a)
			n.Y = r * math.Sin(a)
		}
		if math.IsNaN(n.VX) || math.IsNaN(n.VY) {
			n.VX, n.VY = 0, 0
		}
	}
}
