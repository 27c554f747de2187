package force

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Default simulation parameters.
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	DefaultSeed          = 1
)

// DefaultAlphaDecay takes alpha from 1 to DefaultAlphaMin in 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

// Force contributes velocity to simulated nodes.
//
// Initialize is called whenever the force is installed or the node set
// changes. It caches per-node parameters and validates them. Apply is
// called once per tick with the current alpha.
type Force interface {
	Initialize(nodes []*Node, rng *rand.Rand) error
	Apply(alpha float64)
}

type slot struct {
	name  string
	force Force
}

// Simulation advances a set of nodes under a set of named forces.
type Simulation struct {
	nodes  []*Node
	forces []slot

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64 // stored as the retained fraction, 1 - decay

	rng     *rand.Rand
	running bool
	ticks   int

	onTick []func(*Simulation)
	onEnd  []func(*Simulation)
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithSeed seeds the source used to separate coincident nodes.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithAlphaMin sets the alpha below which a frame-driven simulation stops.
func WithAlphaMin(v float64) Option {
	return func(s *Simulation) { s.alphaMin = v }
}

// WithAlphaDecay sets the per-tick decay rate of alpha toward its target.
func WithAlphaDecay(v float64) Option {
	return func(s *Simulation) { s.alphaDecay = v }
}

// WithVelocityDecay sets the fraction of velocity lost each tick.
func WithVelocityDecay(v float64) Option {
	return func(s *Simulation) { s.velocityDecay = 1 - v }
}

// New creates a running simulation over nodes. Nodes without a position
// (NaN coordinates) are placed on a spiral around the origin.
func New(nodes []*Node, opts ...Option) *Simulation {
	s := &Simulation{
		nodes:         nodes,
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: 1 - DefaultVelocityDecay,
		running:       true,
	}
	WithSeed(DefaultSeed)(s)
	for _, opt := range opts {
		opt(s)
	}
	place(s.nodes)
	return s
}

// Nodes returns the simulated nodes.
func (s *Simulation) Nodes() []*Node { return s.nodes }

// SetNodes replaces the node set and re-initializes every installed force.
// If any force rejects the new nodes, the previous nodes stay in place and
// forces already re-bound are bound back to them.
func (s *Simulation) SetNodes(nodes []*Node) error {
	prev := s.nodes
	place(nodes)
	for i, sl := range s.forces {
		if err := sl.force.Initialize(nodes, s.rng); err != nil {
			for _, done := range s.forces[:i] {
				_ = done.force.Initialize(prev, s.rng)
			}
			return errors.Wrap(errors.GetCode(err), err, "force %q", sl.name)
		}
	}
	s.nodes = nodes
	return nil
}

// SetForce installs f under name, replacing any force already there while
// keeping its position in the application order. If f fails to
// initialize against the current nodes the slot is left untouched.
func (s *Simulation) SetForce(name string, f Force) error {
	if f == nil {
		return errors.New(errors.ErrCodeInvalidArgument, "force %q is nil", name)
	}
	if err := f.Initialize(s.nodes, s.rng); err != nil {
		return err
	}
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces[i].force = f
			return nil
		}
	}
	s.forces = append(s.forces, slot{name: name, force: f})
	return nil
}

// RemoveForce uninstalls the force under name, if any.
func (s *Simulation) RemoveForce(name string) {
	for i := range s.forces {
		if s.forces[i].name == name {
			s.forces = append(s.forces[:i], s.forces[i+1:]...)
			return
		}
	}
}

// Force returns the force installed under name, or nil.
func (s *Simulation) Force(name string) Force {
	for _, sl := range s.forces {
		if sl.name == name {
			return sl.force
		}
	}
	return nil
}

// ForceNames lists installed slots in application order.
func (s *Simulation) ForceNames() []string {
	names := make([]string, len(s.forces))
	for i, sl := range s.forces {
		names[i] = sl.name
	}
	return names
}

// =============================================================================
// Alpha
// =============================================================================

func (s *Simulation) Alpha() float64       { return s.alpha }
func (s *Simulation) AlphaMin() float64    { return s.alphaMin }
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }
func (s *Simulation) Ticks() int           { return s.ticks }
func (s *Simulation) Running() bool        { return s.running }

// SetAlpha sets the current temperature. It must lie in [0, 1].
func (s *Simulation) SetAlpha(a float64) error {
	if err := errors.ValidateFraction("alpha", a); err != nil {
		return err
	}
	s.alpha = a
	return nil
}

// SetAlphaTarget sets the value alpha decays toward. It must lie in [0, 1].
func (s *Simulation) SetAlphaTarget(t float64) error {
	if err := errors.ValidateFraction("alpha target", t); err != nil {
		return err
	}
	s.alphaTarget = t
	return nil
}

// Restart resets alpha to 1 and resumes frame-driven stepping.
func (s *Simulation) Restart() {
	s.alpha = 1
	s.running = true
}

// Stop halts frame-driven stepping. Positions are left as they are.
func (s *Simulation) Stop() {
	s.running = false
}

// OnTick registers fn to run after each frame-driven step.
func (s *Simulation) OnTick(fn func(*Simulation)) {
	s.onTick = append(s.onTick, fn)
}

// OnEnd registers fn to run when a frame-driven simulation cools below
// its minimum alpha.
func (s *Simulation) OnEnd(fn func(*Simulation)) {
	s.onEnd = append(s.onEnd, fn)
}

// =============================================================================
// Ticking
// =============================================================================

// Tick advances the simulation by one iteration without firing listeners.
// It does nothing when there are no nodes.
func (s *Simulation) Tick() {
	if len(s.nodes) == 0 {
		return
	}
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, sl := range s.forces {
		sl.force.Apply(s.alpha)
	}

	for _, n := range s.nodes {
		if n.FX == nil {
			n.VX *= s.velocityDecay
			n.X += n.VX
		} else {
			n.X, n.VX = *n.FX, 0
		}
		if n.FY == nil {
			n.VY *= s.velocityDecay
			n.Y += n.VY
		} else {
			n.Y, n.VY = *n.FY, 0
		}
	}
	s.ticks++
}

// Step performs one frame-driven tick and fires tick listeners. It
// reports whether the simulation is still running afterwards; once alpha
// falls below the minimum the simulation stops and end listeners fire.
func (s *Simulation) Step() bool {
	if !s.running {
		return false
	}
	if len(s.nodes) == 0 {
		s.finish()
		return false
	}
	s.Tick()
	for _, fn := range s.onTick {
		fn(s)
	}
	if s.alpha < s.alphaMin {
		s.finish()
		return false
	}
	return true
}

func (s *Simulation) finish() {
	s.running = false
	for _, fn := range s.onEnd {
		fn(s)
	}
}

// Converge ticks until alpha drops below threshold and returns the number
// of ticks taken. It fails if the alpha target would keep alpha at or
// above the threshold forever.
func (s *Simulation) Converge(threshold float64) (int, error) {
	if err := errors.ValidatePositive("threshold", threshold); err != nil {
		return 0, err
	}
	if len(s.nodes) == 0 {
		return 0, nil
	}
	if s.alpha >= threshold && (s.alphaTarget >= threshold || s.alphaDecay <= 0) {
		return 0, errors.New(errors.ErrCodeInvalidArgument,
			"alpha target %v never drops below threshold %v", s.alphaTarget, threshold)
	}
	n := 0
	for s.alpha >= threshold {
		s.Tick()
		n++
	}
	return n, nil
}

// Run steps the simulation every interval until it stops or ctx is done.
func (s *Simulation) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.Step() {
				return nil
			}
		}
	}
}

// jiggle returns a tiny non-zero offset used to separate coincident points.
func jiggle(rng *rand.Rand) float64 {
	for {
		if v := (rng.Float64() - 0.5) * 1e-6; v != 0 {
			return v
		}
	}
}
