package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cartoforce/pkg/dataset"
	"github.com/matzehuels/cartoforce/pkg/errors"
	"github.com/matzehuels/cartoforce/pkg/force"
	"github.com/matzehuels/cartoforce/pkg/geom"
	"github.com/matzehuels/cartoforce/pkg/layout"
	"github.com/matzehuels/cartoforce/pkg/morph"
	"github.com/matzehuels/cartoforce/pkg/observability"
	"github.com/matzehuels/cartoforce/pkg/render/palette"
	"github.com/matzehuels/cartoforce/pkg/render/svg"
	"github.com/matzehuels/cartoforce/pkg/scene"
)

// Force slot names of the cartogram simulation, in application order.
const (
	forceCenterX = "cx"
	forceCenterY = "cy"
	forceLink    = "link"
	forceAnchorX = "x"
	forceAnchorY = "y"
	forceCollide = "collide"
)

// CartogramNode is one feature of a solved cartogram.
type CartogramNode struct {
	Feature dataset.Feature
	Shape   *geom.Shape

	// Node holds the solved circle: its center and radius.
	Node  *force.Node
	Morph *morph.Interpolator
}

// CartogramCycle is one solved cartogram. It is immutable once returned.
type CartogramCycle struct {
	ID   string
	Seed uint64

	// Nodes are in simulation order; Links index into it.
	Nodes   []*CartogramNode
	Links   []force.Link
	Skipped []layout.Skip

	Ticks int
	Alpha float64

	// RadiusExtent is the smallest and largest solved radius; it is the
	// domain of the fill color scale.
	RadiusExtent [2]float64

	Width    float64
	Height   float64
	BaseFill string
	Timing   scene.Timing
}

// Cartogram runs one batch cartogram cycle over features.
//
// Features whose geometry cannot be cleaned are skipped and reported; they
// never abort the cycle. When any feature carries a metric, circles are
// sized by metric and features without one are skipped. Otherwise radii are
// drawn from a seeded normal distribution.
func (r *Runner) Cartogram(ctx context.Context, features []dataset.Feature, opts Options) (*CartogramCycle, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	hooks := observability.Pipeline()
	cfg := opts.Scene.Cartogram

	work, err := r.PrepareFeatures(ctx, features, opts)
	if err != nil {
		return nil, err
	}

	cycle := &CartogramCycle{
		ID:       uuid.NewString(),
		Seed:     opts.Seed,
		BaseFill: cfg.BaseFill,
		Timing:   cfg.Timing,
	}
	cycle.Width, cycle.Height = opts.CartogramCanvas()

	skip := func(f dataset.Feature, err error) {
		cycle.Skipped = append(cycle.Skipped, layout.NewSkip(f.ID, err))
		hooks.OnNodeSkipped(ctx, layout.KindCartogram, f.ID, err)
		r.Logger.Warn("skipped feature", "id", f.ID, "err", err)
	}

	// Shapes
	var kept []*CartogramNode
	for _, f := range work {
		if f.Geometry == nil {
			skip(f, errors.New(errors.ErrCodeInvalidGeometry, "feature %s has no geometry", f.ID))
			continue
		}
		shape, err := geom.Cleanup(f.Geometry, geom.CleanupOptions{
			MaxSegmentLength:     opts.MaxSegmentLength,
			SegmentsPerPerimeter: opts.SegmentsPerPerimeter,
		})
		if err != nil {
			skip(f, err)
			continue
		}
		kept = append(kept, &CartogramNode{Feature: f, Shape: shape})
	}

	// Radii
	radius := r.radiusFunc(kept, cfg, opts.Seed)
	for _, n := range kept {
		rad, err := radius(n.Feature)
		if err != nil {
			skip(n.Feature, err)
			continue
		}
		n.Node = &force.Node{X: n.Shape.Origin[0], Y: n.Shape.Origin[1], Radius: rad}
		cycle.Nodes = append(cycle.Nodes, n)
	}

	nodes := make([]*force.Node, len(cycle.Nodes))
	radii := make([]float64, len(cycle.Nodes))
	feats := make([]dataset.Feature, len(cycle.Nodes))
	for i, n := range cycle.Nodes {
		nodes[i], radii[i], feats[i] = n.Node, n.Node.Radius, n.Feature
	}
	cycle.RadiusExtent[0], cycle.RadiusExtent[1] = palette.Extent(radii)

	// Links between features sharing a border
	for i, nb := range dataset.Neighbors(feats, opts.NeighborTolerance) {
		for _, j := range nb {
			if j <= i {
				continue
			}
			cycle.Links = append(cycle.Links, force.Link{
				Source:   i,
				Target:   j,
				Distance: radii[i] + radii[j] + cfg.LinkPadding,
			})
		}
	}

	// Solve
	hooks.OnSolveStart(ctx, layout.KindCartogram, len(nodes), len(cycle.Links))
	start := time.Now()
	sim := force.New(nodes, force.WithSeed(opts.Seed))
	if err := installCartogramForces(sim, cycle, cfg); err != nil {
		hooks.OnSolveComplete(ctx, layout.KindCartogram, 0, time.Since(start), err)
		return nil, fmt.Errorf("install forces: %w", err)
	}
	ticks, err := sim.Converge(opts.AlphaThreshold)
	hooks.OnSolveComplete(ctx, layout.KindCartogram, ticks, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	cycle.Ticks, cycle.Alpha = ticks, sim.Alpha()

	r.Logger.Info("solved cartogram",
		"nodes", len(nodes),
		"links", len(cycle.Links),
		"skipped", len(cycle.Skipped),
		"ticks", ticks,
		"duration", time.Since(start))

	// Morphs
	start = time.Now()
	for _, n := range cycle.Nodes {
		m, err := morph.New(n.Shape, n.Node.X, n.Node.Y, n.Node.Radius)
		if err != nil {
			return nil, fmt.Errorf("morph %s: %w", n.Feature.ID, err)
		}
		n.Morph = m
	}
	hooks.OnMorphComplete(ctx, len(cycle.Nodes), time.Since(start))

	return cycle, nil
}

func installCartogramForces(sim *force.Simulation, cycle *CartogramCycle, cfg scene.Cartogram) error {
	anchorX := func(n *force.Node) float64 { return n.X }
	anchorY := func(n *force.Node) float64 { return n.Y }
	forces := []struct {
		name string
		f    force.Force
	}{
		{forceCenterX, force.X(cycle.Width / 2).Strength(cfg.CenterStrength)},
		{forceCenterY, force.Y(cycle.Height / 2).Strength(cfg.CenterStrength)},
		{forceLink, force.NewLinks(cycle.Links)},
		{forceAnchorX, force.XFunc(anchorX).Strength(cfg.AnchorStrength)},
		{forceAnchorY, force.YFunc(anchorY).Strength(cfg.AnchorStrength)},
		{forceCollide, force.NewCollide(force.RadiusPlus(cfg.CollidePadding)).Strength(cfg.CollideStrength)},
	}
	for _, f := range forces {
		if err := sim.SetForce(f.name, f.f); err != nil {
			return fmt.Errorf("force %s: %w", f.name, err)
		}
	}
	return nil
}

// radiusFunc sizes circles by metric when any feature has one, and by a
// seeded normal draw otherwise.
func (r *Runner) radiusFunc(nodes []*CartogramNode, cfg scene.Cartogram, seed uint64) func(dataset.Feature) (float64, error) {
	maxMetric, metrics := 0.0, false
	for _, n := range nodes {
		if m := n.Feature.Metric; m != nil {
			metrics = true
			if *m > maxMetric {
				maxMetric = *m
			}
		}
	}

	if metrics {
		scale := palette.NewSqrt([2]float64{0, maxMetric}, [2]float64{0, cfg.MaxRadius}, true)
		r.Logger.Debug("sizing circles by metric", "property", cfg.MetricProperty, "max", maxMetric)
		return func(f dataset.Feature) (float64, error) {
			switch {
			case f.Metric == nil:
				return 0, errors.New(errors.ErrCodeInvalidArgument, "feature %s has no metric", f.ID)
			case *f.Metric < 0 || math.IsNaN(*f.Metric):
				return 0, errors.New(errors.ErrCodeInvalidArgument, "feature %s has invalid metric %v", f.ID, *f.Metric)
			case maxMetric == 0:
				return minRadius, nil
			}
			return math.Max(minRadius, scale.Map(*f.Metric)), nil
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed))
	scale := palette.NewSqrt([2]float64{0, 1}, [2]float64{0, cfg.MaxRadius}, true)
	return func(dataset.Feature) (float64, error) {
		v := cfg.RadiusMean + rng.NormFloat64()*cfg.RadiusStdDev
		return math.Max(minRadius, scale.Map(v)), nil
	}
}

// Drawing returns nodes in drawing order: largest circle first, so small
// circles stay visible on top.
func (c *CartogramCycle) Drawing() []*CartogramNode {
	out := slices.Clone(c.Nodes)
	slices.SortStableFunc(out, func(a, b *CartogramNode) int {
		return cmp.Compare(b.Node.Radius, a.Node.Radius)
	})
	return out
}

// Fill returns the color a node's circle reaches at the end of the morph.
func (c *CartogramCycle) Fill(n *CartogramNode) string {
	return palette.Spectral(palette.Unit(n.Node.Radius, c.RadiusExtent[0], c.RadiusExtent[1]))
}

// Canvas returns the cycle in the shape the SVG renderer draws.
func (c *CartogramCycle) Canvas() svg.Cartogram {
	out := svg.Cartogram{Width: c.Width, Height: c.Height, BaseFill: c.BaseFill}
	for _, n := range c.Drawing() {
		out.Shapes = append(out.Shapes, svg.Shape{
			ID:    n.Feature.ID,
			Name:  n.Feature.Name,
			Fill:  c.Fill(n),
			Morph: n.Morph,
		})
	}
	return out
}

// Layout exports the solved cycle.
func (c *CartogramCycle) Layout() *layout.Layout {
	l := &layout.Layout{
		ID:      c.ID,
		Kind:    layout.KindCartogram,
		Width:   c.Width,
		Height:  c.Height,
		Ticks:   c.Ticks,
		Alpha:   c.Alpha,
		Links:   c.Links,
		Skipped: c.Skipped,
		Nodes:   make([]layout.Node, len(c.Nodes)),
	}
	for i, n := range c.Nodes {
		l.Nodes[i] = layout.Node{
			ID:     n.Feature.ID,
			Name:   n.Feature.Name,
			Value:  n.Feature.Metric,
			X:      n.Node.X,
			Y:      n.Node.Y,
			R:      n.Node.Radius,
			Fill:   c.Fill(n),
			Path:   n.Morph.Path(0),
			Circle: n.Morph.Path(1),
		}
	}
	return l
}
