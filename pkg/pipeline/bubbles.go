package pipeline

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cartoforce/pkg/dataset"
	"github.com/matzehuels/cartoforce/pkg/force"
	"github.com/matzehuels/cartoforce/pkg/layout"
	"github.com/matzehuels/cartoforce/pkg/observability"
	"github.com/matzehuels/cartoforce/pkg/render/palette"
	"github.com/matzehuels/cartoforce/pkg/scene"
)

// Force slot names of the bubble simulation, in application order.
const (
	forceX      = "x"
	forceY      = "y"
	forceCharge = "charge"
)

// BubbleChart is a live bubble simulation driven by scroll steps.
//
// The chart owns its simulation. Nothing advances it in the background:
// callers tick it with [BubbleChart.Advance] once per frame or run a batch
// with [BubbleChart.Settle]. A BubbleChart is not safe for concurrent use.
type BubbleChart struct {
	ID string

	cfg     *scene.Config
	canvas  scene.Canvas
	records []dataset.Record
	sim     *force.Simulation

	fills     []string
	combined  [2]force.Force
	separated [2]force.Force

	step      scene.Step
	highlight map[string]bool
	labels    map[string]bool
}

// Bubbles builds a bubble chart over records. Every record's category must
// have a placement in the scene; otherwise the chart is not built and the
// error names the missing categories.
func (r *Runner) Bubbles(ctx context.Context, records []dataset.Record, opts Options) (*BubbleChart, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	cfg := opts.Scene
	b := cfg.Bubbles
	if err := b.Categories.Check(dataset.Categories(records)); err != nil {
		return nil, err
	}
	ramp, err := palette.NewRamp(b.ColorRange[0], b.ColorRange[1])
	if err != nil {
		return nil, fmt.Errorf("color range: %w", err)
	}
	radius := palette.NewSqrt([2]float64{b.RadiusDomain[0], b.RadiusDomain[1]}, [2]float64{b.RadiusRange[0], b.RadiusRange[1]}, false)
	color := palette.NewSqrt([2]float64{b.ColorDomain[0], b.ColorDomain[1]}, [2]float64{0, 1}, false)

	c := &BubbleChart{
		ID:      uuid.NewString(),
		cfg:     cfg,
		canvas:  opts.BubblesCanvas(),
		records: records,
		fills:   make([]string, len(records)),
	}
	nodes := make([]*force.Node, len(records))
	targets := make([]scene.Placement, len(records))
	for i, rec := range records {
		nodes[i] = &force.Node{X: math.NaN(), Y: math.NaN(), Radius: radius.Map(rec.Value)}
		c.fills[i] = ramp.At(color.Map(rec.Value))
		// Check above guarantees the lookup succeeds.
		targets[i], _ = b.Categories.Lookup(rec.Category)
	}

	cx, cy := c.canvas.InnerWidth()/2, c.canvas.InnerHeight()/2
	c.combined = [2]force.Force{
		force.X(cx).Strength(b.CombinedStrength),
		force.Y(cy).Strength(b.CombinedStrength),
	}
	c.separated = [2]force.Force{
		force.XFunc(func(n *force.Node) float64 { return targets[n.Index].X }).Strength(b.SeparatedStrength),
		force.YFunc(func(n *force.Node) float64 { return targets[n.Index].Y }).Strength(b.SeparatedStrength),
	}

	c.sim = force.New(nodes, force.WithSeed(opts.Seed))
	forces := []struct {
		name string
		f    force.Force
	}{
		{forceX, c.combined[0]},
		{forceY, c.combined[1]},
		{forceCollide, force.NewCollide(force.RadiusPlus(b.CollidePadding)).Strength(b.CollideStrength)},
		{forceCharge, force.NewManyBody().Strength(b.Charge)},
	}
	for _, f := range forces {
		if err := c.sim.SetForce(f.name, f.f); err != nil {
			return nil, fmt.Errorf("force %s: %w", f.name, err)
		}
	}
	c.step = scene.Step{Layout: scene.LayoutCombined}

	observability.Pipeline().OnSolveStart(ctx, layout.KindBubbles, len(nodes), 0)
	r.Logger.Info("built bubble chart",
		"records", len(records),
		"categories", len(dataset.Categories(records)))

	if opts.Step != "" {
		if err := c.ApplyStep(ctx, opts.Step); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ApplyStep moves the chart to the named scroll step. The x/y slots always
// take the step's layout; the simulation is reheated toward the scene's
// alpha target only when the step asks for it, so restyling steps leave
// motion alone.
func (c *BubbleChart) ApplyStep(ctx context.Context, name string) error {
	step, err := c.cfg.Step(name)
	if err != nil {
		return err
	}
	pair := c.combined
	if step.Layout == scene.LayoutSeparated {
		pair = c.separated
	}
	if err := c.sim.SetForce(forceX, pair[0]); err != nil {
		return fmt.Errorf("force %s: %w", forceX, err)
	}
	if err := c.sim.SetForce(forceY, pair[1]); err != nil {
		return fmt.Errorf("force %s: %w", forceY, err)
	}
	if step.Restart {
		if err := c.sim.SetAlphaTarget(c.cfg.Bubbles.AlphaTarget); err != nil {
			return err
		}
		c.sim.Restart()
	}

	c.step = step
	c.highlight = set(c.cfg.Members(step.Highlight))
	c.labels = set(c.cfg.Members(step.Labels))
	observability.Pipeline().OnStep(ctx, name, step.Restart)
	return nil
}

// Step returns the current scroll step. Before any step is applied it is
// an unnamed combined layout.
func (c *BubbleChart) Step() scene.Step { return c.step }

// Simulation exposes the owned simulation for frame-driven callers.
func (c *BubbleChart) Simulation() *force.Simulation { return c.sim }

// Advance runs one frame: it ticks while the simulation is running and
// reports whether it still is.
func (c *BubbleChart) Advance() bool {
	return c.sim.Step()
}

// Settle ticks the simulation for at most maxTicks frames or until it
// stops, and returns the number of ticks run. A step with a nonzero alpha
// target keeps the simulation warm, so maxTicks is what ends the batch.
func (c *BubbleChart) Settle(ctx context.Context, maxTicks int) int {
	start := time.Now()
	n := 0
	for ; n < maxTicks && c.sim.Running(); n++ {
		c.sim.Step()
	}
	observability.Pipeline().OnSolveComplete(ctx, layout.KindBubbles, n, time.Since(start), nil)
	return n
}

// Snapshot returns a read-only copy of positions and styling for the
// current step.
func (c *BubbleChart) Snapshot() *layout.Layout {
	b := c.cfg.Bubbles
	l := &layout.Layout{
		ID:      c.ID,
		Kind:    layout.KindBubbles,
		Width:   c.canvas.Width,
		Height:  c.canvas.Height,
		OffsetX: c.canvas.Margin.Left,
		OffsetY: c.canvas.Margin.Top,
		Step:    c.step.Name,
		Ticks:   c.sim.Ticks(),
		Alpha:   c.sim.Alpha(),
		Nodes:   make([]layout.Node, len(c.records)),
	}
	for i, n := range c.sim.Nodes() {
		rec := c.records[i]
		v := rec.Value
		fill := c.fills[i]
		if c.highlight[rec.Label] {
			fill = b.Highlight
		}
		l.Nodes[i] = layout.Node{
			ID:        rec.Label,
			Category:  rec.Category,
			Value:     &v,
			X:         n.X,
			Y:         n.Y,
			R:         n.Radius,
			Fill:      fill,
			Opacity:   b.Opacity,
			Highlight: c.highlight[rec.Label],
			ShowLabel: c.labels[rec.Label],
		}
	}
	for _, cat := range dataset.Categories(c.records) {
		p, _ := b.Categories.Lookup(cat)
		l.Labels = append(l.Labels, layout.Label{
			Text:    cat,
			X:       p.LabelX,
			Y:       p.LabelY,
			Visible: c.step.CategoryLabels,
		})
	}
	return l
}

func set(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
