package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/paulmach/orb"

	"github.com/matzehuels/cartoforce/pkg/dataset"
	"github.com/matzehuels/cartoforce/pkg/errors"
	"github.com/matzehuels/cartoforce/pkg/layout"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"json", false},
		{"dot", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if opts.Seed != DefaultSeed || opts.AlphaThreshold != 0.1 || opts.SegmentsPerPerimeter != 72 {
		t.Errorf("defaults = seed %d, alpha %v, segments %d", opts.Seed, opts.AlphaThreshold, opts.SegmentsPerPerimeter)
	}
	if w, h := opts.CartogramCanvas(); w != 960 || h != 600 {
		t.Errorf("cartogram canvas = %vx%v", w, h)
	}
	if c := opts.BubblesCanvas(); c.InnerWidth() != 960 || c.InnerHeight() != 620 {
		t.Errorf("bubbles inner canvas = %vx%v", c.InnerWidth(), c.InnerHeight())
	}
	if opts.NeedsFit() {
		t.Error("unprojected input should not be fitted by default")
	}
	if got := opts.Schedule().Total().Milliseconds(); got != 3750 {
		t.Errorf("schedule total = %dms, want 3750", got)
	}
}

func TestOptionsValidate(t *testing.T) {
	neg := -0.5
	tests := []struct {
		name string
		opts Options
	}{
		{"format", Options{Formats: []string{"gif"}}},
		{"projection", Options{Projection: "albers"}},
		{"easing", Options{Easing: "bounce"}},
		{"frames", Options{Frames: 1}},
		{"at", Options{At: &neg}},
		{"width", Options{Width: -1}},
		{"segments", Options{SegmentsPerPerimeter: 2}},
		{"step", Options{Step: "nowhere"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}}}
}

func row() []dataset.Feature {
	return []dataset.Feature{
		{ID: "A", Name: "Alpha", Geometry: square(100, 100, 100)},
		{ID: "B", Name: "Beta", Geometry: square(200, 100, 100)},
		{ID: "C", Name: "Gamma", Geometry: square(300, 100, 100)},
	}
}

func TestCartogram(t *testing.T) {
	r := NewRunner(nil)
	cycle, err := r.Cartogram(context.Background(), row(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	if cycle.ID == "" {
		t.Error("cycle has no id")
	}
	if len(cycle.Nodes) != 3 || len(cycle.Skipped) != 0 {
		t.Fatalf("nodes = %d, skipped = %v", len(cycle.Nodes), cycle.Skipped)
	}
	if len(cycle.Links) != 2 {
		t.Errorf("links = %v, want A-B and B-C", cycle.Links)
	}
	for _, lk := range cycle.Links {
		want := cycle.Nodes[lk.Source].Node.Radius + cycle.Nodes[lk.Target].Node.Radius + 3
		if math.Abs(lk.Distance-want) > 1e-9 {
			t.Errorf("link %s distance = %v, want %v", lk, lk.Distance, want)
		}
	}
	if cycle.Ticks == 0 || cycle.Alpha >= 0.1 {
		t.Errorf("ticks = %d, alpha = %v", cycle.Ticks, cycle.Alpha)
	}
	for _, n := range cycle.Nodes {
		if n.Node.Radius < minRadius || n.Node.Radius > 45 {
			t.Errorf("%s radius = %v", n.Feature.ID, n.Node.Radius)
		}
		if n.Morph == nil || !strings.HasPrefix(n.Morph.Path(1), "M ") {
			t.Errorf("%s has no morph", n.Feature.ID)
		}
	}

	drawing := cycle.Drawing()
	for i := 1; i < len(drawing); i++ {
		if drawing[i].Node.Radius > drawing[i-1].Node.Radius {
			t.Error("drawing order must be by descending radius")
		}
	}
}

func TestCartogramDeterministic(t *testing.T) {
	r := NewRunner(nil)
	ctx := context.Background()
	a, err := r.Cartogram(ctx, row(), Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Cartogram(ctx, row(), Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	c, err := r.Cartogram(ctx, row(), Options{Seed: 8})
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Nodes {
		if a.Nodes[i].Node.X != b.Nodes[i].Node.X || a.Nodes[i].Node.Y != b.Nodes[i].Node.Y {
			t.Errorf("node %d differs between runs with the same seed", i)
		}
	}
	if a.Nodes[0].Node.Radius == c.Nodes[0].Node.Radius {
		t.Error("a different seed should draw different radii")
	}
}

func TestCartogramSkipsBadGeometry(t *testing.T) {
	features := append(row(),
		dataset.Feature{ID: "none"},
		dataset.Feature{ID: "flat", Geometry: orb.Polygon{{{0, 0}, {1, 1}}}},
	)
	cycle, err := NewRunner(nil).Cartogram(context.Background(), features, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cycle.Nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(cycle.Nodes))
	}
	if len(cycle.Skipped) != 2 {
		t.Fatalf("skipped = %v", cycle.Skipped)
	}
	for _, s := range cycle.Skipped {
		if s.Code != string(errors.ErrCodeInvalidGeometry) {
			t.Errorf("skip %s code = %s", s.ID, s.Code)
		}
	}
}

func TestCartogramMetric(t *testing.T) {
	hundred, quarter := 100.0, 25.0
	features := row()
	features[0].Metric = &hundred
	features[1].Metric = &quarter

	cycle, err := NewRunner(nil).Cartogram(context.Background(), features, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cycle.Nodes) != 2 || len(cycle.Skipped) != 1 || cycle.Skipped[0].ID != "C" {
		t.Fatalf("nodes = %d, skipped = %v", len(cycle.Nodes), cycle.Skipped)
	}
	if got := cycle.Nodes[0].Node.Radius; math.Abs(got-45) > 1e-9 {
		t.Errorf("largest metric radius = %v, want 45", got)
	}
	if got := cycle.Nodes[1].Node.Radius; math.Abs(got-22.5) > 1e-9 {
		t.Errorf("quarter metric radius = %v, want 22.5", got)
	}
	if cycle.Fill(cycle.Nodes[0]) != "#5e4fa2" || cycle.Fill(cycle.Nodes[1]) != "#9e0142" {
		t.Errorf("fills = %s, %s", cycle.Fill(cycle.Nodes[0]), cycle.Fill(cycle.Nodes[1]))
	}
}

func TestCartogramEmpty(t *testing.T) {
	cycle, err := NewRunner(nil).Cartogram(context.Background(), nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if cycle.Ticks != 0 || len(cycle.Nodes) != 0 {
		t.Errorf("empty cycle = %d ticks, %d nodes", cycle.Ticks, len(cycle.Nodes))
	}
}

func TestCartogramLayout(t *testing.T) {
	cycle, err := NewRunner(nil).Cartogram(context.Background(), row(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	l := cycle.Layout()
	if err := l.Validate(); err != nil {
		t.Fatal(err)
	}
	n, ok := l.Node("B")
	if !ok || n.Name != "Beta" || n.Path == "" || n.Circle == "" {
		t.Errorf("layout node B = %+v", n)
	}
}

func TestRenderCartogram(t *testing.T) {
	r := NewRunner(nil)
	ctx := context.Background()
	cycle, err := r.Cartogram(ctx, row(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	half := 0.5
	tests := []struct {
		name string
		opts Options
		want map[string]string
	}{
		{"animation", Options{Formats: []string{"svg", "json", "dot"}}, map[string]string{
			"svg":  "<animate ",
			"json": `"kind": "cartogram"`,
			"dot":  `"A" -- "B";`,
		}},
		{"frame", Options{At: &half}, map[string]string{"svg": "<path"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			artifacts, err := r.RenderCartogram(ctx, cycle, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			for format, s := range tt.want {
				if !strings.Contains(string(artifacts[format]), s) {
					t.Errorf("%s output lacks %q", format, s)
				}
			}
		})
	}
}

func records() []dataset.Record {
	return []dataset.Record{
		{Label: "Niger", Category: "Sub-Saharan Africa", Value: 186.5},
		{Label: "Mali", Category: "Sub-Saharan Africa", Value: 169.1},
		{Label: "Canada", Category: "North America", Value: 8.4},
	}
}

func TestBubblesUnknownCategory(t *testing.T) {
	recs := append(records(), dataset.Record{Label: "Atlantis", Category: "Oceania", Value: 1})
	_, err := NewRunner(nil).Bubbles(context.Background(), recs, Options{})
	if !errors.Is(err, errors.ErrCodeUnknownCategory) {
		t.Errorf("err = %v, want UNKNOWN_CATEGORY", err)
	}
}

func TestBubblesSteps(t *testing.T) {
	ctx := context.Background()
	chart, err := NewRunner(nil).Bubbles(ctx, records(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	snap := chart.Snapshot()
	if len(snap.Nodes) != 3 || snap.OffsetX != 20 || snap.OffsetY != 50 {
		t.Fatalf("snapshot = %d nodes, offset %v,%v", len(snap.Nodes), snap.OffsetX, snap.OffsetY)
	}
	for _, lb := range snap.Labels {
		if lb.Visible {
			t.Errorf("category label %s visible before split", lb.Text)
		}
	}

	if err := chart.ApplyStep(ctx, "asia"); err != nil {
		t.Fatal(err)
	}
	snap = chart.Snapshot()
	niger, _ := snap.Node("Niger")
	canada, _ := snap.Node("Canada")
	if !niger.Highlight || niger.Fill != "#f7545d" || !niger.ShowLabel {
		t.Errorf("Niger at asia = %+v", niger)
	}
	if canada.Highlight || canada.ShowLabel || canada.Fill == "#f7545d" {
		t.Errorf("Canada at asia = %+v", canada)
	}

	if err := chart.ApplyStep(ctx, "split"); err != nil {
		t.Fatal(err)
	}
	if got := chart.Settle(ctx, 300); got != 300 {
		t.Errorf("settle ran %d ticks; a warm simulation should use the whole budget", got)
	}
	snap = chart.Snapshot()
	niger, _ = snap.Node("Niger")
	canada, _ = snap.Node("Canada")
	if math.Abs(canada.X-280) > 20 || math.Abs(canada.Y-500) > 20 {
		t.Errorf("Canada at (%v, %v), want near North America (280, 500)", canada.X, canada.Y)
	}
	if math.Abs(niger.Y-200) > 40 {
		t.Errorf("Niger y = %v, want near 200", niger.Y)
	}
	for _, lb := range snap.Labels {
		if !lb.Visible {
			t.Errorf("category label %s hidden after split", lb.Text)
		}
	}

	alpha := chart.Simulation().Alpha()
	if err := chart.ApplyStep(ctx, "split-highlight"); err != nil {
		t.Fatal(err)
	}
	if chart.Simulation().Alpha() != alpha {
		t.Error("a restyling step must not reheat the simulation")
	}
	if chart.Step().Name != "split-highlight" {
		t.Errorf("step = %q", chart.Step().Name)
	}

	if err := chart.ApplyStep(ctx, "finale"); !errors.Is(err, errors.ErrCodeUnknownStep) {
		t.Errorf("unknown step err = %v", err)
	}
}

func TestRenderBubbles(t *testing.T) {
	r := NewRunner(nil)
	ctx := context.Background()
	chart, err := r.Bubbles(ctx, records(), Options{Step: "asia"})
	if err != nil {
		t.Fatal(err)
	}
	chart.Settle(ctx, 10)
	artifacts, err := r.RenderBubbles(ctx, chart.Snapshot(), Options{Formats: []string{"svg", "json"}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(artifacts["svg"]), ">Niger<") {
		t.Error("svg lacks the Niger label")
	}
	var l layout.Layout
	if err := json.Unmarshal(artifacts["json"], &l); err != nil {
		t.Fatal(err)
	}
	if l.Step != "asia" || len(l.Nodes) != 3 {
		t.Errorf("json layout = step %q, %d nodes", l.Step, len(l.Nodes))
	}

	if _, err := r.RenderBubbles(ctx, chart.Snapshot(), Options{Formats: []string{"dot"}}); err == nil {
		t.Error("dot is not a bubble chart format")
	}
}
