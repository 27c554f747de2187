// Package pipeline runs the two chart cycles of cartoforce.
//
// This package turns ingested inputs into solved charts and renders them,
// so the CLI and the HTTP server share one code path.
//
// # Architecture
//
// There are two cycles:
//
//  1. Cartogram: clean each feature's geometry, size one circle per
//     feature, solve circle positions against border links, anchors and
//     collisions, then build one shape-to-circle morph per feature. The
//     cycle is a batch: it converges once and is immutable afterwards.
//     Re-simulating means running a new cycle.
//  2. Bubbles: size one circle per record and keep a live simulation whose
//     directional forces are swapped by scroll steps. The returned
//     [BubbleChart] owns its simulation; it is advanced explicitly by the
//     caller, frame by frame or in batches.
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	cycle, err := runner.Cartogram(ctx, features, pipeline.Options{Seed: 7})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	artifacts, err := runner.RenderCartogram(ctx, cycle, opts)
//	svg := artifacts["svg"]
//
// Bubble chart steps:
//
//	chart, err := runner.Bubbles(ctx, records, opts)
//	err = chart.ApplyStep(ctx, "split")
//	chart.Settle(ctx, 300)
//	snapshot := chart.Snapshot()
package pipeline

import (
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cartoforce/pkg/dataset"
	"github.com/matzehuels/cartoforce/pkg/errors"
	"github.com/matzehuels/cartoforce/pkg/render/timeline"
	"github.com/matzehuels/cartoforce/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultSeed is the default random seed for reproducibility.
	DefaultSeed = uint64(42)

	// DefaultFrames is the number of sampled frames per morph in animations.
	DefaultFrames = 30

	// DefaultMaxTicks bounds how long a bubble chart settles in batch mode.
	// Steps reheat toward a nonzero alpha target, so without a bound a
	// settle would never end.
	DefaultMaxTicks = 300

	// DefaultPadding insets fitted features from the canvas edge.
	DefaultPadding = 10.0

	// DefaultNeighborTolerance is the snapping grid used to detect shared
	// borders, in input coordinate units.
	DefaultNeighborTolerance = 1e-6

	// minRadius keeps every circle drawable; a zero radius has no morph.
	minRadius = 0.5
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatJSON: true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// ValidProjections is the set of supported input projections.
var ValidProjections = map[string]bool{
	dataset.ProjectionNone:     true,
	dataset.ProjectionMercator: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the chart pipelines.
// This struct supports JSON serialization for server requests.
type Options struct {
	// Canvas overrides. Zero keeps the scene's canvas size.
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Seed   uint64  `json:"seed,omitempty"`

	// Cartogram input preparation
	Projection        string  `json:"projection,omitempty"`
	Fit               bool    `json:"fit,omitempty"` // fit unprojected input to the canvas
	Padding           float64 `json:"padding,omitempty"`
	Simplify          float64 `json:"simplify,omitempty"`
	NeighborTolerance float64 `json:"neighbor_tolerance,omitempty"`

	// Cartogram solve options. Zero keeps the scene's values.
	SegmentsPerPerimeter int     `json:"segments_per_perimeter,omitempty"`
	MaxSegmentLength     float64 `json:"max_segment_length,omitempty"`
	AlphaThreshold       float64 `json:"alpha_threshold,omitempty"`

	// Bubble chart options
	Step     string `json:"step,omitempty"`
	MaxTicks int    `json:"max_ticks,omitempty"`

	// Render options
	Formats  []string `json:"formats,omitempty"`
	At       *float64 `json:"at,omitempty"` // single cartogram frame instead of an animation
	Frames   int      `json:"frames,omitempty"`
	Easing   string   `json:"easing,omitempty"`
	Repeat   bool     `json:"repeat,omitempty"`
	Detailed bool     `json:"detailed,omitempty"` // link diagram labels
	Scale    float64  `json:"scale,omitempty"`    // PNG scale

	// Runtime options (not serialized)
	Scene  *scene.Config `json:"-"`
	Logger *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidArgument, "invalid format: %q (must be one of: svg, json, dot, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateProjection checks that a projection is valid.
func ValidateProjection(p string) error {
	if !ValidProjections[p] {
		return errors.New(errors.ErrCodeInvalidArgument, "invalid projection: %q (must be one of: none, mercator)", p)
	}
	return nil
}

// ValidateEasing checks that an easing name is valid.
func ValidateEasing(name string) error {
	if !slices.Contains(timeline.Easings, name) {
		return errors.New(errors.ErrCodeInvalidArgument, "invalid easing: %q (must be one of: %v)", name, timeline.Easings)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks option values and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := o.Validate(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills unset options.
func (o *Options) SetDefaults() {
	if o.Scene == nil {
		o.Scene = scene.Default()
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Projection == "" {
		o.Projection = dataset.ProjectionNone
	}
	if o.Padding == 0 {
		o.Padding = DefaultPadding
	}
	if o.NeighborTolerance == 0 {
		o.NeighborTolerance = DefaultNeighborTolerance
	}
	if o.SegmentsPerPerimeter == 0 {
		o.SegmentsPerPerimeter = o.Scene.Cartogram.SegmentsPerPerimeter
	}
	if o.AlphaThreshold == 0 {
		o.AlphaThreshold = o.Scene.Cartogram.AlphaThreshold
	}
	if o.MaxTicks == 0 {
		o.MaxTicks = DefaultMaxTicks
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Frames == 0 {
		o.Frames = DefaultFrames
	}
	if o.Easing == "" {
		o.Easing = timeline.EasingCubic
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate checks option values. Call SetDefaults first.
func (o *Options) Validate() error {
	for name, v := range map[string]float64{"width": o.Width, "height": o.Height, "simplify": o.Simplify, "max_segment_length": o.MaxSegmentLength} {
		if err := errors.ValidateNonNegative(name, v); err != nil {
			return err
		}
	}
	for name, v := range map[string]float64{"padding": o.Padding, "neighbor_tolerance": o.NeighborTolerance, "alpha_threshold": o.AlphaThreshold, "scale": o.Scale} {
		if err := errors.ValidatePositive(name, v); err != nil {
			return err
		}
	}
	if o.SegmentsPerPerimeter < 3 {
		return errors.New(errors.ErrCodeInvalidArgument, "segments_per_perimeter must be at least 3, got %d", o.SegmentsPerPerimeter)
	}
	if o.MaxTicks < 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "max_ticks must be at least 1, got %d", o.MaxTicks)
	}
	if o.Frames < 2 {
		return errors.New(errors.ErrCodeInvalidArgument, "frames must be at least 2, got %d", o.Frames)
	}
	if o.At != nil {
		if err := errors.ValidateFraction("at", *o.At); err != nil {
			return err
		}
	}
	if err := ValidateProjection(o.Projection); err != nil {
		return err
	}
	if err := ValidateEasing(o.Easing); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Step != "" {
		if _, err := o.Scene.Step(o.Step); err != nil {
			return err
		}
	}
	return nil
}

// CartogramCanvas returns the cartogram canvas size with overrides applied.
func (o *Options) CartogramCanvas() (width, height float64) {
	return o.canvas(o.Scene.Cartogram.Canvas)
}

// BubblesCanvas returns the bubble chart canvas with overrides applied.
func (o *Options) BubblesCanvas() scene.Canvas {
	c := o.Scene.Bubbles.Canvas
	c.Width, c.Height = o.canvas(c)
	return c
}

func (o *Options) canvas(c scene.Canvas) (float64, float64) {
	w, h := c.Width, c.Height
	if o.Width > 0 {
		w = o.Width
	}
	if o.Height > 0 {
		h = o.Height
	}
	return w, h
}

// NeedsFit reports whether features are rescaled to the canvas.
func (o *Options) NeedsFit() bool {
	return o.Fit || o.Projection != dataset.ProjectionNone
}

// Schedule returns the cartogram morph schedule from the scene timing.
func (o *Options) Schedule() timeline.Schedule {
	return ScheduleOf(o.Scene.Cartogram.Timing)
}

// ScheduleOf converts scene timing to a timeline schedule.
func ScheduleOf(t scene.Timing) timeline.Schedule {
	return timeline.Schedule{
		Delay:  ms(t.DelayMS),
		Morph:  ms(t.MorphMS),
		Hold:   ms(t.HoldMS),
		Return: ms(t.ReturnMS),
	}
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }
