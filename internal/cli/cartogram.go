package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cartoforce/pkg/dataset"
	"github.com/matzehuels/cartoforce/pkg/pipeline"
)

// cartogramOpts holds the command-line flags shared by the cartogram and
// links commands.
type cartogramOpts struct {
	output     string
	formats    string
	at         float64 // frame progress; negative renders the animation
	easing     string
	frames     int
	repeat     bool
	seed       uint64
	projection string
	fit        bool
	simplify   float64
	metric     string
	name       string
	segments   int
	threshold  float64
	width      float64
	height     float64
}

func (o *cartogramOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output base path (defaults to the input name)")
	cmd.Flags().Uint64Var(&o.seed, "seed", pipeline.DefaultSeed, "random seed for radii and jiggle")
	cmd.Flags().StringVar(&o.projection, "projection", "none", "input projection: none (already planar), mercator")
	cmd.Flags().BoolVar(&o.fit, "fit", false, "scale planar input to the canvas")
	cmd.Flags().Float64Var(&o.simplify, "simplify", 0, "Douglas-Peucker tolerance applied before solving")
	cmd.Flags().StringVar(&o.metric, "metric", "", "feature property sizing the circles (overrides the scene)")
	cmd.Flags().StringVar(&o.name, "name", "", "feature property holding display names (overrides the scene)")
	cmd.Flags().IntVar(&o.segments, "segments", 0, "segments per outline perimeter (overrides the scene)")
	cmd.Flags().Float64Var(&o.threshold, "alpha", 0, "stop solving once alpha drops below this (overrides the scene)")
	cmd.Flags().Float64Var(&o.width, "width", 0, "canvas width (overrides the scene)")
	cmd.Flags().Float64Var(&o.height, "height", 0, "canvas height (overrides the scene)")
}

// cartogramCommand creates the cartogram command.
func (c *CLI) cartogramCommand() *cobra.Command {
	var opts cartogramOpts

	cmd := &cobra.Command{
		Use:   "cartogram [features.geojson | URL]",
		Short: "Solve a cartogram and write its morph animation",
		Long: `Solve a force-directed cartogram from a GeoJSON FeatureCollection.

Each feature becomes a circle pulled toward its original position, linked to
the features it shares a border with, and kept from overlapping the others.
The SVG output morphs every outline into its circle and back.`,
		Example: `  cartoforce cartogram states.geojson
  cartoforce cartogram world.geojson --projection mercator --metric pop_est -f svg,json
  cartoforce cartogram states.geojson --at 1 -f png -o circles`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCartogram(cmd.Context(), args[0], opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, dot, png, pdf (comma-separated)")
	cmd.Flags().Float64Var(&opts.at, "at", -1, "render a single frame at this morph progress in [0, 1]")
	cmd.Flags().StringVar(&opts.easing, "easing", "cubic", "morph easing: cubic, linear, spring")
	cmd.Flags().IntVar(&opts.frames, "frames", pipeline.DefaultFrames, "frames sampled per morph in the animation")
	cmd.Flags().BoolVar(&opts.repeat, "repeat", false, "loop the animation")

	return cmd
}

func (c *CLI) pipelineOptions(opts cartogramOpts) (pipeline.Options, error) {
	cfg, err := c.loadScene()
	if err != nil {
		return pipeline.Options{}, err
	}
	if opts.metric != "" {
		cfg.Cartogram.MetricProperty = opts.metric
	}
	if opts.name != "" {
		cfg.Cartogram.NameProperty = opts.name
	}
	p := pipeline.Options{
		Scene:                cfg,
		Logger:               c.Logger,
		Seed:                 opts.seed,
		Width:                opts.width,
		Height:               opts.height,
		Projection:           opts.projection,
		Fit:                  opts.fit,
		Simplify:             opts.simplify,
		SegmentsPerPerimeter: opts.segments,
		AlphaThreshold:       opts.threshold,
		Formats:              parseFormats(opts.formats),
		Easing:               opts.easing,
		Frames:               opts.frames,
		Repeat:               opts.repeat,
	}
	if opts.at >= 0 {
		at := opts.at
		p.At = &at
	}
	return p, p.ValidateAndSetDefaults()
}

// solveCartogram runs one cartogram cycle over features.
func (c *CLI) solveCartogram(ctx context.Context, features []dataset.Feature, p pipeline.Options) (*pipeline.CartogramCycle, error) {
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Solving %d features...", len(features)))
	spinner.Start()
	prog := newProgress(c.Logger)
	cycle, err := c.newRunner().Cartogram(ctx, features, p)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	prog.done(fmt.Sprintf("Solved %d regions in %d ticks", len(cycle.Nodes), cycle.Ticks))

	for _, s := range cycle.Skipped {
		printWarning("skipped %s: %s", s.ID, s.Message)
	}
	return cycle, nil
}

func (c *CLI) runCartogram(ctx context.Context, input string, opts cartogramOpts) error {
	p, err := c.pipelineOptions(opts)
	if err != nil {
		return err
	}
	features, err := c.readFeatures(ctx, input, p.Scene.Cartogram)
	if err != nil {
		return err
	}
	cycle, err := c.solveCartogram(ctx, features, p)
	if err != nil {
		return err
	}

	artifacts, err := c.newRunner().RenderCartogram(ctx, cycle, p)
	if err != nil {
		return err
	}
	paths, err := writeArtifacts(artifacts, p.Formats, basePath(opts.output, inputName(input)), "")
	if err != nil {
		return err
	}

	printSuccess("Cartogram %s", StyleDim.Render(cycle.ID))
	printStats(len(cycle.Nodes), len(cycle.Links), len(cycle.Skipped))
	for _, path := range paths {
		printFile(path)
	}
	return nil
}

// linksCommand creates the links command.
func (c *CLI) linksCommand() *cobra.Command {
	var opts cartogramOpts
	var detailed bool

	cmd := &cobra.Command{
		Use:   "links [features.geojson]",
		Short: "Draw the border links of a solved cartogram with Graphviz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.pipelineOptions(opts)
			if err != nil {
				return err
			}
			p.Detailed = detailed
			features, err := c.readFeatures(ctx, args[0], p.Scene.Cartogram)
			if err != nil {
				return err
			}
			cycle, err := c.solveCartogram(ctx, features, p)
			if err != nil {
				return err
			}
			data, err := c.newRunner().RenderLinks(ctx, cycle, p)
			if err != nil {
				return err
			}
			paths, err := writeArtifacts(map[string][]byte{pipeline.FormatSVG: data}, []string{pipeline.FormatSVG}, basePath(opts.output, inputName(args[0])), "_links")
			if err != nil {
				return err
			}
			printSuccess("Link diagram")
			printStats(len(cycle.Nodes), len(cycle.Links), len(cycle.Skipped))
			printFile(paths[0])
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().BoolVar(&detailed, "detailed", false, "label nodes with radii and links with distances")
	return cmd
}
