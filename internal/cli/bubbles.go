package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cartoforce/pkg/pipeline"
)

// bubblesOpts holds the command-line flags for the bubbles and watch commands.
type bubblesOpts struct {
	output   string
	formats  string
	step     string
	seed     uint64
	maxTicks int
}

// bubblesCommand creates the bubbles command.
func (c *CLI) bubblesCommand() *cobra.Command {
	var opts bubblesOpts

	cmd := &cobra.Command{
		Use:   "bubbles [records.csv | URL]",
		Short: "Lay out a bubble chart for every scroll step",
		Long: `Lay out a bubble chart from a CSV of labelled, categorised values.

Each scroll step in the scene regroups or restyles the bubbles. The steps are
applied in order to one live simulation, so each snapshot starts from where
the previous one settled. One file per step and format is written.`,
		Example: `  cartoforce bubbles countries.csv
  cartoforce bubbles countries.csv --step split -f svg,json
  cartoforce bubbles countries.csv --config scene.toml -o out/chart`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBubbles(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (defaults to the input name)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), json, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.step, "step", "", "only write this step (earlier steps still run)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", pipeline.DefaultSeed, "random seed for the jiggle")
	cmd.Flags().IntVar(&opts.maxTicks, "ticks", pipeline.DefaultMaxTicks, "ticks to settle each step")

	return cmd
}

// buildBubbles reads records and builds a chart without applying any step.
func (c *CLI) buildBubbles(ctx context.Context, input string, opts bubblesOpts) (*pipeline.BubbleChart, pipeline.Options, error) {
	cfg, err := c.loadScene()
	if err != nil {
		return nil, pipeline.Options{}, err
	}
	p := pipeline.Options{
		Scene:    cfg,
		Logger:   c.Logger,
		Seed:     opts.seed,
		MaxTicks: opts.maxTicks,
		Formats:  parseFormats(opts.formats),
	}
	if err := p.ValidateAndSetDefaults(); err != nil {
		return nil, p, err
	}

	records, err := c.readRecords(ctx, input, cfg.Bubbles.Columns)
	if err != nil {
		return nil, p, err
	}

	chart, err := c.newRunner().Bubbles(ctx, records, p)
	if err != nil {
		return nil, p, err
	}
	return chart, p, nil
}

func (c *CLI) runBubbles(ctx context.Context, input string, opts bubblesOpts) error {
	chart, p, err := c.buildBubbles(ctx, input, opts)
	if err != nil {
		return err
	}
	steps := p.Scene.StepNames()
	if opts.step != "" {
		if _, err := p.Scene.Step(opts.step); err != nil {
			return err
		}
	}

	base := basePath(opts.output, inputName(input))
	runner := c.newRunner()
	var paths []string
	spinner := newSpinnerWithContext(ctx, "Settling...")
	spinner.Start()
	defer spinner.Stop()
	for _, name := range steps {
		spinner.SetMessage(fmt.Sprintf("Settling %s...", name))
		if err := chart.ApplyStep(ctx, name); err != nil {
			spinner.StopWithError(fmt.Sprintf("step %s failed", name))
			return err
		}
		ticks := chart.Settle(ctx, p.MaxTicks)
		c.Logger.Debug("settled step", "step", name, "ticks", ticks)
		if opts.step != "" && name != opts.step {
			continue
		}

		artifacts, err := runner.RenderBubbles(ctx, chart.Snapshot(), p)
		if err != nil {
			return err
		}
		written, err := writeArtifacts(artifacts, p.Formats, base, "_"+name)
		if err != nil {
			return err
		}
		paths = append(paths, written...)
		if name == opts.step {
			break
		}
	}

	spinner.StopWithSuccess(fmt.Sprintf("Bubble chart %s", StyleDim.Render(chart.ID)))
	printStats(len(chart.Simulation().Nodes()), 0, 0)
	for _, path := range paths {
		printFile(path)
	}
	fmt.Println()
	printNextStep("Watch it live", fmt.Sprintf("%s watch %s", appName, input))
	return nil
}
