package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cartoforce/internal/server"
	"github.com/matzehuels/cartoforce/pkg/observability"
	"github.com/matzehuels/cartoforce/pkg/pipeline"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		features string
		records  string
		opts     cartogramOpts
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cartograms and bubble charts over HTTP",
		Long: `Start an HTTP server over a cartogram and a bubble chart.

The cartogram is solved once at startup and re-solved with the next seed on
POST /cartogram/resimulate. Bubble chart requests move one shared chart
between steps, so consecutive requests animate from where the last one
settled.`,
		Example: `  cartoforce serve --features states.geojson --records countries.csv
  cartoforce serve --features world.geojson --projection mercator --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := c.pipelineOptions(opts)
			if err != nil {
				return err
			}
			cfg := server.Config{Options: p, Logger: c.Logger}

			if features != "" {
				if cfg.Features, err = c.readFeatures(ctx, features, p.Scene.Cartogram); err != nil {
					return err
				}
			}
			if records != "" {
				if cfg.Records, err = c.readRecords(ctx, records, p.Scene.Bubbles.Columns); err != nil {
					return err
				}
			}

			spinner := newSpinnerWithContext(ctx, "Solving initial layouts...")
			spinner.Start()
			srv, err := server.New(ctx, cfg)
			spinner.Stop()
			if err != nil {
				return err
			}

			observability.SetHTTPHooks(newLogHooks(c.Logger))
			printSuccess("Listening")
			printKeyValue("address", addr)
			if features != "" {
				printKeyValue("cartogram", features)
			}
			if records != "" {
				printKeyValue("bubbles", records)
			}
			return srv.ListenAndServe(ctx, addr)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&features, "features", "", "GeoJSON features for the cartogram (file or URL)")
	cmd.Flags().StringVar(&records, "records", "", "CSV records for the bubble chart (file or URL)")
	cmd.Flags().IntVar(&opts.frames, "frames", pipeline.DefaultFrames, "frames sampled per morph in the animation")
	cmd.Flags().StringVar(&opts.easing, "easing", "cubic", "default morph easing: cubic, linear, spring")
	opts.at = -1
	opts.repeat = true
	return cmd
}
