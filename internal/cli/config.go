package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cartoforce/pkg/scene"
)

// configCommand creates the config command.
func (c *CLI) configCommand() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the scene configuration",
		Long: `Print the scene configuration as TOML.

Without --config this is the built-in scene, a useful starting point for a
custom one. With --config the file is loaded, validated and printed back
with defaults filled in.`,
		Example: `  cartoforce config > scene.toml
  cartoforce config --config scene.toml --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if c.configPath == "" && !check {
				_, err := out.Write(scene.DefaultTOML())
				return err
			}
			cfg, err := c.loadScene()
			if err != nil {
				return err
			}
			if check {
				printSuccess("%s is valid (%d steps)", c.configPathOrDefault(), len(cfg.StepNames()))
				return nil
			}
			return cfg.WriteTOML(out)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "only validate the configuration")
	return cmd
}

func (c *CLI) configPathOrDefault() string {
	if c.configPath == "" {
		return "built-in scene"
	}
	return c.configPath
}
