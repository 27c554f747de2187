package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cartoforce/pkg/buildinfo"
	"github.com/matzehuels/cartoforce/pkg/observability"
	"github.com/matzehuels/cartoforce/pkg/pipeline"
	"github.com/matzehuels/cartoforce/pkg/scene"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for display.
	appName = "cartoforce"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag shared by every command.
	configPath string

	// noCache bypasses the download cache for remote inputs.
	noCache bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Cartoforce lays out force-directed cartograms and bubble charts",
		Long:         `Cartoforce solves force-directed layouts: cartograms that morph regions into sized circles and back, and bubble charts whose bubbles regroup as you step through scenes.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			observability.SetPipelineHooks(newLogHooks(c.Logger))
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "scene configuration file (TOML); defaults to the built-in scene")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "always download remote inputs, bypassing the cache")

	// Register all subcommands
	root.AddCommand(c.cartogramCommand())
	root.AddCommand(c.linksCommand())
	root.AddCommand(c.bubblesCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner() *pipeline.Runner {
	return pipeline.NewRunner(c.Logger)
}

// loadScene reads --config, or returns the built-in scene.
func (c *CLI) loadScene() (*scene.Config, error) {
	if c.configPath == "" {
		return scene.Default(), nil
	}
	cfg, err := scene.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded scene", "path", c.configPath)
	return cfg, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .json, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes one file per format at base plus suffix and the
// format's extension, and returns the paths written.
func writeArtifacts(artifacts map[string][]byte, formats []string, base, suffix string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		path := base + suffix + "." + format
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
