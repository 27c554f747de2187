// Package scene holds the presentation parameters of both charts: canvas
// sizes, scales, the category lookup table that places bubbles in the
// separated layout, highlight groups, the scroll steps of the bubble chart
// and the force parameters of the cartogram.
//
// Configuration is TOML. [Default] returns the built-in scene; [Load]
// overlays a file on top of it.
package scene

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

//go:embed default.toml
var defaultTOML []byte

// DefaultTOML returns the built-in configuration file.
func DefaultTOML() []byte {
	return bytes.Clone(defaultTOML)
}

// Config is a complete scene.
type Config struct {
	Cartogram Cartogram `toml:"cartogram"`
	Bubbles   Bubbles   `toml:"bubbles"`
}

// Margin insets the drawing area of a canvas.
type Margin struct {
	Top    float64 `toml:"top"`
	Right  float64 `toml:"right"`
	Bottom float64 `toml:"bottom"`
	Left   float64 `toml:"left"`
}

// Canvas is the outer size of a chart.
type Canvas struct {
	Width  float64 `toml:"width"`
	Height float64 `toml:"height"`
	Margin Margin  `toml:"margin"`
}

// InnerWidth is the width left inside the margins.
func (c Canvas) InnerWidth() float64 { return c.Width - c.Margin.Left - c.Margin.Right }

// InnerHeight is the height left inside the margins.
func (c Canvas) InnerHeight() float64 { return c.Height - c.Margin.Top - c.Margin.Bottom }

// Timing is the cartogram animation schedule in milliseconds: wait, morph
// into circles, hold, morph back.
type Timing struct {
	DelayMS  int `toml:"delay_ms"`
	MorphMS  int `toml:"morph_ms"`
	HoldMS   int `toml:"hold_ms"`
	ReturnMS int `toml:"return_ms"`
}

// Cartogram configures the shape-to-circle cartogram.
type Cartogram struct {
	Canvas Canvas `toml:"canvas"`
	Timing Timing `toml:"timing"`

	NameProperty   string `toml:"name_property"`
	MetricProperty string `toml:"metric_property"`

	MaxRadius    float64 `toml:"max_radius"`
	RadiusMean   float64 `toml:"radius_mean"`
	RadiusStdDev float64 `toml:"radius_stddev"`

	LinkPadding     float64 `toml:"link_padding"`
	CenterStrength  float64 `toml:"center_strength"`
	AnchorStrength  float64 `toml:"anchor_strength"`
	CollideStrength float64 `toml:"collide_strength"`
	CollidePadding  float64 `toml:"collide_padding"`
	AlphaThreshold  float64 `toml:"alpha_threshold"`

	SegmentsPerPerimeter int    `toml:"segments_per_perimeter"`
	BaseFill             string `toml:"base_fill"`
}

// Columns names the CSV columns of a bubble record.
type Columns struct {
	Label    string `toml:"label"`
	Category string `toml:"category"`
	Value    string `toml:"value"`
}

// Bubbles configures the scroll-driven bubble chart.
type Bubbles struct {
	Canvas  Canvas  `toml:"canvas"`
	Columns Columns `toml:"columns"`

	RadiusDomain []float64 `toml:"radius_domain"`
	RadiusRange  []float64 `toml:"radius_range"`
	ColorDomain  []float64 `toml:"color_domain"`
	ColorRange   []string  `toml:"color_range"`
	Highlight    string    `toml:"highlight"`
	Opacity      float64   `toml:"opacity"`

	CombinedStrength  float64 `toml:"combined_strength"`
	SeparatedStrength float64 `toml:"separated_strength"`
	CollidePadding    float64 `toml:"collide_padding"`
	CollideStrength   float64 `toml:"collide_strength"`
	Charge            float64 `toml:"charge"`
	AlphaTarget       float64 `toml:"alpha_target"`

	Categories CategoryTable       `toml:"categories"`
	Groups     map[string][]string `toml:"groups"`
	Steps      []Step              `toml:"steps"`
}

// Default returns the built-in scene.
func Default() *Config {
	cfg, err := parse(defaultTOML, &Config{})
	if err != nil {
		panic("scene: invalid built-in config: " + err.Error())
	}
	return cfg
}

// Parse decodes TOML on top of the built-in scene. Tables and maps merge
// with the defaults; a file that lists steps replaces the default steps.
// Keys that are not part of the schema are rejected.
func Parse(data []byte) (*Config, error) {
	probe, err := parse(data, &Config{})
	if err != nil {
		return nil, err
	}
	base := Default()
	if len(probe.Bubbles.Steps) > 0 {
		base.Bubbles.Steps = nil
	}
	cfg, err := parse(data, base)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return cfg, nil
}

func parse(data []byte, cfg *Config) (*Config, error) {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode toml")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg, nil
}

// WriteTOML encodes the scene as TOML.
func (c *Config) WriteTOML(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
