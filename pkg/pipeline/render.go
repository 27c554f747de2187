package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/cartoforce/pkg/layout"
	"github.com/matzehuels/cartoforce/pkg/observability"
	"github.com/matzehuels/cartoforce/pkg/render"
	"github.com/matzehuels/cartoforce/pkg/render/nodelink"
	"github.com/matzehuels/cartoforce/pkg/render/svg"
	"github.com/matzehuels/cartoforce/pkg/render/timeline"
)

// RenderCartogram generates cartogram artifacts in the requested formats.
//
// SVG output is the full morph animation unless opts.At selects a single
// frame. PNG and PDF are static, so they use opts.At or the circle frame.
// DOT is the link diagram source; JSON is the solved layout.
func (r *Runner) RenderCartogram(ctx context.Context, c *CartogramCycle, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	canvas := c.Canvas()

	return r.renderEach(ctx, opts.Formats, func(format string) ([]byte, error) {
		switch format {
		case FormatSVG:
			if opts.At != nil {
				return svg.RenderCartogramFrame(canvas, *opts.At), nil
			}
			easing, err := timeline.Lookup(opts.Easing, opts.Frames)
			if err != nil {
				return nil, err
			}
			return svg.RenderCartogramAnimation(canvas, svg.Animation{
				Schedule: ScheduleOf(c.Timing),
				Easing:   easing,
				Frames:   opts.Frames,
				Repeat:   opts.Repeat,
			}), nil
		case FormatPNG, FormatPDF:
			at := 1.0
			if opts.At != nil {
				at = *opts.At
			}
			return convert(svg.RenderCartogramFrame(canvas, at), format, opts.Scale)
		case FormatDOT:
			return []byte(nodelink.ToDOT(c.Layout(), nodelink.Options{Detailed: opts.Detailed})), nil
		case FormatJSON:
			return marshal(c.Layout())
		}
		return nil, fmt.Errorf("unsupported cartogram format: %s", format)
	})
}

// RenderLinks renders the cartogram's link diagram through Graphviz.
func (r *Runner) RenderLinks(ctx context.Context, c *CartogramCycle, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, "links")
	start := time.Now()
	data, err := nodelink.RenderSVG(nodelink.ToDOT(c.Layout(), nodelink.Options{Detailed: opts.Detailed}))
	hooks.OnRenderComplete(ctx, "links", len(data), time.Since(start), err)
	return data, err
}

// RenderBubbles generates artifacts for a bubble chart snapshot.
func (r *Runner) RenderBubbles(ctx context.Context, l *layout.Layout, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return r.renderEach(ctx, opts.Formats, func(format string) ([]byte, error) {
		switch format {
		case FormatSVG:
			return svg.RenderBubbles(l), nil
		case FormatPNG, FormatPDF:
			return convert(svg.RenderBubbles(l), format, opts.Scale)
		case FormatJSON:
			return marshal(l)
		}
		return nil, fmt.Errorf("unsupported bubbles format: %s", format)
	})
}

func (r *Runner) renderEach(ctx context.Context, formats []string, fn func(string) ([]byte, error)) (map[string][]byte, error) {
	hooks := observability.Pipeline()
	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		hooks.OnRenderStart(ctx, format)
		start := time.Now()
		data, err := fn(format)
		hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	r.Logger.Debug("rendered outputs", "formats", formats)
	return artifacts, nil
}

func convert(data []byte, format string, scale float64) ([]byte, error) {
	if format == FormatPDF {
		return render.ToPDF(data)
	}
	return render.ToPNG(data, scale)
}

func marshal(l *layout.Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := layout.WriteJSON(l, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
