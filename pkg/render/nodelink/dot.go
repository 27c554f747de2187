package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cartoforce/pkg/layout"
)

// pointsPerInch converts layout units to Graphviz inches.
const pointsPerInch = 72.0

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the radius and link distance to labels.
	Detailed bool

	// Unpinned lets neato move nodes instead of keeping solved positions.
	Unpinned bool
}

// ToDOT converts a layout to an undirected Graphviz graph.
// The y axis is flipped because Graphviz coordinates grow upward.
func ToDOT(l *layout.Layout, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontsize=10, penwidth=0.5];\n")
	buf.WriteString("  edge [color=\"#888888\"];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		attrs := nodeAttrs(n, l.Height, opts)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, lk := range l.Links {
		from, to := l.Nodes[lk.Source].ID, l.Nodes[lk.Target].ID
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -- %q [label=%q];\n", from, to, formatFloat(lk.Distance))
		} else {
			fmt.Fprintf(&buf, "  %q -- %q;\n", from, to)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n layout.Node, height float64, opts Options) []string {
	label := n.ID
	if opts.Detailed {
		label = fmt.Sprintf("%s\nr=%s", n.ID, formatFloat(n.R))
	}
	fill := n.Fill
	if fill == "" {
		fill = "white"
	}
	pos := fmt.Sprintf("%s,%s", formatFloat(n.X), formatFloat(height-n.Y))
	if !opts.Unpinned {
		pos += "!"
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=%q", pos),
		fmt.Sprintf("width=%s", formatFloat(2*n.R/pointsPerInch)),
		fmt.Sprintf("fillcolor=%q", fill),
	}
	if n.Name != "" {
		attrs = append(attrs, fmt.Sprintf("tooltip=%q", n.Name))
	}
	return attrs
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz's neato engine.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one
// sized in pixels so the diagram scales like the other charts.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
