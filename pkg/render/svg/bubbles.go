package svg

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/cartoforce/pkg/layout"
)

// RenderBubbles draws a bubble chart snapshot: one circle per node, the
// labels of nodes marked for labeling, and the visible category labels.
func RenderBubbles(l *layout.Layout) []byte {
	var buf bytes.Buffer
	canvas := start(&buf, l.Width, l.Height)
	if l.Step != "" {
		canvas.Title(l.Step)
	}
	canvas.Gtransform(fmt.Sprintf("translate(%s,%s)", num(l.OffsetX), num(l.OffsetY)))

	canvas.Gid("bubbles")
	for _, n := range l.Nodes {
		attrs := []string{`fill="` + n.Fill + `"`, `stroke="#fff"`, `stroke-width="0.5"`}
		if n.Opacity > 0 {
			attrs = append(attrs, `fill-opacity="`+num(n.Opacity)+`"`)
		}
		attrs = append(attrs, `data-name="`+escape(n.ID)+`"`)
		canvas.Path(circlePath(n.X, n.Y, n.R), attrs...)
	}
	canvas.Gend()

	canvas.Gid("labels")
	for _, n := range l.Nodes {
		if !n.ShowLabel {
			continue
		}
		canvas.Text(round(n.X), round(n.Y), n.ID, `text-anchor="middle"`, `dy=".35em"`, `font-size="12"`, `fill="#333"`)
	}
	canvas.Gend()

	canvas.Gid("categories")
	for _, lb := range l.Labels {
		if !lb.Visible {
			continue
		}
		canvas.Text(round(lb.X), round(lb.Y), lb.Text, `text-anchor="middle"`, `font-size="14"`, `font-weight="bold"`, `fill="#555"`)
	}
	canvas.Gend()

	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}

// circlePath draws a circle as two arcs so positions keep their precision.
func circlePath(x, y, r float64) string {
	return fmt.Sprintf("M %s,%s a %s,%s 0 1,0 %s,0 a %s,%s 0 1,0 %s,0 Z",
		num(x-r), num(y), num(r), num(r), num(2*r), num(r), num(r), num(-2*r))
}

func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	if s == "-0" {
		return "0"
	}
	return s
}

func round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

func escape(s string) string { return attrEscaper.Replace(s) }
