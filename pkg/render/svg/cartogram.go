package svg

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	svgo "github.com/ajstarks/svgo"

	"github.com/matzehuels/cartoforce/pkg/render/palette"
	"github.com/matzehuels/cartoforce/pkg/render/timeline"
)

// Morpher yields the path of a shape at morph progress t in [0, 1].
type Morpher interface {
	Path(t float64) string
}

// Shape is one morphing region.
type Shape struct {
	ID   string
	Name string

	// Fill is the color reached at t = 1.
	Fill  string
	Morph Morpher
}

// Cartogram is everything needed to draw a solved cartogram.
type Cartogram struct {
	Width    float64
	Height   float64
	BaseFill string

	// Shapes are drawn in order; later shapes paint over earlier ones.
	Shapes []Shape
}

// Animation configures [RenderCartogramAnimation].
type Animation struct {
	Schedule timeline.Schedule
	Easing   timeline.Easing

	// Frames is the number of sampled frames per morph.
	Frames int

	// Repeat loops the animation indefinitely.
	Repeat bool
}

// RenderCartogramFrame draws the cartogram at morph progress t.
func RenderCartogramFrame(c Cartogram, t float64) []byte {
	var buf bytes.Buffer
	canvas := start(&buf, c.Width, c.Height)
	canvas.Gid("shapes")
	for _, s := range c.Shapes {
		canvas.Path(s.Morph.Path(t), shapeAttrs(s, fillAt(c.BaseFill, s.Fill, t))...)
	}
	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}

// RenderCartogramAnimation draws the cartogram at rest with animations that
// run the schedule: wait, morph into circles, hold, morph back.
func RenderCartogramAnimation(c Cartogram, a Animation) []byte {
	easing := a.Easing
	if easing == nil {
		easing = timeline.CubicInOut
	}
	keys := a.Schedule.Keyframes(easing, a.Frames)
	keyTimes := make([]string, len(keys))
	for i, k := range keys {
		keyTimes[i] = num(k.At)
	}
	repeat := "1"
	if a.Repeat {
		repeat = "indefinite"
	}
	dur := fmt.Sprintf("%gs", a.Schedule.Total().Seconds())

	var buf bytes.Buffer
	canvas := start(&buf, c.Width, c.Height)
	canvas.Gid("shapes")
	for i, s := range c.Shapes {
		id := fmt.Sprintf("shape-%d", i)
		attrs := append([]string{`id="` + id + `"`}, shapeAttrs(s, c.BaseFill)...)
		canvas.Path(s.Morph.Path(0), attrs...)

		paths := make([]string, len(keys))
		fills := make([]string, len(keys))
		for j, k := range keys {
			paths[j] = s.Morph.Path(k.T)
			fills[j] = fillAt(c.BaseFill, s.Fill, k.T)
		}
		animate(canvas.Writer, id, "d", paths, keyTimes, dur, repeat)
		animate(canvas.Writer, id, "fill", fills, keyTimes, dur, repeat)
	}
	canvas.Gend()
	canvas.End()
	return buf.Bytes()
}

func start(w io.Writer, width, height float64) *svgo.SVG {
	canvas := svgo.New(w)
	canvas.Start(int(width+0.5), int(height+0.5))
	return canvas
}

func shapeAttrs(s Shape, fill string) []string {
	attrs := []string{
		`fill="` + fill + `"`,
		`stroke="#fff"`,
		`stroke-width="0.5"`,
		`fill-rule="evenodd"`,
	}
	if s.Name != "" {
		attrs = append(attrs, `data-name="`+escape(s.Name)+`"`)
	}
	return attrs
}

// animate writes an SMIL animation targeting the element with the given id.
func animate(w io.Writer, id, attr string, values, keyTimes []string, dur, repeat string) {
	fmt.Fprintf(w, `<animate xlink:href="#%s" attributeName="%s" values="%s" keyTimes="%s" dur="%s" repeatCount="%s" fill="freeze" />`+"\n",
		id, attr, strings.Join(values, ";"), strings.Join(keyTimes, ";"), dur, repeat)
}

func fillAt(base, target string, t float64) string {
	if target == "" || t <= 0 {
		return base
	}
	return palette.Blend(base, target, t)
}
