// Package palette maps data values to radii and colors.
package palette

import (
	"math"

	"github.com/aclements/go-moremath/scale"
	"github.com/aclements/go-moremath/stats"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Sqrt is a square-root scale: the output grows with the square root of
// the input, so circle areas stay proportional to values.
type Sqrt struct {
	lin    scale.Linear
	lo, hi float64
}

// NewSqrt maps domain onto rng. With clamp, inputs outside the domain map
// to the range ends.
func NewSqrt(domain, rng [2]float64, clamp bool) Sqrt {
	return Sqrt{
		lin: scale.Linear{Min: signedSqrt(domain[0]), Max: signedSqrt(domain[1]), Clamp: clamp},
		lo:  rng[0],
		hi:  rng[1],
	}
}

// Map returns the scaled value of x.
func (s Sqrt) Map(x float64) float64 {
	return s.lo + s.lin.Map(signedSqrt(x))*(s.hi-s.lo)
}

func signedSqrt(x float64) float64 {
	if x < 0 {
		return -math.Sqrt(-x)
	}
	return math.Sqrt(x)
}

// Unit maps x linearly from the extent [lo, hi] to [0, 1], clamped.
// A zero-width extent maps everything to 0.5.
func Unit(x, lo, hi float64) float64 {
	return scale.Linear{Min: lo, Max: hi, Clamp: true}.Map(x)
}

// Extent returns the minimum and maximum of xs.
func Extent(xs []float64) (lo, hi float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	return stats.Bounds(xs)
}

// Ramp blends between two colors in RGB.
type Ramp struct {
	from, to colorful.Color
}

// NewRamp parses two hex colors.
func NewRamp(from, to string) (Ramp, error) {
	a, err := colorful.Hex(from)
	if err != nil {
		return Ramp{}, errors.Wrap(errors.ErrCodeInvalidArgument, err, "color %q", from)
	}
	b, err := colorful.Hex(to)
	if err != nil {
		return Ramp{}, errors.Wrap(errors.ErrCodeInvalidArgument, err, "color %q", to)
	}
	return Ramp{from: a, to: b}, nil
}

// At returns the color at t as a hex string. t outside [0, 1] extrapolates
// and the result is clamped to valid RGB.
func (r Ramp) At(t float64) string {
	return r.from.BlendRgb(r.to, t).Clamped().Hex()
}

// mustHex parses a hex color literal known to be valid.
func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// spectral is the 11-class diverging Spectral scheme, red to blue.
var spectral = []colorful.Color{
	mustHex("#9e0142"),
	mustHex("#d53e4f"),
	mustHex("#f46d43"),
	mustHex("#fdae61"),
	mustHex("#fee08b"),
	mustHex("#ffffbf"),
	mustHex("#e6f598"),
	mustHex("#abdda4"),
	mustHex("#66c2a5"),
	mustHex("#3288bd"),
	mustHex("#5e4fa2"),
}

// Spectral samples the Spectral scheme at t in [0, 1].
func Spectral(t float64) string {
	switch {
	case math.IsNaN(t) || t <= 0:
		return spectral[0].Hex()
	case t >= 1:
		return spectral[len(spectral)-1].Hex()
	}
	pos := t * float64(len(spectral)-1)
	i := int(pos)
	return spectral[i].BlendRgb(spectral[i+1], pos-float64(i)).Clamped().Hex()
}

// Blend mixes two hex colors in RGB, used for animating fills. An
// unparseable color yields to.
func Blend(from, to string, t float64) string {
	r, err := NewRamp(from, to)
	if err != nil {
		return to
	}
	return r.At(t)
}
