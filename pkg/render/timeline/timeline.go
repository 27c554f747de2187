// Package timeline turns a morph into keyframes: easing curves and the
// wait, morph, hold, return schedule of the cartogram animation.
package timeline

import (
	"math"
	"slices"
	"time"

	"github.com/charmbracelet/harmonica"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Easing maps linear progress in [0, 1] to eased progress in [0, 1].
type Easing func(t float64) float64

// Easing names accepted by Lookup.
const (
	EasingLinear = "linear"
	EasingCubic  = "cubic"
	EasingSpring = "spring"
)

// Easings lists the accepted easing names.
var Easings = []string{EasingCubic, EasingLinear, EasingSpring}

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// CubicInOut accelerates through the first half and decelerates through
// the second.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// Spring returns a critically damped spring easing sampled at the given
// resolution. The curve is scaled so it ends exactly at 1.
func Spring(resolution int) Easing {
	if resolution < 2 {
		resolution = 2
	}
	s := harmonica.NewSpring(harmonica.FPS(resolution), 8, 1)
	table := make([]float64, resolution+1)
	var pos, vel float64
	for i := 1; i <= resolution; i++ {
		pos, vel = s.Update(pos, vel, 1)
		table[i] = pos
	}
	end := table[resolution]
	for i := range table {
		table[i] /= end
	}
	return func(t float64) float64 {
		t = clamp(t)
		x := t * float64(resolution)
		i := int(x)
		if i >= resolution {
			return 1
		}
		return table[i] + (table[i+1]-table[i])*(x-float64(i))
	}
}

// Lookup returns the easing called name. resolution only matters for
// the spring.
func Lookup(name string, resolution int) (Easing, error) {
	switch name {
	case EasingLinear:
		return Linear, nil
	case "", EasingCubic:
		return CubicInOut, nil
	case EasingSpring:
		return Spring(resolution), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidArgument, "unknown easing %q (must be one of %v)", name, Easings)
}

// Sample evaluates e at frames evenly spaced points from 0 to 1 inclusive.
func Sample(e Easing, frames int) []float64 {
	if frames < 2 {
		return []float64{e(1)}
	}
	out := make([]float64, frames)
	for i := range out {
		out[i] = e(float64(i) / float64(frames-1))
	}
	return out
}

// Schedule is one animation cycle.
type Schedule struct {
	Delay  time.Duration
	Morph  time.Duration
	Hold   time.Duration
	Return time.Duration
}

// Total is the length of one cycle.
func (s Schedule) Total() time.Duration {
	return s.Delay + s.Morph + s.Hold + s.Return
}

// Keyframe is a morph fraction T reached at At, a fraction of the cycle.
type Keyframe struct {
	At float64
	T  float64
}

// Keyframes samples one cycle: T stays 0 through the delay, eases to 1
// over the morph, stays 1 through the hold and eases back to 0 over the
// return. Each morph contributes frames samples. At is strictly
// increasing except where a zero-length phase collapses two keyframes.
func (s Schedule) Keyframes(e Easing, frames int) []Keyframe {
	total := s.Total().Seconds()
	if total <= 0 {
		return []Keyframe{{At: 0, T: 0}, {At: 1, T: 0}}
	}
	at := func(d time.Duration) float64 { return d.Seconds() / total }

	var out []Keyframe
	add := func(a, t float64) {
		if n := len(out); n > 0 && out[n-1].At == a && out[n-1].T == t {
			return
		}
		out = append(out, Keyframe{At: a, T: t})
	}

	add(0, 0)
	start := s.Delay
	for i, v := range Sample(e, max(frames, 2)) {
		frac := float64(i) / float64(max(frames, 2)-1)
		add(at(start)+frac*at(s.Morph), v)
	}
	start += s.Morph + s.Hold
	for i, v := range Sample(e, max(frames, 2)) {
		frac := float64(i) / float64(max(frames, 2)-1)
		add(at(start)+frac*at(s.Return), 1-v)
	}
	out[len(out)-1].At = 1
	return slices.Clip(out)
}

func clamp(t float64) float64 {
	return math.Max(0, math.Min(1, t))
}
