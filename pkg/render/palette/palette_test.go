package palette

import (
	"math"
	"testing"
)

func TestSqrt(t *testing.T) {
	radius := NewSqrt([2]float64{0, 10000}, [2]float64{2, 100}, false)
	clamped := NewSqrt([2]float64{0, 1}, [2]float64{0, 45}, true)

	tests := []struct {
		name string
		s    Sqrt
		x    float64
		want float64
	}{
		{"domain start", radius, 0, 2},
		{"domain end", radius, 10000, 100},
		{"quarter value", radius, 2500, 51},
		{"extrapolates", radius, 40000, 198},
		{"clamped below", clamped, -0.3, 0},
		{"clamped above", clamped, 1.7, 45},
		{"clamped middle", clamped, 0.25, 22.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Map(tt.x); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Map(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestUnitAndExtent(t *testing.T) {
	lo, hi := Extent([]float64{3, 9, 1, 4})
	if lo != 1 || hi != 9 {
		t.Fatalf("Extent = %v, %v", lo, hi)
	}
	if got := Unit(5, lo, hi); got != 0.5 {
		t.Errorf("Unit(5) = %v", got)
	}
	if got := Unit(20, lo, hi); got != 1 {
		t.Errorf("Unit(20) = %v, want clamped 1", got)
	}
	if lo, hi := Extent(nil); lo != 0 || hi != 0 {
		t.Errorf("Extent(nil) = %v, %v", lo, hi)
	}
}

func TestRamp(t *testing.T) {
	r, err := NewRamp("#f2f0f7", "#b379ce")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.At(0); got != "#f2f0f7" {
		t.Errorf("At(0) = %s", got)
	}
	if got := r.At(1); got != "#b379ce" {
		t.Errorf("At(1) = %s", got)
	}
	if _, err := NewRamp("#zzz", "#fff"); err == nil {
		t.Error("invalid color accepted")
	}
}

func TestSpectral(t *testing.T) {
	tests := []struct {
		t    float64
		want string
	}{
		{-1, "#9e0142"},
		{0, "#9e0142"},
		{0.5, "#ffffbf"},
		{1, "#5e4fa2"},
		{2, "#5e4fa2"},
	}
	for _, tt := range tests {
		if got := Spectral(tt.t); got != tt.want {
			t.Errorf("Spectral(%v) = %s, want %s", tt.t, got, tt.want)
		}
	}
}

func TestBlend(t *testing.T) {
	if got := Blend("#cccccc", "#9e0142", 0); got != "#cccccc" {
		t.Errorf("Blend at 0 = %s", got)
	}
	if got := Blend("#cccccc", "#9e0142", 1); got != "#9e0142" {
		t.Errorf("Blend at 1 = %s", got)
	}
	if got := Blend("bad", "#9e0142", 0.5); got != "#9e0142" {
		t.Errorf("Blend with bad color = %s", got)
	}
}

func TestMustHex(t *testing.T) {
	if got := mustHex("#3288bd").Hex(); got != "#3288bd" {
		t.Errorf("mustHex = %s, want #3288bd", got)
	}
	defer func() {
		if recover() == nil {
			t.Error("mustHex accepted an invalid color")
		}
	}()
	mustHex("blue")
}
