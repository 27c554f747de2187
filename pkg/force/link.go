package force

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Link connects two nodes by index with a rest distance.
type Link struct {
	Source   int     `json:"source"`
	Target   int     `json:"target"`
	Distance float64 `json:"distance"`
}

func (l Link) String() string {
	return fmt.Sprintf("%d->%d", l.Source, l.Target)
}

// Links pulls linked nodes toward their rest distance. By default each
// link's strength is the reciprocal of the smaller endpoint degree, so
// hubs are not dragged around by their many neighbors.
type Links struct {
	links      []Link
	strength   *float64
	iterations int

	nodes     []*Node
	strengths []float64
	bias      []float64
	rng       *rand.Rand
}

// NewLinks creates a link force over links.
func NewLinks(links []Link) *Links {
	return &Links{links: links, iterations: 1}
}

// Strength overrides the degree-based default with a uniform strength.
func (f *Links) Strength(s float64) *Links {
	f.strength = &s
	return f
}

// Iterations sets how many passes run per tick.
func (f *Links) Iterations(n int) *Links {
	f.iterations = n
	return f
}

// Links returns the links this force acts on.
func (f *Links) Links() []Link { return f.links }

// Initialize validates every link against nodes. Links that reference a
// missing node or connect a node to itself are INVALID_LINK errors; the
// error names the first offending link and how many were found.
func (f *Links) Initialize(nodes []*Node, rng *rand.Rand) error {
	if f.iterations < 1 {
		return errors.New(errors.ErrCodeInvalidArgument, "link iterations must be at least 1, got %d", f.iterations)
	}
	if err := validateLinks(f.links, len(nodes)); err != nil {
		return err
	}

	count := make([]int, len(nodes))
	for _, l := range f.links {
		count[l.Source]++
		count[l.Target]++
	}
	strengths := make([]float64, len(f.links))
	bias := make([]float64, len(f.links))
	for i, l := range f.links {
		cs, ct := count[l.Source], count[l.Target]
		bias[i] = float64(cs) / float64(cs+ct)
		if f.strength != nil {
			strengths[i] = *f.strength
		} else {
			strengths[i] = 1 / float64(min(cs, ct))
		}
	}
	f.nodes, f.strengths, f.bias, f.rng = nodes, strengths, bias, rng
	return nil
}

func validateLinks(links []Link, n int) error {
	var first error
	bad := 0
	for i, l := range links {
		var err error
		switch {
		case l.Source < 0 || l.Source >= n:
			err = errors.New(errors.ErrCodeInvalidLink, "link %d (%s): source %d out of range [0,%d)", i, l, l.Source, n)
		case l.Target < 0 || l.Target >= n:
			err = errors.New(errors.ErrCodeInvalidLink, "link %d (%s): target %d out of range [0,%d)", i, l, l.Target, n)
		case l.Source == l.Target:
			err = errors.New(errors.ErrCodeInvalidLink, "link %d (%s): node linked to itself", i, l)
		case math.IsNaN(l.Distance) || math.IsInf(l.Distance, 0) || l.Distance < 0:
			err = errors.New(errors.ErrCodeInvalidLink, "link %d (%s): distance %v is not a non-negative number", i, l, l.Distance)
		}
		if err != nil {
			bad++
			if first == nil {
				first = err
			}
		}
	}
	if bad > 1 {
		return errors.Wrap(errors.ErrCodeInvalidLink, first, "%d invalid links", bad)
	}
	return first
}

func (f *Links) Apply(alpha float64) {
	for range f.iterations {
		for i, l := range f.links {
			s, t := f.nodes[l.Source], f.nodes[l.Target]
			x := t.X + t.VX - s.X - s.VX
			y := t.Y + t.VY - s.Y - s.VY
			if x == 0 {
				x = jiggle(f.rng)
			}
			if y == 0 {
				y = jiggle(f.rng)
			}
			d := math.Sqrt(x*x + y*y)
			d = (d - l.Distance) / d * alpha * f.strengths[i]
			x *= d
			y *= d
			b := f.bias[i]
			t.VX -= x * b
			t.VY -= y * b
			s.VX += x * (1 - b)
			s.VY += y * (1 - b)
		}
	}
}
