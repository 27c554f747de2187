package morph

import (
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// TruncateAbove is the fraction past which Path drops every ring after the
// first.
const TruncateAbove = 0.99

// PathString renders rings as SVG path data: "M x,y L x,y ... Z" per ring,
// rings joined by a space. Coordinates are rounded to three decimals.
func PathString(rings []orb.Ring) string {
	var b strings.Builder
	for i, ring := range rings {
		if len(ring) == 0 {
			continue
		}
		if i > 0 && b.Len() > 0 {
			b.WriteByte(' ')
		}
		for j, p := range ring {
			if j == 0 {
				b.WriteString("M ")
			} else {
				b.WriteString(" L ")
			}
			b.WriteString(formatCoord(p[0]))
			b.WriteByte(',')
			b.WriteString(formatCoord(p[1]))
		}
		b.WriteString(" Z")
	}
	return b.String()
}

func formatCoord(v float64) string {
	v = math.Round(v*1000) / 1000
	if v == 0 {
		v = 0 // normalize -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// truncate keeps path data up to and including the first close command.
func truncate(d string) string {
	if i := strings.IndexByte(d, 'Z'); i >= 0 {
		return d[:i+1]
	}
	return d
}
