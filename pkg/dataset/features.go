package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/simplify"

	"github.com/matzehuels/cartoforce/pkg/errors"
)

// Feature is one polygonal region.
type Feature struct {
	ID       string
	Name     string
	Geometry orb.Geometry

	// Metric sizes the feature's circle. Nil when the feature has none.
	Metric *float64
}

// FeatureOptions selects the properties read from each feature.
type FeatureOptions struct {
	NameProperty   string
	MetricProperty string
}

// ReadFeatures decodes a GeoJSON FeatureCollection. Features without a
// geometry are kept; the cartogram reports them as skipped.
func ReadFeatures(r io.Reader, opts FeatureOptions) ([]Feature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read features")
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode geojson")
	}

	features := make([]Feature, len(fc.Features))
	for i, f := range fc.Features {
		features[i] = convert(i, f, opts)
	}
	return features, nil
}

// ReadFeaturesFile reads a GeoJSON file.
func ReadFeaturesFile(path string, opts FeatureOptions) ([]Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()
	return ReadFeatures(f, opts)
}

func convert(i int, f *geojson.Feature, opts FeatureOptions) Feature {
	out := Feature{
		ID:       fmt.Sprint(i),
		Geometry: openRings(f.Geometry),
	}
	if f.ID != nil {
		out.ID = fmt.Sprint(f.ID)
	}
	if opts.NameProperty != "" {
		out.Name = f.Properties.MustString(opts.NameProperty, "")
	}
	if out.Name == "" {
		out.Name = out.ID
	}
	if opts.MetricProperty != "" {
		if v, ok := f.Properties[opts.MetricProperty].(float64); ok {
			out.Metric = &v
		}
	}
	return out
}

// Simplify runs Douglas–Peucker on every geometry. Geometries that would
// lose a ring below three points are left as they were.
func Simplify(features []Feature, tolerance float64) error {
	if err := errors.ValidatePositive("simplify tolerance", tolerance); err != nil {
		return err
	}
	s := simplify.DouglasPeucker(tolerance)
	for i := range features {
		g := features[i].Geometry
		if g == nil {
			continue
		}
		simplified := s.Simplify(orb.Clone(g))
		if degenerate(simplified) {
			continue
		}
		features[i].Geometry = simplified
	}
	return nil
}

func degenerate(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return len(g) == 0 || len(g[0]) < 3
	case orb.MultiPolygon:
		for _, p := range g {
			if len(p) == 0 || len(p[0]) < 3 {
				return true
			}
		}
		return len(g) == 0
	}
	return false
}
