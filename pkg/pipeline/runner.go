package pipeline

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cartoforce/pkg/dataset"
	"github.com/matzehuels/cartoforce/pkg/observability"
)

// Runner encapsulates pipeline execution.
// Both CLI and server use it so stage logging and hook events stay
// identical across entry points.
//
// The Runner is stateless except for the logger - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner with
// different options. The charts it returns are not safe for concurrent use.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, the default logger is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

// PrepareFeatures copies features and applies simplification, projection
// and canvas fitting according to opts. The input slice is not modified.
func (r *Runner) PrepareFeatures(ctx context.Context, features []dataset.Feature, opts Options) ([]dataset.Feature, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	start := time.Now()
	work := slices.Clone(features)

	if opts.Simplify > 0 {
		if err := dataset.Simplify(work, opts.Simplify); err != nil {
			return nil, fmt.Errorf("simplify: %w", err)
		}
	}
	if err := dataset.Project(work, opts.Projection); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	if opts.NeedsFit() {
		w, h := opts.CartogramCanvas()
		if err := dataset.Fit(work, w, h, opts.Padding); err != nil {
			return nil, fmt.Errorf("fit: %w", err)
		}
	}

	observability.Pipeline().OnIngestComplete(ctx, "features", len(work), 0, time.Since(start), nil)
	r.Logger.Debug("prepared features",
		"count", len(work),
		"projection", opts.Projection,
		"fit", opts.NeedsFit(),
		"duration", time.Since(start))
	return work, nil
}
