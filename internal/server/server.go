// Package server serves solved charts over HTTP.
//
// A Server holds one cartogram cycle and one live bubble chart. Requests
// read the cycle, step the chart or start a new cycle; a single mutex
// serializes them because neither the cycle nor the chart is safe for
// concurrent use.
//
// Routes:
//
//	GET  /healthz                    build information
//	GET  /cartogram/layout           solved layout as JSON
//	GET  /cartogram/frame.svg?t=0.5  one morph frame
//	GET  /cartogram/animation.svg    the full morph animation
//	GET  /cartogram/links.svg        the link diagram
//	POST /cartogram/resimulate       solve a new cycle with the next seed
//	GET  /bubbles/steps              step names in scroll order
//	GET  /bubbles/{step}.svg         the chart after moving to step
//	GET  /bubbles/{step}.json        the same snapshot as JSON
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/cartoforce/pkg/buildinfo"
	"github.com/matzehuels/cartoforce/pkg/dataset"
	"github.com/matzehuels/cartoforce/pkg/errors"
	"github.com/matzehuels/cartoforce/pkg/observability"
	"github.com/matzehuels/cartoforce/pkg/pipeline"
)

// Config holds what a server serves. Either input may be empty, in which
// case its routes answer 404.
type Config struct {
	Features []dataset.Feature
	Records  []dataset.Record
	Options  pipeline.Options
	Logger   *log.Logger
}

// Server answers chart requests.
type Server struct {
	logger   *log.Logger
	runner   *pipeline.Runner
	opts     pipeline.Options
	features []dataset.Feature

	mu    sync.Mutex
	cycle *pipeline.CartogramCycle
	chart *pipeline.BubbleChart
}

// New solves the initial cartogram cycle and builds the bubble chart.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if err := cfg.Options.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		logger:   logger,
		runner:   pipeline.NewRunner(logger),
		opts:     cfg.Options,
		features: cfg.Features,
	}
	if len(cfg.Features) > 0 {
		cycle, err := s.runner.Cartogram(ctx, cfg.Features, s.opts)
		if err != nil {
			return nil, err
		}
		s.cycle = cycle
	}
	if len(cfg.Records) > 0 {
		chart, err := s.runner.Bubbles(ctx, cfg.Records, s.opts)
		if err != nil {
			return nil, err
		}
		s.chart = chart
	}
	return s, nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(hooksMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Route("/cartogram", func(r chi.Router) {
		r.Get("/layout", s.handleCartogramLayout)
		r.Get("/frame.svg", s.handleCartogramFrame)
		r.Get("/animation.svg", s.handleCartogramAnimation)
		r.Get("/links.svg", s.handleCartogramLinks)
		r.Post("/resimulate", s.handleResimulate)
	})
	r.Route("/bubbles", func(r chi.Router) {
		r.Get("/steps", s.handleSteps)
		r.Get("/{step}.svg", s.handleBubbles(pipeline.FormatSVG))
		r.Get("/{step}.json", s.handleBubbles(pipeline.FormatJSON))
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// options returns a copy of the current options. Resimulation replaces
// them under the mutex.
func (s *Server) options() pipeline.Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCartogramLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cycle == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no cartogram loaded"))
		return
	}
	writeJSON(w, http.StatusOK, s.cycle.Layout())
}

func (s *Server) handleCartogramFrame(w http.ResponseWriter, r *http.Request) {
	t := 1.0
	if raw := r.URL.Query().Get("t"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(w, errors.Wrap(errors.ErrCodeInvalidArgument, err, "t"))
			return
		}
		t = v
	}
	opts := s.options()
	opts.At = &t
	s.renderCartogram(w, r, opts)
}

func (s *Server) handleCartogramAnimation(w http.ResponseWriter, r *http.Request) {
	opts := s.options()
	opts.At = nil
	if e := r.URL.Query().Get("easing"); e != "" {
		opts.Easing = e
	}
	opts.Repeat = r.URL.Query().Get("repeat") != "false"
	s.renderCartogram(w, r, opts)
}

func (s *Server) renderCartogram(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	opts.Formats = []string{pipeline.FormatSVG}
	if err := opts.Validate(); err != nil {
		writeError(w, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cycle == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no cartogram loaded"))
		return
	}
	artifacts, err := s.runner.RenderCartogram(r.Context(), s.cycle, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSVG(w, artifacts[pipeline.FormatSVG])
}

func (s *Server) handleCartogramLinks(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cycle == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no cartogram loaded"))
		return
	}
	data, err := s.runner.RenderLinks(r.Context(), s.cycle, s.opts)
	if err != nil {
		writeError(w, err)
		return
	}
	writeSVG(w, data)
}

// handleResimulate solves a fresh cycle from the original features with
// the next seed, so every cycle draws new radii.
func (s *Server) handleResimulate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.features) == 0 {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no cartogram loaded"))
		return
	}
	opts := s.opts
	opts.Seed++
	cycle, err := s.runner.Cartogram(r.Context(), s.features, opts)
	if err != nil {
		writeError(w, err)
		return
	}
	s.opts = opts
	s.cycle = cycle
	writeJSON(w, http.StatusOK, map[string]any{
		"id":    cycle.ID,
		"seed":  cycle.Seed,
		"ticks": cycle.Ticks,
		"nodes": len(cycle.Nodes),
	})
}

func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.options().Scene.StepNames())
}

func (s *Server) handleBubbles(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		step := chi.URLParam(r, "step")

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.chart == nil {
			writeError(w, errors.New(errors.ErrCodeNotFound, "no bubble chart loaded"))
			return
		}
		if err := s.chart.ApplyStep(r.Context(), step); err != nil {
			writeError(w, err)
			return
		}
		s.chart.Settle(r.Context(), s.opts.MaxTicks)
		snap := s.chart.Snapshot()

		if format == pipeline.FormatJSON {
			writeJSON(w, http.StatusOK, snap)
			return
		}
		opts := s.opts
		opts.Formats = []string{format}
		artifacts, err := s.runner.RenderBubbles(r.Context(), snap, opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeSVG(w, artifacts[format])
	}
}

// =============================================================================
// Responses
// =============================================================================

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// statusOf maps error codes onto HTTP statuses.
func statusOf(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeUnknownStep:
		return http.StatusNotFound
	case errors.ErrCodeInvalidArgument, errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidGeometry, errors.ErrCodeInvalidLink, errors.ErrCodeUnknownCategory:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusOf(code), errorResponse{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSVG(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// hooksMiddleware reports every request to the registered HTTP hooks.
func hooksMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
