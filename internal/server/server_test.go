package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/paulmach/orb"

	"github.com/matzehuels/cartoforce/pkg/dataset"
	"github.com/matzehuels/cartoforce/pkg/layout"
)

func square(x, y, size float64) orb.Polygon {
	return orb.Polygon{{{x, y}, {x + size, y}, {x + size, y + size}, {x, y + size}}}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := New(context.Background(), Config{
		Features: []dataset.Feature{
			{ID: "A", Name: "Alpha", Geometry: square(100, 100, 100)},
			{ID: "B", Name: "Beta", Geometry: square(200, 100, 100)},
		},
		Records: []dataset.Record{
			{Label: "Niger", Category: "Sub-Saharan Africa", Value: 186.5},
			{Label: "Canada", Category: "North America", Value: 8.4},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func TestRoutes(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		method      string
		path        string
		status      int
		contentType string
		contains    string
	}{
		{http.MethodGet, "/healthz", http.StatusOK, "application/json", `"version"`},
		{http.MethodGet, "/cartogram/layout", http.StatusOK, "application/json", `"kind":"cartogram"`},
		{http.MethodGet, "/cartogram/frame.svg?t=0.5", http.StatusOK, "image/svg+xml", "<path"},
		{http.MethodGet, "/cartogram/frame.svg?t=2", http.StatusBadRequest, "application/json", "INVALID_ARGUMENT"},
		{http.MethodGet, "/cartogram/frame.svg?t=abc", http.StatusBadRequest, "application/json", "INVALID_ARGUMENT"},
		{http.MethodGet, "/cartogram/animation.svg", http.StatusOK, "image/svg+xml", "<animate"},
		{http.MethodGet, "/cartogram/animation.svg?easing=bounce", http.StatusBadRequest, "application/json", "easing"},
		{http.MethodGet, "/bubbles/steps", http.StatusOK, "application/json", "split-highlight"},
		{http.MethodGet, "/bubbles/split.svg", http.StatusOK, "image/svg+xml", "<g id=\"bubbles\""},
		{http.MethodGet, "/bubbles/split.json", http.StatusOK, "application/json", `"step":"split"`},
		{http.MethodGet, "/bubbles/nowhere.svg", http.StatusNotFound, "application/json", "UNKNOWN_STEP"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if ct := resp.Header.Get("Content-Type"); ct != tt.contentType {
				t.Errorf("content type = %q, want %q", ct, tt.contentType)
			}
			var body bytes.Buffer
			if _, err := body.ReadFrom(resp.Body); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(body.String(), tt.contains) {
				t.Errorf("body does not contain %q:\n%.300s", tt.contains, body.String())
			}
		})
	}
}

func TestResimulate(t *testing.T) {
	ts := newTestServer(t)

	layoutID := func() string {
		resp, err := http.Get(ts.URL + "/cartogram/layout")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var l layout.Layout
		if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
			t.Fatal(err)
		}
		return l.ID
	}

	before := layoutID()
	resp, err := http.Post(ts.URL+"/cartogram/resimulate", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		ID   string `json:"id"`
		Seed uint64 `json:"seed"`
	}
	err = json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	if got.Seed != 43 {
		t.Errorf("seed = %d, want 43", got.Seed)
	}
	if after := layoutID(); after == before || after != got.ID {
		t.Errorf("layout id = %s, want new cycle %s (was %s)", after, got.ID, before)
	}
}

func TestEmptyServer(t *testing.T) {
	s, err := New(context.Background(), Config{})
	if err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{"/cartogram/layout", "/cartogram/frame.svg", "/bubbles/split.svg"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s status = %d, want 404", path, rec.Code)
		}
	}
}

// TestConcurrentResimulate renders frames while new cycles are solved; run
// with -race to check that option reads are synchronized.
func TestConcurrentResimulate(t *testing.T) {
	s, err := New(context.Background(), Config{
		Features: []dataset.Feature{
			{ID: "A", Name: "Alpha", Geometry: square(100, 100, 100)},
			{ID: "B", Name: "Beta", Geometry: square(200, 100, 100)},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	h := s.Handler()

	paths := []struct{ method, path string }{
		{http.MethodPost, "/cartogram/resimulate"},
		{http.MethodGet, "/cartogram/frame.svg?t=0.5"},
		{http.MethodGet, "/cartogram/animation.svg"},
		{http.MethodGet, "/bubbles/steps"},
	}
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		for _, p := range paths {
			wg.Add(1)
			go func() {
				defer wg.Done()
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
				if rec.Code != http.StatusOK {
					t.Errorf("%s %s status = %d", p.method, p.path, rec.Code)
				}
			}()
		}
	}
	wg.Wait()

	if got := s.options().Seed; got != 45 {
		t.Errorf("seed = %d, want 45 after three resimulations", got)
	}
}
