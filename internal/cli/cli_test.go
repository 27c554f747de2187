package cli

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cartoforce/pkg/layout"
	"github.com/matzehuels/cartoforce/pkg/scene"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{"svg"}},
		{"svg", []string{"svg"}},
		{"svg,json", []string{"svg", "json"}},
		{"dot,png,pdf", []string{"dot", "png", "pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseFormats(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "data/states.geojson", "data/states"},
		{"", "countries.csv", "countries"},
		{"out/map.svg", "states.geojson", "out/map"},
		{"out/map.json", "states.geojson", "out/map"},
		{"out/map", "states.geojson", "out/map"},
		{"out/map.v2", "states.geojson", "out/map.v2"},
	}

	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "chart")
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "json": []byte("{}")}

	paths, err := writeArtifacts(artifacts, []string{"svg", "json"}, base, "_split")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{base + "_split.svg", base + "_split.json"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<svg/>" {
		t.Errorf("svg content = %q", data)
	}
}

const twoSquares = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "A", "properties": {"name": "Alpha"},
     "geometry": {"type": "Polygon", "coordinates": [[[100,100],[200,100],[200,200],[100,200],[100,100]]]}},
    {"type": "Feature", "id": "B", "properties": {"name": "Beta"},
     "geometry": {"type": "Polygon", "coordinates": [[[200,100],[300,100],[300,200],[200,200],[200,100]]]}}
  ]
}`

const bubbleRows = `ADMIN,Region,Adolescent_Fertility_Rate
Niger,Sub-Saharan Africa,186.5
Mali,Sub-Saharan Africa,169.1
Canada,North America,8.4
Atlantis,North America,n/a
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCartogramCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "squares.geojson")
	if err := os.WriteFile(input, []byte(twoSquares), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "cartogram", input, "-f", "svg,json,dot", "--frames", "5"); err != nil {
		t.Fatal(err)
	}

	base := filepath.Join(dir, "squares")
	l, err := layout.ImportJSON(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if l.Kind != layout.KindCartogram || len(l.Nodes) != 2 || len(l.Links) != 1 {
		t.Errorf("layout = %s with %d nodes, %d links", l.Kind, len(l.Nodes), len(l.Links))
	}
	svg, err := os.ReadFile(base + ".svg")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<animate")) {
		t.Error("svg output is not animated")
	}
	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(dot, []byte(`"A" -- "B"`)) {
		t.Errorf("dot output missing link:\n%s", dot)
	}
}

func TestCartogramCommandErrors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "squares.geojson")
	if err := os.WriteFile(input, []byte(twoSquares), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{"cartogram", filepath.Join(dir, "nope.geojson")}},
		{"bad format", []string{"cartogram", input, "-f", "gif"}},
		{"bad easing", []string{"cartogram", input, "--easing", "bounce"}},
		{"frame out of range", []string{"cartogram", input, "--at", "1.5"}},
		{"bad projection", []string{"cartogram", input, "--projection", "albers"}},
		{"no args", []string{"cartogram"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBubblesCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "rates.csv")
	if err := os.WriteFile(input, []byte(bubbleRows), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := scene.Default()
	if _, err := execute(t, "bubbles", input, "-f", "json", "--ticks", "50"); err != nil {
		t.Fatal(err)
	}
	for _, step := range cfg.StepNames() {
		l, err := layout.ImportJSON(filepath.Join(dir, "rates_"+step+".json"))
		if err != nil {
			t.Fatalf("step %s: %v", step, err)
		}
		if l.Step != step || len(l.Nodes) != 3 {
			t.Errorf("step %s: layout step %q with %d nodes", step, l.Step, len(l.Nodes))
		}
	}
}

func TestBubblesCommandSingleStep(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "rates.csv")
	if err := os.WriteFile(input, []byte(bubbleRows), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "bubbles", input, "-f", "json", "--step", "split", "-o", filepath.Join(dir, "out")); err != nil {
		t.Fatal(err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var written []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "out_") {
			written = append(written, e.Name())
		}
	}
	if !reflect.DeepEqual(written, []string{"out_split.json"}) {
		t.Errorf("written = %v, want [out_split.json]", written)
	}

	if _, err := execute(t, "bubbles", input, "--step", "nowhere"); err == nil {
		t.Error("expected error for unknown step")
	}
}

func TestConfigCommand(t *testing.T) {
	out, err := execute(t, "config")
	if err != nil {
		t.Fatal(err)
	}
	if out != string(scene.DefaultTOML()) {
		t.Error("config output differs from the built-in scene")
	}

	path := filepath.Join(t.TempDir(), "scene.toml")
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		t.Fatal(err)
	}
	roundTrip, err := execute(t, "--config", path, "config")
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := scene.Parse([]byte(roundTrip))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(cfg.StepNames(), scene.Default().StepNames()) {
		t.Errorf("steps = %v", cfg.StepNames())
	}
}

func TestConfigCommandInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.toml")
	if err := os.WriteFile(path, []byte("[cartogram]\nalpha_threshold = -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", path, "config", "--check"); err == nil {
		t.Error("expected validation error")
	}
}

func TestInputName(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"data/states.geojson", "data/states.geojson"},
		{"https://example.com/geo/states.geojson", "states.geojson"},
		{"https://example.com/rates.csv?v=2", "rates.csv"},
		{"https://example.com/", appName},
	}
	for _, tt := range tests {
		if got := inputName(tt.input); got != tt.want {
			t.Errorf("inputName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCartogramCommandURL(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(twoSquares))
	}))
	defer ts.Close()

	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out := filepath.Join(t.TempDir(), "remote")
	run := func(extra ...string) {
		t.Helper()
		c := New(io.Discard, log.InfoLevel)
		root := c.RootCommand()
		root.SetArgs(append([]string{"cartogram", ts.URL + "/squares.geojson", "-f", "json", "-o", out}, extra...))
		if err := root.ExecuteContext(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	run()
	run()
	if got := hits.Load(); got != 1 {
		t.Errorf("downloads = %d, want 1 (second run cached)", got)
	}
	run("--no-cache")
	if got := hits.Load(); got != 2 {
		t.Errorf("downloads = %d, want 2 after --no-cache", got)
	}
	if _, err := layout.ImportJSON(out + ".json"); err != nil {
		t.Error(err)
	}
}
