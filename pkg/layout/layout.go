package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/cartoforce/pkg/errors"
	"github.com/matzehuels/cartoforce/pkg/force"
)

// Kinds of layout.
const (
	KindCartogram = "cartogram"
	KindBubbles   = "bubbles"
)

// Layout is a solved chart.
type Layout struct {
	ID     string  `json:"id"`
	Kind   string  `json:"kind"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	// OffsetX and OffsetY translate node coordinates into the canvas.
	OffsetX float64 `json:"offset_x,omitempty"`
	OffsetY float64 `json:"offset_y,omitempty"`

	Step  string  `json:"step,omitempty"`
	Ticks int     `json:"ticks"`
	Alpha float64 `json:"alpha"`

	Nodes   []Node       `json:"nodes"`
	Links   []force.Link `json:"links,omitempty"`
	Labels  []Label      `json:"labels,omitempty"`
	Skipped []Skip       `json:"skipped,omitempty"`
}

// Node is one solved circle.
type Node struct {
	ID       string   `json:"id"`
	Name     string   `json:"name,omitempty"`
	Category string   `json:"category,omitempty"`
	Value    *float64 `json:"value,omitempty"`

	X float64 `json:"x"`
	Y float64 `json:"y"`
	R float64 `json:"r"`

	Fill      string  `json:"fill,omitempty"`
	Opacity   float64 `json:"opacity,omitempty"`
	Highlight bool    `json:"highlight,omitempty"`
	ShowLabel bool    `json:"show_label,omitempty"`

	// Path is the original outline and Circle the morph target.
	Path   string `json:"path,omitempty"`
	Circle string `json:"circle,omitempty"`
}

// Label is a category caption.
type Label struct {
	Text    string  `json:"text"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Visible bool    `json:"visible"`
}

// Skip records an input that was left out of the layout.
type Skip struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewSkip describes err for the input id.
func NewSkip(id string, err error) Skip {
	return Skip{ID: id, Code: string(errors.GetCode(err)), Message: err.Error()}
}

// Node returns the node with the given id.
func (l *Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Validate checks that links reference existing nodes and that the kind
// is known.
func (l *Layout) Validate() error {
	switch l.Kind {
	case KindCartogram, KindBubbles:
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown layout kind %q", l.Kind)
	}
	for i, lk := range l.Links {
		if lk.Source < 0 || lk.Source >= len(l.Nodes) || lk.Target < 0 || lk.Target >= len(l.Nodes) {
			return errors.New(errors.ErrCodeInvalidLink, "link %d (%s) references a missing node", i, lk)
		}
	}
	return nil
}

// WriteJSON encodes a layout as indented JSON.
func WriteJSON(l *Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a layout to a JSON file at path.
func ExportJSON(l *Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(l, f)
}

// ReadJSON decodes and validates a layout. It does not close r.
func ReadJSON(r io.Reader) (*Layout, error) {
	var l Layout
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layout")
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// ImportJSON reads a layout file.
func ImportJSON(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
