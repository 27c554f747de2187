package cli

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cartoforce/pkg/layout"
	"github.com/matzehuels/cartoforce/pkg/pipeline"
)

// frameInterval is the tick period of the live view, about 60 frames a second.
const frameInterval = 16 * time.Millisecond

// Plot styles
var (
	plotBubbleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))
	plotHighlightStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	plotLabelStyle     = lipgloss.NewStyle().Foreground(colorGray)
	plotStepStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var opts bubblesOpts

	cmd := &cobra.Command{
		Use:   "watch [records.csv]",
		Short: "Step through a bubble chart live in the terminal",
		Long: `Run a bubble chart simulation in the terminal.

The simulation ticks every frame. Use the arrow keys to scroll between steps
and watch the bubbles regroup.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			chart, p, err := c.buildBubbles(ctx, args[0], opts)
			if err != nil {
				return err
			}
			m := NewWatchModel(ctx, chart, p.Scene.StepNames())
			if opts.step != "" {
				m = m.jump(opts.step)
			} else if len(m.Steps) > 0 {
				m = m.apply(0)
			}
			if m.Err != nil {
				return m.Err
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&opts.step, "step", "", "start at this step")
	cmd.Flags().Uint64Var(&opts.seed, "seed", pipeline.DefaultSeed, "random seed for the jiggle")
	return cmd
}

// =============================================================================
// WatchModel - Live bubble chart
// =============================================================================

type frameMsg time.Time

// WatchModel is the bubbletea model driving a live bubble chart.
type WatchModel struct {
	Chart  *pipeline.BubbleChart
	Steps  []string
	Cursor int
	Width  int
	Height int
	Err    error

	ctx context.Context
}

// NewWatchModel creates a watch model over chart. No step is applied yet.
func NewWatchModel(ctx context.Context, chart *pipeline.BubbleChart, steps []string) WatchModel {
	return WatchModel{
		Chart:  chart,
		Steps:  steps,
		Cursor: -1,
		Width:  80,
		Height: 24,
		ctx:    ctx,
	}
}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m WatchModel) Init() tea.Cmd {
	return frame()
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.Chart.Advance()
		return m, frame()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "down", "l", "j", " ":
			if m.Cursor < len(m.Steps)-1 {
				m = m.apply(m.Cursor + 1)
			}
		case "left", "up", "h", "k":
			if m.Cursor > 0 {
				m = m.apply(m.Cursor - 1)
			}
		}
	case tea.WindowSizeMsg:
		m.Width = max(msg.Width, 20)
		m.Height = max(msg.Height-4, 5)
	}
	return m, nil
}

func (m WatchModel) apply(i int) WatchModel {
	if err := m.Chart.ApplyStep(m.ctx, m.Steps[i]); err != nil {
		m.Err = err
		return m
	}
	m.Cursor = i
	m.Err = nil
	return m
}

func (m WatchModel) jump(name string) WatchModel {
	for i, s := range m.Steps {
		if s == name {
			return m.apply(i)
		}
	}
	if err := m.Chart.ApplyStep(m.ctx, name); err != nil {
		m.Err = err
	}
	return m
}

func (m WatchModel) View() string {
	var b strings.Builder

	step := "start"
	if m.Cursor >= 0 {
		step = m.Steps[m.Cursor]
	}
	b.WriteString(StyleTitle.Render("Bubbles") + " " + plotStepStyle.Render(step))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Steps))))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ step  q quit"))
	b.WriteString("\n\n")
	b.WriteString(plot(m.Chart.Snapshot(), m.Width, m.Height))
	if m.Err != nil {
		b.WriteString("\n" + styleIconError.Render(m.Err.Error()))
	}
	return b.String()
}

// plot draws a layout as a character grid of cols by rows cells. Larger
// bubbles win a shared cell; visible category labels are written on top.
func plot(l *layout.Layout, cols, rows int) string {
	grid := make([][]string, rows)
	size := make([][]float64, rows)
	for r := range grid {
		grid[r] = make([]string, cols)
		size[r] = make([]float64, cols)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}
	cell := func(x, y float64) (int, int, bool) {
		if l.Width <= 0 || l.Height <= 0 || math.IsNaN(x) || math.IsNaN(y) {
			return 0, 0, false
		}
		c := int((x + l.OffsetX) / l.Width * float64(cols))
		r := int((y + l.OffsetY) / l.Height * float64(rows))
		return r, c, r >= 0 && r < rows && c >= 0 && c < cols
	}

	for _, n := range l.Nodes {
		r, c, ok := cell(n.X, n.Y)
		if !ok || n.R < size[r][c] {
			continue
		}
		size[r][c] = n.R
		glyph := "·"
		switch {
		case n.R >= 40:
			glyph = "●"
		case n.R >= 15:
			glyph = "o"
		}
		if n.Highlight {
			grid[r][c] = plotHighlightStyle.Render(glyph)
		} else {
			grid[r][c] = plotBubbleStyle.Render(glyph)
		}
	}
	for _, lbl := range l.Labels {
		if !lbl.Visible {
			continue
		}
		r, c, ok := cell(lbl.X, lbl.Y)
		if !ok {
			continue
		}
		for i, ch := range []rune(lbl.Text) {
			if c+i >= cols {
				break
			}
			grid[r][c+i] = plotLabelStyle.Render(string(ch))
		}
	}

	lines := make([]string, rows)
	for r := range grid {
		lines[r] = strings.Join(grid[r], "")
	}
	return strings.Join(lines, "\n")
}
