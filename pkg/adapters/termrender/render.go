// Package termrender draws a scene document as coloured terminal rows.
package termrender

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/user/blocksched/pkg/ports"
)

// Classes read from the scene. They mirror the layout engine's classes.
const (
	classStagePrefix = "stage-"
	classBlock       = "block"
	classLabel       = "label"
	classCursor      = "current-time"
)

// Options controls the terminal grid.
type Options struct {
	// ColumnsPerHour is the number of terminal cells per 60 coordinate units.
	ColumnsPerHour int

	// NameWidth is the width of the stage name column. Zero hides it.
	NameWidth int

	// StageNames maps stage ids to display names.
	StageNames map[string]string

	// Offset and Width select a window of timeline cells. Zero Width shows all.
	Offset int
	Width  int
}

// DefaultOptions returns four columns per hour and a 12 cell name column.
func DefaultOptions() Options {
	return Options{ColumnsPerHour: 4, NameWidth: 12}
}

type cell struct {
	ch     rune
	bg     *color.RGBA
	fg     *color.RGBA
	cursor bool
}

type grid struct {
	origin        float64
	minutesPerCol float64
	cells         []cell
}

func (g *grid) col(x float64) int {
	return int(math.Floor((x - g.origin) / g.minutesPerCol))
}

func (g *grid) span(from, to float64) (int, int) {
	a, b := g.col(from), int(math.Ceil((to-g.origin)/g.minutesPerCol))
	return max(a, 0), min(b, len(g.cells))
}

// Columns returns the number of timeline cells needed for doc.
func Columns(doc ports.Document, opts Options) int {
	if doc.Empty() {
		return 0
	}
	opts = withDefaults(opts)
	return int(math.Ceil(doc.ViewBox.Width * float64(opts.ColumnsPerHour) / 60))
}

func withDefaults(opts Options) Options {
	if opts.ColumnsPerHour <= 0 {
		opts.ColumnsPerHour = DefaultOptions().ColumnsPerHour
	}
	return opts
}

// Render returns one header row of hour marks and one row per stage group.
// An empty document renders as "".
func Render(doc ports.Document, opts Options) string {
	if doc.Empty() {
		return ""
	}
	opts = withDefaults(opts)
	cols := Columns(doc, opts)
	minutesPerCol := 60 / float64(opts.ColumnsPerHour)

	from, to := window(cols, opts)

	var lines []string
	lines = append(lines, header(doc.ViewBox, cols, minutesPerCol)[from:to])

	for _, n := range doc.Nodes {
		if !n.Visible || n.Kind != ports.NodeGroup {
			continue
		}
		g := &grid{origin: doc.ViewBox.X, minutesPerCol: minutesPerCol, cells: make([]cell, cols)}
		for i := range g.cells {
			g.cells[i].ch = ' '
		}
		paintStage(g, n)
		lines = append(lines, nameColumn(stageID(n), opts)+renderCells(g.cells[from:to]))
	}
	lines[0] = nameColumn("", opts) + lipgloss.NewStyle().Faint(true).Render(lines[0])
	return strings.Join(lines, "\n")
}

// window clamps the visible cell range to [0, cols].
func window(cols int, opts Options) (int, int) {
	from := min(max(opts.Offset, 0), cols)
	if opts.Width <= 0 {
		return from, cols
	}
	return from, min(from+opts.Width, cols)
}

// header returns the hour marks as plain text, one rune per cell.
func header(vb ports.ViewBox, cols int, minutesPerCol float64) string {
	row := []rune(strings.Repeat(" ", cols))
	first := math.Ceil(vb.X/60) * 60
	for x := first; x < vb.X+vb.Width; x += 60 {
		c := int((x - vb.X) / minutesPerCol)
		label := fmt.Sprintf("%02d", int(x/60)%24)
		for i, r := range label {
			if c+i < cols {
				row[c+i] = r
			}
		}
	}
	return string(row)
}

func nameColumn(id string, opts Options) string {
	if opts.NameWidth <= 0 {
		return ""
	}
	name := id
	if n, ok := opts.StageNames[id]; ok {
		name = n
	}
	name = truncate.StringWithTail(name, uint(opts.NameWidth-1), "…")
	return lipgloss.NewStyle().Width(opts.NameWidth).Bold(true).Render(name)
}

func stageID(n ports.Node) string {
	for _, c := range n.Classes {
		if strings.HasPrefix(c, classStagePrefix) {
			return strings.TrimPrefix(c, classStagePrefix)
		}
	}
	return ""
}

// paintStage fills blocks, writes labels over them and marks the cursor, in paint order.
func paintStage(g *grid, stage ports.Node) {
	ports.Document{Nodes: stage.Children}.Walk(func(n ports.Node, _ ports.Point) bool {
		switch {
		case n.Kind == ports.NodeRect && n.HasClass(classBlock):
			fill := n.Shape.Fill
			from, to := g.span(n.Bounds.X, n.Bounds.X+n.Bounds.Width)
			for i := from; i < to; i++ {
				g.cells[i].bg = &fill
			}

		case n.Kind == ports.NodeText && n.HasClass(classLabel):
			fg := n.TextStyle.Color
			from, to := g.span(n.Bounds.X, n.Bounds.X+n.Bounds.Width)
			if to-from < 1 {
				return true
			}
			text := strings.SplitN(n.Text, "\n", 2)[0]
			text = truncate.StringWithTail(text, uint(to-from), "…")
			i := from
			for _, r := range text {
				if i >= to {
					break
				}
				g.cells[i].ch = r
				g.cells[i].fg = &fg
				i++
			}

		case n.Kind == ports.NodeLine && n.HasClass(classCursor):
			c := g.col(n.From.X)
			if n.From.X > 0 && c >= 0 && c < len(g.cells) {
				stroke := n.Line.Stroke
				g.cells[c].cursor = true
				g.cells[c].fg = &stroke
				if g.cells[c].ch == ' ' {
					g.cells[c].ch = '│'
				}
			}
		}
		return true
	})
}

// renderCells joins runs of equally styled cells into styled segments.
func renderCells(cells []cell) string {
	var b strings.Builder
	for i := 0; i < len(cells); {
		j := i + 1
		for j < len(cells) && sameStyle(cells[i], cells[j]) {
			j++
		}
		var run strings.Builder
		for _, c := range cells[i:j] {
			run.WriteRune(c.ch)
		}
		b.WriteString(style(cells[i]).Render(run.String()))
		i = j
	}
	return b.String()
}

func sameStyle(a, b cell) bool {
	return a.cursor == b.cursor && eq(a.bg, b.bg) && eq(a.fg, b.fg)
}

func eq(a, b *color.RGBA) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func style(c cell) lipgloss.Style {
	s := lipgloss.NewStyle()
	if c.bg != nil {
		s = s.Background(lipgloss.Color(hex(*c.bg)))
	}
	if c.fg != nil {
		s = s.Foreground(lipgloss.Color(hex(*c.fg)))
	}
	if c.cursor {
		s = s.Bold(true)
	}
	return s
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
