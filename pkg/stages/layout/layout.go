// Package layout builds the retained subtree of every stage on every day.
package layout

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/user/blocksched/pkg/pipeline"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule"
)

// DefaultBlockRadius is used when the style provider has no radius.
const DefaultBlockRadius = 4.0

// HourStep is the spacing of gridlines in coordinate units.
const HourStep = 60

// Element classes.
const (
	ClassStage     = "stage"
	ClassHourLine  = "hour-line"
	ClassBlock     = "block"
	ClassClickable = "clickable"
	ClassCursor    = "current-time"
	ClassLabel     = "label"
)

// Theme holds the colours and sizes of a stage subtree.
type Theme struct {
	GridColour     color.RGBA
	CursorColour   color.RGBA
	FallbackColour color.RGBA
	LightText      color.RGBA
	DarkText       color.RGBA
	FontSize       float64
	FontPath       string
	LineWidth      float64
	BlockInset     float64
	LabelPadding   float64
}

// DefaultTheme returns the built-in theme.
func DefaultTheme() Theme {
	return Theme{
		GridColour:     color.RGBA{R: 0xcc, G: 0xcc, B: 0xcc, A: 0xff},
		CursorColour:   color.RGBA{R: 0xff, G: 0x00, B: 0x66, A: 0xff},
		FallbackColour: color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff},
		LightText:      color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		DarkText:       color.RGBA{R: 0x11, G: 0x11, B: 0x11, A: 0xff},
		FontSize:       6,
		LineWidth:      0.5,
		BlockInset:     2,
		LabelPadding:   1.5,
	}
}

// Engine converts the events of one stage on one day into a scene subtree.
type Engine struct {
	repo   *schedule.Repository
	theme  Theme
	radius float64
	logger ports.Logger
}

// NewEngine creates a layout engine. The block radius is read from style once;
// a nil style or a missing radius selects DefaultBlockRadius.
func NewEngine(repo *schedule.Repository, theme Theme, style ports.StyleProvider, logger ports.Logger) *Engine {
	radius := DefaultBlockRadius
	if style != nil {
		if r, ok := style.BlockRadius(); ok {
			radius = r
		}
	}
	return &Engine{
		repo:   repo,
		theme:  theme,
		radius: radius,
		logger: logger.WithComponent("layout"),
	}
}

// Radius returns the block corner radius in use.
func (e *Engine) Radius() float64 {
	return e.radius
}

// BuildStage builds the detached subtree of stageID on dayID on surface.
// Layering, back to front: gridlines, blocks, cursor line, labels.
func (e *Engine) BuildStage(surface ports.Surface, dayID, stageID string) (pipeline.StageLayout, error) {
	stage, err := e.repo.Stage(stageID)
	if err != nil {
		return pipeline.StageLayout{}, err
	}
	slots, err := e.repo.Events(dayID, stageID)
	if err != nil {
		return pipeline.StageLayout{}, err
	}
	rng, err := e.repo.RangeForStage(dayID, stageID)
	if err != nil {
		return pipeline.StageLayout{}, err
	}

	rowHeight := e.repo.Config().BlockHeight.Coords
	fill := e.stageColour(stage)
	text := e.textColour(fill)

	root := surface.NewGroup(ClassStage)
	root.AddClass("stage-" + stageID)

	grid := root.Group("grid")
	for x := 0; x <= schedule.MaxCoordinate; x += HourStep {
		line := grid.Line(
			ports.Point{X: float64(x), Y: 0},
			ports.Point{X: float64(x), Y: rowHeight},
			ports.LineStyle{Stroke: e.theme.GridColour, Width: e.theme.LineWidth},
		)
		line.AddClass(ClassHourLine)
	}

	blocks := root.Group("blocks")
	for _, slot := range slots {
		rect := blocks.Rect(e.blockBounds(slot, rowHeight), ports.ShapeStyle{
			Fill:   fill,
			Radius: e.radius,
		})
		rect.AddClass(ClassBlock)
		if slot.URL != "" {
			rect.SetLink(slot.URL)
			rect.AddClass(ClassClickable)
		}
	}

	cursor := root.Line(
		ports.Point{X: 0, Y: 0},
		ports.Point{X: 0, Y: rowHeight},
		ports.LineStyle{Stroke: e.theme.CursorColour, Width: e.theme.LineWidth * 2},
	)
	cursor.AddClass(ClassCursor)

	labels := root.Group("labels")
	for _, slot := range slots {
		b := e.blockBounds(slot, rowHeight)
		p := e.theme.LabelPadding
		box := ports.Rect{X: b.X + p, Y: b.Y + p, Width: max(b.Width-2*p, 0), Height: max(b.Height-2*p, 0)}
		label := labels.Text(box, Label(slot), ports.TextStyle{
			FontSize: e.theme.FontSize,
			FontPath: e.theme.FontPath,
			Color:    text,
			Align:    ports.AlignLeft,
		})
		label.AddClass(ClassLabel)
	}

	e.logger.Debug("Built layout for %s/%s: %d events, range %.0f-%.0f", dayID, stageID, len(slots), rng.Start, rng.End)

	return pipeline.StageLayout{
		DayID:   dayID,
		StageID: stageID,
		Group:   root,
		Cursor:  cursor,
		Range:   rng,
	}, nil
}

// UpdateCurrentTimeLine moves the cursor of sl to now, relative to dayStart.
func (e *Engine) UpdateCurrentTimeLine(sl pipeline.StageLayout, dayStart, now time.Time) {
	MoveCursor(sl, e.repo.Config().BlockHeight.Coords, schedule.InstantCoordinate(dayStart, now))
}

// MoveCursor places the cursor line of sl at coordinate x.
func MoveCursor(sl pipeline.StageLayout, rowHeight, x float64) {
	sl.Cursor.SetPoints(ports.Point{X: x, Y: 0}, ports.Point{X: x, Y: rowHeight})
}

// Label returns the text shown on the block of slot.
func Label(slot schedule.Slot) string {
	return fmt.Sprintf("%s\n%s–%s", slot.Name, slot.StartClock, slot.EndClock)
}

func (e *Engine) blockBounds(slot schedule.Slot, rowHeight float64) ports.Rect {
	inset := e.theme.BlockInset
	return ports.Rect{
		X:      slot.StartCoord,
		Y:      inset,
		Width:  slot.EndCoord - slot.StartCoord,
		Height: max(rowHeight-2*inset, 0),
	}
}

func (e *Engine) stageColour(stage schedule.Stage) color.RGBA {
	c, err := colorful.Hex(stage.Colour)
	if err != nil {
		e.logger.Warn("Stage %s has invalid colour %q, using fallback", stage.ID, stage.Colour)
		return e.theme.FallbackColour
	}
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// textColour picks light or dark text for contrast against fill.
func (e *Engine) textColour(fill color.RGBA) color.RGBA {
	c, _ := colorful.MakeColor(fill)
	l, _, _ := c.Lab()
	if l > 0.6 {
		return e.theme.DarkText
	}
	return e.theme.LightText
}

// Stage is the pipeline stage that lays out every stage present on every day.
type Stage struct {
	theme  Theme
	style  ports.StyleProvider
	logger ports.Logger
}

// NewStage creates a new layout stage.
func NewStage(theme Theme, style ports.StyleProvider, logger ports.Logger) *Stage {
	return &Stage{theme: theme, style: style, logger: logger}
}

// Execute builds one subtree per (day, stage present that day).
func (s *Stage) Execute(ctx context.Context, input pipeline.LayoutInput) (pipeline.LayoutResult, error) {
	return BuildAll(ctx, NewEngine(input.Repository, s.theme, s.style, s.logger), input.Repository, input.Surface)
}

// BuildAll lays out every stage present on every day of repo.
func BuildAll(ctx context.Context, engine *Engine, repo *schedule.Repository, surface ports.Surface) (pipeline.LayoutResult, error) {
	layouts := make(pipeline.Layouts)
	for _, dayID := range repo.DayIDs() {
		if err := ctx.Err(); err != nil {
			return pipeline.LayoutResult{}, err
		}
		stageIDs, err := repo.DayStageIDs(dayID)
		if err != nil {
			return pipeline.LayoutResult{}, err
		}
		for _, stageID := range stageIDs {
			sl, err := engine.BuildStage(surface, dayID, stageID)
			if err != nil {
				return pipeline.LayoutResult{}, fmt.Errorf("layout %s/%s: %w", dayID, stageID, err)
			}
			layouts[pipeline.LayoutKey{DayID: dayID, StageID: stageID}] = sl
		}
	}
	return pipeline.LayoutResult{Layouts: layouts}, nil
}
