// Package composite stacks the stage layouts of a selection onto one surface.
package composite

import (
	"context"
	"fmt"
	"time"

	"github.com/user/blocksched/pkg/pipeline"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule"
	"github.com/user/blocksched/pkg/stages/layout"
)

// ShrinkDelay is how long a surface shrink waits for outgoing stages to fade.
const ShrinkDelay = 500 * time.Millisecond

type pendingResize struct {
	viewBox ports.ViewBox
	due     time.Time
}

// View re-filters and re-stacks prebuilt stage layouts for a selection.
// It is not safe for concurrent use.
type View struct {
	repo        *schedule.Repository
	layouts     pipeline.Layouts
	surface     ports.Surface
	clock       ports.Clock
	logger      ports.Logger
	shrinkDelay time.Duration

	arrangement pipeline.Arrangement
	attached    []pipeline.StageLayout
	pending     *pendingResize
}

// Option configures a View.
type Option func(*View)

// WithShrinkDelay overrides ShrinkDelay.
func WithShrinkDelay(d time.Duration) Option {
	return func(v *View) {
		v.shrinkDelay = d
	}
}

// NewView creates a view over layouts drawn on surface.
func NewView(repo *schedule.Repository, layouts pipeline.Layouts, surface ports.Surface, clock ports.Clock, logger ports.Logger, opts ...Option) *View {
	v := &View{
		repo:        repo,
		layouts:     layouts,
		surface:     surface,
		clock:       clock,
		logger:      logger.WithComponent("composite"),
		shrinkDelay: ShrinkDelay,
		arrangement: pipeline.Arrangement{Empty: true},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// VisibleStages returns the stages of enabled present on dayID, in declared stage order.
func (v *View) VisibleStages(dayID string, enabled []string) []string {
	want := make(map[string]bool, len(enabled))
	for _, id := range enabled {
		want[id] = true
	}
	present, err := v.repo.DayStageIDs(dayID)
	if err != nil {
		return nil
	}
	var out []string
	for _, id := range present {
		if want[id] {
			out = append(out, id)
		}
	}
	return out
}

// UpdateBlockSchedule shows the enabled stages of dayID stacked in declared order
// and clips the surface to their combined range. Growth is applied at once;
// a shrink is held until Flush is called after PendingUntil.
//
// An empty selection detaches everything and yields an empty arrangement.
func (v *View) UpdateBlockSchedule(dayID string, enabled []string) (pipeline.Arrangement, error) {
	if !v.repo.HasDay(dayID) {
		return v.arrangement, &schedule.LookupError{Kind: "day", ID: dayID}
	}

	visible := v.VisibleStages(dayID, enabled)
	next := make([]pipeline.StageLayout, 0, len(visible))
	for _, id := range visible {
		sl, ok := v.layouts.Get(dayID, id)
		if !ok {
			return v.arrangement, fmt.Errorf("no layout for %s/%s: %w", dayID, id, schedule.ErrNotFound)
		}
		next = append(next, sl)
	}

	for _, sl := range v.attached {
		sl.Group.SetVisible(false)
	}
	v.surface.Clear()

	rowHeight := v.repo.Config().BlockHeight.Coords
	for i, sl := range next {
		sl.Group.Translate(0, float64(i)*rowHeight)
		sl.Group.SetVisible(true)
		v.surface.Append(sl.Group)
	}
	v.attached = next

	arr := pipeline.Arrangement{
		DayID:   dayID,
		Visible: visible,
		Empty:   len(visible) == 0,
	}
	if !arr.Empty {
		rng, err := v.repo.RangeForSelection(dayID, visible)
		if err != nil {
			return v.arrangement, err
		}
		arr.Range = rng
		arr.ViewBox = ports.ViewBox{
			X:      rng.Start,
			Y:      0,
			Width:  rng.Width(),
			Height: float64(len(visible)) * rowHeight,
		}
	}
	ratio := v.repo.Config().BlockHeight.PixelsPerCoord()
	arr.Width = arr.ViewBox.Width * ratio
	arr.Height = arr.ViewBox.Height * ratio

	v.resize(arr.ViewBox)
	v.arrangement = arr

	v.logger.Debug("Showing %d stages on %s: range %.0f-%.0f, %.0fx%.0f px",
		len(visible), dayID, arr.Range.Start, arr.Range.End, arr.Width, arr.Height)
	return arr, nil
}

// resize applies target now if it does not shrink the current window.
// Otherwise the window covers both until the shrink is due.
func (v *View) resize(target ports.ViewBox) {
	current := v.surface.ViewBox()
	v.pending = nil

	if isEmpty(current) || contains(target, current) {
		v.apply(target)
		return
	}

	v.apply(union(current, target))
	v.pending = &pendingResize{viewBox: target, due: v.clock.Now().Add(v.shrinkDelay)}
}

func (v *View) apply(vb ports.ViewBox) {
	ratio := v.repo.Config().BlockHeight.PixelsPerCoord()
	v.surface.SetViewBox(vb)
	v.surface.SetPixelSize(vb.Width*ratio, vb.Height*ratio)
}

// PendingUntil returns when a deferred shrink becomes due.
func (v *View) PendingUntil() (time.Time, bool) {
	if v.pending == nil {
		return time.Time{}, false
	}
	return v.pending.due, true
}

// Flush applies a deferred shrink if it is due at now. It reports whether
// the surface changed.
func (v *View) Flush(now time.Time) bool {
	if v.pending == nil || now.Before(v.pending.due) {
		return false
	}
	v.apply(v.pending.viewBox)
	v.pending = nil
	return true
}

// FlushNow applies any deferred shrink immediately.
func (v *View) FlushNow() {
	if v.pending != nil {
		v.apply(v.pending.viewBox)
		v.pending = nil
	}
}

// Arrangement returns the last computed arrangement.
func (v *View) Arrangement() pipeline.Arrangement {
	return v.arrangement
}

// UpdateCurrentTimeLines moves the cursor of every visible stage to now.
// Layout and visibility are left alone.
func (v *View) UpdateCurrentTimeLines(dayID string, enabled []string, now time.Time) {
	dayStart, err := v.repo.DayStart(dayID)
	if err != nil {
		return
	}
	x := schedule.InstantCoordinate(dayStart, now)
	rowHeight := v.repo.Config().BlockHeight.Coords
	for _, id := range v.VisibleStages(dayID, enabled) {
		if sl, ok := v.layouts.Get(dayID, id); ok {
			layout.MoveCursor(sl, rowHeight, x)
		}
	}
}

// CurrentTimeLine returns the cursor of the topmost visible stage.
func (v *View) CurrentTimeLine(dayID string, enabled []string) (ports.Line, bool) {
	visible := v.VisibleStages(dayID, enabled)
	if len(visible) == 0 {
		return nil, false
	}
	sl, ok := v.layouts.Get(dayID, visible[0])
	if !ok {
		return nil, false
	}
	return sl.Cursor, true
}

// PixelX converts a coordinate to a pixel offset from the left edge of the surface.
func (v *View) PixelX(coordinate float64) float64 {
	vb := v.surface.ViewBox()
	return (coordinate - vb.X) * v.repo.Config().BlockHeight.PixelsPerCoord()
}

func isEmpty(vb ports.ViewBox) bool {
	return vb.Width <= 0 || vb.Height <= 0
}

// contains reports whether outer covers inner.
func contains(outer, inner ports.ViewBox) bool {
	return outer.X <= inner.X && outer.Y <= inner.Y &&
		outer.X+outer.Width >= inner.X+inner.Width &&
		outer.Y+outer.Height >= inner.Y+inner.Height
}

func union(a, b ports.ViewBox) ports.ViewBox {
	if isEmpty(b) {
		return a
	}
	x := min(a.X, b.X)
	y := min(a.Y, b.Y)
	return ports.ViewBox{
		X:      x,
		Y:      y,
		Width:  max(a.X+a.Width, b.X+b.Width) - x,
		Height: max(a.Y+a.Height, b.Y+b.Height) - y,
	}
}

// Stage is the pipeline stage that arranges one selection and snapshots it.
type Stage struct {
	clock  ports.Clock
	logger ports.Logger
}

// NewStage creates a new composite stage.
func NewStage(clock ports.Clock, logger ports.Logger) *Stage {
	return &Stage{clock: clock, logger: logger}
}

// Execute arranges the selection, applies any deferred resize and snapshots the surface.
func (s *Stage) Execute(ctx context.Context, input pipeline.CompositeInput) (pipeline.CompositeResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.CompositeResult{}, err
	}

	view := NewView(input.Repository, input.Layouts, input.Surface, s.clock, s.logger)
	arr, err := view.UpdateBlockSchedule(input.DayID, input.StageIDs)
	if err != nil {
		return pipeline.CompositeResult{}, err
	}
	view.FlushNow()

	if !input.Now.IsZero() {
		view.UpdateCurrentTimeLines(input.DayID, input.StageIDs, input.Now)
	}

	return pipeline.CompositeResult{
		Arrangement: arr,
		Document:    input.Surface.Snapshot(),
	}, nil
}
