package pipeline

import (
	"image/color"
	"time"

	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule"
)

// =============================================================================
// Layout Stage Types
// =============================================================================

// LayoutKey identifies the layout of one stage on one day.
type LayoutKey struct {
	DayID   string
	StageID string
}

// StageLayout is the retained subtree of one stage on one day.
// The subtree is built once; only its position, visibility and cursor change afterwards.
type StageLayout struct {
	DayID   string
	StageID string

	// Group holds gridlines, blocks, the cursor line and labels, back to front.
	Group ports.Group

	// Cursor is the time-cursor line inside Group.
	Cursor ports.Line

	// Range is the stage range from the repository, passed through unchanged.
	Range schedule.Range
}

// Layouts indexes stage layouts by day and stage.
type Layouts map[LayoutKey]StageLayout

// Get returns the layout of stageID on dayID.
func (l Layouts) Get(dayID, stageID string) (StageLayout, bool) {
	sl, ok := l[LayoutKey{DayID: dayID, StageID: stageID}]
	return sl, ok
}

// LayoutInput contains what the layout stage builds from.
type LayoutInput struct {
	Repository *schedule.Repository
	Surface    ports.Surface
}

// LayoutResult contains every stage layout of the dataset.
type LayoutResult struct {
	Layouts Layouts
}

// =============================================================================
// Composite Stage Types
// =============================================================================

// CompositeInput selects what the composite stage shows.
type CompositeInput struct {
	Repository *schedule.Repository
	Layouts    Layouts
	Surface    ports.Surface

	DayID    string
	StageIDs []string

	// Now positions the cursor lines. The zero time leaves them at coordinate 0.
	Now time.Time
}

// Arrangement describes the stacked, clipped view of a selection.
type Arrangement struct {
	DayID string `json:"dayId"`

	// Visible lists the shown stages top to bottom.
	Visible []string `json:"visible"`

	// Range is the union of the visible stage ranges.
	Range schedule.Range `json:"range"`

	ViewBox ports.ViewBox `json:"viewBox"`
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`

	// Empty is set when no stage is visible.
	Empty bool `json:"empty"`
}

// CompositeResult contains the arrangement and a snapshot of the surface.
type CompositeResult struct {
	Arrangement Arrangement
	Document    ports.Document
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// OutputFormat selects the encoder.
type OutputFormat string

const (
	OutputSVG       OutputFormat = "svg"
	OutputPNG       OutputFormat = "png"
	OutputPNGChrome OutputFormat = "png-chrome"
)

// EncodeInput contains the document to encode.
type EncodeInput struct {
	Document   ports.Document
	Format     OutputFormat
	Background color.RGBA

	// MaxWidth scales raster output down to at most this many pixels wide. Zero keeps full size.
	MaxWidth int
}

// EncodeResult contains the encoded bytes.
type EncodeResult struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}
