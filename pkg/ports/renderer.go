package ports

import (
	"image"
	"image/color"
)

// Renderer rasterises scene snapshots and encodes the result.
type Renderer interface {
	CreateCanvas(width, height int, bg color.Color) Canvas

	EncodeImage(img image.Image, format ImageFormat) ([]byte, error)

	// ResizeImage scales img to width x height; used for --max-width.
	ResizeImage(img image.Image, width, height int) image.Image
}

// Canvas draws in pixel coordinates. The encode stage maps viewBox
// coordinates onto it.
type Canvas interface {
	DrawRect(x, y, w, h float64, c color.Color)

	// DrawRoundedRect draws a schedule block.
	DrawRoundedRect(x, y, w, h, radius float64, c color.Color)

	DrawRectStroke(x, y, w, h float64, c color.Color, strokeWidth float64)

	// DrawText draws text wrapped to width, starting at the top-left corner.
	DrawText(text string, x, y, width float64, style TextStyle)

	// DrawLine draws gridlines and the time cursor.
	DrawLine(x1, y1, x2, y2 float64, c color.Color, width float64)

	ToImage() image.Image
}

// TextStyle is how a block label is drawn.
type TextStyle struct {
	FontSize float64    `json:"fontSize"`
	FontPath string     `json:"fontPath,omitempty"`
	Color    color.RGBA `json:"color"`
	Align    TextAlign  `json:"align"`
}

type TextAlign int

const (
	AlignLeft TextAlign = iota
	AlignCenter
	AlignRight
)

// ImageFormat selects the raster encoding.
type ImageFormat int

const (
	FormatPNG ImageFormat = iota + 1
)
