package mocks

import (
	"image"
	"image/color"

	"github.com/user/blocksched/pkg/ports"
)

// Renderer is a mock implementation of ports.Renderer.
type Renderer struct {
	CreateCanvasFunc func(width, height int, bg color.Color) ports.Canvas
	EncodeImageFunc  func(img image.Image, format ports.ImageFormat) ([]byte, error)
	ResizeImageFunc  func(img image.Image, width, height int) image.Image

	// Canvases holds every canvas created through the default path.
	Canvases []*Canvas
}

func (m *Renderer) CreateCanvas(width, height int, bg color.Color) ports.Canvas {
	if m.CreateCanvasFunc != nil {
		return m.CreateCanvasFunc(width, height, bg)
	}
	c := &Canvas{width: width, height: height}
	m.Canvases = append(m.Canvases, c)
	return c
}

func (m *Renderer) EncodeImage(img image.Image, format ports.ImageFormat) ([]byte, error) {
	if m.EncodeImageFunc != nil {
		return m.EncodeImageFunc(img, format)
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

func (m *Renderer) ResizeImage(img image.Image, width, height int) image.Image {
	if m.ResizeImageFunc != nil {
		return m.ResizeImageFunc(img, width, height)
	}
	return image.NewRGBA(image.Rect(0, 0, width, height))
}

var _ ports.Renderer = (*Renderer)(nil)

// DrawCall records one drawing operation.
type DrawCall struct {
	Op   string
	X, Y float64
	W, H float64
	Text string
}

// Canvas is a mock implementation of ports.Canvas that records draw calls.
type Canvas struct {
	width  int
	height int
	Calls  []DrawCall
}

func (m *Canvas) DrawRect(x, y, w, h float64, c color.Color) {
	m.Calls = append(m.Calls, DrawCall{Op: "rect", X: x, Y: y, W: w, H: h})
}

func (m *Canvas) DrawRoundedRect(x, y, w, h, radius float64, c color.Color) {
	m.Calls = append(m.Calls, DrawCall{Op: "rounded", X: x, Y: y, W: w, H: h})
}

func (m *Canvas) DrawRectStroke(x, y, w, h float64, c color.Color, strokeWidth float64) {
	m.Calls = append(m.Calls, DrawCall{Op: "stroke", X: x, Y: y, W: w, H: h})
}

func (m *Canvas) DrawText(text string, x, y, width float64, style ports.TextStyle) {
	m.Calls = append(m.Calls, DrawCall{Op: "text", X: x, Y: y, W: width, Text: text})
}

func (m *Canvas) DrawLine(x1, y1, x2, y2 float64, c color.Color, width float64) {
	m.Calls = append(m.Calls, DrawCall{Op: "line", X: x1, Y: y1, W: x2 - x1, H: y2 - y1})
}

func (m *Canvas) ToImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, m.width, m.height))
}

// Count returns the number of recorded calls with op.
func (m *Canvas) Count(op string) int {
	n := 0
	for _, c := range m.Calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

var _ ports.Canvas = (*Canvas)(nil)
