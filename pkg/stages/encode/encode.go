// Package encode turns a scene snapshot into SVG or PNG bytes.
package encode

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/user/blocksched/pkg/adapters/svgexport"
	"github.com/user/blocksched/pkg/pipeline"
	"github.com/user/blocksched/pkg/ports"
	"github.com/user/blocksched/pkg/schedule"
)

// Content types of the encoded output.
const (
	ContentTypeSVG = "image/svg+xml"
	ContentTypePNG = "image/png"
)

// DefaultBackground is the page colour behind the schedule.
func DefaultBackground() color.RGBA {
	return svgexport.DefaultOptions().Background
}

// Stage encodes a document in the requested format.
type Stage struct {
	renderer ports.Renderer
	capturer ports.PageCapturer
	logger   ports.Logger
}

// NewStage creates a new encode stage. capturer may be nil when the
// browser-backed format is not needed.
func NewStage(renderer ports.Renderer, capturer ports.PageCapturer, logger ports.Logger) *Stage {
	return &Stage{
		renderer: renderer,
		capturer: capturer,
		logger:   logger.WithComponent("encode"),
	}
}

// Execute encodes input.Document.
func (s *Stage) Execute(ctx context.Context, input pipeline.EncodeInput) (pipeline.EncodeResult, error) {
	if err := ctx.Err(); err != nil {
		return pipeline.EncodeResult{}, err
	}

	doc := input.Document
	width := int(math.Ceil(doc.Width))
	height := int(math.Ceil(doc.Height))
	opts := svgexport.DefaultOptions()
	if input.Background.A != 0 {
		opts.Background = input.Background
	}

	switch input.Format {
	case pipeline.OutputSVG, "":
		data, err := svgexport.Encode(doc, opts)
		if err != nil {
			return pipeline.EncodeResult{}, fmt.Errorf("encode SVG: %w", err)
		}
		s.logger.Debug("Encoded SVG: %d bytes", len(data))
		return pipeline.EncodeResult{Data: data, ContentType: ContentTypeSVG, Width: width, Height: height}, nil

	case pipeline.OutputPNG:
		if doc.Empty() {
			return pipeline.EncodeResult{}, fmt.Errorf("rasterise: %w", schedule.ErrEmptySelection)
		}
		img := Rasterize(s.renderer, doc, opts.Background)
		return s.png(img, input.MaxWidth)

	case pipeline.OutputPNGChrome:
		if s.capturer == nil {
			return pipeline.EncodeResult{}, fmt.Errorf("format %s needs a browser", input.Format)
		}
		if doc.Empty() {
			return pipeline.EncodeResult{}, fmt.Errorf("rasterise: %w", schedule.ErrEmptySelection)
		}
		svg, err := svgexport.Encode(doc, opts)
		if err != nil {
			return pipeline.EncodeResult{}, fmt.Errorf("encode SVG: %w", err)
		}
		img, err := s.capturer.CapturePage(ctx, svgexport.Page(svg, width, height), width, height)
		if err != nil {
			return pipeline.EncodeResult{}, fmt.Errorf("capture: %w", err)
		}
		return s.png(img, input.MaxWidth)

	default:
		return pipeline.EncodeResult{}, fmt.Errorf("unsupported format: %s", input.Format)
	}
}

func (s *Stage) png(img image.Image, maxWidth int) (pipeline.EncodeResult, error) {
	if b := img.Bounds(); maxWidth > 0 && b.Dx() > maxWidth {
		height := max(b.Dy()*maxWidth/b.Dx(), 1)
		img = s.renderer.ResizeImage(img, maxWidth, height)
	}
	data, err := s.renderer.EncodeImage(img, ports.FormatPNG)
	if err != nil {
		return pipeline.EncodeResult{}, fmt.Errorf("encode PNG: %w", err)
	}
	b := img.Bounds()
	s.logger.Debug("Encoded PNG: %dx%d, %d bytes", b.Dx(), b.Dy(), len(data))
	return pipeline.EncodeResult{Data: data, ContentType: ContentTypePNG, Width: b.Dx(), Height: b.Dy()}, nil
}

// Rasterize paints the visible nodes of doc onto a canvas of its pixel size.
// Coordinates are mapped from the viewBox to pixels.
func Rasterize(renderer ports.Renderer, doc ports.Document, bg color.RGBA) image.Image {
	width := int(math.Ceil(doc.Width))
	height := int(math.Ceil(doc.Height))
	canvas := renderer.CreateCanvas(width, height, bg)

	vb := doc.ViewBox
	sx := doc.Width / vb.Width
	sy := doc.Height / vb.Height
	px := func(offset ports.Point, x, y float64) (float64, float64) {
		return (offset.X + x - vb.X) * sx, (offset.Y + y - vb.Y) * sy
	}

	doc.Walk(func(n ports.Node, offset ports.Point) bool {
		switch n.Kind {
		case ports.NodeRect:
			x, y := px(offset, n.Bounds.X, n.Bounds.Y)
			w, h := n.Bounds.Width*sx, n.Bounds.Height*sy
			if n.Shape.Radius > 0 {
				canvas.DrawRoundedRect(x, y, w, h, n.Shape.Radius*sx, n.Shape.Fill)
			} else {
				canvas.DrawRect(x, y, w, h, n.Shape.Fill)
			}
			if n.Shape.StrokeWidth > 0 {
				canvas.DrawRectStroke(x, y, w, h, n.Shape.Stroke, n.Shape.StrokeWidth*sx)
			}
		case ports.NodeText:
			x, y := px(offset, n.Bounds.X, n.Bounds.Y)
			style := n.TextStyle
			style.FontSize *= sy
			canvas.DrawText(n.Text, x, y, n.Bounds.Width*sx, style)
		case ports.NodeLine:
			x1, y1 := px(offset, n.From.X, n.From.Y)
			x2, y2 := px(offset, n.To.X, n.To.Y)
			canvas.DrawLine(x1, y1, x2, y2, n.Line.Stroke, n.Line.Width*sx)
		}
		return true
	})

	return canvas.ToImage()
}
