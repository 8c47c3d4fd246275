// Package svgexport serialises a scene snapshot as a standalone SVG document.
package svgexport

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"github.com/user/blocksched/pkg/ports"
)

// Options controls document-level presentation.
type Options struct {
	Background color.RGBA
	FontFamily string
}

// DefaultOptions returns a white background and a sans-serif font.
func DefaultOptions() Options {
	return Options{
		Background: color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
		FontFamily: "sans-serif",
	}
}

const style = `.clickable{cursor:pointer}.clickable:hover{opacity:.85}`

// Encode returns doc as SVG bytes.
func Encode(doc ports.Document, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, doc, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write writes doc to w. The document's viewBox clips the scene; its pixel
// size becomes the width and height attributes.
func Write(w io.Writer, doc ports.Document, opts Options) error {
	bw := bufio.NewWriter(w)
	e := &encoder{w: bw, opts: opts}

	vb := doc.ViewBox
	e.printf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s" preserveAspectRatio="none" font-family="%s">`,
		num(doc.Width), num(doc.Height), num(vb.X), num(vb.Y), num(vb.Width), num(vb.Height), e.escape(opts.FontFamily))
	e.printf("<style>%s</style>", style)
	if !doc.Empty() {
		e.printf(`<rect x="%s" y="%s" width="%s" height="%s"%s/>`,
			num(vb.X), num(vb.Y), num(vb.Width), num(vb.Height), paint("fill", opts.Background))
	}
	for _, n := range doc.Nodes {
		e.node(n)
	}
	e.printf("</svg>\n")

	if e.err != nil {
		return e.err
	}
	return bw.Flush()
}

type encoder struct {
	w    *bufio.Writer
	opts Options
	err  error
}

func (e *encoder) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *encoder) escape(s string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil && e.err == nil {
		e.err = err
	}
	return b.String()
}

func (e *encoder) class(n ports.Node) string {
	if len(n.Classes) == 0 {
		return ""
	}
	return fmt.Sprintf(` class="%s"`, e.escape(strings.Join(n.Classes, " ")))
}

func (e *encoder) node(n ports.Node) {
	if !n.Visible {
		return
	}
	switch n.Kind {
	case ports.NodeGroup:
		transform := ""
		if n.Translate.X != 0 || n.Translate.Y != 0 {
			transform = fmt.Sprintf(` transform="translate(%s %s)"`, num(n.Translate.X), num(n.Translate.Y))
		}
		e.printf("<g%s%s>", e.class(n), transform)
		for _, c := range n.Children {
			e.node(c)
		}
		e.printf("</g>")

	case ports.NodeRect:
		if n.Link != "" {
			e.printf(`<a href="%s" target="_blank" rel="noopener">`, e.escape(n.Link))
		}
		radius := ""
		if n.Shape.Radius > 0 {
			radius = fmt.Sprintf(` rx="%s"`, num(n.Shape.Radius))
		}
		stroke := ""
		if n.Shape.StrokeWidth > 0 {
			stroke = paint("stroke", n.Shape.Stroke) + fmt.Sprintf(` stroke-width="%s"`, num(n.Shape.StrokeWidth))
		}
		e.printf(`<rect%s x="%s" y="%s" width="%s" height="%s"%s%s%s/>`,
			e.class(n), num(n.Bounds.X), num(n.Bounds.Y), num(n.Bounds.Width), num(n.Bounds.Height),
			radius, paint("fill", n.Shape.Fill), stroke)
		if n.Link != "" {
			e.printf("</a>")
		}

	case ports.NodeText:
		size := n.TextStyle.FontSize
		e.printf(`<text%s x="%s" y="%s" font-size="%s"%s>`,
			e.class(n), num(n.Bounds.X), num(n.Bounds.Y), num(size), paint("fill", n.TextStyle.Color))
		for i, line := range wrapLabel(n.Text, n.Bounds.Width, size) {
			dy := size * 1.2
			if i == 0 {
				dy = size
			}
			e.printf(`<tspan x="%s" dy="%s">%s</tspan>`, num(n.Bounds.X), num(dy), e.escape(line))
		}
		e.printf("</text>")

	case ports.NodeLine:
		e.printf(`<line%s x1="%s" y1="%s" x2="%s" y2="%s"%s stroke-width="%s"/>`,
			e.class(n), num(n.From.X), num(n.From.Y), num(n.To.X), num(n.To.Y),
			paint("stroke", n.Line.Stroke), num(n.Line.Width))
	}
}

// charWidth is the average advance of a sans-serif glyph, in ems.
const charWidth = 0.55

// wrapLabel breaks text into lines that fit width at font size, preferring
// word boundaries and splitting words that are longer than a line.
func wrapLabel(text string, width, size float64) []string {
	if width <= 0 || size <= 0 {
		return strings.Split(text, "\n")
	}
	cols := max(int(width/(size*charWidth)), 1)
	var lines []string
	for _, line := range strings.Split(wrap.String(wordwrap.String(text, cols), cols), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// num formats f without trailing zeros.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func paint(attr string, c color.RGBA) string {
	s := fmt.Sprintf(` %s="#%02x%02x%02x"`, attr, c.R, c.G, c.B)
	if c.A != 0xff {
		s += fmt.Sprintf(` %s-opacity="%s"`, attr, strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64))
	}
	return s
}

// Page wraps an SVG document in a bare HTML page sized to the image, for
// browser rasterisation.
func Page(svg []byte, width, height int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<!DOCTYPE html><html><head><meta charset="utf-8"><style>html,body{margin:0;padding:0}body{width:%dpx;height:%dpx;overflow:hidden}svg{display:block}</style></head><body>`, width, height)
	b.Write(svg)
	b.WriteString("</body></html>")
	return b.String()
}
