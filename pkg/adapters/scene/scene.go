// Package scene provides an in-memory retained scene graph.
package scene

import (
	"github.com/user/blocksched/pkg/ports"
)

// Surface implements ports.Surface in memory.
// It is not safe for concurrent use.
type Surface struct {
	nextID  int
	root    []*Group
	viewBox ports.ViewBox
	width   float64
	height  float64
}

// New creates an empty surface.
func New() *Surface {
	return &Surface{}
}

func (s *Surface) id() int {
	s.nextID++
	return s.nextID
}

// NewGroup creates a detached top-level group.
func (s *Surface) NewGroup(class string) ports.Group {
	return s.newGroup(class)
}

func (s *Surface) newGroup(class string) *Group {
	g := &Group{element: newElement(s.id(), class), surface: s}
	return g
}

// Append attaches g to the root, moving it to the end if already attached.
func (s *Surface) Append(g ports.Group) {
	grp, ok := g.(*Group)
	if !ok || grp.surface != s {
		return
	}
	s.detach(grp)
	s.root = append(s.root, grp)
}

// Remove detaches g from the root.
func (s *Surface) Remove(g ports.Group) {
	if grp, ok := g.(*Group); ok {
		s.detach(grp)
	}
}

func (s *Surface) detach(g *Group) {
	for i, r := range s.root {
		if r == g {
			s.root = append(s.root[:i], s.root[i+1:]...)
			return
		}
	}
}

// Clear detaches every group from the root.
func (s *Surface) Clear() {
	s.root = nil
}

// Attached returns the root groups in paint order.
func (s *Surface) Attached() []ports.Group {
	out := make([]ports.Group, len(s.root))
	for i, g := range s.root {
		out[i] = g
	}
	return out
}

// SetViewBox sets the logical coordinate window.
func (s *Surface) SetViewBox(vb ports.ViewBox) {
	s.viewBox = vb
}

// ViewBox returns the logical coordinate window.
func (s *Surface) ViewBox() ports.ViewBox {
	return s.viewBox
}

// SetPixelSize sets the physical size.
func (s *Surface) SetPixelSize(width, height float64) {
	s.width, s.height = width, height
}

// PixelSize returns the physical size.
func (s *Surface) PixelSize() (float64, float64) {
	return s.width, s.height
}

// Snapshot copies the attached scene into a document.
func (s *Surface) Snapshot() ports.Document {
	doc := ports.Document{
		ViewBox: s.viewBox,
		Width:   s.width,
		Height:  s.height,
		Nodes:   make([]ports.Node, 0, len(s.root)),
	}
	for _, g := range s.root {
		doc.Nodes = append(doc.Nodes, g.snapshot())
	}
	return doc
}

var _ ports.Surface = (*Surface)(nil)

type element struct {
	id      int
	classes []string
	visible bool
}

func newElement(id int, class string) element {
	e := element{id: id, visible: true}
	if class != "" {
		e.classes = []string{class}
	}
	return e
}

func (e *element) ID() int { return e.id }

func (e *element) SetVisible(visible bool) { e.visible = visible }

func (e *element) Visible() bool { return e.visible }

func (e *element) AddClass(class string) {
	if class == "" || e.HasClass(class) {
		return
	}
	e.classes = append(e.classes, class)
}

func (e *element) RemoveClass(class string) {
	for i, c := range e.classes {
		if c == class {
			e.classes = append(e.classes[:i], e.classes[i+1:]...)
			return
		}
	}
}

func (e *element) HasClass(class string) bool {
	for _, c := range e.classes {
		if c == class {
			return true
		}
	}
	return false
}

func (e *element) base(kind ports.NodeKind) ports.Node {
	return ports.Node{
		ID:      e.id,
		Kind:    kind,
		Classes: append([]string(nil), e.classes...),
		Visible: e.visible,
	}
}

type node interface {
	snapshot() ports.Node
}

// Group is a container element.
type Group struct {
	element
	surface  *Surface
	children []node
	tx, ty   float64
}

// Group creates a nested group.
func (g *Group) Group(class string) ports.Group {
	child := g.surface.newGroup(class)
	g.children = append(g.children, child)
	return child
}

// Rect adds a rectangle.
func (g *Group) Rect(r ports.Rect, style ports.ShapeStyle) ports.Shape {
	rect := &Rect{element: newElement(g.surface.id(), ""), bounds: r, style: style}
	g.children = append(g.children, rect)
	return rect
}

// Text adds a wrapping text box.
func (g *Group) Text(r ports.Rect, content string, style ports.TextStyle) ports.Element {
	text := &Text{element: newElement(g.surface.id(), ""), bounds: r, content: content, style: style}
	g.children = append(g.children, text)
	return text
}

// Line adds a line.
func (g *Group) Line(a, b ports.Point, style ports.LineStyle) ports.Line {
	line := &Line{element: newElement(g.surface.id(), ""), a: a, b: b, style: style}
	g.children = append(g.children, line)
	return line
}

// Translate offsets the group.
func (g *Group) Translate(x, y float64) {
	g.tx, g.ty = x, y
}

// Translation returns the current offset.
func (g *Group) Translation() (float64, float64) {
	return g.tx, g.ty
}

func (g *Group) snapshot() ports.Node {
	n := g.base(ports.NodeGroup)
	n.Translate = ports.Point{X: g.tx, Y: g.ty}
	n.Children = make([]ports.Node, 0, len(g.children))
	for _, c := range g.children {
		n.Children = append(n.Children, c.snapshot())
	}
	return n
}

// Rect is a rectangle with an optional link.
type Rect struct {
	element
	bounds ports.Rect
	style  ports.ShapeStyle
	link   string
}

// SetLink sets the click target.
func (r *Rect) SetLink(url string) { r.link = url }

// Link returns the click target.
func (r *Rect) Link() string { return r.link }

func (r *Rect) snapshot() ports.Node {
	n := r.base(ports.NodeRect)
	n.Bounds = r.bounds
	n.Shape = r.style
	n.Link = r.link
	return n
}

// Text is a wrapping text box.
type Text struct {
	element
	bounds  ports.Rect
	content string
	style   ports.TextStyle
}

func (t *Text) snapshot() ports.Node {
	n := t.base(ports.NodeText)
	n.Bounds = t.bounds
	n.Text = t.content
	n.TextStyle = t.style
	return n
}

// Line is a movable line.
type Line struct {
	element
	a, b  ports.Point
	style ports.LineStyle
}

// SetPoints moves the line.
func (l *Line) SetPoints(a, b ports.Point) { l.a, l.b = a, b }

// Points returns the end points.
func (l *Line) Points() (ports.Point, ports.Point) { return l.a, l.b }

func (l *Line) snapshot() ports.Node {
	n := l.base(ports.NodeLine)
	n.From = l.a
	n.To = l.b
	n.Line = l.style
	return n
}
