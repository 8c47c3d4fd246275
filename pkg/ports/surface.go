package ports

import "image/color"

// Point is a position in surface coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box in surface coordinates.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ViewBox is the logical coordinate window shown by a surface.
// It is independent of the physical pixel size.
type ViewBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ShapeStyle describes fill and stroke of a rectangle.
type ShapeStyle struct {
	Fill        color.RGBA `json:"fill"`
	Stroke      color.RGBA `json:"stroke"`
	StrokeWidth float64    `json:"strokeWidth"`
	Radius      float64    `json:"radius"`
}

// LineStyle describes the stroke of a line.
type LineStyle struct {
	Stroke color.RGBA `json:"stroke"`
	Width  float64    `json:"width"`
}

// Surface is a retained-mode scene graph.
// Groups are created detached and become visible once appended to the root.
type Surface interface {
	// NewGroup creates a detached top-level group.
	NewGroup(class string) Group

	// Append attaches a group to the root, after any attached groups.
	// Appending an attached group moves it to the end.
	Append(g Group)

	// Remove detaches a group from the root. Detached groups keep their contents.
	Remove(g Group)

	// Clear detaches every group from the root.
	Clear()

	// SetViewBox sets the logical coordinate window.
	SetViewBox(vb ViewBox)

	// ViewBox returns the logical coordinate window.
	ViewBox() ViewBox

	// SetPixelSize sets the physical size of the surface.
	SetPixelSize(width, height float64)

	// PixelSize returns the physical size of the surface.
	PixelSize() (width, height float64)

	// Snapshot returns the attached scene as plain data.
	Snapshot() Document
}

// Element is a node of the scene graph.
type Element interface {
	ID() int
	SetVisible(visible bool)
	Visible() bool
	AddClass(class string)
	RemoveClass(class string)
	HasClass(class string) bool
}

// Group is a container of elements. Children are painted in creation order.
type Group interface {
	Element

	// Group creates a nested group.
	Group(class string) Group

	// Rect adds a rectangle.
	Rect(r Rect, style ShapeStyle) Shape

	// Text adds a text container. Content wraps within the box.
	Text(r Rect, content string, style TextStyle) Element

	// Line adds a line between two points.
	Line(a, b Point, style LineStyle) Line

	// Translate offsets the group and everything in it.
	Translate(x, y float64)

	// Translation returns the current offset.
	Translation() (x, y float64)
}

// Shape is a rectangle that can carry a click target.
type Shape interface {
	Element

	// SetLink makes the shape open url in a new browsing context when clicked.
	SetLink(url string)

	// Link returns the click target, or "".
	Link() string
}

// Line is a two-point line that can be moved after creation.
type Line interface {
	Element
	SetPoints(a, b Point)
	Points() (a, b Point)
}

// NodeKind identifies the type of a snapshot node.
type NodeKind int

const (
	NodeGroup NodeKind = iota
	NodeRect
	NodeText
	NodeLine
)

// String returns the lower-case name of the kind.
func (k NodeKind) String() string {
	switch k {
	case NodeGroup:
		return "group"
	case NodeRect:
		return "rect"
	case NodeText:
		return "text"
	case NodeLine:
		return "line"
	default:
		return "unknown"
	}
}

// Node is a snapshot of one scene element. Only the fields relevant
// to its Kind are set.
type Node struct {
	ID      int      `json:"id"`
	Kind    NodeKind `json:"kind"`
	Classes []string `json:"classes,omitempty"`
	Visible bool     `json:"visible"`

	// Group
	Translate Point  `json:"translate"`
	Children  []Node `json:"children,omitempty"`

	// Rect and Text
	Bounds Rect       `json:"bounds"`
	Shape  ShapeStyle `json:"shape"`
	Link   string     `json:"link,omitempty"`

	// Text
	Text      string    `json:"text,omitempty"`
	TextStyle TextStyle `json:"textStyle"`

	// Line
	From Point     `json:"from"`
	To   Point     `json:"to"`
	Line LineStyle `json:"line"`
}

// HasClass reports whether the node carries class.
func (n Node) HasClass(class string) bool {
	for _, c := range n.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Document is a snapshot of an attached scene, ready for encoding.
type Document struct {
	ViewBox ViewBox `json:"viewBox"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Nodes   []Node  `json:"nodes"`
}

// Empty reports whether the document has no visible area.
func (d Document) Empty() bool {
	return d.ViewBox.Width <= 0 || d.ViewBox.Height <= 0
}

// Walk calls fn for every visible node in paint order with the node's
// accumulated group offset. Children of hidden groups are skipped.
// Returning false from fn skips the children of a group.
func (d Document) Walk(fn func(n Node, offset Point) bool) {
	var walk func(nodes []Node, offset Point)
	walk = func(nodes []Node, offset Point) {
		for _, n := range nodes {
			if !n.Visible {
				continue
			}
			if !fn(n, offset) {
				continue
			}
			if n.Kind == NodeGroup {
				walk(n.Children, Point{X: offset.X + n.Translate.X, Y: offset.Y + n.Translate.Y})
			}
		}
	}
	walk(d.Nodes, Point{})
}
