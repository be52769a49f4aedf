package softrast

import "image"

// Style carries the paint of an element. A zero alpha disables the
// corresponding pass (fill or stroke) of every element except Dot.
type Style struct {
	Fill   RGBA
	Stroke RGBA
}

// Node holds the attributes shared by every element.
type Node struct {
	// Transform maps the element's local coordinates into its parent's.
	// A nil Transform is the identity. Any other matrix, including a
	// degenerate one, is applied as given.
	Transform *Matrix
	Style     Style
}

// LocalTransform returns the element's transform relative to its parent.
func (n *Node) LocalTransform() Matrix {
	if n.Transform == nil {
		return Identity()
	}
	return *n.Transform
}

// compose returns parent ∘ local.
func (n *Node) compose(parent Matrix) Matrix {
	if n.Transform == nil || n.Transform.IsIdentity() {
		return parent
	}
	return parent.Multiply(*n.Transform)
}

// Element is one node of a scene graph.
//
// The set of elements is closed: Dot, Line, Polyline, Rect, Polygon,
// Ellipse, Image and Group. Each variant composes its LocalTransform onto
// the transform of its ancestors before drawing. Nil elements, including
// typed nil pointers, are skipped.
type Element interface {
	LocalTransform() Matrix
	draw(r *Renderer, m Matrix)
}

// Dot is a single point, drawn with the fill color into the pixel that
// contains it.
type Dot struct {
	Node
	Position Point
}

// Line is a single stroked segment.
type Line struct {
	Node
	From, To Point
}

// Polyline is an open chain of stroked segments. The last vertex does not
// connect back to the first.
type Polyline struct {
	Node
	Points []Point
}

// Rect is an axis-aligned rectangle in local coordinates.
type Rect struct {
	Node
	Position  Point
	Dimension Point
}

// Polygon is a closed, simple polygon.
type Polygon struct {
	Node
	Points []Point
}

// Ellipse is an axis-aligned ellipse in local coordinates.
type Ellipse struct {
	Node
	Center Point
	Radius Point
}

// Image places a texture over the rectangle from Position to
// Position+Dimension.
type Image struct {
	Node
	Position  Point
	Dimension Point
	Texture   image.Image
}

// Group applies its transform to an ordered list of children.
type Group struct {
	Node
	Elements []Element
}

// Scene is an ordered list of top-level elements over a logical canvas of
// Width × Height scene units.
type Scene struct {
	Width, Height float64
	Elements      []Element
}

var (
	_ Element = (*Dot)(nil)
	_ Element = (*Line)(nil)
	_ Element = (*Polyline)(nil)
	_ Element = (*Rect)(nil)
	_ Element = (*Polygon)(nil)
	_ Element = (*Ellipse)(nil)
	_ Element = (*Image)(nil)
	_ Element = (*Group)(nil)
)
