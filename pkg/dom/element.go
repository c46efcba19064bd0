// Package dom is a minimal element tree standing in for the rendered
// preview. Presentation code builds it, the drag controller attaches guide
// lines to it and the rasterizers capture subtrees of it.
package dom

import (
	"image"
	"slices"
	"strings"
	"sync/atomic"

	"wallpaper/pkg/layout"
)

var nodeSeq atomic.Int64

// Text is the text content of an element and its font.
type Text struct {
	Content    string
	FontFamily string
	FontSize   float64
	Color      string
	Vertical   bool
}

// Border strokes the element box. A box with zero height draws only its
// top edge and a box with zero width only its left edge, which is how guide
// lines are made.
type Border struct {
	Width  float64
	Color  string
	Radius float64
	Dashed bool
}

// Element is a node of the tree.
type Element struct {
	Tag     string
	ID      string
	Classes []string

	// Size is the box extent. A zero dimension is sized from the content.
	Size layout.Size
	// Position places the element inside its parent. Nil places it at the
	// parent's top-left corner.
	Position *layout.Descriptor

	Background string // hex color, empty for transparent
	Image      image.Image
	Fit        layout.ScalingMode
	Text       *Text
	Border     *Border
	Opacity    float64

	node     int64
	parent   *Element
	children []*Element
}

// New creates a detached, fully opaque element.
func New(tag string, classes ...string) *Element {
	return &Element{
		Tag:     tag,
		Classes: classes,
		Opacity: 1,
		node:    nodeSeq.Add(1),
	}
}

// Node returns the unique node number of e.
func (e *Element) Node() int64 { return e.node }

// Parent returns the parent element, or nil for a detached or root element.
func (e *Element) Parent() *Element { return e.parent }

// Root returns the topmost ancestor of e.
func (e *Element) Root() *Element {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Children returns a copy of the child list.
func (e *Element) Children() []*Element {
	return slices.Clone(e.children)
}

// Append attaches children to e, detaching them from any previous parent,
// and returns e.
func (e *Element) Append(children ...*Element) *Element {
	for _, c := range children {
		c.Remove()
		c.parent = e
		e.children = append(e.children, c)
	}
	return e
}

// Remove detaches e from its parent. Removing a detached element is a no-op.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	if i := slices.Index(p.children, e); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
	}
	e.parent = nil
}

// Contains reports whether other is e or one of its descendants.
func (e *Element) Contains(other *Element) bool {
	for n := other; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// HasClass reports whether e carries class name.
func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.Classes, name)
}

// Matches reports whether e matches a simple selector: ".class", "#id" or a
// tag name.
func (e *Element) Matches(selector string) bool {
	selector = strings.TrimSpace(selector)
	switch {
	case selector == "":
		return false
	case strings.HasPrefix(selector, "."):
		return e.HasClass(selector[1:])
	case strings.HasPrefix(selector, "#"):
		return e.ID == selector[1:]
	default:
		return strings.EqualFold(e.Tag, selector)
	}
}

// Query returns the first descendant of e, in document order, matching
// selector, or nil.
func (e *Element) Query(selector string) *Element {
	for _, c := range e.children {
		if c.Matches(selector) {
			return c
		}
		if m := c.Query(selector); m != nil {
			return m
		}
	}
	return nil
}

// QueryAll returns every descendant of e matching selector in document
// order.
func (e *Element) QueryAll(selector string) []*Element {
	var out []*Element
	e.Walk(func(n *Element) {
		if n != e && n.Matches(selector) {
			out = append(out, n)
		}
	})
	return out
}

// Walk calls fn for e and each descendant in document order.
func (e *Element) Walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.children {
		c.Walk(fn)
	}
}
