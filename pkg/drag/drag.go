// Package drag turns pointer drags into offset updates and shows alignment
// guides while a drag is in progress.
package drag

import (
	"sync"

	"wallpaper/pkg/dom"
	"wallpaper/pkg/layout"
)

const (
	DefaultLineColor = "#f4d03f"
	DefaultLineWidth = 1.0
	guideClass       = "guide-line"
)

// Offset is a pixel offset.
type Offset struct {
	X, Y float64
}

// Options configures the alignment guides.
type Options struct {
	// HideGuideLines disables the guides.
	HideGuideLines bool
	// Container receives the guides, centered on its box. Without a
	// container no guides are drawn.
	Container *dom.Element
	LineColor string
	LineWidth float64
}

// Controller follows one pointer gesture at a time: pointer-down on a
// draggable element starts it, pointer-up anywhere ends it.
type Controller struct {
	doc     *dom.Document
	onDrag  func(x, y float64)
	current func() Offset
	opts    Options

	mu       sync.Mutex
	dragging bool
	start    Offset
	initial  Offset
	guides   []*dom.Element
	unlisten []func()
}

// New creates a controller. onDrag receives the new offset on every move and
// is responsible for storing it; current reports the offset a gesture starts
// from.
func New(doc *dom.Document, onDrag func(x, y float64), current func() Offset, opts Options) *Controller {
	if opts.LineColor == "" {
		opts.LineColor = DefaultLineColor
	}
	if opts.LineWidth <= 0 {
		opts.LineWidth = DefaultLineWidth
	}
	return &Controller{doc: doc, onDrag: onDrag, current: current, opts: opts}
}

// Simple creates a controller without guide lines.
func Simple(doc *dom.Document, onDrag func(x, y float64), current func() Offset) *Controller {
	return New(doc, onDrag, current, Options{HideGuideLines: true})
}

// Dragging reports whether a gesture is in progress.
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dragging
}

// PointerDown starts a gesture. A pointer-down while a gesture is already in
// progress is ignored.
func (c *Controller) PointerDown(ev dom.PointerEvent) {
	c.mu.Lock()
	if c.dragging {
		c.mu.Unlock()
		return
	}
	c.dragging = true
	c.start = Offset{X: ev.X, Y: ev.Y}
	c.initial = c.current()
	c.showGuidesLocked()
	c.unlisten = append(c.unlisten,
		c.doc.Listen(dom.PointerMove, c.pointerMove),
		c.doc.Listen(dom.PointerUp, c.pointerUp),
	)
	c.mu.Unlock()
}

// Attach makes el draggable by routing pointer-down events that target el
// or its descendants to the controller. The returned function detaches it.
func (c *Controller) Attach(el *dom.Element) (detach func()) {
	return c.doc.Listen(dom.PointerDown, func(ev dom.PointerEvent) {
		if ev.Target != nil && el.Contains(ev.Target) {
			c.PointerDown(ev)
		}
	})
}

func (c *Controller) pointerMove(ev dom.PointerEvent) {
	c.mu.Lock()
	if !c.dragging {
		c.mu.Unlock()
		return
	}
	x := c.initial.X + ev.X - c.start.X
	y := c.initial.Y + ev.Y - c.start.Y
	c.mu.Unlock()
	c.onDrag(x, y)
}

func (c *Controller) pointerUp(dom.PointerEvent) {
	c.end()
}

// Close ends any gesture in progress, removing its guides and listeners.
// Call it when the draggable element goes away.
func (c *Controller) Close() {
	c.end()
}

func (c *Controller) end() {
	c.mu.Lock()
	c.dragging = false
	c.hideGuidesLocked()
	unlisten := c.unlisten
	c.unlisten = nil
	c.mu.Unlock()
	for _, remove := range unlisten {
		remove()
	}
}

func (c *Controller) showGuidesLocked() {
	if c.opts.HideGuideLines || c.opts.Container == nil {
		return
	}
	c.hideGuidesLocked()

	box := c.opts.Container.Size
	border := &dom.Border{Width: c.opts.LineWidth, Color: c.opts.LineColor, Dashed: true}

	horizontal := dom.New("div", guideClass, guideClass+"-horizontal")
	horizontal.Size = layout.Size{W: box.W}
	horizontal.Position = &layout.Descriptor{Top: layout.Pixels(box.H / 2), Left: layout.Pixels(0)}
	horizontal.Border = border
	horizontal.Opacity = 0.8

	vertical := dom.New("div", guideClass, guideClass+"-vertical")
	vertical.Size = layout.Size{H: box.H}
	vertical.Position = &layout.Descriptor{Top: layout.Pixels(0), Left: layout.Pixels(box.W / 2)}
	vertical.Border = border
	vertical.Opacity = 0.8

	c.opts.Container.Append(horizontal, vertical)
	c.guides = []*dom.Element{horizontal, vertical}
}

func (c *Controller) hideGuidesLocked() {
	for _, g := range c.guides {
		g.Remove()
	}
	c.guides = nil
}
