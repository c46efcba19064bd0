package dom

import (
	"sort"
	"sync"
)

// EventKind names a pointer event.
type EventKind int

const (
	PointerDown EventKind = iota
	PointerMove
	PointerUp
)

func (k EventKind) String() string {
	switch k {
	case PointerDown:
		return "pointerdown"
	case PointerMove:
		return "pointermove"
	case PointerUp:
		return "pointerup"
	}
	return "unknown"
}

// PointerEvent is a pointer position in client coordinates.
type PointerEvent struct {
	Kind   EventKind
	X, Y   float64
	Target *Element
}

// Document is the global event target pointer listeners attach to.
type Document struct {
	mu        sync.Mutex
	listeners map[EventKind]map[int]func(PointerEvent)
	next      int
}

// NewDocument creates a Document without listeners.
func NewDocument() *Document {
	return &Document{listeners: make(map[EventKind]map[int]func(PointerEvent))}
}

// Listen registers fn for events of kind. The returned function removes it
// and may be called more than once.
func (d *Document) Listen(kind EventKind, fn func(PointerEvent)) (remove func()) {
	d.mu.Lock()
	id := d.next
	d.next++
	if d.listeners[kind] == nil {
		d.listeners[kind] = make(map[int]func(PointerEvent))
	}
	d.listeners[kind][id] = fn
	d.mu.Unlock()
	return func() {
		d.mu.Lock()
		delete(d.listeners[kind], id)
		d.mu.Unlock()
	}
}

// Dispatch delivers ev to the listeners registered for its kind, in
// registration order. Listeners may add or remove listeners while running.
func (d *Document) Dispatch(ev PointerEvent) {
	d.mu.Lock()
	ids := make([]int, 0, len(d.listeners[ev.Kind]))
	for id := range d.listeners[ev.Kind] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(PointerEvent), len(ids))
	for i, id := range ids {
		fns[i] = d.listeners[ev.Kind][id]
	}
	d.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

// Listeners returns the number of listeners registered for kind.
func (d *Document) Listeners(kind EventKind) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[kind])
}
