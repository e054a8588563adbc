// Package retained provides the retained-mode widget tree, the typed event
// dispatch core and the frame loop that ties layout, dispatch and rendering
// together.
//
// All tree, layout and handler state belongs to one goroutine, the one that
// calls Loop.Tick. Other goroutines talk to it only by pushing events.
package retained

import (
	"fmt"
	"sync/atomic"

	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/layout"
	"github.com/agiangrant/strut/render"
)

// WidgetID uniquely identifies a widget. IDs are never reused within a
// process and double as the widget's layout node id.
type WidgetID uint64

var nextWidgetID atomic.Uint64

func newWidgetID() WidgetID {
	return WidgetID(nextWidgetID.Add(1))
}

// Drawable renders widget state into a display list. Draw must not change
// the tree or push events.
type Drawable interface {
	Draw(bounds, clip geom.Rect, b *render.Builder)
}

// HitTester is implemented by drawables whose shape is not their bounding
// rectangle.
type HitTester interface {
	HitTest(bounds geom.Rect, p geom.Point) bool
}

// Container decides how children are placed when they attach and detach.
// AddChild runs before the child is registered with the layout engine, so
// constraints it adds to the child are registered atomically with it. The
// child is already linked, so len(parent.Children()) includes it.
type Container interface {
	AddChild(ctx *Context, parent, child *Widget) error
	RemoveChild(ctx *Context, parent *Widget, child WidgetID) error
}

// ============================================================================
// Widget
// ============================================================================

// Widget is a node in the tree.
type Widget struct {
	id        WidgetID
	name      string
	drawable  Drawable
	container Container
	handlers  []Handler
	node      *layout.Node

	parent   *Widget
	children []*Widget
	tree     *Tree

	dirty bool
}

// NewWidget creates a detached widget with a fresh layout node.
func NewWidget(name string) *Widget {
	id := newWidgetID()
	if name == "" {
		name = fmt.Sprintf("widget%d", id)
	}
	return &Widget{
		id:    id,
		name:  name,
		node:  layout.NewNode(layout.NodeID(id), name),
		dirty: true,
	}
}

func (w *Widget) ID() WidgetID          { return w.id }
func (w *Widget) Name() string          { return w.name }
func (w *Widget) Layout() *layout.Node  { return w.node }
func (w *Widget) Drawable() Drawable    { return w.drawable }
func (w *Widget) Container() Container  { return w.container }
func (w *Widget) Parent() *Widget       { return w.parent }
func (w *Widget) Attached() bool        { return w.tree != nil }
func (w *Widget) Dirty() bool           { return w.dirty }
func (w *Widget) Bounds() geom.Rect     { return w.node.Bounds() }
func (w *Widget) String() string        { return fmt.Sprintf("%s#%d", w.name, w.id) }
func (w *Widget) NumHandlers() int      { return len(w.handlers) }
func (w *Widget) Handlers() []Handler   { return append([]Handler(nil), w.handlers...) }

// Children returns a copy of the child list in insertion order.
func (w *Widget) Children() []*Widget {
	return append([]*Widget(nil), w.children...)
}

// SetDrawable replaces the drawable and marks the widget dirty.
func (w *Widget) SetDrawable(d Drawable) *Widget {
	w.drawable = d
	w.dirty = true
	return w
}

// SetContainer sets the child placement policy. Children already added keep
// their placement.
func (w *Widget) SetContainer(c Container) *Widget {
	w.container = c
	return w
}

// AddHandler appends a handler. Handlers of one type run in the order they
// were added.
func (w *Widget) AddHandler(h Handler) *Widget {
	w.handlers = append(w.handlers, h)
	return w
}

// AddChild appends a child to a detached widget. The container policy runs
// when the subtree is attached to a tree; for attached widgets use
// Tree.AddChild.
func (w *Widget) AddChild(child *Widget) *Widget {
	if w.tree != nil {
		panic(structural("add child", w, fmt.Errorf("%w: use Tree.AddChild", ErrNotAttached)))
	}
	if child.parent != nil {
		panic(structural("add child", child, ErrAlreadyAttached))
	}
	child.parent = w
	w.children = append(w.children, child)
	return w
}

// UpdateDrawable applies fn to the drawable and marks the widget for redraw.
// The change becomes visible with the next frame.
func (w *Widget) UpdateDrawable(fn func(Drawable)) {
	if w.drawable == nil {
		return
	}
	fn(w.drawable)
	w.dirty = true
}

func (w *Widget) removeChildAt(i int) {
	w.children = append(w.children[:i:i], w.children[i+1:]...)
}

func (w *Widget) indexOf(id WidgetID) int {
	for i, c := range w.children {
		if c.id == id {
			return i
		}
	}
	return -1
}
