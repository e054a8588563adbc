package retained

import (
	"fmt"

	"github.com/agiangrant/strut/layout"
	"github.com/agiangrant/strut/solver"
)

// ============================================================================
// Handlers
// ============================================================================

// Handler reacts to events of exactly one type on the widget it is attached
// to. Returning an error stops the current tick and surfaces the error from
// Loop.Tick; use it for programming errors, not for ordinary conditions.
type Handler interface {
	EventType() EventType
	Handle(ctx *Context, ev Event) error
}

// HandlerFunc adapts a function to Handler for an explicit event type.
type HandlerFunc struct {
	Type EventType
	Fn   func(ctx *Context, ev Event) error
}

func (h HandlerFunc) EventType() EventType { return h.Type }

func (h HandlerFunc) Handle(ctx *Context, ev Event) error {
	return h.Fn(ctx, ev)
}

type typedHandler[T Event] struct {
	typ EventType
	fn  func(ctx *Context, ev T) error
}

func (h typedHandler[T]) EventType() EventType { return h.typ }

func (h typedHandler[T]) Handle(ctx *Context, ev Event) error {
	v, ok := ev.(T)
	if !ok {
		return fmt.Errorf("handler for %s got %T", h.typ, ev)
	}
	return h.fn(ctx, v)
}

// On builds a handler for the event type T. T must be a value type whose
// Type method works on its zero value, which holds for every event in this
// package.
func On[T Event](fn func(ctx *Context, ev T) error) Handler {
	var zero T
	return typedHandler[T]{typ: zero.Type(), fn: fn}
}

// ============================================================================
// Handler context
// ============================================================================

// Context is what a handler or container hook may touch while it runs: the
// widget it is attached to and the tree's queue and layout engine. Layout
// edits made through it are resolved when the tick solves, after the queue
// snapshot has drained.
type Context struct {
	Widget *Widget
	tree   *Tree
}

// Tree returns the tree the widget belongs to.
func (c *Context) Tree() *Tree { return c.tree }

// Push queues an event for the next drain.
func (c *Context) Push(target Target, ev Event) {
	c.tree.dispatcher.Push(target, ev)
}

// Layout returns the tree's layout engine.
func (c *Context) Layout() *layout.Engine { return c.tree.engine }

// UpdateVariable suggests a value for a layout variable of any registered
// widget.
func (c *Context) UpdateVariable(v *solver.Variable, value float64) error {
	return c.tree.engine.UpdateVariable(v, value)
}

// AddConstraints adds constraints owned by the context's widget.
func (c *Context) AddConstraints(cs ...*solver.Constraint) error {
	return c.Widget.node.Add(cs...)
}

// MarkDirty schedules the widget for redraw.
func (c *Context) MarkDirty() {
	c.Widget.dirty = true
}
