package retained

import (
	"fmt"

	"github.com/chewxy/math32"

	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/layout"
	"github.com/agiangrant/strut/solver"
)

// ============================================================================
// Scroll container
// ============================================================================

// EventScroll is the type of WidgetScroll.
var EventScroll = RegisterEventType("widget-scroll")

// WidgetScroll is forwarded by a scroll container to its child for each
// wheel event. ParentBounds is the viewport at the time of the wheel event.
type WidgetScroll struct {
	Delta        ScrollDelta
	ParentBounds geom.Rect
}

func (WidgetScroll) Type() EventType { return EventScroll }

// ScrollConfig configures a scroll container.
type ScrollConfig struct {
	// LineScrollPixels is the distance of one wheel line (default: 13).
	LineScrollPixels float32
}

// DefaultScrollConfig returns sensible defaults.
func DefaultScrollConfig() ScrollConfig {
	return ScrollConfig{LineScrollPixels: 13}
}

// scrollParent is the state of a scroll container widget.
type scrollParent struct {
	config     ScrollConfig
	scrollable WidgetID
	offsets    map[WidgetID]*geom.Point
}

// NewScroll creates a viewport that holds exactly one child and moves it in
// response to the mouse wheel. The child starts aligned with the viewport's
// top-left corner and never scrolls past its own edges.
func NewScroll(name string, config ScrollConfig) *Widget {
	if config.LineScrollPixels <= 0 {
		config.LineScrollPixels = DefaultScrollConfig().LineScrollPixels
	}
	s := &scrollParent{config: config, offsets: make(map[WidgetID]*geom.Point)}

	w := NewWidget(name)
	w.SetContainer(s)
	w.AddHandler(On(func(ctx *Context, ev ChildAttached) error {
		s.scrollable = ev.Child
		return nil
	}))
	w.AddHandler(On(func(ctx *Context, ev ChildDetached) error {
		if s.scrollable == ev.Child {
			s.scrollable = 0
		}
		return nil
	}))
	w.AddHandler(On(func(ctx *Context, ev MouseWheel) error {
		if s.scrollable == 0 {
			return nil
		}
		ctx.Push(ToWidget(s.scrollable), WidgetScroll{Delta: ev.Delta, ParentBounds: ctx.Widget.Bounds()})
		return nil
	}))
	return w
}

func (s *scrollParent) AddChild(ctx *Context, parent, child *Widget) error {
	if n := len(parent.Children()); n > 1 {
		return fmt.Errorf("%w: scroll container %s holds one child, got %d", ErrCardinality, parent, n)
	}
	// weak, so edits to the child's position override them
	err := child.Layout().Add(layout.Set{
		layout.AlignLeft(child.Layout(), parent.Layout()),
		layout.AlignTop(child.Layout(), parent.Layout()),
	}.WithStrength(solver.Weak)...)
	if err != nil {
		return err
	}
	offset := &geom.Point{}
	s.offsets[child.ID()] = offset
	child.AddHandler(On(func(ctx *Context, ev WidgetScroll) error {
		return s.scroll(ctx, offset, ev)
	}))
	return nil
}

func (s *scrollParent) RemoveChild(ctx *Context, parent *Widget, child WidgetID) error {
	delete(s.offsets, child)
	return nil
}

// scroll moves the child by the wheel delta, clamped so that the child
// always covers the viewport on an axis where it is larger, and stays at
// the viewport origin on an axis where it is not.
func (s *scrollParent) scroll(ctx *Context, offset *geom.Point, ev WidgetScroll) error {
	bounds := ctx.Widget.Bounds()
	parent := ev.ParentBounds
	maxScroll := geom.Pt(parent.Width()-bounds.Width(), parent.Height()-bounds.Height())

	*offset = offset.Add(ev.Delta.Pixels(s.config.LineScrollPixels))
	offset.X = math32.Min(0, math32.Max(maxScroll.X, offset.X))
	offset.Y = math32.Min(0, math32.Max(maxScroll.Y, offset.Y))

	n := ctx.Widget.Layout()
	if err := ctx.UpdateVariable(n.Left(), float64(parent.Left()+offset.X)); err != nil {
		return err
	}
	return ctx.UpdateVariable(n.Top(), float64(parent.Top()+offset.Y))
}

// ScrollOffset returns the current offset of a scroll container's child.
// ok is false if w is not a scroll container or holds no child.
func ScrollOffset(w *Widget) (offset geom.Point, ok bool) {
	s, isScroll := w.Container().(*scrollParent)
	if !isScroll || s.scrollable == 0 {
		return geom.Point{}, false
	}
	p, ok := s.offsets[s.scrollable]
	if !ok {
		return geom.Point{}, false
	}
	return *p, true
}
