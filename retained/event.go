package retained

import (
	"fmt"
	"sync"
	"time"

	"github.com/agiangrant/strut/geom"
)

// ============================================================================
// Event Types
// ============================================================================

// EventType identifies the concrete kind of an event. Handlers match on it
// exactly; there is no notion of an event subtype.
type EventType uint32

var eventTypes = struct {
	sync.Mutex
	names []string
}{names: []string{"invalid"}}

// RegisterEventType allocates a new event type. Call it once per type, usually
// from a package-level var.
func RegisterEventType(name string) EventType {
	eventTypes.Lock()
	defer eventTypes.Unlock()
	eventTypes.names = append(eventTypes.names, name)
	return EventType(len(eventTypes.names) - 1)
}

func (t EventType) String() string {
	eventTypes.Lock()
	defer eventTypes.Unlock()
	if int(t) < len(eventTypes.names) {
		return eventTypes.names[t]
	}
	return fmt.Sprintf("EventType(%d)", uint32(t))
}

var (
	EventMouseMove     = RegisterEventType("mouse-move")
	EventMouseEnter    = RegisterEventType("mouse-enter")
	EventMouseLeave    = RegisterEventType("mouse-leave")
	EventMouseWheel    = RegisterEventType("mouse-wheel")
	EventMouseButton   = RegisterEventType("mouse-button")
	EventChildAttached = RegisterEventType("child-attached")
	EventChildDetached = RegisterEventType("child-detached")
	EventConfigChanged = RegisterEventType("config-changed")
	EventFrameTick     = RegisterEventType("frame-tick")
)

// Event is any value delivered through the dispatch queue. Type must be
// callable on the zero value, since On uses it to learn the handler's type.
type Event interface {
	Type() EventType
}

// ============================================================================
// Targets
// ============================================================================

// TargetKind selects how an event is routed.
type TargetKind uint8

const (
	// TargetWidget delivers to one widget.
	TargetWidget TargetKind = iota
	// TargetSubTree delivers to a widget and all its descendants, depth first.
	TargetSubTree
	// TargetBroadcast delivers to every widget in the tree.
	TargetBroadcast
)

// Target is the address of an event.
type Target struct {
	Kind   TargetKind
	Widget WidgetID
}

func ToWidget(id WidgetID) Target  { return Target{Kind: TargetWidget, Widget: id} }
func ToSubTree(id WidgetID) Target { return Target{Kind: TargetSubTree, Widget: id} }

// Broadcast addresses every widget.
var Broadcast = Target{Kind: TargetBroadcast}

func (t Target) String() string {
	switch t.Kind {
	case TargetWidget:
		return fmt.Sprintf("widget(%d)", t.Widget)
	case TargetSubTree:
		return fmt.Sprintf("subtree(%d)", t.Widget)
	}
	return "broadcast"
}

// ============================================================================
// Input enums
// ============================================================================

// MouseButton identifies which mouse button was pressed.
type MouseButton uint8

const (
	MouseButtonNone MouseButton = iota
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
)

// Modifier keys
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper // Cmd on Mac, Win on Windows
)

func (m Modifiers) Shift() bool { return m&ModShift != 0 }
func (m Modifiers) Ctrl() bool  { return m&ModCtrl != 0 }
func (m Modifiers) Alt() bool   { return m&ModAlt != 0 }
func (m Modifiers) Super() bool { return m&ModSuper != 0 }

// ScrollUnit tells whether a wheel delta counts lines or pixels.
type ScrollUnit uint8

const (
	ScrollLines ScrollUnit = iota
	ScrollPixels
)

// ScrollDelta is a wheel movement as reported by the platform.
type ScrollDelta struct {
	Unit ScrollUnit
	X, Y float32
}

func LineDelta(x, y float32) ScrollDelta  { return ScrollDelta{Unit: ScrollLines, X: x, Y: y} }
func PixelDelta(x, y float32) ScrollDelta { return ScrollDelta{Unit: ScrollPixels, X: x, Y: y} }

// Pixels converts the delta to logical pixels.
func (d ScrollDelta) Pixels(lineHeight float32) geom.Point {
	if d.Unit == ScrollLines {
		return geom.Pt(d.X*lineHeight, d.Y*lineHeight)
	}
	return geom.Pt(d.X, d.Y)
}

// ============================================================================
// Built-in events
// ============================================================================

// MouseMove is sent to the widget under the cursor when the pointer moves.
type MouseMove struct {
	Position  geom.Point
	Modifiers Modifiers
}

// MouseEnter is sent when the pointer starts hovering a widget.
type MouseEnter struct{ Position geom.Point }

// MouseLeave is sent when the pointer stops hovering a widget.
type MouseLeave struct{ Position geom.Point }

// MouseWheel is sent to every widget under the cursor, deepest first.
type MouseWheel struct {
	Delta     ScrollDelta
	Position  geom.Point
	Modifiers Modifiers
}

// MouseButtonEvent is sent to every widget under the cursor, deepest first.
type MouseButtonEvent struct {
	Button    MouseButton
	Pressed   bool
	Position  geom.Point
	Modifiers Modifiers
}

// ChildAttached tells a container which child it just received.
type ChildAttached struct{ Child WidgetID }

// ChildDetached tells a container that a child was removed.
type ChildDetached struct{ Child WidgetID }

// ConfigChanged is broadcast after the configuration file was reloaded.
// Value holds the new configuration.
type ConfigChanged struct{ Value any }

// FrameTick is pushed by periodic producers.
type FrameTick struct{ Time time.Time }

func (MouseMove) Type() EventType        { return EventMouseMove }
func (MouseEnter) Type() EventType       { return EventMouseEnter }
func (MouseLeave) Type() EventType       { return EventMouseLeave }
func (MouseWheel) Type() EventType       { return EventMouseWheel }
func (MouseButtonEvent) Type() EventType { return EventMouseButton }
func (ChildAttached) Type() EventType    { return EventChildAttached }
func (ChildDetached) Type() EventType    { return EventChildDetached }
func (ConfigChanged) Type() EventType    { return EventConfigChanged }
func (FrameTick) Type() EventType        { return EventFrameTick }
