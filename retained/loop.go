package retained

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/render"
	"github.com/agiangrant/strut/solver"
)

// Presenter is the render side of the loop. *render.Context implements it.
type Presenter interface {
	RenderBuilder(size geom.Size) *render.Builder
	SetDisplayList(b *render.Builder, size geom.Size) error
	GenerateFrame() error
	FrameReady() bool
	Update(size geom.Size) error
}

// resizer is implemented by presenters that track the window size.
type resizer interface {
	WindowResized(size geom.Size) error
}

// LoopConfig configures the frame loop.
type LoopConfig struct {
	// TargetFPS is the tick rate used by Run (default: 60).
	TargetFPS int

	// MaxDrain caps the events handled per tick. Zero drains the whole
	// snapshot taken at the start of the tick.
	MaxDrain int

	// WindowSize is the initial logical window size.
	WindowSize geom.Size

	// FitRoot keeps the root widget at the window origin and size through
	// layout edit variables.
	FitRoot bool

	Logger *slog.Logger
}

// DefaultLoopConfig returns sensible defaults.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		TargetFPS:  60,
		WindowSize: geom.Sz(800, 600),
	}
}

// LoopStats contains loop counters.
type LoopStats struct {
	Ticks     uint64
	Events    uint64
	Draws     uint64
	Frames    uint64
	Dropped   uint64
	TargetFPS int
}

// Loop drives a tree: each tick drains input and handler events, resolves
// layout, redraws what changed and presents finished frames.
type Loop struct {
	tree      *Tree
	presenter Presenter
	config    LoopConfig
	log       *slog.Logger

	size    geom.Size
	resized bool

	// display items recorded by each widget's last Draw
	items map[WidgetID][]render.Item

	// a display list was submitted and its frame has not been presented
	inFlight bool

	pointer    geom.Point
	hasPointer bool
	hovered    []WidgetID // root first

	stats LoopStats
}

// NewLoop creates a loop for tree presenting through p.
func NewLoop(tree *Tree, p Presenter, config LoopConfig) *Loop {
	def := DefaultLoopConfig()
	if config.TargetFPS < 1 {
		config.TargetFPS = def.TargetFPS
	}
	if config.WindowSize.Empty() {
		config.WindowSize = def.WindowSize
	}
	log := config.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Loop{
		tree:      tree,
		presenter: p,
		config:    config,
		log:       log.With("component", "loop"),
		size:      config.WindowSize,
		resized:   true,
		items:     make(map[WidgetID][]render.Item),
		stats:     LoopStats{TargetFPS: config.TargetFPS},
	}
}

func (l *Loop) Tree() *Tree           { return l.tree }
func (l *Loop) WindowSize() geom.Size { return l.size }

// FrameInFlight reports whether a generated frame is still waiting for the
// rasterizer.
func (l *Loop) FrameInFlight() bool { return l.inFlight }

// Stats returns the loop counters.
func (l *Loop) Stats() LoopStats {
	s := l.stats
	s.Dropped = l.tree.dispatcher.Dropped()
	return s
}

// Resize changes the window size. The next tick relayouts and redraws.
func (l *Loop) Resize(size geom.Size) error {
	if size == l.size {
		return nil
	}
	l.size = size
	l.resized = true
	if r, ok := l.presenter.(resizer); ok {
		if err := r.WindowResized(size); err != nil {
			return err
		}
	}
	return nil
}

// Tick runs one iteration. A handler error or a render error ends the tick
// and is returned; both are fatal to the loop.
func (l *Loop) Tick() error {
	l.stats.Ticks++

	n, err := l.tree.dispatcher.DrainLimit(l.config.MaxDrain)
	l.stats.Events += uint64(n)
	if err != nil {
		return fmt.Errorf("tick %d: %w", l.stats.Ticks, err)
	}

	if l.resized {
		if err := l.fitRoot(); err != nil {
			return err
		}
	}

	changes := l.tree.engine.Solve()
	for _, id := range changes.Nodes {
		l.tree.Walk(WidgetID(id), func(w *Widget) bool {
			w.dirty = true
			return true
		})
	}

	if !l.inFlight && l.needsDraw() {
		if err := l.draw(); err != nil {
			return err
		}
	}

	if l.inFlight && l.presenter.FrameReady() {
		if err := l.presenter.Update(l.size); err != nil {
			return err
		}
		l.inFlight = false
		l.stats.Frames++
	}
	return nil
}

// Settle ticks until the event queue is empty and the last frame has been
// presented, at most max times. Handlers that keep pushing events never
// settle, and Settle reports ErrNotSettled.
func (l *Loop) Settle(max int) error {
	for i := 0; i < max; i++ {
		if err := l.Tick(); err != nil {
			return err
		}
		if l.tree.dispatcher.Pending() == 0 && !l.inFlight && !l.needsDraw() {
			return nil
		}
	}
	return fmt.Errorf("%w after %d ticks: %d events pending", ErrNotSettled, max, l.tree.dispatcher.Pending())
}

// Run ticks at the target rate until ctx is done or a tick fails.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(l.config.TargetFPS))
	defer ticker.Stop()
	l.log.Info("loop started", "fps", l.config.TargetFPS, "size", l.size)
	for {
		select {
		case <-ctx.Done():
			l.log.Info("loop stopped", "ticks", l.stats.Ticks, "frames", l.stats.Frames)
			return nil
		case <-ticker.C:
			if err := l.Tick(); err != nil {
				l.log.Error("tick failed", "error", err)
				return err
			}
		}
	}
}

func (l *Loop) fitRoot() error {
	l.resized = false
	root := l.tree.root
	if root == nil {
		return nil
	}
	root.dirty = true
	if !l.config.FitRoot {
		return nil
	}
	n := root.node
	edits := []struct {
		v     *solver.Variable
		value float32
	}{
		{n.Left(), 0},
		{n.Top(), 0},
		{n.Width(), l.size.Width},
		{n.Height(), l.size.Height},
	}
	for _, e := range edits {
		if err := l.tree.engine.UpdateVariable(e.v, float64(e.value)); err != nil {
			return fmt.Errorf("fit root: %w", err)
		}
	}
	return nil
}

// ============================================================================
// Drawing
// ============================================================================

func (l *Loop) needsDraw() bool {
	if l.tree.root == nil {
		return false
	}
	dirty := false
	walk(l.tree.root, func(w *Widget) bool {
		if w.dirty {
			dirty = true
		}
		return !dirty
	})
	return dirty
}

// draw builds the display list from the cached items of clean widgets and
// fresh items of dirty ones, then asks for a frame.
func (l *Loop) draw() error {
	frame := l.presenter.RenderBuilder(l.size)
	window := geom.Rect{Size: l.size}
	seen := make(map[WidgetID]bool, len(l.tree.widgets))

	var visit func(w *Widget, clip geom.Rect)
	visit = func(w *Widget, clip geom.Rect) {
		seen[w.id] = true
		bounds := w.node.Bounds()
		if w.dirty {
			var items []render.Item
			if w.drawable != nil {
				b := render.NewBuilder(frame.Pipeline(), l.size)
				w.drawable.Draw(bounds, clip, b)
				items = b.Items()
				frame.AddResources(b.Resources()...)
			}
			l.items[w.id] = items
			w.dirty = false
		}
		frame.Append(l.items[w.id]...)
		inner := clip.Intersect(bounds)
		for _, c := range w.children {
			visit(c, inner)
		}
	}
	visit(l.tree.root, window)

	for id := range l.items {
		if !seen[id] {
			delete(l.items, id)
		}
	}

	if err := l.presenter.SetDisplayList(frame, l.size); err != nil {
		return err
	}
	if err := l.presenter.GenerateFrame(); err != nil {
		return err
	}
	l.inFlight = true
	l.stats.Draws++
	l.log.Debug("frame generated", "widgets", len(seen))
	return nil
}

// ============================================================================
// Input
// ============================================================================

// Input is raw platform input handed to HandleInput.
type Input interface {
	isInput()
}

// PointerMoved reports the pointer at a new window position.
type PointerMoved struct {
	Position  geom.Point
	Modifiers Modifiers
}

// PointerLeft reports the pointer leaving the window.
type PointerLeft struct{}

// WheelScrolled reports wheel or trackpad scrolling at the pointer.
type WheelScrolled struct {
	Delta     ScrollDelta
	Modifiers Modifiers
}

// ButtonChanged reports a mouse button press or release at the pointer.
type ButtonChanged struct {
	Button    MouseButton
	Pressed   bool
	Modifiers Modifiers
}

func (PointerMoved) isInput()  {}
func (PointerLeft) isInput()   {}
func (WheelScrolled) isInput() {}
func (ButtonChanged) isInput() {}

// HandleInput translates raw input into typed events. Hit testing uses the
// bounds of the last solved layout; the events are delivered on the next
// tick. It must be called on the loop's goroutine.
func (l *Loop) HandleInput(in Input) {
	switch in := in.(type) {
	case PointerMoved:
		l.pointer = in.Position
		l.hasPointer = true
		chain := l.hitChain(in.Position)
		l.updateHover(chain, in.Position)
		if len(chain) > 0 {
			l.tree.Push(ToWidget(chain[len(chain)-1].id), MouseMove{Position: in.Position, Modifiers: in.Modifiers})
		}
		releaseHoverChain(chain)
	case PointerLeft:
		l.hasPointer = false
		l.updateHover(nil, l.pointer)
	case WheelScrolled:
		if !l.hasPointer {
			return
		}
		l.pushDeepestFirst(MouseWheel{Delta: in.Delta, Position: l.pointer, Modifiers: in.Modifiers})
	case ButtonChanged:
		if !l.hasPointer {
			return
		}
		l.pushDeepestFirst(MouseButtonEvent{Button: in.Button, Pressed: in.Pressed, Position: l.pointer, Modifiers: in.Modifiers})
	}
}

func (l *Loop) pushDeepestFirst(ev Event) {
	chain := l.hitChain(l.pointer)
	for i := len(chain) - 1; i >= 0; i-- {
		l.tree.Push(ToWidget(chain[i].id), ev)
	}
	releaseHoverChain(chain)
}

// hitChain returns the widgets under p from the root down to the topmost
// hit. Later children are drawn above earlier ones and win. A widget whose
// drawable rejects the point is left out, but its children are still tested.
// The returned slice comes from the hover chain pool.
func (l *Loop) hitChain(p geom.Point) []*Widget {
	chain := acquireHoverChain()
	if l.tree.root == nil {
		return chain
	}
	var visit func(w *Widget) bool
	visit = func(w *Widget) bool {
		bounds := w.node.Bounds()
		if !bounds.Contains(p) {
			return false
		}
		mark := len(chain)
		if hitsShape(w, bounds, p) {
			chain = append(chain, w)
		}
		for i := len(w.children) - 1; i >= 0; i-- {
			if visit(w.children[i]) {
				return true
			}
		}
		return len(chain) > mark
	}
	visit(l.tree.root)
	return chain
}

func hitsShape(w *Widget, bounds geom.Rect, p geom.Point) bool {
	if h, ok := w.drawable.(HitTester); ok {
		return h.HitTest(bounds, p)
	}
	return true
}

// updateHover sends MouseLeave to widgets no longer under the pointer,
// deepest first, then MouseEnter to newly hovered ones, outermost first.
func (l *Loop) updateHover(chain []*Widget, p geom.Point) {
	now := acquireHoverSet()
	defer releaseHoverSet(now)
	for _, w := range chain {
		now[w.id] = true
	}
	before := acquireHoverSet()
	defer releaseHoverSet(before)
	for _, id := range l.hovered {
		before[id] = true
	}

	for i := len(l.hovered) - 1; i >= 0; i-- {
		if id := l.hovered[i]; !now[id] {
			l.tree.Push(ToWidget(id), MouseLeave{Position: p})
		}
	}
	l.hovered = l.hovered[:0]
	for _, w := range chain {
		if !before[w.id] {
			l.tree.Push(ToWidget(w.id), MouseEnter{Position: p})
		}
		l.hovered = append(l.hovered, w.id)
	}
}

// Hovered returns the ids of the hovered widgets, root first.
func (l *Loop) Hovered() []WidgetID {
	return append([]WidgetID(nil), l.hovered...)
}
