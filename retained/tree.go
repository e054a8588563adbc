package retained

import (
	"fmt"
	"log/slog"

	"github.com/agiangrant/strut/layout"
)

// TreeConfig configures a Tree.
type TreeConfig struct {
	Layout layout.Config
	Logger *slog.Logger
}

// DefaultTreeConfig returns the defaults used by NewTree.
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{Layout: layout.DefaultConfig()}
}

// ============================================================================
// Tree
// ============================================================================

// Tree owns the attached widgets, the layout engine and the event dispatcher.
// Only Push (through Dispatcher) may be called from other goroutines.
type Tree struct {
	root       *Widget
	widgets    map[WidgetID]*Widget
	engine     *layout.Engine
	dispatcher *Dispatcher
	log        *slog.Logger
}

// NewTree creates an empty tree.
func NewTree(cfg TreeConfig) *Tree {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	if cfg.Layout.Logger == nil {
		cfg.Layout.Logger = log
	}
	t := &Tree{
		widgets: make(map[WidgetID]*Widget),
		engine:  layout.NewEngine(cfg.Layout),
		log:     log.With("component", "tree"),
	}
	t.dispatcher = newDispatcher(t, log)
	return t
}

func (t *Tree) Root() *Widget                 { return t.root }
func (t *Tree) Len() int                      { return len(t.widgets) }
func (t *Tree) Layout() *layout.Engine        { return t.engine }
func (t *Tree) Dispatcher() *Dispatcher       { return t.dispatcher }
func (t *Tree) Push(target Target, ev Event)  { t.dispatcher.Push(target, ev) }

// Widget looks up an attached widget.
func (t *Tree) Widget(id WidgetID) (*Widget, bool) {
	w, ok := t.widgets[id]
	return w, ok
}

// SetRoot attaches w and its builder-added descendants as the root.
func (t *Tree) SetRoot(w *Widget) error {
	if t.root != nil {
		return structural("set root", w, ErrRootSet)
	}
	if w.parent != nil || w.tree != nil {
		return structural("set root", w, ErrAlreadyAttached)
	}
	if err := t.attach(w); err != nil {
		return err
	}
	t.root = w
	return nil
}

// AddChild attaches child, with any descendants it already has, under
// parent. The parent's container policy runs first; then the subtree's
// layout nodes are registered. On failure nothing is left attached. On
// success the parent is sent ChildAttached with the next drain.
func (t *Tree) AddChild(parent, child *Widget) error {
	if parent.tree != t {
		return structural("add child", parent, ErrNotAttached)
	}
	if child.parent != nil || child.tree != nil {
		return structural("add child", child, ErrAlreadyAttached)
	}

	child.parent = parent
	parent.children = append(parent.children, child)
	if err := t.placeChild(parent, child); err != nil {
		parent.removeChildAt(len(parent.children) - 1)
		child.parent = nil
		return err
	}
	if err := t.attach(child); err != nil {
		if parent.container != nil {
			ctx := &Context{Widget: parent, tree: t}
			if rerr := parent.container.RemoveChild(ctx, parent, child.id); rerr != nil {
				t.log.Error("container rollback failed", "widget", parent.String(), "error", rerr)
			}
		}
		parent.removeChildAt(len(parent.children) - 1)
		child.parent = nil
		return err
	}
	parent.dirty = true
	t.dispatcher.Push(ToWidget(parent.id), ChildAttached{Child: child.id})
	return nil
}

// MustAddChild is AddChild for composition code where failure is a bug.
func (t *Tree) MustAddChild(parent, child *Widget) {
	if err := t.AddChild(parent, child); err != nil {
		panic(err)
	}
}

// RemoveChild detaches a child subtree. The container policy is notified,
// every layout constraint involving the subtree is removed and the removed
// widgets lose their handlers. Events still queued for them are dropped.
func (t *Tree) RemoveChild(parent *Widget, id WidgetID) error {
	if parent.tree != t {
		return structural("remove child", parent, ErrNotAttached)
	}
	i := parent.indexOf(id)
	if i < 0 {
		return structural("remove child", parent, fmt.Errorf("%w: %d", ErrNotChild, id))
	}
	child := parent.children[i]

	if parent.container != nil {
		ctx := &Context{Widget: parent, tree: t}
		if err := parent.container.RemoveChild(ctx, parent, id); err != nil {
			return structural("remove child", parent, err)
		}
	}
	if err := t.detach(child); err != nil {
		return err
	}
	parent.removeChildAt(i)
	child.parent = nil
	parent.dirty = true
	t.dispatcher.Push(ToWidget(parent.id), ChildDetached{Child: id})
	return nil
}

// Walk visits the subtree rooted at id depth first, parents before children,
// children in insertion order. Returning false from fn skips the node's
// children.
func (t *Tree) Walk(id WidgetID, fn func(w *Widget) bool) {
	w, ok := t.widgets[id]
	if !ok {
		return
	}
	walk(w, fn)
}

func walk(w *Widget, fn func(w *Widget) bool) {
	if !fn(w) {
		return
	}
	for _, c := range w.children {
		walk(c, fn)
	}
}

// subtreeIDs snapshots the ids of a subtree in walk order.
func (t *Tree) subtreeIDs(id WidgetID) []WidgetID {
	var ids []WidgetID
	t.Walk(id, func(w *Widget) bool {
		ids = append(ids, w.id)
		return true
	})
	return ids
}

func (t *Tree) placeChild(parent, child *Widget) error {
	if parent.container == nil {
		return nil
	}
	ctx := &Context{Widget: parent, tree: t}
	if err := parent.container.AddChild(ctx, parent, child); err != nil {
		return structural("add child", parent, err)
	}
	return nil
}

// attach registers w and its descendants, parents first. Builder-added
// children get their parent's container policy applied here.
func (t *Tree) attach(w *Widget) error {
	var done []*Widget
	rollback := func() {
		for i := len(done) - 1; i >= 0; i-- {
			d := done[i]
			if err := t.engine.Unregister(d.node.ID()); err != nil {
				t.log.Error("attach rollback failed", "widget", d.String(), "error", err)
			}
			delete(t.widgets, d.id)
			d.tree = nil
		}
	}

	var visit func(w *Widget) error
	visit = func(w *Widget) error {
		if err := t.engine.Register(w.node); err != nil {
			return structural("attach", w, err)
		}
		w.tree = t
		w.dirty = true
		t.widgets[w.id] = w
		done = append(done, w)
		for _, c := range w.children {
			if err := t.placeChild(w, c); err != nil {
				return err
			}
			if err := visit(c); err != nil {
				return err
			}
			t.dispatcher.Push(ToWidget(w.id), ChildAttached{Child: c.id})
		}
		return nil
	}
	if err := visit(w); err != nil {
		rollback()
		return err
	}
	t.log.Debug("subtree attached", "widget", w.String(), "widgets", len(done))
	return nil
}

// detach tears down a subtree, children first, so constraints that refer to
// a parent are removed with the child that owns them.
func (t *Tree) detach(w *Widget) error {
	for i := len(w.children) - 1; i >= 0; i-- {
		if err := t.detach(w.children[i]); err != nil {
			return err
		}
	}
	if err := t.engine.Unregister(w.node.ID()); err != nil {
		return structural("detach", w, err)
	}
	delete(t.widgets, w.id)
	w.handlers = nil
	w.tree = nil
	t.log.Debug("widget detached", "widget", w.String())
	return nil
}
