package retained

import (
	"log/slog"
	"sync/atomic"
)

// ============================================================================
// Queue
// ============================================================================

// envelope is one queued delivery.
type envelope struct {
	target Target
	event  Event
}

type queueNode struct {
	next atomic.Pointer[queueNode]
	v    envelope
}

// Queue is a lock-free multi-producer FIFO. Any goroutine may Send; only the
// UI goroutine calls next. Nodes are not recycled, so a popped node can never
// reappear at the head while another goroutine still holds it.
type Queue struct {
	head atomic.Pointer[queueNode]
	tail atomic.Pointer[queueNode]
	len  atomic.Int64
}

func newQueue() *Queue {
	q := &Queue{}
	sentinel := &queueNode{}
	q.head.Store(sentinel)
	q.tail.Store(sentinel)
	return q
}

// Send appends an event to the end of the queue.
func (q *Queue) Send(target Target, ev Event) {
	n := &queueNode{v: envelope{target: target, event: ev}}
	for {
		last := q.tail.Load()
		lastnext := last.next.Load()
		if q.tail.Load() != last {
			continue
		}
		if lastnext != nil {
			q.tail.CompareAndSwap(last, lastnext)
			continue
		}
		if last.next.CompareAndSwap(nil, n) {
			q.tail.CompareAndSwap(last, n)
			q.len.Add(1)
			return
		}
	}
}

// next removes the oldest event. ok is false when the queue is empty.
func (q *Queue) next() (envelope, bool) {
	for {
		first := q.head.Load()
		last := q.tail.Load()
		firstnext := first.next.Load()
		if first != q.head.Load() {
			continue
		}
		if first == last {
			if firstnext == nil {
				return envelope{}, false
			}
			q.tail.CompareAndSwap(last, firstnext)
			continue
		}
		v := firstnext.v
		if q.head.CompareAndSwap(first, firstnext) {
			firstnext.v = envelope{}
			q.len.Add(-1)
			return v, true
		}
	}
}

// Len returns the number of queued events. Producers may be adding while it
// is read, so treat it as a lower bound.
func (q *Queue) Len() int {
	return int(q.len.Load())
}

// ============================================================================
// Dispatcher
// ============================================================================

// Dispatcher routes queued events to widget handlers.
//
// A drain handles exactly the events queued when it started. Events pushed by
// handlers, or by other goroutines, while it runs wait for the next drain, so
// a handler can never recurse into dispatch.
type Dispatcher struct {
	tree  *Tree
	queue *Queue
	log   *slog.Logger

	dispatching bool
	delivered   uint64
	dropped     uint64
}

func newDispatcher(t *Tree, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		tree:  t,
		queue: newQueue(),
		log:   log.With("component", "dispatch"),
	}
}

// Push queues an event. It is safe to call from any goroutine.
func (d *Dispatcher) Push(target Target, ev Event) {
	d.queue.Send(target, ev)
}

// Pending returns the number of queued events.
func (d *Dispatcher) Pending() int { return d.queue.Len() }

// Delivered counts handler invocations since the dispatcher was created.
func (d *Dispatcher) Delivered() uint64 { return d.delivered }

// Dropped counts events whose target no longer existed.
func (d *Dispatcher) Dropped() uint64 { return d.dropped }

// DispatchNow delivers an event synchronously, bypassing the queue. It must
// not be called from inside a handler.
func (d *Dispatcher) DispatchNow(target Target, ev Event) error {
	if d.dispatching {
		return structural("dispatch", nil, ErrReentrantDispatch)
	}
	d.dispatching = true
	defer func() { d.dispatching = false }()
	return d.deliver(envelope{target: target, event: ev})
}

// Drain dispatches the events that were queued when it was called. The first
// handler error stops the drain; events not yet handled stay queued.
func (d *Dispatcher) Drain() (int, error) {
	return d.DrainLimit(0)
}

// DrainLimit is Drain handling at most limit events. A limit of zero or less
// means the whole snapshot.
func (d *Dispatcher) DrainLimit(limit int) (int, error) {
	if d.dispatching {
		return 0, structural("drain", nil, ErrReentrantDispatch)
	}
	d.dispatching = true
	defer func() { d.dispatching = false }()

	n := d.queue.Len()
	if limit > 0 && n > limit {
		n = limit
	}
	for i := 0; i < n; i++ {
		env, ok := d.queue.next()
		if !ok {
			return i, nil
		}
		if err := d.deliver(env); err != nil {
			return i + 1, err
		}
	}
	return n, nil
}

func (d *Dispatcher) deliver(env envelope) error {
	switch env.target.Kind {
	case TargetWidget:
		w, ok := d.tree.widgets[env.target.Widget]
		if !ok {
			d.drop(env)
			return nil
		}
		return d.invoke(w, env.event)
	case TargetSubTree:
		return d.deliverAll(env, env.target.Widget)
	default:
		if d.tree.root == nil {
			d.drop(env)
			return nil
		}
		return d.deliverAll(env, d.tree.root.id)
	}
}

// deliverAll walks a snapshot of the subtree so handlers that add or remove
// widgets do not disturb the traversal. Widgets removed mid-walk are skipped.
func (d *Dispatcher) deliverAll(env envelope, root WidgetID) error {
	ids := d.tree.subtreeIDs(root)
	if len(ids) == 0 {
		d.drop(env)
		return nil
	}
	for _, id := range ids {
		w, ok := d.tree.widgets[id]
		if !ok {
			continue
		}
		if err := d.invoke(w, env.event); err != nil {
			return err
		}
	}
	return nil
}

// invoke runs w's handlers for the event's exact type, in registration order.
func (d *Dispatcher) invoke(w *Widget, ev Event) error {
	if len(w.handlers) == 0 {
		return nil
	}
	typ := ev.Type()
	handlers := acquireHandlerSlice(len(w.handlers))
	copy(handlers, w.handlers)
	defer releaseHandlerSlice(handlers)

	ctx := &Context{Widget: w, tree: d.tree}
	for _, h := range handlers {
		if h.EventType() != typ {
			continue
		}
		d.delivered++
		if err := h.Handle(ctx, ev); err != nil {
			return err
		}
		if w.tree == nil {
			// the handler detached its own widget
			return nil
		}
	}
	return nil
}

func (d *Dispatcher) drop(env envelope) {
	d.dropped++
	d.log.Debug("event target gone", "target", env.target.String(), "event", env.event.Type().String())
}
