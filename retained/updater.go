package retained

import (
	"context"
	"fmt"
	"time"
)

// UpdateDrawable returns a handler that mutates the widget's drawable when
// an event of type E arrives. The drawable must be an S; the widget is
// redrawn on the next frame.
//
//	hand.AddHandler(retained.UpdateDrawable(func(s *HandState, _ retained.FrameTick) {
//		s.Angle = secondAngle()
//	}))
func UpdateDrawable[S Drawable, E Event](fn func(state S, ev E)) Handler {
	return On(func(ctx *Context, ev E) error {
		state, ok := ctx.Widget.Drawable().(S)
		if !ok {
			return fmt.Errorf("update drawable of %s: have %T, want %T", ctx.Widget, ctx.Widget.Drawable(), state)
		}
		fn(state, ev)
		ctx.MarkDirty()
		return nil
	})
}

// Pusher accepts events from any goroutine. *Tree and *Dispatcher
// implement it.
type Pusher interface {
	Push(target Target, ev Event)
}

// Every pushes mk(now) to target at each interval until ctx is done. It
// blocks, so run it on its own goroutine.
func Every(ctx context.Context, interval time.Duration, p Pusher, target Target, mk func(now time.Time) Event) error {
	if interval <= 0 {
		return fmt.Errorf("every: interval must be positive, got %s", interval)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			p.Push(target, mk(now))
		}
	}
}
