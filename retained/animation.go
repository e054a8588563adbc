package retained

import (
	"time"

	"github.com/chewxy/math32"

	"github.com/agiangrant/strut/solver"
)

// EasingFunc maps time progress in [0, 1] to value progress.
type EasingFunc func(t float32) float32

var (
	EaseLinear EasingFunc = func(t float32) float32 { return t }

	EaseInQuad  EasingFunc = func(t float32) float32 { return t * t }
	EaseOutQuad EasingFunc = func(t float32) float32 { return t * (2 - t) }

	EaseInOutQuad EasingFunc = func(t float32) float32 {
		if t < 0.5 {
			return 2 * t * t
		}
		return -1 + (4-2*t)*t
	}

	EaseOutCubic EasingFunc = func(t float32) float32 {
		t--
		return t*t*t + 1
	}

	// EaseOutBack overshoots slightly before settling.
	EaseOutBack EasingFunc = func(t float32) float32 {
		const c1 = 1.70158
		const c3 = c1 + 1
		return 1 + c3*math32.Pow(t-1, 3) + c1*math32.Pow(t-1, 2)
	}

	EaseOutBounce EasingFunc = func(t float32) float32 {
		const n1, d1 = 7.5625, 2.75
		switch {
		case t < 1/d1:
			return n1 * t * t
		case t < 2/d1:
			t -= 1.5 / d1
			return n1*t*t + 0.75
		case t < 2.5/d1:
			t -= 2.25 / d1
			return n1*t*t + 0.9375
		}
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
)

// EasingByName looks up an easing by its CSS-like name.
func EasingByName(name string) (EasingFunc, bool) {
	switch name {
	case "linear":
		return EaseLinear, true
	case "ease-in":
		return EaseInQuad, true
	case "ease-out":
		return EaseOutQuad, true
	case "ease", "ease-in-out":
		return EaseInOutQuad, true
	case "cubic":
		return EaseOutCubic, true
	case "back":
		return EaseOutBack, true
	case "bounce":
		return EaseOutBounce, true
	}
	return nil, false
}

// ============================================================================
// Animation
// ============================================================================

// Animation moves a value from From to To, advanced by FrameTick events
// delivered to the widget holding its Handler. The clock starts with the
// first tick.
type Animation struct {
	From, To float32
	Duration time.Duration
	Easing   EasingFunc
	Loop     bool

	// Apply receives each new value.
	Apply func(ctx *Context, v float32) error
	// OnDone runs once when a non-looping animation finishes.
	OnDone func(ctx *Context) error

	start time.Time
	done  bool
}

// AnimateVariable animates a layout variable through its edit variable.
func AnimateVariable(v *solver.Variable, from, to float32, d time.Duration, easing EasingFunc) *Animation {
	return &Animation{
		From:     from,
		To:       to,
		Duration: d,
		Easing:   easing,
		Apply: func(ctx *Context, value float32) error {
			return ctx.UpdateVariable(v, float64(value))
		},
	}
}

func (a *Animation) Done() bool { return a.done }

// Reset rewinds the animation; the next tick starts it again.
func (a *Animation) Reset() {
	a.start = time.Time{}
	a.done = false
}

// Handler returns the FrameTick handler that advances the animation.
func (a *Animation) Handler() Handler {
	return On(func(ctx *Context, ev FrameTick) error {
		now := ev.Time
		if now.IsZero() {
			now = time.Now()
		}
		return a.step(ctx, now)
	})
}

func (a *Animation) step(ctx *Context, now time.Time) error {
	if a.done {
		return nil
	}
	if a.start.IsZero() {
		a.start = now
	}
	easing := a.Easing
	if easing == nil {
		easing = EaseLinear
	}

	t := float32(1)
	if a.Duration > 0 {
		t = float32(now.Sub(a.start)) / float32(a.Duration)
	}
	if t >= 1 {
		if a.Loop {
			a.start = now
			t = 0
		} else {
			a.done = true
			t = 1
		}
	}

	if a.Apply != nil {
		if err := a.Apply(ctx, a.From+(a.To-a.From)*easing(t)); err != nil {
			return err
		}
	}
	if a.done && a.OnDone != nil {
		return a.OnDone(ctx)
	}
	return nil
}
