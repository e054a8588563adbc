// Package draw provides the basic drawables: filled rectangles and ellipses
// with an optional border. Both implement the retained package's Drawable
// and HitTester interfaces.
package draw

import (
	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/render"
)

// Border is a solid outline.
type Border struct {
	Width float32
	Color render.Color
}

// ============================================================================
// Rectangle
// ============================================================================

// RectState fills its bounds with Background.
type RectState struct {
	Background render.Color
	Border     *Border
}

// NewRect creates a rectangle with no border.
func NewRect(bg render.Color) *RectState {
	return &RectState{Background: bg}
}

func (s *RectState) Draw(bounds, clip geom.Rect, b *render.Builder) {
	info := render.WithClipRect(bounds, clip)
	b.PushRect(info, s.Background)
	if s.Border != nil && s.Border.Width > 0 {
		b.PushBorder(info, render.UniformWidths(s.Border.Width), render.BorderSide{Color: s.Border.Color, Style: render.BorderSolid})
	}
}

func (s *RectState) HitTest(bounds geom.Rect, p geom.Point) bool {
	return bounds.Contains(p)
}

// ============================================================================
// Ellipse
// ============================================================================

// minEllipseBorder is the thinnest ellipse border drawn. Thinner rings leave
// gaps at the steep parts of the curve.
const minEllipseBorder = 2

// EllipseState fills the ellipse inscribed in its bounds.
type EllipseState struct {
	Background render.Color
	Border     *Border
}

// NewEllipse creates an ellipse with no border.
func NewEllipse(bg render.Color) *EllipseState {
	return &EllipseState{Background: bg}
}

// Draw snaps the bounds to whole pixels so the rounded clip has no seams at
// the corners. A border is drawn as the full ellipse in the border color
// with the inset background ellipse on top.
func (s *EllipseState) Draw(bounds, clip geom.Rect, b *render.Builder) {
	bounds = bounds.Round()
	if s.Border == nil {
		pushEllipse(b, bounds, clip, s.Background)
		return
	}
	width := max(s.Border.Width, minEllipseBorder)
	pushEllipse(b, bounds, clip, s.Border.Color)
	pushEllipse(b, bounds.Shrink(width), clip, s.Background)
}

func (s *EllipseState) HitTest(bounds geom.Rect, p geom.Point) bool {
	return CursorHit(bounds, p)
}

func pushEllipse(b *render.Builder, r, clip geom.Rect, c render.Color) {
	info := render.WithClipRect(r, clip)
	info.ComplexClip = &render.ComplexClip{Rect: r, Radius: r.Size.Div(2), Mode: render.ClipInside}
	b.PushRect(info, c)
}

// CursorHit reports whether p lies inside the ellipse inscribed in bounds.
func CursorHit(bounds geom.Rect, p geom.Point) bool {
	rx := bounds.Width() / 2
	ry := bounds.Height() / 2
	if rx <= 0 || ry <= 0 {
		return false
	}
	c := bounds.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}
