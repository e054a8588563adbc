// Package geom provides the float32 point, size and rectangle types shared by
// layout, hit testing and display-list construction.
package geom

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Point is a position in logical pixels.
type Point struct {
	X, Y float32
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Mul scales both coordinates by s.
func (p Point) Mul(s float32) Point { return Point{X: p.X * s, Y: p.Y * s} }

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

// Size is a width/height pair in logical pixels.
type Size struct {
	Width, Height float32
}

// Sz is shorthand for Size{Width: w, Height: h}.
func Sz(w, h float32) Size {
	return Size{Width: w, Height: h}
}

// Div divides both dimensions by d.
func (s Size) Div(d float32) Size { return Size{Width: s.Width / d, Height: s.Height / d} }

// Empty reports whether either dimension is zero or negative.
func (s Size) Empty() bool { return s.Width <= 0 || s.Height <= 0 }

func (s Size) String() string {
	return fmt.Sprintf("%gx%g", s.Width, s.Height)
}

// Rect is an axis-aligned rectangle described by its top-left origin and size.
type Rect struct {
	Origin Point
	Size   Size
}

// RectFromLTWH builds a rectangle from its left/top edges and dimensions.
func RectFromLTWH(left, top, width, height float32) Rect {
	return Rect{Origin: Point{X: left, Y: top}, Size: Size{Width: width, Height: height}}
}

func (r Rect) Left() float32   { return r.Origin.X }
func (r Rect) Top() float32    { return r.Origin.Y }
func (r Rect) Right() float32  { return r.Origin.X + r.Size.Width }
func (r Rect) Bottom() float32 { return r.Origin.Y + r.Size.Height }
func (r Rect) Width() float32  { return r.Size.Width }
func (r Rect) Height() float32 { return r.Size.Height }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.Origin.X + r.Size.Width/2, Y: r.Origin.Y + r.Size.Height/2}
}

// Round snaps every edge to the nearest whole device pixel. Halves round up.
// Edges are rounded independently so adjacent rectangles keep sharing an edge.
func (r Rect) Round() Rect {
	left := roundHalfUp(r.Left())
	top := roundHalfUp(r.Top())
	right := roundHalfUp(r.Right())
	bottom := roundHalfUp(r.Bottom())
	return RectFromLTWH(left, top, right-left, bottom-top)
}

// Shrink insets every side by w. The size never goes below zero; a rectangle
// thinner than 2w collapses onto its center line.
func (r Rect) Shrink(w float32) Rect {
	width := math32.Max(0, r.Size.Width-2*w)
	height := math32.Max(0, r.Size.Height-2*w)
	c := r.Center()
	return RectFromLTWH(c.X-width/2, c.Y-height/2, width, height)
}

// Contains reports whether p lies inside r. The right and bottom edges are
// exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left() && p.X < r.Right() &&
		p.Y >= r.Top() && p.Y < r.Bottom()
}

// Intersect returns the overlap of r and o, or the zero Rect at r's origin when
// they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	left := math32.Max(r.Left(), o.Left())
	top := math32.Max(r.Top(), o.Top())
	right := math32.Min(r.Right(), o.Right())
	bottom := math32.Min(r.Bottom(), o.Bottom())
	if right <= left || bottom <= top {
		return Rect{Origin: r.Origin}
	}
	return RectFromLTWH(left, top, right-left, bottom-top)
}

// Translate moves the rectangle by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{Origin: r.Origin.Add(d), Size: r.Size}
}

func (r Rect) String() string {
	return fmt.Sprintf("[%g,%g %gx%g]", r.Left(), r.Top(), r.Width(), r.Height())
}

func roundHalfUp(v float32) float32 {
	return math32.Floor(v + 0.5)
}
