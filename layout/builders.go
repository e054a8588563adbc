package layout

import (
	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/solver"
)

// ============================================================================
// Constraint sets
// ============================================================================

// Set is a group of constraints built together, such as the four edges of
// BoundBy.
type Set []*solver.Constraint

// WithStrength returns a copy of the set with every constraint at s.
func (cs Set) WithStrength(s solver.Strength) Set {
	out := make(Set, len(cs))
	for i, c := range cs {
		out[i] = c.WithStrength(s)
	}
	return out
}

// ============================================================================
// Alignment
// ============================================================================

func AlignLeft(n, o *Node) *solver.Constraint   { return solver.Eq(n.left, o.left) }
func AlignTop(n, o *Node) *solver.Constraint    { return solver.Eq(n.top, o.top) }
func AlignRight(n, o *Node) *solver.Constraint  { return solver.Eq(n.right, o.right) }
func AlignBottom(n, o *Node) *solver.Constraint { return solver.Eq(n.bottom, o.bottom) }

// CenterHorizontal puts n's horizontal midpoint on o's.
func CenterHorizontal(n, o *Node) *solver.Constraint {
	return solver.Eq(midpoint(n.left, n.width), midpoint(o.left, o.width))
}

// CenterVertical puts n's vertical midpoint on o's.
func CenterVertical(n, o *Node) *solver.Constraint {
	return solver.Eq(midpoint(n.top, n.height), midpoint(o.top, o.height))
}

func Center(n, o *Node) Set {
	return Set{CenterHorizontal(n, o), CenterVertical(n, o)}
}

func midpoint(edge, size *solver.Variable) solver.Expression {
	return edge.Expression().Plus(size.Mul(0.5))
}

// BoundBy keeps n inside o, inset by padding on every side.
func BoundBy(n, o *Node, padding float32) Set {
	p := float64(padding)
	return Set{
		solver.Ge(n.left, o.left.Expression().AddConstant(p)),
		solver.Ge(n.top, o.top.Expression().AddConstant(p)),
		solver.Le(n.right, o.right.Expression().AddConstant(-p)),
		solver.Le(n.bottom, o.bottom.Expression().AddConstant(-p)),
	}
}

// ============================================================================
// Relative placement
// ============================================================================

// Below places n's top edge at least padding under o's bottom edge.
func Below(n, o *Node, padding float32) *solver.Constraint {
	return solver.Ge(n.top, o.bottom.Expression().AddConstant(float64(padding)))
}

// Above places n's bottom edge at least padding over o's top edge.
func Above(n, o *Node, padding float32) *solver.Constraint {
	return solver.Le(n.bottom, o.top.Expression().AddConstant(-float64(padding)))
}

// ToRightOf places n's left edge at least padding past o's right edge.
func ToRightOf(n, o *Node, padding float32) *solver.Constraint {
	return solver.Ge(n.left, o.right.Expression().AddConstant(float64(padding)))
}

// ToLeftOf places n's right edge at least padding before o's left edge.
func ToLeftOf(n, o *Node, padding float32) *solver.Constraint {
	return solver.Le(n.right, o.left.Expression().AddConstant(-float64(padding)))
}

// ============================================================================
// Dimensions
// ============================================================================

func Width(n *Node, w float32) *solver.Constraint {
	return solver.Eq(n.width, solver.Const(w))
}

func Height(n *Node, h float32) *solver.Constraint {
	return solver.Eq(n.height, solver.Const(h))
}

func Size(n *Node, s geom.Size) Set {
	return Set{Width(n, s.Width), Height(n, s.Height)}
}

func MinWidth(n *Node, w float32) *solver.Constraint {
	return solver.Ge(n.width, solver.Const(w))
}

func MinHeight(n *Node, h float32) *solver.Constraint {
	return solver.Ge(n.height, solver.Const(h))
}

func MaxWidth(n *Node, w float32) *solver.Constraint {
	return solver.Le(n.width, solver.Const(w))
}

func MaxHeight(n *Node, h float32) *solver.Constraint {
	return solver.Le(n.height, solver.Const(h))
}

func MatchWidth(n, o *Node) *solver.Constraint  { return solver.Eq(n.width, o.width) }
func MatchHeight(n, o *Node) *solver.Constraint { return solver.Eq(n.height, o.height) }

// Fixed pins n to an absolute rectangle.
func Fixed(n *Node, r geom.Rect) Set {
	return Set{
		solver.Eq(n.left, solver.Const(r.Left())),
		solver.Eq(n.top, solver.Const(r.Top())),
		Width(n, r.Width()),
		Height(n, r.Height()),
	}
}

// Shrink asks n to be as small as possible without breaking anything
// stronger than weak.
func Shrink(n *Node) Set {
	return Set{
		solver.Eq(n.width, solver.Const(0)).WithStrength(solver.Weak),
		solver.Eq(n.height, solver.Const(0)).WithStrength(solver.Weak),
	}
}
