// Package layout maps widget geometry onto the incremental constraint solver.
//
// Every widget owns a Node holding six solver variables. Constraints between
// nodes are built with the helpers in this package and handed to an Engine,
// which adds and removes them incrementally as widgets attach and detach.
package layout

import (
	"fmt"

	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/solver"
)

// NodeID identifies a node. Widgets use their own id so events and layout
// share one addressing key.
type NodeID uint64

// Node is the layout state of one widget.
type Node struct {
	id   NodeID
	name string

	left, top, right, bottom *solver.Variable
	width, height            *solver.Variable

	// constraints queued before the node is registered with an engine
	pending []*solver.Constraint
	engine  *Engine
}

// NewNode creates the variables for a node. Nothing is added to a solver
// until the node is registered.
func NewNode(id NodeID, name string) *Node {
	if name == "" {
		name = fmt.Sprintf("node%d", id)
	}
	return &Node{
		id:     id,
		name:   name,
		left:   solver.NewVariable(name + ".left"),
		top:    solver.NewVariable(name + ".top"),
		right:  solver.NewVariable(name + ".right"),
		bottom: solver.NewVariable(name + ".bottom"),
		width:  solver.NewVariable(name + ".width"),
		height: solver.NewVariable(name + ".height"),
	}
}

func (n *Node) ID() NodeID   { return n.id }
func (n *Node) Name() string { return n.name }

func (n *Node) Left() *solver.Variable   { return n.left }
func (n *Node) Top() *solver.Variable    { return n.top }
func (n *Node) Right() *solver.Variable  { return n.right }
func (n *Node) Bottom() *solver.Variable { return n.bottom }
func (n *Node) Width() *solver.Variable  { return n.width }
func (n *Node) Height() *solver.Variable { return n.height }

// Vars returns the node's variables in a fixed order.
func (n *Node) Vars() []*solver.Variable {
	return []*solver.Variable{n.left, n.top, n.right, n.bottom, n.width, n.height}
}

// Registered reports whether the node is currently part of an engine.
func (n *Node) Registered() bool { return n.engine != nil }

// Add contributes constraints owned by this node. Before registration they
// are queued and added together with the node; afterwards they go straight
// to the engine and a conflict is reported here.
func (n *Node) Add(cs ...*solver.Constraint) error {
	if n.engine == nil {
		n.pending = append(n.pending, cs...)
		return nil
	}
	return n.engine.AddConstraints(n.id, cs...)
}

// Pending returns the constraints queued for registration.
func (n *Node) Pending() []*solver.Constraint {
	return n.pending
}

// Bounds reads the node's rectangle from the last solved values.
func (n *Node) Bounds() geom.Rect {
	return geom.RectFromLTWH(
		float32(n.left.Value()),
		float32(n.top.Value()),
		float32(n.width.Value()),
		float32(n.height.Value()),
	)
}

// intrinsic ties the edges to the dimensions and keeps the size non-negative.
func (n *Node) intrinsic() []*solver.Constraint {
	return []*solver.Constraint{
		solver.Eq(n.right, n.left.Plus(n.width)),
		solver.Eq(n.bottom, n.top.Plus(n.height)),
		solver.Ge(n.width, solver.Const(0)),
		solver.Ge(n.height, solver.Const(0)),
	}
}

func (n *Node) axisOf(v *solver.Variable) Axis {
	switch v {
	case n.left, n.right, n.width:
		return AxisHorizontal
	case n.top, n.bottom, n.height:
		return AxisVertical
	}
	return AxisNone
}

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d", n.name, n.id)
}
