package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agiangrant/strut/solver"
)

var (
	ErrAlreadyRegistered = errors.New("node already registered")
	ErrNotRegistered     = errors.New("node not registered")
	ErrUnknownVariable   = errors.New("variable does not belong to a registered node")
)

// Axis names the direction a failing constraint acts on.
type Axis uint8

const (
	AxisNone Axis = iota
	AxisHorizontal
	AxisVertical
	AxisBoth
)

func (a Axis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	case AxisBoth:
		return "both"
	}
	return "none"
}

func (a Axis) merge(o Axis) Axis {
	switch {
	case a == AxisNone:
		return o
	case o == AxisNone, a == o:
		return a
	}
	return AxisBoth
}

// Error attributes a layout failure to the node that caused it.
type Error struct {
	Op         string
	Node       NodeID
	Name       string
	Axis       Axis
	Constraint *solver.Constraint
	Err        error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "layout %s %s#%d", e.Op, e.Name, e.Node)
	if e.Axis != AxisNone {
		fmt.Fprintf(&b, " (%s)", e.Axis)
	}
	if e.Constraint != nil {
		fmt.Fprintf(&b, " [%s]", e.Constraint)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }
