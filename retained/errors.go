package retained

import (
	"errors"
	"fmt"
)

var (
	// ErrCardinality is returned when a container receives more children
	// than it supports.
	ErrCardinality       = errors.New("container child count violated")
	ErrAlreadyAttached   = errors.New("widget already has a parent")
	ErrNotAttached       = errors.New("widget is not part of the tree")
	ErrNotChild          = errors.New("widget is not a child of parent")
	ErrNoRoot            = errors.New("tree has no root")
	ErrRootSet           = errors.New("tree root already set")
	ErrReentrantDispatch = errors.New("synchronous dispatch from inside a handler")
	ErrNotSettled        = errors.New("event queue did not settle")
)

// StructuralError reports misuse of the widget tree. It is a programming
// error in widget composition and is never retried.
type StructuralError struct {
	Op     string
	Widget string
	Err    error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Widget, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

func structural(op string, w *Widget, err error) error {
	name := "<nil>"
	if w != nil {
		name = w.String()
	}
	return &StructuralError{Op: op, Widget: name, Err: err}
}
