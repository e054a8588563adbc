package solver

import "errors"

var (
	// ErrUnsatisfiableConstraint is returned when a required constraint
	// conflicts with the required constraints already in the solver.
	ErrUnsatisfiableConstraint = errors.New("unsatisfiable constraint")

	// ErrDuplicateConstraint is returned when a constraint is added twice.
	ErrDuplicateConstraint = errors.New("duplicate constraint")

	// ErrUnknownConstraint is returned when removing a constraint the solver
	// does not hold.
	ErrUnknownConstraint = errors.New("unknown constraint")

	ErrDuplicateEditVariable = errors.New("duplicate edit variable")
	ErrUnknownEditVariable   = errors.New("unknown edit variable")

	// ErrBadRequiredStrength is returned when an edit variable is requested at
	// required strength, which would make suggestions unsatisfiable.
	ErrBadRequiredStrength = errors.New("edit variable cannot have required strength")

	// ErrInternal reports an internal solver failure such as an unbounded
	// objective. The tableau should be rebuilt after this error.
	ErrInternal = errors.New("internal solver error")
)
