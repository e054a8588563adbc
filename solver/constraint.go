package solver

import "fmt"

// Operator is the relation of a constraint's expression to zero.
type Operator uint8

const (
	OpLE Operator = iota // expression <= 0
	OpGE                 // expression >= 0
	OpEQ                 // expression == 0
)

func (op Operator) String() string {
	switch op {
	case OpLE:
		return "<="
	case OpGE:
		return ">="
	default:
		return "=="
	}
}

// Constraint is a linear relation with a strength. A constraint is immutable
// once created and is identified by pointer; WithStrength returns a new one.
type Constraint struct {
	expr     Expression
	op       Operator
	strength Strength
}

// NewConstraint builds the constraint "expr op 0".
func NewConstraint(expr Expression, op Operator, strength Strength) *Constraint {
	return &Constraint{expr: expr.reduce(), op: op, strength: strength.Clip()}
}

// Eq builds the required constraint lhs == rhs.
func Eq(lhs, rhs Expressible) *Constraint {
	return NewConstraint(lhs.Expression().Minus(rhs), OpEQ, Required)
}

// Le builds the required constraint lhs <= rhs.
func Le(lhs, rhs Expressible) *Constraint {
	return NewConstraint(lhs.Expression().Minus(rhs), OpLE, Required)
}

// Ge builds the required constraint lhs >= rhs.
func Ge(lhs, rhs Expressible) *Constraint {
	return NewConstraint(lhs.Expression().Minus(rhs), OpGE, Required)
}

// WithStrength returns a copy of c at strength s.
func (c *Constraint) WithStrength(s Strength) *Constraint {
	return &Constraint{expr: c.expr, op: c.op, strength: s.Clip()}
}

func (c *Constraint) Expression() Expression { return c.expr }
func (c *Constraint) Op() Operator           { return c.op }
func (c *Constraint) Strength() Strength     { return c.strength }

// Variables returns the variables the constraint refers to.
func (c *Constraint) Variables() []*Variable {
	return c.expr.Variables()
}

// Satisfied reports whether the constraint holds for the current variable
// values, within the solver tolerance.
func (c *Constraint) Satisfied() bool {
	v := c.expr.Value()
	switch c.op {
	case OpLE:
		return v <= tolerance
	case OpGE:
		return v >= -tolerance
	default:
		return v <= tolerance && v >= -tolerance
	}
}

func (c *Constraint) String() string {
	return fmt.Sprintf("%s %s 0 | %s", c.expr, c.op, c.strength)
}
