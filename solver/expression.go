package solver

import (
	"fmt"
	"strings"
	"sync/atomic"
)

var nextVariableID atomic.Uint64

// Variable is a value the solver assigns. Variables are compared by identity;
// two variables with the same name are distinct.
type Variable struct {
	id    uint64
	name  string
	value float64
}

// NewVariable creates a variable with the given debug name.
func NewVariable(name string) *Variable {
	return &Variable{id: nextVariableID.Add(1), name: name}
}

func (v *Variable) Name() string { return v.name }

// ID orders variables by creation.
func (v *Variable) ID() uint64 { return v.id }

// Value is the value assigned by the most recent UpdateVariables or
// FetchChanges call.
func (v *Variable) Value() float64 { return v.value }

func (v *Variable) String() string {
	return fmt.Sprintf("%s=%g", v.name, v.value)
}

// Expression implements Expressible.
func (v *Variable) Expression() Expression {
	return Expression{Terms: []Term{{Variable: v, Coefficient: 1}}}
}

// Mul returns the term c*v.
func (v *Variable) Mul(c float64) Term {
	return Term{Variable: v, Coefficient: c}
}

// Plus returns v + e.
func (v *Variable) Plus(e Expressible) Expression {
	return v.Expression().Plus(e)
}

// Minus returns v - e.
func (v *Variable) Minus(e Expressible) Expression {
	return v.Expression().Minus(e)
}

// Term is a variable scaled by a coefficient.
type Term struct {
	Variable    *Variable
	Coefficient float64
}

func (t Term) Expression() Expression {
	return Expression{Terms: []Term{t}}
}

// Expression is a linear combination of terms plus a constant.
type Expression struct {
	Terms    []Term
	Constant float64
}

func (e Expression) Expression() Expression { return e }

// Plus returns e + o.
func (e Expression) Plus(o Expressible) Expression {
	other := o.Expression()
	terms := make([]Term, 0, len(e.Terms)+len(other.Terms))
	terms = append(terms, e.Terms...)
	terms = append(terms, other.Terms...)
	return Expression{Terms: terms, Constant: e.Constant + other.Constant}
}

// Minus returns e - o.
func (e Expression) Minus(o Expressible) Expression {
	return e.Plus(o.Expression().Scale(-1))
}

// Scale multiplies every term and the constant by c.
func (e Expression) Scale(c float64) Expression {
	terms := make([]Term, len(e.Terms))
	for i, t := range e.Terms {
		terms[i] = Term{Variable: t.Variable, Coefficient: t.Coefficient * c}
	}
	return Expression{Terms: terms, Constant: e.Constant * c}
}

// AddConstant returns e + c.
func (e Expression) AddConstant(c float64) Expression {
	return Expression{Terms: e.Terms, Constant: e.Constant + c}
}

// Value evaluates the expression with the current variable values.
func (e Expression) Value() float64 {
	v := e.Constant
	for _, t := range e.Terms {
		v += t.Coefficient * t.Variable.value
	}
	return v
}

// Variables returns the distinct variables of the expression in term order.
func (e Expression) Variables() []*Variable {
	seen := make(map[*Variable]bool, len(e.Terms))
	vars := make([]*Variable, 0, len(e.Terms))
	for _, t := range e.Terms {
		if !seen[t.Variable] {
			seen[t.Variable] = true
			vars = append(vars, t.Variable)
		}
	}
	return vars
}

// reduce merges duplicate variables and drops zero coefficients.
func (e Expression) reduce() Expression {
	index := make(map[*Variable]int, len(e.Terms))
	terms := make([]Term, 0, len(e.Terms))
	for _, t := range e.Terms {
		if i, ok := index[t.Variable]; ok {
			terms[i].Coefficient += t.Coefficient
			continue
		}
		index[t.Variable] = len(terms)
		terms = append(terms, t)
	}
	out := terms[:0]
	for _, t := range terms {
		if !nearZero(t.Coefficient) {
			out = append(out, t)
		}
	}
	return Expression{Terms: out, Constant: e.Constant}
}

func (e Expression) String() string {
	var b strings.Builder
	for i, t := range e.Terms {
		if i > 0 {
			b.WriteString(" + ")
		}
		if t.Coefficient == 1 {
			b.WriteString(t.Variable.name)
		} else {
			fmt.Fprintf(&b, "%g*%s", t.Coefficient, t.Variable.name)
		}
	}
	if e.Constant != 0 || len(e.Terms) == 0 {
		if len(e.Terms) > 0 {
			b.WriteString(" + ")
		}
		fmt.Fprintf(&b, "%g", e.Constant)
	}
	return b.String()
}

// Expressible is anything that can be used as one side of a constraint.
type Expressible interface {
	Expression() Expression
}

// Const is a constant operand.
type Const float64

func (c Const) Expression() Expression {
	return Expression{Constant: float64(c)}
}
