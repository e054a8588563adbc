package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrengthOrdering(t *testing.T) {
	assert.Greater(t, Required, Strong)
	assert.Greater(t, Strong, Medium)
	assert.Greater(t, Medium, Weak)

	assert.Equal(t, Required, Strength(2*Required).Clip())
	assert.Equal(t, Strength(0), Strength(-3).Clip())
	assert.True(t, Required.IsRequired())
	assert.False(t, Strong.IsRequired())
}

func TestParseStrength(t *testing.T) {
	for _, name := range []string{"required", "strong", "medium", "weak"} {
		s, err := ParseStrength(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.String())
	}
	_, err := ParseStrength("mighty")
	assert.Error(t, err)
}

func TestExpressionReduce(t *testing.T) {
	x := NewVariable("x")
	y := NewVariable("y")

	e := x.Plus(y).Plus(x.Mul(2)).Minus(y).AddConstant(4)
	c := NewConstraint(e, OpEQ, Required)

	require.Len(t, c.Expression().Terms, 1)
	assert.Equal(t, Term{Variable: x, Coefficient: 3}, c.Expression().Terms[0])
	assert.Equal(t, 4.0, c.Expression().Constant)
	assert.Equal(t, []*Variable{x}, c.Variables())
}

func TestConstraintSatisfied(t *testing.T) {
	x := NewVariable("x")
	x.value = 5

	assert.True(t, Le(x, Const(5)).Satisfied())
	assert.True(t, Ge(x, Const(5+tolerance/2)).Satisfied())
	assert.False(t, Ge(x, Const(6)).Satisfied())
	assert.True(t, Eq(x.Expression().Scale(2), Const(10)).Satisfied())
	assert.False(t, Eq(x, Const(4)).Satisfied())
}
