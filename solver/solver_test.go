package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolverRequiredEquality(t *testing.T) {
	s := New()
	x := NewVariable("x")

	require.NoError(t, s.AddConstraint(Eq(x, Const(10))))
	s.UpdateVariables()
	assert.InDelta(t, 10, x.Value(), tolerance)
}

func TestSolverStrengthOrdering(t *testing.T) {
	s := New()
	x := NewVariable("x")
	y := NewVariable("y")

	require.NoError(t, s.AddConstraint(Eq(x.Plus(y), Const(100))))
	require.NoError(t, s.AddConstraint(Eq(x, Const(60)).WithStrength(Weak)))
	require.NoError(t, s.AddConstraint(Eq(x, Const(30)).WithStrength(Strong)))
	s.UpdateVariables()

	assert.InDelta(t, 30, x.Value(), tolerance)
	assert.InDelta(t, 70, y.Value(), tolerance)
}

func TestSolverRequiredInequalityClampsPreference(t *testing.T) {
	s := New()
	left := NewVariable("left")
	width := NewVariable("width")
	right := NewVariable("right")

	require.NoError(t, s.AddConstraint(Eq(right, left.Plus(width))))
	require.NoError(t, s.AddConstraint(Eq(left, Const(0))))
	require.NoError(t, s.AddConstraint(Eq(width, Const(100)).WithStrength(Strong)))
	require.NoError(t, s.AddConstraint(Le(right, Const(50))))
	s.UpdateVariables()

	assert.InDelta(t, 0, left.Value(), tolerance)
	assert.InDelta(t, 50, width.Value(), tolerance)
	assert.InDelta(t, 50, right.Value(), tolerance)
}

func TestSolverUnsatisfiableLeavesStateUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		existing func(x *Variable) []*Constraint
		conflict func(x *Variable) *Constraint
	}{
		{
			name:     "equalities",
			existing: func(x *Variable) []*Constraint { return []*Constraint{Eq(x, Const(10))} },
			conflict: func(x *Variable) *Constraint { return Eq(x, Const(20)) },
		},
		{
			name: "inequalities",
			existing: func(x *Variable) []*Constraint {
				return []*Constraint{Ge(x, Const(10)), Eq(x, Const(12)).WithStrength(Weak)}
			},
			conflict: func(x *Variable) *Constraint { return Le(x, Const(5)) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			x := NewVariable("x")
			existing := tt.existing(x)
			for _, c := range existing {
				require.NoError(t, s.AddConstraint(c))
			}
			s.UpdateVariables()
			before := x.Value()

			err := s.AddConstraint(tt.conflict(x))
			require.ErrorIs(t, err, ErrUnsatisfiableConstraint)
			assert.Equal(t, len(existing), s.NumConstraints())

			s.UpdateVariables()
			assert.InDelta(t, before, x.Value(), tolerance)
			for _, c := range existing {
				if c.Strength().IsRequired() {
					assert.True(t, c.Satisfied(), c.String())
				}
			}
		})
	}
}

func TestSolverDuplicateAndUnknown(t *testing.T) {
	s := New()
	x := NewVariable("x")
	c := Ge(x, Const(1))

	require.NoError(t, s.AddConstraint(c))
	assert.ErrorIs(t, s.AddConstraint(c), ErrDuplicateConstraint)
	assert.ErrorIs(t, s.RemoveConstraint(Ge(x, Const(1))), ErrUnknownConstraint)
	assert.True(t, s.HasConstraint(c))
}

func TestSolverRemoveRestoresWeakerSolution(t *testing.T) {
	s := New()
	x := NewVariable("x")
	weak := Eq(x, Const(10)).WithStrength(Weak)
	strong := Eq(x, Const(20)).WithStrength(Strong)

	require.NoError(t, s.AddConstraint(weak))
	require.NoError(t, s.AddConstraint(strong))
	s.UpdateVariables()
	assert.InDelta(t, 20, x.Value(), tolerance)

	require.NoError(t, s.RemoveConstraint(strong))
	s.UpdateVariables()
	assert.InDelta(t, 10, x.Value(), tolerance)

	require.NoError(t, s.RemoveConstraint(weak))
	assert.Equal(t, 0, s.NumConstraints())
	assert.False(t, s.HasConstraint(weak))
}

func TestSolverEditVariables(t *testing.T) {
	s := New()
	x := NewVariable("x")
	y := NewVariable("y")

	require.NoError(t, s.AddConstraint(Ge(x, Const(0))))
	require.NoError(t, s.AddConstraint(Eq(y, x.Expression().Scale(2))))
	require.NoError(t, s.AddEditVariable(x, Strong))
	assert.True(t, s.HasEditVariable(x))

	require.NoError(t, s.SuggestValue(x, 42))
	s.UpdateVariables()
	assert.InDelta(t, 42, x.Value(), tolerance)
	assert.InDelta(t, 84, y.Value(), tolerance)

	// the required bound wins over the suggestion
	require.NoError(t, s.SuggestValue(x, -5))
	s.UpdateVariables()
	assert.InDelta(t, 0, x.Value(), tolerance)

	require.NoError(t, s.SuggestValue(x, 7))
	s.UpdateVariables()
	assert.InDelta(t, 7, x.Value(), tolerance)
	assert.InDelta(t, 14, y.Value(), tolerance)

	strength, ok := s.EditStrength(x)
	require.True(t, ok)
	assert.Equal(t, Strong, strength)
	assert.Equal(t, map[*Variable]float64{x: 7}, s.EditVariables())

	require.NoError(t, s.RemoveEditVariable(x))
	assert.False(t, s.HasEditVariable(x))
	assert.Equal(t, 2, s.NumConstraints())
}

func TestSolverEditVariableErrors(t *testing.T) {
	s := New()
	x := NewVariable("x")

	assert.ErrorIs(t, s.AddEditVariable(x, Required), ErrBadRequiredStrength)
	assert.ErrorIs(t, s.SuggestValue(x, 1), ErrUnknownEditVariable)
	assert.ErrorIs(t, s.RemoveEditVariable(x), ErrUnknownEditVariable)

	require.NoError(t, s.AddEditVariable(x, Medium))
	assert.ErrorIs(t, s.AddEditVariable(x, Weak), ErrDuplicateEditVariable)
}

func TestSolverFetchChanges(t *testing.T) {
	s := New()
	x := NewVariable("x")
	y := NewVariable("y")
	cx := Eq(x, Const(10))

	require.NoError(t, s.AddConstraint(cx))
	require.NoError(t, s.AddConstraint(Eq(y, Const(0))))

	changed := s.FetchChanges()
	assert.Equal(t, []*Variable{x}, changed)
	assert.Empty(t, s.FetchChanges())

	require.NoError(t, s.RemoveConstraint(cx))
	assert.Equal(t, []*Variable{x}, s.FetchChanges())
	assert.Equal(t, float64(0), x.Value())
	assert.Empty(t, s.FetchChanges())
}

func TestSolverReset(t *testing.T) {
	s := New()
	x := NewVariable("x")
	require.NoError(t, s.AddConstraint(Eq(x, Const(3))))
	require.NoError(t, s.AddEditVariable(NewVariable("e"), Weak))

	s.Reset()
	assert.Equal(t, 0, s.NumConstraints())
	assert.Empty(t, s.EditVariables())
	require.NoError(t, s.AddConstraint(Eq(x, Const(4))))
	s.UpdateVariables()
	assert.InDelta(t, 4, x.Value(), tolerance)
}
