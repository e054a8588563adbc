package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/solver"
)

func newRoot(t *testing.T, e *Engine, w, h float32) *Node {
	t.Helper()
	root := NewNode(1, "root")
	require.NoError(t, root.Add(Fixed(root, geom.RectFromLTWH(0, 0, w, h))...))
	require.NoError(t, e.Register(root))
	return root
}

func TestEngineCenteredChild(t *testing.T) {
	e := NewEngine(DefaultConfig())
	root := newRoot(t, e, 400, 300)

	child := NewNode(2, "child")
	require.NoError(t, child.Add(Center(child, root)...))
	require.NoError(t, child.Add(Size(child, geom.Sz(100, 50))...))
	require.NoError(t, e.Register(child))

	changes := e.Solve()
	assert.Equal(t, []NodeID{1, 2}, changes.Nodes)

	bounds, ok := e.FetchBounds(child.ID())
	require.True(t, ok)
	assert.Equal(t, geom.RectFromLTWH(150, 125, 100, 50), bounds)

	assert.True(t, e.Solve().Empty(), "second solve without mutation")
}

func TestEngineBoundByAndRelativePlacement(t *testing.T) {
	e := NewEngine(DefaultConfig())
	root := newRoot(t, e, 200, 200)

	a := NewNode(2, "a")
	require.NoError(t, a.Add(BoundBy(a, root, 10)...))
	require.NoError(t, a.Add(AlignLeft(a, root).WithStrength(solver.Weak), AlignTop(a, root).WithStrength(solver.Weak)))
	require.NoError(t, a.Add(Size(a, geom.Sz(50, 20))...))
	require.NoError(t, e.Register(a))

	b := NewNode(3, "b")
	require.NoError(t, b.Add(Below(b, a, 5), AlignLeft(b, a), MatchWidth(b, a), Height(b, 30)))
	require.NoError(t, b.Add(AlignTop(b, root).WithStrength(solver.Weak)))
	require.NoError(t, e.Register(b))
	e.Solve()

	ab, _ := e.FetchBounds(a.ID())
	bb, _ := e.FetchBounds(b.ID())
	assert.Equal(t, geom.RectFromLTWH(10, 10, 50, 20), ab)
	assert.Equal(t, geom.RectFromLTWH(10, 35, 50, 30), bb)
}

func TestEngineStrengthOrdering(t *testing.T) {
	e := NewEngine(DefaultConfig())
	root := newRoot(t, e, 100, 100)

	n := NewNode(2, "n")
	require.NoError(t, n.Add(AlignLeft(n, root), AlignTop(n, root), Height(n, 10)))
	require.NoError(t, n.Add(Width(n, 50).WithStrength(solver.Weak), Width(n, 80).WithStrength(solver.Strong)))
	require.NoError(t, e.Register(n))
	e.Solve()

	assert.Equal(t, float32(80), n.Bounds().Width())
}

func TestEngineRequiredConflictIsAttributed(t *testing.T) {
	e := NewEngine(DefaultConfig())
	root := newRoot(t, e, 100, 100)

	n := NewNode(2, "box")
	require.NoError(t, n.Add(AlignLeft(n, root), AlignTop(n, root), Width(n, 100), Height(n, 10)))
	require.NoError(t, e.Register(n))
	before := e.NumConstraints()

	err := n.Add(MinHeight(n, 5), Width(n, 200))
	require.Error(t, err)
	assert.ErrorIs(t, err, solver.ErrUnsatisfiableConstraint)

	var le *Error
	require.True(t, errors.As(err, &le))
	assert.Equal(t, NodeID(2), le.Node)
	assert.Equal(t, "box", le.Name)
	assert.Equal(t, AxisHorizontal, le.Axis)
	assert.Equal(t, "add", le.Op)

	// the batch is atomic: the min height constraint was rolled back too
	assert.Equal(t, before, e.NumConstraints())
	e.Solve()
	assert.Equal(t, float32(10), n.Bounds().Height())
}

func TestEngineRegisterRollsBack(t *testing.T) {
	e := NewEngine(DefaultConfig())
	newRoot(t, e, 100, 100)
	before := e.NumConstraints()

	n := NewNode(2, "bad")
	require.NoError(t, n.Add(Width(n, 10), Width(n, 20)))
	err := e.Register(n)
	require.ErrorIs(t, err, solver.ErrUnsatisfiableConstraint)

	assert.False(t, n.Registered())
	assert.Equal(t, before, e.NumConstraints())
	_, ok := e.FetchBounds(n.ID())
	assert.False(t, ok)
	assert.Empty(t, e.ConstraintsOf(n.ID()))
}

func TestEngineRegisterTwice(t *testing.T) {
	e := NewEngine(DefaultConfig())
	root := newRoot(t, e, 10, 10)
	assert.ErrorIs(t, e.Register(root), ErrAlreadyRegistered)
	assert.ErrorIs(t, e.Register(NewNode(root.ID(), "clash")), ErrAlreadyRegistered)
}

func TestEngineUnregisterLeavesNoConstraints(t *testing.T) {
	e := NewEngine(DefaultConfig())
	root := newRoot(t, e, 300, 300)

	var nodes []*Node
	for i := 0; i < 3; i++ {
		n := NewNode(NodeID(10+i), "row")
		require.NoError(t, n.Add(AlignLeft(n, root), AlignTop(n, root).WithStrength(solver.Weak)))
		require.NoError(t, n.Add(Size(n, geom.Sz(20, 20))...))
		if i > 0 {
			require.NoError(t, n.Add(Below(n, nodes[i-1], 2)))
		}
		require.NoError(t, e.Register(n))
		nodes = append(nodes, n)
	}
	require.NoError(t, e.UpdateVariable(nodes[0].Top(), 40))
	e.Solve()
	assert.Equal(t, float32(40), nodes[0].Bounds().Top())
	assert.Equal(t, float32(62), nodes[1].Bounds().Top())

	// removing the middle row drops the sibling constraint that referred to it
	require.NoError(t, e.Unregister(nodes[1].ID()))
	for _, c := range e.ConstraintsOf(nodes[2].ID()) {
		assert.NotContains(t, c.Variables(), nodes[1].Top())
		assert.NotContains(t, c.Variables(), nodes[1].Bottom())
	}

	require.NoError(t, e.Unregister(nodes[2].ID()))
	require.NoError(t, e.Unregister(nodes[0].ID()))
	require.NoError(t, e.Unregister(root.ID()))
	assert.Equal(t, 0, e.NumConstraints())
	assert.ErrorIs(t, e.Unregister(root.ID()), ErrNotRegistered)
}

func TestEngineUpdateVariableRespectsRequired(t *testing.T) {
	e := NewEngine(DefaultConfig())
	root := newRoot(t, e, 100, 100)

	n := NewNode(2, "content")
	require.NoError(t, n.Add(AlignLeft(n, root).WithStrength(solver.Weak), AlignTop(n, root)))
	require.NoError(t, n.Add(Size(n, geom.Sz(300, 10))...))
	require.NoError(t, n.Add(solver.Ge(n.Left(), solver.Const(-200))))
	require.NoError(t, e.Register(n))
	e.Solve()

	require.NoError(t, e.UpdateVariable(n.Left(), -50))
	changes := e.Solve()
	assert.Equal(t, []NodeID{2}, changes.Nodes)
	assert.Equal(t, float32(-50), n.Bounds().Left())

	require.NoError(t, e.UpdateVariable(n.Left(), -500))
	e.Solve()
	assert.Equal(t, float32(-200), n.Bounds().Left())

	err := e.UpdateVariable(NewNode(9, "loose").Left(), 1)
	assert.ErrorIs(t, err, ErrUnknownVariable)
}

func TestEngineRemoveConstraints(t *testing.T) {
	e := NewEngine(DefaultConfig())
	root := newRoot(t, e, 100, 100)

	n := NewNode(2, "n")
	wide := Width(n, 90)
	require.NoError(t, n.Add(AlignLeft(n, root), AlignTop(n, root), Height(n, 5), Width(n, 10).WithStrength(solver.Weak)))
	require.NoError(t, e.Register(n))
	require.NoError(t, n.Add(wide))
	e.Solve()
	assert.Equal(t, float32(90), n.Bounds().Width())

	require.NoError(t, e.RemoveConstraints(wide))
	e.Solve()
	assert.Equal(t, float32(10), n.Bounds().Width())
	assert.ErrorIs(t, e.RemoveConstraints(wide), solver.ErrUnknownConstraint)
}

func TestAxisMerge(t *testing.T) {
	tests := []struct {
		a, b, want Axis
	}{
		{AxisNone, AxisVertical, AxisVertical},
		{AxisHorizontal, AxisNone, AxisHorizontal},
		{AxisHorizontal, AxisHorizontal, AxisHorizontal},
		{AxisHorizontal, AxisVertical, AxisBoth},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.a.merge(tt.b), "%s+%s", tt.a, tt.b)
	}
}
