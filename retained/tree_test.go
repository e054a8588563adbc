package retained

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/layout"
)

func TestTreeCentersChild(t *testing.T) {
	root := fixed(NewWidget("root"), 0, 0, 400, 300)
	tree := newTestTree(t, root)

	child := NewWidget("child")
	n := child.Layout()
	require.NoError(t, n.Add(layout.Center(n, root.Layout())...))
	require.NoError(t, n.Add(layout.Size(n, geom.Sz(100, 50))...))
	require.NoError(t, tree.AddChild(root, child))

	tree.Layout().Solve()
	assert.Equal(t, geom.RectFromLTWH(150, 125, 100, 50), child.Bounds())
	assert.Same(t, root, child.Parent())
	assert.Equal(t, 2, tree.Len())
}

func TestTreeAttachesBuilderChildren(t *testing.T) {
	root := NewWidget("root")
	a := NewWidget("a")
	b := NewWidget("b")
	c := NewWidget("c")
	root.AddChild(a).AddChild(c)
	a.AddChild(b)

	tree := newTestTree(t, root)
	assert.Equal(t, 4, tree.Len())
	for _, w := range []*Widget{root, a, b, c} {
		assert.True(t, w.Attached(), w.Name())
		assert.True(t, w.Layout().Registered(), w.Name())
	}

	var order []string
	tree.Walk(root.ID(), func(w *Widget) bool {
		order = append(order, w.Name())
		return true
	})
	assert.Equal(t, []string{"root", "a", "b", "c"}, order)

	order = nil
	tree.Walk(root.ID(), func(w *Widget) bool {
		order = append(order, w.Name())
		return w != a
	})
	assert.Equal(t, []string{"root", "a", "c"}, order)
}

func TestRemoveChildReleasesLayout(t *testing.T) {
	root := fixed(NewWidget("root"), 0, 0, 400, 300)
	tree := newTestTree(t, root)
	before := tree.Layout().NumConstraints()

	child := NewWidget("child")
	require.NoError(t, child.Layout().Add(layout.BoundBy(child.Layout(), root.Layout(), 10)...))
	grandchild := NewWidget("grandchild")
	require.NoError(t, grandchild.Layout().Add(layout.Below(grandchild.Layout(), child.Layout(), 0)))
	child.AddChild(grandchild)
	child.AddHandler(On(func(*Context, FrameTick) error { return nil }))

	require.NoError(t, tree.AddChild(root, child))
	assert.Greater(t, tree.Layout().NumConstraints(), before)

	require.NoError(t, tree.RemoveChild(root, child.ID()))
	assert.Equal(t, before, tree.Layout().NumConstraints())
	assert.Equal(t, 1, tree.Len())
	assert.Empty(t, root.Children())
	assert.False(t, child.Attached())
	assert.False(t, grandchild.Attached())
	assert.Zero(t, child.NumHandlers())
	assert.Nil(t, child.Parent())
	_, ok := tree.Widget(grandchild.ID())
	assert.False(t, ok)
}

func TestAddChildRollsBackOnConflict(t *testing.T) {
	root := fixed(NewWidget("root"), 0, 0, 400, 300)
	tree := newTestTree(t, root)
	before := tree.Layout().NumConstraints()

	child := NewWidget("child")
	require.NoError(t, child.Layout().Add(layout.Width(child.Layout(), 10), layout.Width(child.Layout(), 20)))
	err := tree.AddChild(root, child)

	var se *StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "attach", se.Op)
	var le *layout.Error
	require.True(t, errors.As(err, &le))
	assert.Equal(t, layout.AxisHorizontal, le.Axis)

	assert.False(t, child.Attached())
	assert.Nil(t, child.Parent())
	assert.Empty(t, root.Children())
	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, before, tree.Layout().NumConstraints())
}

func TestTreeStructuralErrors(t *testing.T) {
	root := NewWidget("root")
	tree := newTestTree(t, root)
	child := NewWidget("child")
	require.NoError(t, tree.AddChild(root, child))

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"second root", tree.SetRoot(NewWidget("other")), ErrRootSet},
		{"attached child", tree.AddChild(root, child), ErrAlreadyAttached},
		{"detached parent", tree.AddChild(NewWidget("loose"), NewWidget("x")), ErrNotAttached},
		{"not a child", tree.RemoveChild(root, 1<<60), ErrNotChild},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.want)
			var se *StructuralError
			assert.True(t, errors.As(tt.err, &se))
		})
	}
}

func TestWidgetAddChildPanicsWhenAttached(t *testing.T) {
	root := NewWidget("root")
	newTestTree(t, root)
	assert.Panics(t, func() { root.AddChild(NewWidget("late")) })
}

func TestAddChildNotifiesParent(t *testing.T) {
	root := NewWidget("root")
	var attached, detached []WidgetID
	root.AddHandler(On(func(_ *Context, ev ChildAttached) error {
		attached = append(attached, ev.Child)
		return nil
	}))
	root.AddHandler(On(func(_ *Context, ev ChildDetached) error {
		detached = append(detached, ev.Child)
		return nil
	}))
	tree := newTestTree(t, root)

	child := NewWidget("child")
	require.NoError(t, tree.AddChild(root, child))
	require.NoError(t, tree.RemoveChild(root, child.ID()))
	assert.Empty(t, attached, "notifications wait for the next drain")

	_, err := tree.Dispatcher().Drain()
	require.NoError(t, err)
	assert.Equal(t, []WidgetID{child.ID()}, attached)
	assert.Equal(t, []WidgetID{child.ID()}, detached)
}
