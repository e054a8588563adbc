package retained

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/layout"
)

type scrollFixture struct {
	tree    *Tree
	loop    *Loop
	scroll  *Widget
	content *Widget
}

// newScrollFixture puts a 100x50 viewport at (20, 10) holding content of
// the given size.
func newScrollFixture(t *testing.T, content geom.Size) scrollFixture {
	t.Helper()
	root := fixed(NewWidget("root"), 0, 0, 400, 300)
	tree := newTestTree(t, root)

	scroll := fixed(NewScroll("scroll", ScrollConfig{}), 20, 10, 100, 50)
	require.NoError(t, tree.AddChild(root, scroll))

	c := NewWidget("content")
	require.NoError(t, c.Layout().Add(layout.Size(c.Layout(), content)...))
	require.NoError(t, tree.AddChild(scroll, c))

	loop, _ := newTestLoop(t, tree, geom.Sz(400, 300))
	require.NoError(t, loop.Settle(10))
	return scrollFixture{tree: tree, loop: loop, scroll: scroll, content: c}
}

func (f scrollFixture) wheel(t *testing.T, d ScrollDelta) {
	t.Helper()
	f.tree.Push(ToWidget(f.scroll.ID()), MouseWheel{Delta: d})
	require.NoError(t, f.loop.Settle(10))
}

func TestScrollStartsAtViewportOrigin(t *testing.T) {
	f := newScrollFixture(t, geom.Sz(300, 50))
	assert.Equal(t, geom.RectFromLTWH(20, 10, 300, 50), f.content.Bounds())
	offset, ok := ScrollOffset(f.scroll)
	require.True(t, ok)
	assert.Equal(t, geom.Point{}, offset)
}

func TestScrollClampsToContentEdge(t *testing.T) {
	f := newScrollFixture(t, geom.Sz(300, 50))

	f.wheel(t, PixelDelta(-50, 0))
	offset, _ := ScrollOffset(f.scroll)
	assert.Equal(t, geom.Pt(-50, 0), offset)
	assert.InDelta(t, -30, f.content.Bounds().Left(), 1e-4)

	f.wheel(t, PixelDelta(-500, 0))
	offset, _ = ScrollOffset(f.scroll)
	assert.Equal(t, geom.Pt(-200, 0), offset)
	assert.InDelta(t, -180, f.content.Bounds().Left(), 1e-4)
	assert.InDelta(t, 10, f.content.Bounds().Top(), 1e-4)

	f.wheel(t, PixelDelta(1000, 0))
	offset, _ = ScrollOffset(f.scroll)
	assert.Equal(t, geom.Pt(0, 0), offset)
	assert.InDelta(t, 20, f.content.Bounds().Left(), 1e-4)
}

func TestScrollLineDelta(t *testing.T) {
	f := newScrollFixture(t, geom.Sz(100, 500))

	f.wheel(t, LineDelta(0, -2))
	offset, _ := ScrollOffset(f.scroll)
	assert.Equal(t, geom.Pt(0, -26), offset)
	assert.InDelta(t, 10-26, f.content.Bounds().Top(), 1e-4)
}

func TestScrollSmallContentDoesNotMove(t *testing.T) {
	f := newScrollFixture(t, geom.Sz(40, 20))

	f.wheel(t, PixelDelta(-30, -30))
	offset, _ := ScrollOffset(f.scroll)
	assert.Equal(t, geom.Point{}, offset)
	assert.Equal(t, geom.RectFromLTWH(20, 10, 40, 20), f.content.Bounds())
}

func TestScrollHoldsOneChild(t *testing.T) {
	f := newScrollFixture(t, geom.Sz(300, 50))
	before := f.tree.Layout().NumConstraints()

	second := NewWidget("second")
	err := f.tree.AddChild(f.scroll, second)
	assert.ErrorIs(t, err, ErrCardinality)
	var se *StructuralError
	assert.True(t, errors.As(err, &se))
	assert.False(t, second.Attached())
	assert.Len(t, f.scroll.Children(), 1)
	assert.Equal(t, before, f.tree.Layout().NumConstraints())

	assert.Panics(t, func() { f.tree.MustAddChild(f.scroll, NewWidget("third")) })
}

func TestScrollForgetsRemovedChild(t *testing.T) {
	f := newScrollFixture(t, geom.Sz(300, 50))
	require.NoError(t, f.tree.RemoveChild(f.scroll, f.content.ID()))
	require.NoError(t, f.loop.Settle(10))

	_, ok := ScrollOffset(f.scroll)
	assert.False(t, ok)

	// wheel events with no child are ignored
	f.wheel(t, PixelDelta(-10, 0))

	replacement := NewWidget("replacement")
	require.NoError(t, replacement.Layout().Add(layout.Size(replacement.Layout(), geom.Sz(300, 50))...))
	require.NoError(t, f.tree.AddChild(f.scroll, replacement))
	require.NoError(t, f.loop.Settle(10))
	offset, ok := ScrollOffset(f.scroll)
	require.True(t, ok)
	assert.Equal(t, geom.Point{}, offset)
}

func TestScrollDeltaPixels(t *testing.T) {
	assert.Equal(t, geom.Pt(13, -26), LineDelta(1, -2).Pixels(13))
	assert.Equal(t, geom.Pt(1, -2), PixelDelta(1, -2).Pixels(13))
}
