package retained

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/layout"
	"github.com/agiangrant/strut/render"
)

// fill paints its bounds with one color and counts its draws.
type fill struct {
	color render.Color
	draws int
}

func (f *fill) Draw(bounds, clip geom.Rect, b *render.Builder) {
	f.draws++
	b.PushRect(render.WithClipRect(bounds, clip), f.color)
}

// callLog collects handler invocations across widgets.
type callLog struct {
	entries []string
}

func (l *callLog) record(w *Widget, what string) {
	l.entries = append(l.entries, what+":"+w.Name())
}

func (l *callLog) take() []string {
	out := l.entries
	l.entries = nil
	return out
}

func fixed(w *Widget, x, y, width, height float32) *Widget {
	if err := w.Layout().Add(layout.Fixed(w.Layout(), geom.RectFromLTWH(x, y, width, height))...); err != nil {
		panic(err)
	}
	return w
}

func newTestTree(t *testing.T, root *Widget) *Tree {
	t.Helper()
	tree := NewTree(DefaultTreeConfig())
	require.NoError(t, tree.SetRoot(root))
	return tree
}

func newTestLoop(t *testing.T, tree *Tree, size geom.Size) (*Loop, *render.Recorder) {
	t.Helper()
	rec := render.NewRecorder()
	ctx, err := render.NewContext(rec, render.Options{WindowSize: size})
	require.NoError(t, err)
	return NewLoop(tree, ctx, LoopConfig{WindowSize: size}), rec
}

// heldPresenter reports frames ready only when told to.
type heldPresenter struct {
	ready   bool
	lists   []render.DisplayList
	updates int
}

func (p *heldPresenter) RenderBuilder(size geom.Size) *render.Builder {
	return render.NewBuilder(render.PipelineID{}, size)
}

func (p *heldPresenter) SetDisplayList(b *render.Builder, size geom.Size) error {
	p.lists = append(p.lists, b.Finalize(render.White))
	return nil
}

func (p *heldPresenter) GenerateFrame() error { return nil }
func (p *heldPresenter) FrameReady() bool     { return p.ready }

func (p *heldPresenter) Update(geom.Size) error {
	p.ready = false
	p.updates++
	return nil
}
