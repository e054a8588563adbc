package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/strut/geom"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    Color
		wantErr bool
	}{
		{in: "#ff0000", want: RGBA(255, 0, 0, 255)},
		{in: "#0f08", wantErr: true},
		{in: "#00ff0080", want: RGBA(0, 255, 0, 128)},
		{in: "#fff", want: White},
		{in: "black", want: Black},
		{in: "LightGray", want: RGBA(211, 211, 211, 255)},
		{in: "notacolor", wantErr: true},
		{in: "#zzzzzz", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "#ff000080", RGBA(255, 0, 0, 128).String())
}

func newTestContext(t *testing.T) (*Context, *Recorder) {
	t.Helper()
	rec := NewRecorder()
	ctx, err := NewContext(rec, Options{WindowSize: geom.Sz(200, 100), DevicePixelRatio: 2})
	require.NoError(t, err)
	return ctx, rec
}

func TestContextFrameCycle(t *testing.T) {
	ctx, rec := newTestContext(t)

	size, ok := rec.DocumentSize(ctx.Document())
	require.True(t, ok)
	assert.Equal(t, geom.Sz(400, 200), size)

	b := ctx.RenderBuilder(geom.Sz(200, 100))
	b.PushRect(NewPrimitiveInfo(geom.RectFromLTWH(0, 0, 10, 10)), Red)
	DrawHorizontalLine(b, 5, 0, 50, Black)
	require.NoError(t, ctx.SetDisplayList(b, geom.Sz(200, 100)))
	assert.Equal(t, Epoch(1), ctx.Epoch())

	assert.False(t, ctx.FrameReady())
	require.NoError(t, ctx.GenerateFrame())
	assert.True(t, ctx.FrameReady())

	require.NoError(t, ctx.Update(geom.Sz(200, 100)))
	assert.False(t, ctx.FrameReady())
	assert.Equal(t, uint64(1), ctx.Frames())

	presented := rec.Presented()
	require.Len(t, presented, 1)
	require.Len(t, presented[0].Items, 2)
	assert.Equal(t, KindRect, presented[0].Items[0].Kind())
	border := presented[0].Items[1].(BorderItem)
	assert.Equal(t, geom.RectFromLTWH(0, 5, 50, 0), border.Rect)
	assert.Equal(t, UniformWidths(1), border.Widths)
}

func TestContextAsyncNotifier(t *testing.T) {
	rec := NewRecorder()
	rec.Async = true
	ctx, err := NewContext(rec, Options{})
	require.NoError(t, err)

	require.NoError(t, ctx.SetDisplayList(ctx.RenderBuilder(geom.Sz(10, 10)), geom.Sz(10, 10)))
	require.NoError(t, ctx.GenerateFrame())
	rec.Wait()
	assert.True(t, ctx.FrameReady())
}

func TestContextDebugFlagsAndResize(t *testing.T) {
	ctx, rec := newTestContext(t)

	ctx.ToggleDebugFlags(DebugProfiler | DebugGPUTime)
	assert.Equal(t, DebugProfiler|DebugGPUTime, rec.DebugFlags())
	ctx.ToggleDebugFlags(DebugProfiler)
	assert.Equal(t, DebugGPUTime, rec.DebugFlags())

	require.NoError(t, ctx.WindowResized(geom.Sz(300, 150)))
	size, _ := rec.DocumentSize(ctx.Document())
	assert.Equal(t, geom.Sz(600, 300), size)
}

func TestContextErrorsAfterDeinit(t *testing.T) {
	ctx, _ := newTestContext(t)
	require.NoError(t, ctx.Deinit())

	err := ctx.GenerateFrame()
	var re *Error
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "generate frame", re.Op)
	assert.ErrorIs(t, err, ErrDeinitialized)
}

func TestSetDisplayListSendsResources(t *testing.T) {
	ctx, rec := newTestContext(t)
	key, update, err := ctx.Resources().AddImage(ImageDescriptor{Width: 4, Height: 4, Format: FormatRGBA8}, make([]byte, 64))
	require.NoError(t, err)

	b := ctx.RenderBuilder(geom.Sz(10, 10))
	b.AddResources(update)
	b.PushImage(NewPrimitiveInfo(geom.RectFromLTWH(0, 0, 4, 4)), key)
	require.NoError(t, ctx.SetDisplayList(b, geom.Sz(10, 10)))

	txns := rec.Transactions()
	last := txns[len(txns)-1]
	require.Len(t, last.Ops, 2)
	assert.Equal(t, TxSetDisplayList, last.Ops[0].Kind)
	assert.Equal(t, TxUpdateResources, last.Ops[1].Kind)
	assert.Equal(t, key, last.Ops[1].Resources[0].Key)
}

func TestResources(t *testing.T) {
	res := NewResources()
	key, _, err := res.AddImage(ImageDescriptor{Width: 8, Height: 2, Texture: 42}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Len())

	h := NewExternalImageHandler(res)
	img, err := h.Lock(42)
	require.NoError(t, err)
	assert.Equal(t, geom.Pt(8, 2), img.UV1)
	_, err = h.Lock(7)
	assert.ErrorIs(t, err, ErrUnknownImage)

	_, err = res.UpdateImage(key, ImageDescriptor{Width: 1, Height: 1}, nil)
	require.NoError(t, err)

	del, err := res.DeleteImage(key)
	require.NoError(t, err)
	assert.Equal(t, ResourceDeleteImage, del.Op)
	_, err = res.DeleteImage(key)
	assert.ErrorIs(t, err, ErrUnknownImage)

	res.Close()
	_, _, err = res.AddImage(ImageDescriptor{}, nil)
	assert.ErrorIs(t, err, ErrResourcesClosed)
}
