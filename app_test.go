package strut

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agiangrant/strut/config"
	"github.com/agiangrant/strut/draw"
	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/internal/wire"
	"github.com/agiangrant/strut/layout"
	"github.com/agiangrant/strut/render"
	"github.com/agiangrant/strut/retained"
)

func quietOptions(cfg config.Config) Options {
	return Options{Config: cfg, LogOutput: &bytes.Buffer{}}
}

func TestAppFitsRootAndPresents(t *testing.T) {
	cfg := config.Default()
	cfg.Window.Width, cfg.Window.Height = 320, 200
	app, err := New(quietOptions(cfg))
	require.NoError(t, err)
	defer app.Close()

	root := retained.NewWidget("root").SetDrawable(draw.NewRect(render.White))
	require.NoError(t, app.SetRoot(root))
	require.NoError(t, app.Loop().Settle(5))

	assert.Equal(t, geom.RectFromLTWH(0, 0, 320, 200), root.Bounds())
	rec := app.Rasterizer().(*render.Recorder)
	presented := rec.Presented()
	require.Len(t, presented, 1)
	require.Len(t, presented[0].Items, 1)
	assert.Equal(t, render.White, presented[0].Items[0].(render.RectItem).Color)
}

func TestAppReload(t *testing.T) {
	app, err := New(quietOptions(config.Default()))
	require.NoError(t, err)
	defer app.Close()
	root := retained.NewWidget("root")
	require.NoError(t, app.SetRoot(root))
	require.NoError(t, app.Loop().Settle(5))

	next := app.Config()
	next.Window.Width, next.Window.Height = 400, 300
	next.Render.Background = "red"
	next.Render.Debug = []string{"profiler"}
	app.Reload(next)
	require.NoError(t, app.Loop().Settle(5))

	assert.Equal(t, geom.RectFromLTWH(0, 0, 400, 300), root.Bounds())
	assert.Equal(t, render.DebugProfiler, app.Render().DebugFlags())
	assert.Equal(t, next, app.Config())

	rec := app.Rasterizer().(*render.Recorder)
	dl, ok := rec.DisplayList()
	require.True(t, ok)
	assert.Equal(t, render.Red, dl.Background)
	assert.Equal(t, geom.Sz(400, 300), dl.Size)
}

func TestAppStreamsFrames(t *testing.T) {
	var out bytes.Buffer
	opts := quietOptions(config.Default())
	opts.Output = &out
	app, err := New(opts)
	require.NoError(t, err)

	root := retained.NewWidget("root").SetDrawable(draw.NewEllipse(render.Black))
	require.NoError(t, app.SetRoot(root))
	require.NoError(t, app.Loop().Settle(5))
	require.NoError(t, app.Close())

	frames, err := wire.ReadAll(&out)
	require.NoError(t, err)
	var lists []*render.DisplayList
	for _, f := range frames {
		for _, op := range f.Transaction.Ops {
			if op.Kind == render.TxSetDisplayList {
				lists = append(lists, op.DisplayList)
			}
		}
	}
	require.Len(t, lists, 1)
	require.Len(t, lists[0].Items, 1)
	assert.NotNil(t, lists[0].Items[0].Info().ComplexClip)
}

func TestAppScrollUsesConfiguredStep(t *testing.T) {
	cfg := config.Default()
	cfg.Input.LineScrollPixels = 20
	app, err := New(quietOptions(cfg))
	require.NoError(t, err)
	defer app.Close()

	root := retained.NewWidget("root")
	view := app.NewScroll("view")
	require.NoError(t, view.Layout().Add(layout.Fixed(view.Layout(), geom.RectFromLTWH(0, 0, 100, 50))...))
	content := retained.NewWidget("content")
	require.NoError(t, content.Layout().Add(layout.Size(content.Layout(), geom.Sz(100, 2000))...))
	root.AddChild(view)
	require.NoError(t, app.SetRoot(root))
	require.NoError(t, app.Tree().AddChild(view, content))
	require.NoError(t, app.Loop().Settle(5))

	app.Loop().HandleInput(retained.PointerMoved{Position: geom.Pt(10, 10)})
	app.Loop().HandleInput(retained.WheelScrolled{Delta: retained.LineDelta(0, -1)})
	require.NoError(t, app.Loop().Settle(5))

	off, ok := retained.ScrollOffset(view)
	require.True(t, ok)
	assert.Equal(t, geom.Pt(0, -20), off)
}

func TestAppRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Loop.TargetFPS = -1
	_, err := New(quietOptions(cfg))
	assert.ErrorContains(t, err, "target_fps")
}

func TestAppRun(t *testing.T) {
	app, err := New(quietOptions(config.Default()))
	require.NoError(t, err)
	defer app.Close()

	assert.Error(t, app.Run(context.Background()), "no root")

	require.NoError(t, app.SetRoot(retained.NewWidget("root").SetDrawable(draw.NewRect(render.White))))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	require.NoError(t, app.Run(ctx))
	assert.NotZero(t, app.Loop().Stats().Ticks)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)
	log.Info("hidden")
	log.Warn("shown", "n", 1)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])

	_, err = NewLogger(config.LogConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
}

func TestAppRunsWorkers(t *testing.T) {
	app, err := New(quietOptions(config.Default()))
	require.NoError(t, err)
	defer app.Close()

	ticks := 0
	root := retained.NewWidget("root").AddHandler(retained.On(func(*retained.Context, retained.FrameTick) error {
		ticks++
		return nil
	}))
	require.NoError(t, app.SetRoot(root))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	app.Go(func(ctx context.Context) error {
		return retained.Every(ctx, 10*time.Millisecond, app.Tree(), retained.Broadcast, func(now time.Time) retained.Event {
			return retained.FrameTick{Time: now}
		})
	})
	require.NoError(t, app.Run(ctx))
	assert.NotZero(t, ticks)
}
