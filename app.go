// Package strut is a retained-mode widget toolkit. Widgets are laid out by a
// constraint solver, receive events through a queued dispatcher and draw
// into display lists that an external rasterizer presents.
//
// An App wires the pieces together from a config.Config:
//
//	app, err := strut.New(strut.Options{Config: config.Default()})
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//	if err := app.SetRoot(root); err != nil {
//		return err
//	}
//	return app.Run(ctx)
package strut

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/agiangrant/strut/config"
	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/internal/wire"
	"github.com/agiangrant/strut/layout"
	"github.com/agiangrant/strut/render"
	"github.com/agiangrant/strut/retained"
)

// Options configures New.
type Options struct {
	Config config.Config

	// ConfigPath is watched by Run when set. Changes are applied on the UI
	// goroutine and broadcast to the widgets as retained.ConfigChanged.
	ConfigPath string

	// Rasterizer presents the frames. When nil, frames are encoded to Output
	// if it is set and kept in a render.Recorder otherwise.
	Rasterizer render.Rasterizer
	Output     io.Writer

	// Logger overrides the logger built from Config.Log. LogOutput is the
	// destination of the built logger.
	Logger    *slog.Logger
	LogOutput io.Writer
}

// App owns a tree, its frame loop and the render context.
type App struct {
	cfg        config.Config
	configPath string
	log        *slog.Logger
	raster     render.Rasterizer
	render     *render.Context
	tree       *retained.Tree
	loop       *retained.Loop
	workers    []func(ctx context.Context) error
}

// New creates an app from opts. The configuration is validated first.
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log := opts.Logger
	if log == nil {
		var err error
		if log, err = NewLogger(cfg.Log, opts.LogOutput); err != nil {
			return nil, err
		}
	}

	raster := opts.Rasterizer
	if raster == nil {
		if opts.Output != nil {
			raster = wire.NewStreamRasterizer(opts.Output, log)
		} else {
			raster = render.NewRecorder()
		}
	}

	// Validate has checked every conversion below.
	bg, _ := cfg.Render.BackgroundColor()
	flags, _ := cfg.Render.DebugFlags()
	strength, _ := cfg.Layout.Strength()

	size := geom.Sz(cfg.Window.Width, cfg.Window.Height)
	rc, err := render.NewContext(raster, render.Options{
		WindowSize:       size,
		DevicePixelRatio: cfg.Window.DevicePixelRatio,
		Background:       bg,
		DebugFlags:       flags,
		Logger:           log,
	})
	if err != nil {
		return nil, err
	}

	tree := retained.NewTree(retained.TreeConfig{
		Layout: layout.Config{EditStrength: strength, Logger: log},
		Logger: log,
	})
	loop := retained.NewLoop(tree, rc, retained.LoopConfig{
		TargetFPS:  cfg.Loop.TargetFPS,
		MaxDrain:   cfg.Loop.MaxDrain,
		WindowSize: size,
		FitRoot:    true,
		Logger:     log,
	})

	log.Info("app created", "title", cfg.Window.Title, "size", size, "edit_strength", strength)
	return &App{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		log:        log,
		raster:     raster,
		render:     rc,
		tree:       tree,
		loop:       loop,
	}, nil
}

func (a *App) Config() config.Config          { return a.cfg }
func (a *App) Logger() *slog.Logger           { return a.log }
func (a *App) Tree() *retained.Tree           { return a.tree }
func (a *App) Loop() *retained.Loop           { return a.loop }
func (a *App) Render() *render.Context        { return a.render }
func (a *App) Rasterizer() render.Rasterizer { return a.raster }

// SetRoot attaches root. The root also receives the handler that applies
// configuration changes, so it must not be attached elsewhere.
func (a *App) SetRoot(root *retained.Widget) error {
	root.AddHandler(retained.On(func(ctx *retained.Context, ev retained.ConfigChanged) error {
		cfg, ok := ev.Value.(config.Config)
		if !ok {
			return nil
		}
		if err := a.apply(cfg); err != nil {
			return err
		}
		// the background is part of every display list
		ctx.MarkDirty()
		return nil
	}))
	return a.tree.SetRoot(root)
}

// NewScroll creates a scroll container using the configured wheel step.
func (a *App) NewScroll(name string) *retained.Widget {
	return retained.NewScroll(name, retained.ScrollConfig{LineScrollPixels: a.cfg.Input.LineScrollPixels})
}

// Reload queues cfg for the UI goroutine. It is safe to call from any
// goroutine.
func (a *App) Reload(cfg config.Config) {
	a.tree.Push(retained.Broadcast, retained.ConfigChanged{Value: cfg})
}

// apply takes over the settings that can change while running. Loop rate,
// edit strength and logging need a new App.
func (a *App) apply(cfg config.Config) error {
	bg, err := cfg.Render.BackgroundColor()
	if err != nil {
		return err
	}
	flags, err := cfg.Render.DebugFlags()
	if err != nil {
		return err
	}
	a.render.SetBackground(bg)
	if toggle := a.render.DebugFlags() ^ flags; toggle != 0 {
		a.render.ToggleDebugFlags(toggle)
	}
	if err := a.loop.Resize(geom.Sz(cfg.Window.Width, cfg.Window.Height)); err != nil {
		return err
	}
	if cfg.Loop != a.cfg.Loop || cfg.Layout != a.cfg.Layout || cfg.Log != a.cfg.Log {
		a.log.Warn("config change needs a restart", "sections", "loop, layout, log")
	}
	a.cfg = cfg
	a.log.Info("config applied", "size", a.loop.WindowSize(), "background", bg)
	return nil
}

// Go registers fn to run alongside the loop in Run, typically an event
// producer such as retained.Every. fn must return when its context is done;
// a non-nil error stops the app.
func (a *App) Go(fn func(ctx context.Context) error) {
	a.workers = append(a.workers, fn)
}

// Run drives the loop until ctx is done or a tick fails. When the app has a
// config path, the file is watched alongside the loop.
func (a *App) Run(ctx context.Context) error {
	if a.tree.Root() == nil {
		return errors.New("strut: run without a root widget")
	}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return a.loop.Run(ctx)
	})
	if a.configPath != "" {
		g.Go(func() error {
			return config.Watch(ctx, a.configPath, a.log, a.Reload)
		})
	}
	for _, fn := range a.workers {
		g.Go(func() error {
			return fn(ctx)
		})
	}
	return g.Wait()
}

// Close shuts the rasterizer down.
func (a *App) Close() error {
	return a.render.Deinit()
}
