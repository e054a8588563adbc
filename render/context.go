// Package render adapts widget drawing to an external rasterizer.
//
// Widgets draw into a Builder; the Context submits the finished display list
// and resource updates as transactions and tracks the rasterizer's
// frame-ready signal. The rasterizer itself is an injected collaborator.
package render

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/agiangrant/strut/geom"
)

// DebugFlags toggles rasterizer overlays.
type DebugFlags uint32

const (
	DebugProfiler DebugFlags = 1 << iota
	DebugTextureCache
	DebugRenderTargets
	DebugGPUTime
)

// Notifier is called by the rasterizer, possibly from another goroutine, when
// a generated frame is ready to present.
type Notifier interface {
	NewFrameReady(doc DocumentID)
}

// Rasterizer is the external renderer a Context drives.
type Rasterizer interface {
	SetNotifier(n Notifier)
	SetExternalImageHandler(h ExternalImageHandler)
	AddDocument(size geom.Size, layer int32) (DocumentID, error)
	SendTransaction(doc DocumentID, txn *Transaction) error
	// Update picks up the most recent frame; Render presents it.
	Update() error
	Render(size geom.Size) error
	DebugFlags() DebugFlags
	SetDebugFlags(f DebugFlags)
	Deinit() error
}

// Error is a rasterizer failure. There is no degraded rendering mode, so
// callers treat it as fatal.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("render %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Options configures a Context.
type Options struct {
	WindowSize       geom.Size
	DevicePixelRatio float32
	Background       Color
	DebugFlags       DebugFlags
	Resources        *Resources
	Logger           *slog.Logger
}

// DefaultOptions returns the options used for a zero field.
func DefaultOptions() Options {
	return Options{
		WindowSize:       geom.Sz(800, 600),
		DevicePixelRatio: 1,
		Background:       Color{R: 0.8, G: 0.8, B: 0.8, A: 1},
	}
}

// ============================================================================
// Context
// ============================================================================

// Context owns one rasterizer document. All methods except the notifier
// path run on the UI goroutine.
type Context struct {
	r          Rasterizer
	log        *slog.Logger
	resources  *Resources
	document   DocumentID
	pipeline   PipelineID
	epoch      Epoch
	dpr        float32
	background Color

	// Set by the notifier and cleared by Update. Keeping it across the gap
	// between Update and the next wait means a frame that arrives in that gap
	// is not lost.
	frameReady atomic.Bool

	frames uint64
}

type notifier struct {
	ctx *Context
}

func (n notifier) NewFrameReady(DocumentID) {
	n.ctx.frameReady.Store(true)
}

// NewContext creates a document on the rasterizer and sets its root pipeline.
func NewContext(r Rasterizer, opts Options) (*Context, error) {
	def := DefaultOptions()
	if opts.WindowSize.Empty() {
		opts.WindowSize = def.WindowSize
	}
	if opts.DevicePixelRatio <= 0 {
		opts.DevicePixelRatio = def.DevicePixelRatio
	}
	if opts.Background == (Color{}) {
		opts.Background = def.Background
	}
	if opts.Resources == nil {
		opts.Resources = NewResources()
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	c := &Context{
		r:          r,
		log:        log.With("component", "render"),
		resources:  opts.Resources,
		dpr:        opts.DevicePixelRatio,
		background: opts.Background,
	}
	r.SetNotifier(notifier{ctx: c})
	r.SetExternalImageHandler(NewExternalImageHandler(c.resources))
	r.SetDebugFlags(opts.DebugFlags)

	doc, err := r.AddDocument(c.devicePixels(opts.WindowSize), 0)
	if err != nil {
		return nil, &Error{Op: "add document", Err: err}
	}
	c.document = doc

	txn := NewTransaction()
	txn.SetRootPipeline(c.pipeline)
	if err := r.SendTransaction(doc, txn); err != nil {
		return nil, &Error{Op: "set root pipeline", Err: err}
	}
	c.log.Debug("render context created", "document", doc, "dpr", c.dpr)
	return c, nil
}

func (c *Context) Document() DocumentID   { return c.document }
func (c *Context) Pipeline() PipelineID   { return c.pipeline }
func (c *Context) Epoch() Epoch           { return c.epoch }
func (c *Context) Resources() *Resources  { return c.resources }
func (c *Context) Frames() uint64         { return c.frames }
func (c *Context) SetBackground(bg Color) { c.background = bg }

// RenderBuilder starts a frame of the given logical size.
func (c *Context) RenderBuilder(size geom.Size) *Builder {
	return NewBuilder(c.pipeline, size)
}

// SetDisplayList submits a finished builder with its resource updates.
func (c *Context) SetDisplayList(b *Builder, size geom.Size) error {
	resources := b.Resources()
	dl := b.Finalize(c.background)
	dl.Size = size

	txn := NewTransaction()
	txn.SetDisplayList(c.epoch, dl)
	txn.UpdateResources(resources)
	if err := c.r.SendTransaction(c.document, txn); err != nil {
		return &Error{Op: "set display list", Err: err}
	}
	c.log.Debug("display list sent", "epoch", c.epoch, "items", len(dl.Items), "resources", len(resources))
	c.epoch++
	return nil
}

// GenerateFrame asks the rasterizer to build a frame from the current
// display list. Completion is signalled through FrameReady.
func (c *Context) GenerateFrame() error {
	txn := NewTransaction()
	txn.GenerateFrame()
	if err := c.r.SendTransaction(c.document, txn); err != nil {
		return &Error{Op: "generate frame", Err: err}
	}
	return nil
}

// FrameReady reports whether a generated frame is waiting to be presented.
func (c *Context) FrameReady() bool {
	return c.frameReady.Load()
}

// Update presents the ready frame. The flag is cleared first so a frame
// signalled during rendering is seen by the next FrameReady.
func (c *Context) Update(size geom.Size) error {
	c.frameReady.Store(false)
	if err := c.r.Update(); err != nil {
		return &Error{Op: "update", Err: err}
	}
	if err := c.r.Render(c.devicePixels(size)); err != nil {
		return &Error{Op: "render", Err: err}
	}
	c.frames++
	return nil
}

func (c *Context) DebugFlags() DebugFlags { return c.r.DebugFlags() }

// ToggleDebugFlags flips the given overlay flags.
func (c *Context) ToggleDebugFlags(toggle DebugFlags) {
	c.r.SetDebugFlags(c.r.DebugFlags() ^ toggle)
}

// WindowResized tells the rasterizer about a new window size.
func (c *Context) WindowResized(size geom.Size) error {
	device := c.devicePixels(size)
	txn := NewTransaction()
	txn.SetWindowParameters(device, geom.Rect{Size: device}, c.dpr)
	if err := c.r.SendTransaction(c.document, txn); err != nil {
		return &Error{Op: "window resized", Err: err}
	}
	return nil
}

// Deinit shuts the rasterizer down. The Context must not be used afterwards.
func (c *Context) Deinit() error {
	if err := c.r.Deinit(); err != nil {
		return &Error{Op: "deinit", Err: err}
	}
	return nil
}

func (c *Context) devicePixels(s geom.Size) geom.Size {
	return geom.Sz(s.Width*c.dpr, s.Height*c.dpr)
}
