package render

import (
	"github.com/agiangrant/strut/geom"
)

// ============================================================================
// Primitives
// ============================================================================

// ClipMode selects whether a complex clip keeps the inside or the outside
// of its rounded rectangle.
type ClipMode uint8

const (
	ClipInside ClipMode = iota
	ClipOutside
)

// ComplexClip is a rounded-rectangle clip region.
type ComplexClip struct {
	Rect   geom.Rect
	Radius geom.Size
	Mode   ClipMode
}

// PrimitiveInfo places a display item: the rectangle it covers and the
// rectangle it is clipped to, optionally refined by a rounded clip.
type PrimitiveInfo struct {
	Rect        geom.Rect
	Clip        geom.Rect
	ComplexClip *ComplexClip
}

// NewPrimitiveInfo uses the rectangle as its own clip.
func NewPrimitiveInfo(r geom.Rect) PrimitiveInfo {
	return PrimitiveInfo{Rect: r, Clip: r}
}

// WithClipRect sets an explicit clip rectangle.
func WithClipRect(r, clip geom.Rect) PrimitiveInfo {
	return PrimitiveInfo{Rect: r, Clip: clip}
}

// BorderWidths gives the width of each border side.
type BorderWidths struct {
	Left, Top, Right, Bottom float32
}

// UniformWidths uses w on every side.
func UniformWidths(w float32) BorderWidths {
	return BorderWidths{Left: w, Top: w, Right: w, Bottom: w}
}

// BorderStyle is the line style of a border.
type BorderStyle uint8

const (
	BorderSolid BorderStyle = iota
	BorderDashed
	BorderDotted
)

// BorderSide is the color and style shared by all four sides.
type BorderSide struct {
	Color Color
	Style BorderStyle
}

// ============================================================================
// Display items
// ============================================================================

// ItemKind tags the concrete type of an Item.
type ItemKind uint8

const (
	KindRect ItemKind = iota + 1
	KindBorder
	KindClip
	KindImage
)

func (k ItemKind) String() string {
	switch k {
	case KindRect:
		return "rect"
	case KindBorder:
		return "border"
	case KindClip:
		return "clip"
	case KindImage:
		return "image"
	}
	return "unknown"
}

// Item is one display-list entry.
type Item interface {
	Kind() ItemKind
	Info() PrimitiveInfo
}

// RectItem fills a rectangle with a color.
type RectItem struct {
	PrimitiveInfo
	Color Color
}

// BorderItem strokes the edges of a rectangle.
type BorderItem struct {
	PrimitiveInfo
	Widths BorderWidths
	Side   BorderSide
	Radius geom.Size
}

// ClipItem pushes a clip region, or pops the innermost one when Pop is set.
type ClipItem struct {
	PrimitiveInfo
	Pop bool
}

// ImageItem draws a registered image.
type ImageItem struct {
	PrimitiveInfo
	Key ImageKey
}

func (i RectItem) Kind() ItemKind   { return KindRect }
func (i BorderItem) Kind() ItemKind { return KindBorder }
func (i ClipItem) Kind() ItemKind   { return KindClip }
func (i ImageItem) Kind() ItemKind  { return KindImage }

func (i RectItem) Info() PrimitiveInfo   { return i.PrimitiveInfo }
func (i BorderItem) Info() PrimitiveInfo { return i.PrimitiveInfo }
func (i ClipItem) Info() PrimitiveInfo   { return i.PrimitiveInfo }
func (i ImageItem) Info() PrimitiveInfo  { return i.PrimitiveInfo }

// DisplayList is a finalized frame description.
type DisplayList struct {
	Pipeline   PipelineID
	Size       geom.Size
	Background Color
	Items      []Item
}

// ============================================================================
// Builder
// ============================================================================

// Builder accumulates the display items and resource updates of one frame.
// It belongs to the render pass that created it and is discarded once its
// display list has been submitted.
type Builder struct {
	pipeline  PipelineID
	size      geom.Size
	items     []Item
	resources []ResourceUpdate
}

// NewBuilder creates an empty builder for a viewport size.
func NewBuilder(pipeline PipelineID, size geom.Size) *Builder {
	return &Builder{pipeline: pipeline, size: size}
}

func (b *Builder) Pipeline() PipelineID { return b.pipeline }
func (b *Builder) Size() geom.Size      { return b.size }
func (b *Builder) Len() int             { return len(b.items) }

// Items returns the items pushed so far.
func (b *Builder) Items() []Item { return b.items }

// Resources returns the resource updates queued so far.
func (b *Builder) Resources() []ResourceUpdate { return b.resources }

func (b *Builder) PushRect(info PrimitiveInfo, c Color) {
	b.items = append(b.items, RectItem{PrimitiveInfo: info, Color: c})
}

func (b *Builder) PushBorder(info PrimitiveInfo, widths BorderWidths, side BorderSide) {
	b.items = append(b.items, BorderItem{PrimitiveInfo: info, Widths: widths, Side: side})
}

// PushRoundedBorder strokes a border whose corners have the given radii.
func (b *Builder) PushRoundedBorder(info PrimitiveInfo, widths BorderWidths, side BorderSide, radius geom.Size) {
	b.items = append(b.items, BorderItem{PrimitiveInfo: info, Widths: widths, Side: side, Radius: radius})
}

func (b *Builder) PushImage(info PrimitiveInfo, key ImageKey) {
	b.items = append(b.items, ImageItem{PrimitiveInfo: info, Key: key})
}

func (b *Builder) PushClip(info PrimitiveInfo) {
	b.items = append(b.items, ClipItem{PrimitiveInfo: info})
}

func (b *Builder) PopClip() {
	b.items = append(b.items, ClipItem{Pop: true})
}

// Append copies items recorded by another builder, typically a widget's
// cached output from an earlier frame.
func (b *Builder) Append(items ...Item) {
	b.items = append(b.items, items...)
}

// AddResources queues resource updates to be sent with the display list.
func (b *Builder) AddResources(updates ...ResourceUpdate) {
	b.resources = append(b.resources, updates...)
}

// Finalize turns the items into a display list. The builder must not be
// used afterwards.
func (b *Builder) Finalize(background Color) DisplayList {
	dl := DisplayList{Pipeline: b.pipeline, Size: b.size, Background: background, Items: b.items}
	b.items = nil
	return dl
}

// ============================================================================
// Helpers
// ============================================================================

// DrawRectOutline strokes a one pixel solid outline around r.
func DrawRectOutline(b *Builder, r geom.Rect, c Color) {
	b.PushBorder(NewPrimitiveInfo(r), UniformWidths(1), BorderSide{Color: c, Style: BorderSolid})
}

// DrawHorizontalLine draws a one pixel line at baseline from start to end.
func DrawHorizontalLine(b *Builder, baseline, start, end float32, c Color) {
	DrawRectOutline(b, geom.RectFromLTWH(start, baseline, end-start, 0), c)
}
