// Package wire encodes render transactions in a compact little-endian binary
// format for rasterizers that live in another process.
//
// A frame is a header followed by the transaction's operations:
//
//	magic   [4]byte "STRT"
//	version uint16
//	doc     uint32
//	ops     uint32
//	op*     kind uint16, length uint32, payload [length]byte
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/render"
)

// Version is the format version written by Encode.
const Version uint16 = 1

var magic = [4]byte{'S', 'T', 'R', 'T'}

const headerSize = 4 + 2 + 4 + 4

var (
	ErrBadMagic    = errors.New("wire: bad magic")
	ErrVersion     = errors.New("wire: unsupported version")
	ErrTruncated   = errors.New("wire: truncated frame")
	ErrUnknownOp   = errors.New("wire: unknown operation")
	ErrUnknownItem = errors.New("wire: unknown display item")
)

// maxPayload bounds a single operation so a corrupt length cannot allocate
// unbounded memory.
const maxPayload = 64 << 20

// Frame is one decoded transaction.
type Frame struct {
	Document    render.DocumentID
	Transaction *render.Transaction
}

// Encode writes one transaction for a document.
func Encode(w io.Writer, doc render.DocumentID, txn *render.Transaction) error {
	var e encoder
	e.buf = append(e.buf, magic[:]...)
	e.u16(Version)
	e.u32(uint32(doc))
	e.u32(uint32(len(txn.Ops)))
	for _, op := range txn.Ops {
		var p encoder
		if err := p.op(op); err != nil {
			return err
		}
		e.u16(uint16(op.Kind))
		e.u32(uint32(len(p.buf)))
		e.buf = append(e.buf, p.buf...)
	}
	if _, err := w.Write(e.buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}

// Decode reads one frame. It returns io.EOF when r is exhausted at a frame
// boundary.
func Decode(r io.Reader) (Frame, error) {
	var hdr [headerSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return Frame{}, ErrTruncated
		}
		return Frame{}, err
	}
	if [4]byte(hdr[:4]) != magic {
		return Frame{}, ErrBadMagic
	}
	if v := binary.LittleEndian.Uint16(hdr[4:]); v != Version {
		return Frame{}, fmt.Errorf("%w: %d", ErrVersion, v)
	}
	doc := render.DocumentID(binary.LittleEndian.Uint32(hdr[6:]))
	count := binary.LittleEndian.Uint32(hdr[10:])

	txn := render.NewTransaction()
	var opHdr [6]byte
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, opHdr[:]); err != nil {
			return Frame{}, ErrTruncated
		}
		kind := render.TxOpKind(binary.LittleEndian.Uint16(opHdr[:]))
		n := binary.LittleEndian.Uint32(opHdr[2:])
		if n > maxPayload {
			return Frame{}, fmt.Errorf("%w: %s payload of %d bytes", ErrTruncated, kind, n)
		}
		payload := make([]byte, n)
		if _, err := io.ReadFull(r, payload); err != nil {
			return Frame{}, ErrTruncated
		}
		d := decoder{buf: payload}
		op, err := d.op(kind)
		if err != nil {
			return Frame{}, err
		}
		txn.Ops = append(txn.Ops, op)
	}
	return Frame{Document: doc, Transaction: txn}, nil
}

// ============================================================================
// Encoder
// ============================================================================

type encoder struct {
	buf []byte
}

func (e *encoder) u8(v uint8)    { e.buf = append(e.buf, v) }
func (e *encoder) u16(v uint16)  { e.buf = binary.LittleEndian.AppendUint16(e.buf, v) }
func (e *encoder) u32(v uint32)  { e.buf = binary.LittleEndian.AppendUint32(e.buf, v) }
func (e *encoder) u64(v uint64)  { e.buf = binary.LittleEndian.AppendUint64(e.buf, v) }
func (e *encoder) f32(v float32) { e.u32(math.Float32bits(v)) }

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) bytes(b []byte) {
	e.u32(uint32(len(b)))
	e.buf = append(e.buf, b...)
}

func (e *encoder) size(s geom.Size) {
	e.f32(s.Width)
	e.f32(s.Height)
}

func (e *encoder) rect(r geom.Rect) {
	e.f32(r.Origin.X)
	e.f32(r.Origin.Y)
	e.size(r.Size)
}

func (e *encoder) color(c render.Color) {
	e.f32(c.R)
	e.f32(c.G)
	e.f32(c.B)
	e.f32(c.A)
}

func (e *encoder) pipeline(p render.PipelineID) {
	e.u32(p.Namespace)
	e.u32(p.Index)
}

func (e *encoder) info(info render.PrimitiveInfo) {
	e.rect(info.Rect)
	e.rect(info.Clip)
	e.bool(info.ComplexClip != nil)
	if info.ComplexClip != nil {
		e.rect(info.ComplexClip.Rect)
		e.size(info.ComplexClip.Radius)
		e.u8(uint8(info.ComplexClip.Mode))
	}
}

func (e *encoder) op(op render.TxOp) error {
	switch op.Kind {
	case render.TxSetRootPipeline:
		e.pipeline(op.Pipeline)
	case render.TxSetDisplayList:
		dl := op.DisplayList
		if dl == nil {
			dl = &render.DisplayList{Pipeline: op.Pipeline}
		}
		e.pipeline(dl.Pipeline)
		e.u32(uint32(op.Epoch))
		e.size(dl.Size)
		e.color(dl.Background)
		e.u32(uint32(len(dl.Items)))
		for _, item := range dl.Items {
			if err := e.item(item); err != nil {
				return err
			}
		}
	case render.TxUpdateResources:
		e.u32(uint32(len(op.Resources)))
		for _, u := range op.Resources {
			e.u8(uint8(u.Op))
			e.u64(uint64(u.Key))
			e.u32(uint32(u.Descriptor.Width))
			e.u32(uint32(u.Descriptor.Height))
			e.u8(uint8(u.Descriptor.Format))
			e.u64(u.Descriptor.Texture)
			e.bytes(u.Data)
		}
	case render.TxGenerateFrame:
	case render.TxSetWindowParameters:
		e.size(op.WindowSize)
		e.rect(op.Viewport)
		e.f32(op.DevicePixelRatio)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOp, op.Kind)
	}
	return nil
}

func (e *encoder) item(item render.Item) error {
	e.u8(uint8(item.Kind()))
	e.info(item.Info())
	switch it := item.(type) {
	case render.RectItem:
		e.color(it.Color)
	case render.BorderItem:
		e.f32(it.Widths.Left)
		e.f32(it.Widths.Top)
		e.f32(it.Widths.Right)
		e.f32(it.Widths.Bottom)
		e.color(it.Side.Color)
		e.u8(uint8(it.Side.Style))
		e.size(it.Radius)
	case render.ClipItem:
		e.bool(it.Pop)
	case render.ImageItem:
		e.u64(uint64(it.Key))
	default:
		return fmt.Errorf("%w: %T", ErrUnknownItem, item)
	}
	return nil
}

// ============================================================================
// Decoder
// ============================================================================

// decoder reads from a payload. The first short read sets err and every
// later read returns zero values.
type decoder struct {
	buf []byte
	off int
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || len(d.buf)-d.off < n {
		d.err = ErrTruncated
		return nil
	}
	b := d.buf[d.off : d.off+n]
	d.off += n
	return b
}

func (d *decoder) u8() uint8 {
	b := d.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (d *decoder) u16() uint16 {
	b := d.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (d *decoder) u32() uint32 {
	b := d.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (d *decoder) u64() uint64 {
	b := d.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (d *decoder) f32() float32 { return math.Float32frombits(d.u32()) }
func (d *decoder) bool() bool   { return d.u8() != 0 }

func (d *decoder) bytes() []byte {
	n := d.u32()
	b := d.take(int(n))
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}

func (d *decoder) size() geom.Size {
	w := d.f32()
	h := d.f32()
	return geom.Sz(w, h)
}

func (d *decoder) rect() geom.Rect {
	x := d.f32()
	y := d.f32()
	s := d.size()
	return geom.Rect{Origin: geom.Pt(x, y), Size: s}
}

func (d *decoder) color() render.Color {
	return render.Color{R: d.f32(), G: d.f32(), B: d.f32(), A: d.f32()}
}

func (d *decoder) pipeline() render.PipelineID {
	return render.PipelineID{Namespace: d.u32(), Index: d.u32()}
}

func (d *decoder) info() render.PrimitiveInfo {
	info := render.PrimitiveInfo{Rect: d.rect(), Clip: d.rect()}
	if d.bool() {
		info.ComplexClip = &render.ComplexClip{Rect: d.rect(), Radius: d.size(), Mode: render.ClipMode(d.u8())}
	}
	return info
}

func (d *decoder) op(kind render.TxOpKind) (render.TxOp, error) {
	op := render.TxOp{Kind: kind}
	switch kind {
	case render.TxSetRootPipeline:
		op.Pipeline = d.pipeline()
	case render.TxSetDisplayList:
		dl := &render.DisplayList{Pipeline: d.pipeline()}
		op.Pipeline = dl.Pipeline
		op.Epoch = render.Epoch(d.u32())
		dl.Size = d.size()
		dl.Background = d.color()
		n := d.u32()
		for i := uint32(0); i < n && d.err == nil; i++ {
			item, err := d.item()
			if err != nil {
				return op, err
			}
			dl.Items = append(dl.Items, item)
		}
		op.DisplayList = dl
	case render.TxUpdateResources:
		n := d.u32()
		for i := uint32(0); i < n && d.err == nil; i++ {
			u := render.ResourceUpdate{Op: render.ResourceOp(d.u8()), Key: render.ImageKey(d.u64())}
			u.Descriptor.Width = int32(d.u32())
			u.Descriptor.Height = int32(d.u32())
			u.Descriptor.Format = render.ImageFormat(d.u8())
			u.Descriptor.Texture = d.u64()
			u.Data = d.bytes()
			op.Resources = append(op.Resources, u)
		}
	case render.TxGenerateFrame:
	case render.TxSetWindowParameters:
		op.WindowSize = d.size()
		op.Viewport = d.rect()
		op.DevicePixelRatio = d.f32()
	default:
		return op, fmt.Errorf("%w: %s", ErrUnknownOp, kind)
	}
	if d.err != nil {
		return op, fmt.Errorf("%s: %w", kind, d.err)
	}
	return op, nil
}

func (d *decoder) item() (render.Item, error) {
	kind := render.ItemKind(d.u8())
	info := d.info()
	switch kind {
	case render.KindRect:
		return render.RectItem{PrimitiveInfo: info, Color: d.color()}, nil
	case render.KindBorder:
		it := render.BorderItem{PrimitiveInfo: info}
		it.Widths = render.BorderWidths{Left: d.f32(), Top: d.f32(), Right: d.f32(), Bottom: d.f32()}
		it.Side = render.BorderSide{Color: d.color(), Style: render.BorderStyle(d.u8())}
		it.Radius = d.size()
		return it, nil
	case render.KindClip:
		return render.ClipItem{PrimitiveInfo: info, Pop: d.bool()}, nil
	case render.KindImage:
		return render.ImageItem{PrimitiveInfo: info, Key: render.ImageKey(d.u64())}, nil
	}
	if d.err != nil {
		return nil, d.err
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownItem, kind)
}
