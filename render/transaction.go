package render

import (
	"fmt"

	"github.com/agiangrant/strut/geom"
)

// DocumentID names a rasterizer document (one per window).
type DocumentID uint32

// PipelineID names the display list pipeline of a document.
type PipelineID struct {
	Namespace, Index uint32
}

// Epoch numbers display lists so the rasterizer can discard stale ones.
type Epoch uint32

// TxOpKind is the kind of transaction operation. The values are part of the
// wire format.
type TxOpKind uint16

const (
	TxSetRootPipeline     TxOpKind = 0x0001
	TxSetDisplayList      TxOpKind = 0x0002
	TxUpdateResources     TxOpKind = 0x0003
	TxGenerateFrame       TxOpKind = 0x0004
	TxSetWindowParameters TxOpKind = 0x0005
)

func (k TxOpKind) String() string {
	switch k {
	case TxSetRootPipeline:
		return "set-root-pipeline"
	case TxSetDisplayList:
		return "set-display-list"
	case TxUpdateResources:
		return "update-resources"
	case TxGenerateFrame:
		return "generate-frame"
	case TxSetWindowParameters:
		return "set-window-parameters"
	}
	return fmt.Sprintf("TxOpKind(%#04x)", uint16(k))
}

// TxOp is a single operation. Only the fields of its kind are set.
type TxOp struct {
	Kind TxOpKind

	Pipeline    PipelineID
	Epoch       Epoch
	DisplayList *DisplayList

	Resources []ResourceUpdate

	WindowSize       geom.Size
	Viewport         geom.Rect
	DevicePixelRatio float32
}

// Transaction batches operations that the rasterizer applies atomically.
type Transaction struct {
	Ops []TxOp
}

func NewTransaction() *Transaction { return &Transaction{} }

func (t *Transaction) SetRootPipeline(p PipelineID) {
	t.Ops = append(t.Ops, TxOp{Kind: TxSetRootPipeline, Pipeline: p})
}

func (t *Transaction) SetDisplayList(epoch Epoch, dl DisplayList) {
	t.Ops = append(t.Ops, TxOp{Kind: TxSetDisplayList, Pipeline: dl.Pipeline, Epoch: epoch, DisplayList: &dl})
}

// UpdateResources is a no-op for an empty update list.
func (t *Transaction) UpdateResources(updates []ResourceUpdate) {
	if len(updates) == 0 {
		return
	}
	t.Ops = append(t.Ops, TxOp{Kind: TxUpdateResources, Resources: updates})
}

func (t *Transaction) GenerateFrame() {
	t.Ops = append(t.Ops, TxOp{Kind: TxGenerateFrame})
}

func (t *Transaction) SetWindowParameters(size geom.Size, viewport geom.Rect, dpr float32) {
	t.Ops = append(t.Ops, TxOp{Kind: TxSetWindowParameters, WindowSize: size, Viewport: viewport, DevicePixelRatio: dpr})
}

// GeneratesFrame reports whether applying the transaction produces a frame.
func (t *Transaction) GeneratesFrame() bool {
	for _, op := range t.Ops {
		if op.Kind == TxGenerateFrame {
			return true
		}
	}
	return false
}
