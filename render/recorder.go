package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/agiangrant/strut/geom"
)

var ErrDeinitialized = errors.New("rasterizer deinitialized")

// Recorder is an in-memory Rasterizer. It keeps every transaction and the
// latest display list, and reports frames as ready as soon as they are
// generated. Set Async to signal readiness from a separate goroutine, as a
// GPU backend would.
type Recorder struct {
	Async bool

	mu           sync.Mutex
	notifier     Notifier
	images       ExternalImageHandler
	documents    map[DocumentID]geom.Size
	nextDoc      DocumentID
	transactions []*Transaction
	current      *DisplayList
	pending      *DisplayList
	presented    []DisplayList
	flags        DebugFlags
	closed       bool
	wg           sync.WaitGroup
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{documents: make(map[DocumentID]geom.Size)}
}

func (r *Recorder) SetNotifier(n Notifier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifier = n
}

func (r *Recorder) SetExternalImageHandler(h ExternalImageHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.images = h
}

func (r *Recorder) AddDocument(size geom.Size, _ int32) (DocumentID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, ErrDeinitialized
	}
	r.nextDoc++
	r.documents[r.nextDoc] = size
	return r.nextDoc, nil
}

func (r *Recorder) SendTransaction(doc DocumentID, txn *Transaction) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrDeinitialized
	}
	if _, ok := r.documents[doc]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("unknown document %d", doc)
	}
	r.transactions = append(r.transactions, txn)
	for _, op := range txn.Ops {
		switch op.Kind {
		case TxSetDisplayList:
			r.current = op.DisplayList
		case TxSetWindowParameters:
			r.documents[doc] = op.WindowSize
		case TxGenerateFrame:
			r.pending = r.current
		}
	}
	n := r.notifier
	r.mu.Unlock()

	if n == nil || !txn.GeneratesFrame() {
		return nil
	}
	if r.Async {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			n.NewFrameReady(doc)
		}()
		return nil
	}
	n.NewFrameReady(doc)
	return nil
}

// Update only checks state; Render presents the generated frame.
func (r *Recorder) Update() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrDeinitialized
	}
	return nil
}

func (r *Recorder) Render(geom.Size) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrDeinitialized
	}
	if r.pending != nil {
		r.presented = append(r.presented, *r.pending)
		r.pending = nil
	}
	return nil
}

func (r *Recorder) DebugFlags() DebugFlags {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flags
}

func (r *Recorder) SetDebugFlags(f DebugFlags) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags = f
}

// Deinit waits for outstanding notifications and rejects further calls.
func (r *Recorder) Deinit() error {
	r.wg.Wait()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrDeinitialized
	}
	r.closed = true
	return nil
}

// Transactions returns every transaction received so far.
func (r *Recorder) Transactions() []*Transaction {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Transaction(nil), r.transactions...)
}

// DisplayList returns the most recently submitted display list.
func (r *Recorder) DisplayList() (DisplayList, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return DisplayList{}, false
	}
	return *r.current, true
}

// Presented returns the display lists of every rendered frame.
func (r *Recorder) Presented() []DisplayList {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DisplayList(nil), r.presented...)
}

// DocumentSize returns the device size last set for a document.
func (r *Recorder) DocumentSize(doc DocumentID) (geom.Size, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.documents[doc]
	return s, ok
}

// ImageHandler returns the external image handler installed by the context.
func (r *Recorder) ImageHandler() ExternalImageHandler {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.images
}

// Wait blocks until asynchronous notifications have been delivered.
func (r *Recorder) Wait() {
	r.wg.Wait()
}
