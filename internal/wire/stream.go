package wire

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/agiangrant/strut/geom"
	"github.com/agiangrant/strut/render"
)

var ErrClosed = errors.New("wire: stream closed")

// StreamRasterizer implements render.Rasterizer by encoding every
// transaction onto a writer. The far end owns rasterization, so a generated
// frame is reported ready once its transaction is flushed.
type StreamRasterizer struct {
	mu       sync.Mutex
	w        *bufio.Writer
	closer   io.Closer
	log      *slog.Logger
	notifier render.Notifier
	images   render.ExternalImageHandler
	docs     map[render.DocumentID]geom.Size
	nextDoc  render.DocumentID
	flags    render.DebugFlags
	frames   uint64
	closed   bool
}

// NewStreamRasterizer writes to w. If w is an io.Closer it is closed by
// Deinit.
func NewStreamRasterizer(w io.Writer, log *slog.Logger) *StreamRasterizer {
	if log == nil {
		log = slog.Default()
	}
	s := &StreamRasterizer{
		w:    bufio.NewWriter(w),
		log:  log.With("component", "wire"),
		docs: make(map[render.DocumentID]geom.Size),
	}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

func (s *StreamRasterizer) SetNotifier(n render.Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifier = n
}

func (s *StreamRasterizer) SetExternalImageHandler(h render.ExternalImageHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = h
}

func (s *StreamRasterizer) AddDocument(size geom.Size, _ int32) (render.DocumentID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	s.nextDoc++
	s.docs[s.nextDoc] = size
	return s.nextDoc, nil
}

func (s *StreamRasterizer) SendTransaction(doc render.DocumentID, txn *render.Transaction) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if _, ok := s.docs[doc]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("wire: unknown document %d", doc)
	}
	if err := Encode(s.w, doc, txn); err != nil {
		s.mu.Unlock()
		return err
	}
	generates := txn.GeneratesFrame()
	if generates {
		if err := s.w.Flush(); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to flush frame: %w", err)
		}
	}
	n := s.notifier
	s.mu.Unlock()

	if generates && n != nil {
		n.NewFrameReady(doc)
	}
	return nil
}

func (s *StreamRasterizer) Update() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *StreamRasterizer) Render(size geom.Size) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.frames++
	s.log.Debug("frame presented", "frame", s.frames, "size", size)
	return nil
}

func (s *StreamRasterizer) DebugFlags() render.DebugFlags {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flags
}

func (s *StreamRasterizer) SetDebugFlags(f render.DebugFlags) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags = f
}

// Frames returns the number of frames presented.
func (s *StreamRasterizer) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Deinit flushes buffered transactions and closes the underlying writer.
func (s *StreamRasterizer) Deinit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	err := s.w.Flush()
	if s.closer != nil {
		err = errors.Join(err, s.closer.Close())
	}
	return err
}

// ReadAll decodes frames from r until EOF.
func ReadAll(r io.Reader) ([]Frame, error) {
	br := bufio.NewReader(r)
	var frames []Frame
	for {
		f, err := Decode(br)
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, f)
	}
}
