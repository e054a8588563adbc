package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/agiangrant/strut/geom"
)

var (
	ErrResourcesClosed = errors.New("resources closed")
	ErrUnknownImage    = errors.New("unknown image")
)

// ImageKey names an image registered with the rasterizer.
type ImageKey uint64

// ImageFormat is the pixel layout of image data.
type ImageFormat uint8

const (
	FormatBGRA8 ImageFormat = iota
	FormatRGBA8
	FormatR8
)

// ImageDescriptor describes an image. Texture is non-zero for images backed
// by an external GPU texture instead of uploaded bytes.
type ImageDescriptor struct {
	Width, Height int32
	Format        ImageFormat
	Texture       uint64
}

// ResourceOp is the kind of a resource update.
type ResourceOp uint8

const (
	ResourceAddImage ResourceOp = iota + 1
	ResourceUpdateImage
	ResourceDeleteImage
)

// ResourceUpdate is sent to the rasterizer alongside a display list.
type ResourceUpdate struct {
	Op         ResourceOp
	Key        ImageKey
	Descriptor ImageDescriptor
	Data       []byte
}

// Resources is the process-wide registry of images known to the rasterizer.
// Create it once, pass it to NewContext, and Close it on shutdown. It is safe
// for concurrent use.
type Resources struct {
	mu       sync.Mutex
	next     ImageKey
	images   map[ImageKey]ImageDescriptor
	textures map[uint64]ImageDescriptor
	closed   bool
}

// NewResources creates an empty registry.
func NewResources() *Resources {
	return &Resources{
		images:   make(map[ImageKey]ImageDescriptor),
		textures: make(map[uint64]ImageDescriptor),
	}
}

// AddImage registers an image and returns its key with the update that
// uploads it.
func (r *Resources) AddImage(desc ImageDescriptor, data []byte) (ImageKey, ResourceUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, ResourceUpdate{}, ErrResourcesClosed
	}
	r.next++
	key := r.next
	r.images[key] = desc
	if desc.Texture != 0 {
		r.textures[desc.Texture] = desc
	}
	return key, ResourceUpdate{Op: ResourceAddImage, Key: key, Descriptor: desc, Data: data}, nil
}

// UpdateImage replaces an image's pixels.
func (r *Resources) UpdateImage(key ImageKey, desc ImageDescriptor, data []byte) (ResourceUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ResourceUpdate{}, ErrResourcesClosed
	}
	if _, ok := r.images[key]; !ok {
		return ResourceUpdate{}, fmt.Errorf("update %d: %w", key, ErrUnknownImage)
	}
	r.images[key] = desc
	return ResourceUpdate{Op: ResourceUpdateImage, Key: key, Descriptor: desc, Data: data}, nil
}

// DeleteImage forgets an image and returns the update that frees it.
func (r *Resources) DeleteImage(key ImageKey) (ResourceUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	desc, ok := r.images[key]
	if !ok {
		return ResourceUpdate{}, fmt.Errorf("delete %d: %w", key, ErrUnknownImage)
	}
	delete(r.images, key)
	if desc.Texture != 0 {
		delete(r.textures, desc.Texture)
	}
	return ResourceUpdate{Op: ResourceDeleteImage, Key: key}, nil
}

// Image returns the descriptor of a registered image.
func (r *Resources) Image(key ImageKey) (ImageDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.images[key]
	return d, ok
}

// Texture returns the descriptor of an image backed by an external texture.
func (r *Resources) Texture(id uint64) (ImageDescriptor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.textures[id]
	return d, ok
}

// Len returns the number of registered images.
func (r *Resources) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.images)
}

// Close drops every registration. Later additions fail.
func (r *Resources) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	clear(r.images)
	clear(r.textures)
}

// ============================================================================
// External images
// ============================================================================

// ExternalImage tells the rasterizer which texture to sample and where.
type ExternalImage struct {
	UV0, UV1 geom.Point
	Texture  uint64
}

// ExternalImageHandler resolves external image ids to textures while the
// rasterizer draws.
type ExternalImageHandler interface {
	Lock(id uint64) (ExternalImage, error)
	Unlock(id uint64)
}

type textureHandler struct {
	res *Resources
}

// NewExternalImageHandler resolves ids through the registry's textures. No
// locking is done since rendering happens on the UI goroutine.
func NewExternalImageHandler(res *Resources) ExternalImageHandler {
	return textureHandler{res: res}
}

func (h textureHandler) Lock(id uint64) (ExternalImage, error) {
	desc, ok := h.res.Texture(id)
	if !ok {
		return ExternalImage{}, fmt.Errorf("texture %d: %w", id, ErrUnknownImage)
	}
	return ExternalImage{
		UV1:     geom.Pt(float32(desc.Width), float32(desc.Height)),
		Texture: id,
	}, nil
}

func (h textureHandler) Unlock(uint64) {}
