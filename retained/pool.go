package retained

import "sync"

// ============================================================================
// Handler Slice Pooling
// ============================================================================
//
// Dispatch copies a widget's handler list before invoking it so handlers may
// register more handlers on the same widget. The copies are pooled because
// pointer moves produce several deliveries per input event.
//
// Usage:
//   handlers := acquireHandlerSlice(len(w.handlers))
//   copy(handlers, w.handlers)
//   ... use handlers ...
//   releaseHandlerSlice(handlers)

var handlerSlicePool = sync.Pool{
	New: func() any {
		return make([]Handler, 0, 8)
	},
}

// acquireHandlerSlice returns a slice with len == n.
func acquireHandlerSlice(n int) []Handler {
	slice := handlerSlicePool.Get().([]Handler)
	if cap(slice) < n {
		handlerSlicePool.Put(slice[:0])
		return make([]Handler, n, n*2)
	}
	return slice[:n]
}

func releaseHandlerSlice(slice []Handler) {
	if slice == nil {
		return
	}
	for i := range slice {
		slice[i] = nil
	}
	if cap(slice) <= 64 {
		handlerSlicePool.Put(slice[:0])
	}
}

// ============================================================================
// Hover Chain Pooling
// ============================================================================

// hoverChainPool pools slices used for hit test chains and hover tracking.
var hoverChainPool = sync.Pool{
	New: func() any {
		return make([]*Widget, 0, 32)
	},
}

// acquireHoverChain returns an empty slice for building a hit chain.
func acquireHoverChain() []*Widget {
	return hoverChainPool.Get().([]*Widget)[:0]
}

// releaseHoverChain returns a hover chain slice to the pool.
func releaseHoverChain(slice []*Widget) {
	if slice == nil {
		return
	}
	for i := range slice {
		slice[i] = nil
	}
	if cap(slice) <= 64 {
		hoverChainPool.Put(slice[:0])
	}
}

// ============================================================================
// Map Pooling for Hover Set Comparisons
// ============================================================================

var hoverSetPool = sync.Pool{
	New: func() any {
		return make(map[WidgetID]bool, 32)
	},
}

func acquireHoverSet() map[WidgetID]bool {
	return hoverSetPool.Get().(map[WidgetID]bool)
}

// releaseHoverSet clears the map and returns it to the pool.
func releaseHoverSet(m map[WidgetID]bool) {
	if m == nil {
		return
	}
	clear(m)
	hoverSetPool.Put(m)
}
