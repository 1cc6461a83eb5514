package hp

import (
	"sync/atomic"
	"unsafe"
)

// HazardPointer is a scoped claim on one slot of its owning thread's hazard
// array. It must not outlive the Thread it was created from, and must not
// be used from any goroutine other than the one driving that Thread.
type HazardPointer struct {
	thread *Thread
	idx    int
	closed bool
}

// NewHazardPointer acquires a free slot from t's hazard array, growing the
// array first if none is free.
func NewHazardPointer(t *Thread) *HazardPointer {
	return &HazardPointer{thread: t, idx: t.acquireSlot()}
}

// ProtectRaw publishes p into the claimed slot with release ordering, after
// reading the current hazard-array pointer with acquire ordering (the array
// may have moved underneath this slot's index since the HazardPointer was
// created, if a concurrent Acquire on the same thread triggered growth).
func (h *HazardPointer) ProtectRaw(p unsafe.Pointer) {
	arr := h.thread.record.LoadArray()
	(*arr)[h.idx].Store((*byte)(p))
}

// Protect publishes the current value of src into hp's slot, re-reading src
// until the value observed before and after publication agree, and returns
// that stable value. This is the standard hazard-pointer acquire loop:
// publish-then-validate guards against the object being retired between the
// initial load and the publish becoming visible to a reclaimer.
func Protect[T any](hp *HazardPointer, src *atomic.Pointer[T]) *T {
	for {
		p := src.Load()
		hp.ProtectRaw(unsafe.Pointer(p))
		if next := src.Load(); next == p {
			return p
		}
	}
}

// Close clears hp's slot (release ordering) and returns the slot index to
// the owning thread's free list. Close is idempotent.
func (h *HazardPointer) Close() {
	if h.closed {
		return
	}
	h.closed = true
	arr := h.thread.record.LoadArray()
	(*arr)[h.idx].Store(nil)
	h.thread.releaseSlot(h.idx)
}
