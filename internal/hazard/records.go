// Package hazard holds the per-thread hazard-pointer record and the
// domain-wide registry of records.
//
// Registry is an append-only singly linked list of Records, compare-and-swap
// spliced onto the head the same way a lock-free sorted list chains its
// nodes on: a retry loop around a CompareAndSwapPointer that either lands
// the new node or retries against whatever the racing writer just
// installed. Records are never unlinked, which is what makes an
// append-only linked structure the right shape here — reclaimers hold
// borrowed references to Records across another thread's acquire/release,
// and those references must stay valid for the life of the domain.
package hazard

import "sync/atomic"

// InitialArraySize is the hazard array size a freshly allocated Record
// starts with.
const InitialArraySize = 8

// Record is a thread's published hazard-pointer record: an atomic pointer to
// its current hazard array plus an availability flag used for record reuse.
type Record struct {
	array     atomic.Pointer[Array]
	available atomic.Bool
	next      atomic.Pointer[Record]
}

func newRecord(initSize int) *Record {
	r := &Record{}
	r.array.Store(NewArray(initSize))
	return r
}

// LoadArray reads the current hazard array with acquire ordering.
func (r *Record) LoadArray() *Array {
	return r.array.Load()
}

// StoreArray publishes a new hazard array with release ordering.
func (r *Record) StoreArray(a *Array) {
	r.array.Store(a)
}

// Available reports whether the record is free for reuse.
func (r *Record) Available() bool {
	return r.available.Load()
}

// Registry is the domain-wide, append-only collection of thread records.
type Registry struct {
	head atomic.Pointer[Record]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Acquire returns a Record available for reuse (CAS'd from available to
// in-use) together with the full set of free slot indices into its current
// hazard array. If no record is available, a new one is allocated and
// spliced onto the registry head.
func (reg *Registry) Acquire() (*Record, []int) {
	for cur := reg.head.Load(); cur != nil; cur = cur.next.Load() {
		if cur.available.CompareAndSwap(true, false) {
			return cur, freeIndices(cur.LoadArray())
		}
	}

	rec := newRecord(InitialArraySize)
	for {
		head := reg.head.Load()
		rec.next.Store(head)
		if reg.head.CompareAndSwap(head, rec) {
			break
		}
	}
	return rec, freeIndices(rec.LoadArray())
}

func freeIndices(a *Array) []int {
	idxs := make([]int, len(*a))
	for i := range idxs {
		idxs[i] = i
	}
	return idxs
}

// Release marks rec available for reuse, nulling every hazard slot first so
// the next acquirer starts from a clean array.
func (reg *Registry) Release(rec *Record) {
	arr := rec.LoadArray()
	for i := range *arr {
		(*arr)[i].Store(nil)
	}
	rec.available.Store(true)
}

// Snapshot returns every currently registered record. Because the registry
// is append-only, a record observed here remains a valid, stable pointer
// for the lifetime of the domain even if it is later released and
// reacquired by a different thread.
func (reg *Registry) Snapshot() []*Record {
	var out []*Record
	for cur := reg.head.Load(); cur != nil; cur = cur.next.Load() {
		out = append(out, cur)
	}
	return out
}
