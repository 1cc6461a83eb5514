package hp

import (
	"github.com/powergee/hp-plus/internal/hazard"
	"github.com/powergee/hp-plus/internal/memstats"
	"github.com/powergee/hp-plus/internal/retire"
)

// Amortisation thresholds: invalidation is the cheapest step and runs
// often to bound the unlinked-batch backlog; flushing exposes local work
// to other threads' reclamations; collection is the heaviest (a heavy
// fence plus a scan of every hazard slot in the domain) and therefore
// runs least often.
const (
	countsBetweenInvalidation = 32
	countsBetweenFlush        = 64
	countsBetweenCollect      = 128
)

// epochedBundle is one entry of a thread's HP++ epoched-protection deque: a
// set of frontier hazard pointers that were valid as of the given epoch.
type epochedBundle struct {
	epoch uint64
	hps   []*HazardPointer
}

// Thread is a transient handle bound to a Domain. One is expected per
// goroutine that touches the protected structure, though nothing enforces
// that. A Thread owns one thread record, pending unlinked batches, pending
// retires, and the epoched hazard-pointer bundles HP++ uses to bound stale
// traversals.
type Thread struct {
	domain *Domain
	record *hazard.Record

	freeIndices []int
	epochedHPs  []epochedBundle
	unlinkeds   []unlinkedBatch
	retired     []retire.Entry
	count       uint64

	closed bool
}

// NewThread acquires a thread record from domain and returns a handle bound
// to it. The handle must be closed (typically via defer t.Close()) before
// domain is closed.
func NewThread(domain *Domain) *Thread {
	domain.init()
	rec, free := domain.threads.Acquire()
	return &Thread{domain: domain, record: rec, freeIndices: free}
}

func (t *Thread) bumpCount() {
	t.count++
}

// acquireSlot returns a free hazard-array slot index, growing the array
// first if none is free.
func (t *Thread) acquireSlot() int {
	if n := len(t.freeIndices); n > 0 {
		idx := t.freeIndices[n-1]
		t.freeIndices = t.freeIndices[:n-1]
		return idx
	}
	t.growArray()
	return t.acquireSlot()
}

// releaseSlot returns idx to the free list. Called from HazardPointer.Close;
// the free list must outlive every outstanding HazardPointer, which is why
// Thread.Close clears it only after every pending HazardPointer has been
// closed.
func (t *Thread) releaseSlot(idx int) {
	t.freeIndices = append(t.freeIndices, idx)
}

// growArray doubles the thread's hazard array, publishes the new array, and
// retires the old one via this same thread — other threads may still be
// scanning it, so it must flow through the same reclamation pipeline as any
// other retired object.
func (t *Thread) growArray() {
	old := t.record.LoadArray()
	size := len(*old)
	next := hazard.Grow(old)
	t.record.StoreArray(next)

	Retire(t, old)

	newIndices := make([]int, 0, size)
	for i := size; i < size*2; i++ {
		newIndices = append(newIndices, i)
	}
	t.freeIndices = append(t.freeIndices, newIndices...)
}

func (t *Thread) pushRetired(entry retire.Entry) {
	t.retired = append(t.retired, entry)
	t.bumpCount()
	if t.count%countsBetweenFlush == 0 {
		t.flushRetireds()
	}
	if t.count%countsBetweenCollect == 0 {
		t.doReclamation()
	}
}

func (t *Thread) flushRetireds() {
	if len(t.retired) == 0 {
		return
	}
	t.domain.numGarbages.Add(int64(len(t.retired)))
	t.domain.retireds.Push(t.retired)
	t.retired = nil
}

// doInvalidation invalidates every node in every pending unlinked batch,
// appends the invalidated addresses to the local retired buffer, bundles
// each batch's frontier hazards with the epoch they were captured under,
// and drops any previously bundled hazards whose epoch has aged out under
// the two-epoch rule.
func (t *Thread) doInvalidation() {
	if len(t.unlinkeds) == 0 {
		return
	}

	var hps []*HazardPointer
	var invalidated []retire.Entry
	for _, batch := range t.unlinkeds {
		for _, n := range batch.nodes {
			n.invalidate()
			invalidated = append(invalidated, retire.New(n.ptr, n.deleter))
			memstats.RecordAlloc()
		}
		hps = append(hps, batch.frontier...)
	}
	t.unlinkeds = nil

	epoch := t.domain.barrier.read()
	kept := t.epochedHPs[:0]
	for _, bundle := range t.epochedHPs {
		if checkEpoch(bundle.epoch, epoch) {
			for _, hp := range bundle.hps {
				hp.Close()
			}
			continue
		}
		kept = append(kept, bundle)
	}
	t.epochedHPs = append(kept, epochedBundle{epoch: epoch, hps: hps})

	t.retired = append(t.retired, invalidated...)
}

// doReclamation pops every retired entry from the domain's retired list,
// runs the domain's epoch barrier (which guarantees every epoched-hazard
// bundle has aged past the two-epoch threshold), collects the current set
// of guarded addresses across every registered thread, and frees every
// retired entry not found in that set.
func (t *Thread) doReclamation() {
	retireds := t.domain.retireds.PopAll()
	if len(retireds) == 0 {
		return
	}

	t.domain.barrier.barrier()

	// Only meaningful for HP++, but clearing unconditionally costs nothing
	// extra for plain hazard-pointer use.
	for _, bundle := range t.epochedHPs {
		for _, hp := range bundle.hps {
			hp.Close()
		}
	}
	t.epochedHPs = t.epochedHPs[:0]

	guarded := t.domain.collectGuardedPtrs()

	notFreed := make([]retire.Entry, 0, len(retireds))
	freed := 0
	for _, entry := range retireds {
		if guarded.Contains(uintptr(entry.Ptr)) {
			notFreed = append(notFreed, entry)
			continue
		}
		entry.Deleter(entry.Ptr)
		memstats.RecordFree()
		freed++
	}
	t.domain.numGarbages.Add(-int64(freed))
	t.domain.retireds.Push(notFreed)
}

// Close flushes pending work, releases the thread record, and returns it to
// the domain's pool of available records. Close is idempotent, and
// must not be called from within a Reclaimable.OnReclaim callback invoked
// by this same Thread's own reclamation pass.
func (t *Thread) Close() {
	if t.closed {
		return
	}
	t.closed = true

	t.doInvalidation()
	t.flushRetireds()
	t.domain.barrier.barrier()
	for _, bundle := range t.epochedHPs {
		for _, hp := range bundle.hps {
			hp.Close()
		}
	}
	t.epochedHPs = t.epochedHPs[:0]

	if len(t.unlinkeds) != 0 || len(t.retired) != 0 || len(t.epochedHPs) != 0 {
		panic("hp: Thread.Close left pending work behind")
	}

	// WARNING: dropping a HazardPointer touches freeIndices, so freeIndices
	// must be cleared only after every hazard pointer this thread owns has
	// already been closed, and this method must not itself acquire a new
	// HazardPointer.
	t.freeIndices = nil

	t.domain.threads.Release(t.record)
}
