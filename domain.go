package hp

import (
	"sync"
	"sync/atomic"

	"github.com/powergee/hp-plus/internal/hazard"
	"github.com/powergee/hp-plus/internal/memstats"
	"github.com/powergee/hp-plus/internal/ptrset"
	"github.com/powergee/hp-plus/internal/retire"
)

// pad64 rounds a preceding field up to a 64-byte cache line so that the
// domain's handful of hot, independently-contended atomics (the thread
// registry head, the epoch counter, the retired-list head, the garbage
// counter) don't false-share a line. The corpus carries no standalone
// cache-padding dependency to borrow here (see DESIGN.md), so this mirrors
// the original's use of crossbeam_utils::CachePadded by hand.
type pad64 [56]byte

// Domain is an isolated SMR universe: objects retired in one domain are
// never reclaimed by another. The zero value is ready to use: its first
// use (via NewThread or Close) constructs the registry and retired list
// exactly once, so concurrently calling hp.NewThread(&domain) from many
// goroutines on a freshly zero-valued Domain — the documented, encouraged
// pattern — never races two goroutines into allocating two different
// registries.
type Domain struct {
	initOnce sync.Once
	_        pad64

	threads *hazard.Registry
	_       pad64

	barrier epochBarrier
	_       pad64

	retireds *retire.List
	_        pad64

	numGarbages atomic.Int64
	_           pad64

	closed atomic.Bool
}

// NewDomain returns a ready-to-use Domain with its registry and retired
// list already constructed. The zero value of Domain is equivalent (its
// lazy init is safe for concurrent first use too) but NewDomain is
// provided for parity with the original constructor and to make
// intentional construction explicit at call sites.
func NewDomain() *Domain {
	d := &Domain{}
	d.init()
	return d
}

// init constructs the registry and retired list exactly once, however many
// goroutines call it concurrently — NewThread and Close both call it
// unconditionally since either may be the first thing a caller does with a
// zero-valued Domain.
func (d *Domain) init() {
	d.initOnce.Do(func() {
		d.threads = hazard.NewRegistry()
		d.retireds = retire.NewList()
	})
}

// NumGarbages returns an approximate count of outstanding retired-but-not-
// yet-freed objects. It is a relaxed read intended for heuristics and
// telemetry only — see internal/memstats for correlating this against
// process memory pressure.
func (d *Domain) NumGarbages() int64 {
	return d.numGarbages.Load()
}

// collectGuardedPtrs walks every registered thread record, reading every
// slot of every hazard array with acquire ordering, and returns the union
// of all currently-hazarded addresses.
func (d *Domain) collectGuardedPtrs() *ptrset.Set {
	records := d.threads.Snapshot()
	set := ptrset.New(len(records) * hazard.InitialArraySize)
	for _, rec := range records {
		arr := rec.LoadArray()
		for i := range *arr {
			if p := (*arr)[i].Load(); p != nil {
				set.Insert(ptrAddr(p))
			}
		}
	}
	return set
}

// Close asserts every acquired Thread has been closed first, then drains
// the retired list and runs every remaining deleter exactly once. Close is
// idempotent; calling it twice is a no-op on the second call.
//
// Go has no destructors, so callers must call Close explicitly (typically
// via defer), the same way other stateful types in this codebase's lineage
// (e.g. a cowbtree's tree.Close()) are closed.
func (d *Domain) Close() {
	if !d.closed.CompareAndSwap(false, true) {
		return
	}
	d.init()
	for _, rec := range d.threads.Snapshot() {
		if !rec.Available() {
			panic("hp: Domain closed while a Thread handle is still live")
		}
	}
	entries := d.retireds.PopAll()
	for _, entry := range entries {
		entry.Deleter(entry.Ptr)
		memstats.RecordFree()
	}
	d.numGarbages.Add(-int64(len(entries)))
}
