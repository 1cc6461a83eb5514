// Package memstats reports process memory and GC telemetry that a caller can
// correlate against Domain.NumGarbages() to judge whether retired objects are
// accumulating faster than they are reclaimed.
//
// This package is a pure-Go replacement for a cgo-bound jemalloc shim: this
// library is not a general-purpose allocator and carries no jemalloc headers,
// so the same concern — observability into allocator/collector pressure —
// is served here with runtime and runtime/debug instead.
package memstats

import (
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

var (
	mu     sync.Mutex
	allocs uint64
	frees  uint64
)

// RecordAlloc and RecordFree feed allocation/free counts into the telemetry
// snapshot. The reclamation engine calls RecordAlloc once per object handed
// to Retire or detached by TryUnlink (when Thread.doInvalidation turns it into
// a retired entry), and RecordFree once per retired entry whose deleter actually
// runs (in Thread.doReclamation and Domain.Close), so Allocs-Frees tracks
// the same outstanding-garbage count as Domain.NumGarbages.
func RecordAlloc() { atomic.AddUint64(&allocs, 1) }
func RecordFree()  { atomic.AddUint64(&frees, 1) }

// Snapshot is a point-in-time view of process memory and GC state.
type Snapshot struct {
	HeapAlloc    uint64
	HeapObjects  uint64
	NumGC        uint32
	PauseTotalNs uint64
	Allocs       uint64
	Frees        uint64
}

// Read captures a Snapshot using runtime.ReadMemStats and
// runtime/debug.ReadGCStats.
func Read() Snapshot {
	mu.Lock()
	defer mu.Unlock()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	var gc debug.GCStats
	debug.ReadGCStats(&gc)

	return Snapshot{
		HeapAlloc:    ms.HeapAlloc,
		HeapObjects:  ms.HeapObjects,
		NumGC:        ms.NumGC,
		PauseTotalNs: uint64(gc.PauseTotal.Nanoseconds()),
		Allocs:       atomic.LoadUint64(&allocs),
		Frees:        atomic.LoadUint64(&frees),
	}
}
