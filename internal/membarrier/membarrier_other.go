//go:build !linux

package membarrier

import "sync/atomic"

// On platforms without a process-wide membarrier facility, the heavy fence
// degrades to a sequentially consistent fence: every hazard publish already
// pays for one atomic round-trip, and a reclaimer's heavy() call pays for
// another, so ordering is established purely through the atomics Go's memory
// model already guarantees. This is a documented, deliberate degradation for
// platforms without a real membarrier(2) facility, not a bug.
var fallbackGate atomic.Uint64

func heavy() {
	fallbackGate.Add(1)
}

func light() {
	_ = fallbackGate.Load()
}
