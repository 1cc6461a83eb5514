package hp

import (
	"sync/atomic"

	"github.com/powergee/hp-plus/internal/membarrier"
)

// epochBarrier is a single monotonic counter used to bound how long a stale
// HP++ traversal may persist after a node it reached has been invalidated.
// Advancing is a plain wrapping increment; checkEpoch compares with wrapping
// subtraction, so the counter never needs a reset.
type epochBarrier struct {
	epoch atomic.Uint64
}

// barrier loads the epoch (acquire), executes a heavy process-wide memory
// barrier, then attempts to advance the epoch by one. A lost
// compare-and-swap race is fine: some other thread already advanced the
// epoch, and the heavy barrier already established the ordering this call
// needed.
func (b *epochBarrier) barrier() {
	epoch := b.epoch.Load()
	membarrier.Heavy()
	b.epoch.CompareAndSwap(epoch, epoch+1)
}

// read repeatedly loads the epoch, executing a light process-wide barrier
// between each pair of loads, until two consecutive loads agree.
func (b *epochBarrier) read() uint64 {
	epoch := b.epoch.Load()
	for {
		membarrier.Light()
		next := b.epoch.Load()
		if next == epoch {
			return epoch
		}
		epoch = next
	}
}

// checkEpoch reports whether new is at least two epochs ahead of old under
// wrapping arithmetic — the HP++ safety threshold: a node invalidated as of
// epoch old is safe to reclaim once every thread has observed an epoch two
// or more past it.
func checkEpoch(old, new uint64) bool {
	return new-old >= 2
}
