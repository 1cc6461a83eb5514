//go:build linux

package membarrier

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// Command values from linux/membarrier.h. x/sys/unix does not wrap the
// membarrier(2) syscall directly, so the commands are issued via
// unix.Syscall against unix.SYS_MEMBARRIER, matching the ABI the kernel
// documents.
const (
	cmdQuery                    = 0
	cmdRegisterPrivateExpedited = 1 << 4
	cmdPrivateExpedited         = 1 << 3
)

var (
	registerOnce sync.Once
	supported    atomic.Bool
	fallbackGate atomic.Uint64
)

func init() {
	supported.Store(true)
}

func register() {
	registerOnce.Do(func() {
		// Probe availability first; older kernels (<4.14) or kernels built
		// without CONFIG_MEMBARRIER return ENOSYS.
		if _, _, errno := unix.Syscall(unix.SYS_MEMBARRIER, cmdQuery, 0, 0); errno != 0 {
			supported.Store(false)
			return
		}
		if _, _, errno := unix.Syscall(unix.SYS_MEMBARRIER, cmdRegisterPrivateExpedited, 0, 0); errno != 0 {
			supported.Store(false)
		}
	})
}

func heavy() {
	register()
	if supported.Load() {
		if _, _, errno := unix.Syscall(unix.SYS_MEMBARRIER, cmdPrivateExpedited, 0, 0); errno == 0 {
			return
		}
		supported.Store(false)
	}
	// Degrade to the documented fallback: a sequentially consistent
	// round-trip every hazard-array writer already pays for on this path.
	fallbackHeavy()
}

func light() {
	// A plain atomic load/store pair already gives the acquire/release
	// ordering Go's memory model promises; no cross-core IPI is needed.
	fallbackLight()
}

func fallbackHeavy() {
	fallbackGate.Add(1)
}

func fallbackLight() {
	_ = fallbackGate.Load()
}
