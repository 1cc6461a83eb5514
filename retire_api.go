package hp

import (
	"unsafe"

	"github.com/powergee/hp-plus/internal/memstats"
	"github.com/powergee/hp-plus/internal/retire"
)

// Reclaimable is the optional hook a retired object's type can implement.
// When present, it is invoked exactly once, at the point the engine has
// established no thread can still observe the object's address through a
// hazard slot. This is the Go-native stand-in for "free": since the
// garbage collector, not this library, owns memory, OnReclaim typically
// returns the object to a pool/free-list (the idiom fmstephe-memorymanager's
// objectstore package uses) or releases a non-GC resource the object holds.
//
// Retiring a *T whose T does not implement Reclaimable is valid — the
// object simply becomes eligible for ordinary GC once nothing else
// references it — but then retire buys nothing beyond documentation, since
// the GC was already going to handle it.
type Reclaimable interface {
	OnReclaim()
}

// Retire hands ptr to the reclamation engine. The caller asserts that ptr
// is no longer reachable by any new traversal starting after this call; it
// may still be reachable by a traversal already in flight, which is
// exactly what hazard pointers protect against.
func Retire[T any](t *Thread, ptr *T) {
	entry := retire.New(unsafe.Pointer(ptr), func(p unsafe.Pointer) {
		obj := (*T)(p)
		if r, ok := any(obj).(Reclaimable); ok {
			r.OnReclaim()
		}
	})
	memstats.RecordAlloc()
	t.pushRetired(entry)
}
