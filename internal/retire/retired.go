// Package retire holds the retired-entry pipeline: individual retired
// entries and the domain-wide, lock-free retired list they flow through.
package retire

import "unsafe"

// Entry is a retired object: a type-erased address plus the deleter that
// will eventually run against it exactly once.
type Entry struct {
	Ptr     unsafe.Pointer
	Deleter func(unsafe.Pointer)
}

// New builds an Entry. Deleter must be safe to call at most once, at some
// point after no thread can observe ptr through a hazard slot.
func New(ptr unsafe.Pointer, deleter func(unsafe.Pointer)) Entry {
	return Entry{Ptr: ptr, Deleter: deleter}
}
