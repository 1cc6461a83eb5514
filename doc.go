// Package hp implements a safe memory reclamation (SMR) engine based on
// hazard pointers, including the HP++ extension that allows reclaiming
// nodes reachable through links that may be concurrently traversed.
//
// A Domain is an isolated reclamation universe; objects retired in one
// domain are never reclaimed by another. A Thread is a transient handle
// bound to a domain, one per goroutine expected to touch the protected
// structure. A HazardPointer is a scoped claim on one slot of the owning
// thread's hazard array.
//
// Basic use:
//
//	var domain hp.Domain
//	t := hp.NewThread(&domain)
//	defer t.Close()
//
//	hp2 := hp.NewHazardPointer(t)
//	defer hp2.Close()
//	node := hp.Protect(hp2, &someAtomicNodePointer)
//
// Deletion of a node with outstanding references is supported via
// Thread.TryUnlink, which protects the frontier around the region about to
// be detached, hands the atomic detach to the caller, and — on success —
// schedules invalidation and eventual reclamation of the detached nodes.
// The frontier hazards stay published, stamped with the epoch read at
// invalidation, until a later invalidation pass sees the epoch two or more
// past that stamp or the thread's next reclamation pass has run its epoch
// barrier; a detached node is freed by a reclamation pass that finds no
// hazard slot holding its address.
//
// # Go realities
//
// This library runs under a garbage collector, which already forecloses
// use-after-free for ordinary heap memory. What this package ports from the
// original design is the *ordering contract*: the deleter bound to a
// retired object must not run while any thread might still dereference its
// address. The deleter itself is therefore the hook for a domain-meaningful
// release — returning a node to a free-list/object pool (the common case;
// see the Reclaimable interface), closing a non-GC resource, or dropping a
// shared reference count — rather than a literal free(). Objects handed to
// Retire or protected by a HazardPointer must remain reachable to the Go
// garbage collector by some other means (typically the caller's own
// now-detached-but-not-yet-dropped reference) for as long as this library
// might still reference them by address.
//
// This package contains no logging, configuration, or CLI surface, and no
// concrete lock-free data structure built on top of the engine — only the
// reclamation primitives a data-structure author builds on.
package hp
