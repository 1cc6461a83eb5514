package hp

import "unsafe"

// Invalidatable is the capability Invalidate names: a method the client's
// node type implements so that any concurrent reader still reaching the
// node through a stale traversal can observe it as dead and abandon or
// restart. The library never prescribes the mechanism (a tag bit in a
// next-pointer is canonical); it only contracts that Invalidate is
// implemented and that client readers check it consistently.
type Invalidatable interface {
	Invalidate()
}

// ptrInvalidatable constrains a type parameter to pointer types whose
// pointee implements Invalidatable — the usual "pointer-to-T implements the
// interface" generic constraint shape.
type ptrInvalidatable[T any] interface {
	*T
	Invalidatable
}

// unlinkedNode is a single node captured by TryUnlink, type-erased the same
// way Retire erases its object: the node's address for identity, its
// Invalidate call, and its eventual deleter (run once reclamation confirms
// no thread still guards it).
type unlinkedNode struct {
	ptr        unsafe.Pointer
	invalidate func()
	deleter    func(unsafe.Pointer)
}

// unlinkedBatch is an owned set of nodes detached by one successful
// TryUnlink call, plus the hazard pointers that protected the frontier
// witnessed when unlinking began.
type unlinkedBatch struct {
	nodes    []unlinkedNode
	frontier []*HazardPointer
}

// TryUnlink is the HP++ entry point. frontier bounds the region unlink is
// about to detach; each frontier pointer is protected with
// a fresh hazard pointer before unlink is allowed to attempt its atomic
// detachment. If unlink reports failure, the frontier hazards are dropped
// and TryUnlink returns false — the caller should retry or abandon. If
// unlink succeeds, the detached nodes are packaged with the frontier
// hazards into a pending unlinked batch, amortised invalidation/flush/
// collection run at the usual thresholds, and TryUnlink returns true.
func TryUnlink[T any, PT ptrInvalidatable[T]](t *Thread, frontier []PT, unlink func() ([]PT, bool)) bool {
	hps := make([]*HazardPointer, len(frontier))
	for i, p := range frontier {
		h := NewHazardPointer(t)
		h.ProtectRaw(unsafe.Pointer(p))
		hps[i] = h
	}

	nodes, ok := unlink()
	if !ok {
		for _, h := range hps {
			h.Close()
		}
		return false
	}

	erased := make([]unlinkedNode, len(nodes))
	for i, n := range nodes {
		n := n // capture
		erased[i] = unlinkedNode{
			ptr:        unsafe.Pointer(n),
			invalidate: func() { n.Invalidate() },
			deleter: func(unsafe.Pointer) {
				if r, ok := any(n).(Reclaimable); ok {
					r.OnReclaim()
				}
			},
		}
	}
	t.unlinkeds = append(t.unlinkeds, unlinkedBatch{nodes: erased, frontier: hps})

	t.bumpCount()
	if t.count%countsBetweenInvalidation == 0 {
		t.doInvalidation()
	}
	if t.count%countsBetweenFlush == 0 {
		t.flushRetireds()
	}
	if t.count%countsBetweenCollect == 0 {
		t.doReclamation()
	}
	return true
}
