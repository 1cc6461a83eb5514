package retire

import "sync/atomic"

// node is one pushed batch in the list. The list is an append-only chain of
// batches; PopAll atomically detaches the whole chain with a single
// swap-to-nil CAS rather than walking and removing one node at a time, so
// concurrent pushes never block a concurrent PopAll.
type node struct {
	batch []Entry
	next  *node
}

// List is a lock-free, multi-producer pool of retired batches shared by
// every thread registered with a domain. Order of retrieval carries no
// meaning; PopAll simply drains everything currently present.
type List struct {
	head atomic.Pointer[node]
}

// NewList returns an empty retired list.
func NewList() *List {
	return &List{}
}

// Push adds batch to the list. Empty batches are a no-op.
func (l *List) Push(batch []Entry) {
	if len(batch) == 0 {
		return
	}
	n := &node{batch: batch}
	for {
		head := l.head.Load()
		n.next = head
		if l.head.CompareAndSwap(head, n) {
			return
		}
	}
}

// PopAll atomically detaches every batch currently in the list and returns
// their concatenated entries. Concurrent Push calls racing with PopAll are
// either fully included or fully excluded; none are lost or duplicated.
func (l *List) PopAll() []Entry {
	var head *node
	for {
		head = l.head.Load()
		if head == nil {
			return nil
		}
		if l.head.CompareAndSwap(head, nil) {
			break
		}
	}

	var out []Entry
	for cur := head; cur != nil; cur = cur.next {
		out = append(out, cur.batch...)
	}
	return out
}
