package hp

import (
	"testing"
	"unsafe"

	"github.com/powergee/hp-plus/internal/testlist"
)

// unlinkNode detaches key from list via testlist's Unlink capability and
// packages it the way a data-structure author plugging into TryUnlink
// would: return the set of nodes actually detached, or fail without side
// effect.
func unlinkNode(list *testlist.List, key int) func() ([]*testlist.Node, bool) {
	return func() ([]*testlist.Node, bool) {
		n, ok := list.Unlink(key)
		if !ok {
			return nil, false
		}
		return []*testlist.Node{n}, true
	}
}

// TestTryUnlinkInvalidatesAndRetires covers the invalidation half of HP++:
// a successful TryUnlink does not invalidate or free the node immediately
// (both are amortised); an explicit doInvalidation call marks it dead and bundles
// its frontier hazards; a subsequent reclamation pass frees it once nothing
// guards its address.
func TestTryUnlinkInvalidatesAndRetires(t *testing.T) {
	d := NewDomain()
	defer d.Close()

	th := NewThread(d)
	defer th.Close()

	list := testlist.New()
	list.Insert(5, 100)
	curr := list.Find(5)

	ok := TryUnlink(th, []*testlist.Node{curr}, unlinkNode(list, 5))
	if !ok {
		t.Fatal("TryUnlink unexpectedly failed")
	}
	if curr.Invalidated() {
		t.Fatal("node invalidated before doInvalidation ran")
	}

	th.doInvalidation()
	if !curr.Invalidated() {
		t.Fatal("node not invalidated after doInvalidation")
	}
	if len(th.epochedHPs) != 1 {
		t.Fatalf("expected one epoched hazard bundle, got %d", len(th.epochedHPs))
	}
	if curr.Freed() {
		t.Fatal("node freed before any reclamation pass")
	}

	th.flushRetireds()
	th.doReclamation()

	if !curr.Freed() {
		t.Fatal("node not freed once unguarded")
	}
	if len(th.epochedHPs) != 0 {
		t.Fatal("epoched hazard bundle not cleared by doReclamation")
	}
}

// TestTryUnlinkRespectsOutstandingHazard covers the HP++ safety half: if a
// concurrent traversal had already protected the node with a hazard pointer
// before it was unlinked, the node must not be freed until that hazard is
// released, however many epochs elapse.
func TestTryUnlinkRespectsOutstandingHazard(t *testing.T) {
	d := NewDomain()
	defer d.Close()

	reader := NewThread(d)
	writer := NewThread(d)
	defer reader.Close()
	defer writer.Close()

	list := testlist.New()
	list.Insert(7, 200)
	curr := list.Find(7)

	readerHP := NewHazardPointer(reader)
	readerHP.ProtectRaw(unsafe.Pointer(curr))

	if !TryUnlink(writer, []*testlist.Node{curr}, unlinkNode(list, 7)) {
		t.Fatal("TryUnlink unexpectedly failed")
	}
	writer.doInvalidation()
	if !curr.Invalidated() {
		t.Fatal("node not invalidated")
	}

	writer.flushRetireds()
	writer.doReclamation()
	writer.doReclamation()

	if curr.Freed() {
		t.Fatal("node freed while a hazard pointer still guarded it")
	}

	readerHP.Close()
	writer.doReclamation()

	if !curr.Freed() {
		t.Fatal("node not freed once its guarding hazard pointer was released")
	}
}

// TestTryUnlinkFailureDropsFrontierHazards covers the transient-failure path:
// a losing TryUnlink must release the frontier hazard pointers it acquired
// and leave no trace in the thread's pending state.
func TestTryUnlinkFailureDropsFrontierHazards(t *testing.T) {
	d := NewDomain()
	defer d.Close()

	th := NewThread(d)
	defer th.Close()

	list := testlist.New()
	list.Insert(9, 1)
	curr := list.Find(9)

	before := len(th.freeIndices)

	ok := TryUnlink(th, []*testlist.Node{curr}, func() ([]*testlist.Node, bool) {
		return nil, false
	})
	if ok {
		t.Fatal("expected TryUnlink to fail")
	}
	if len(th.unlinkeds) != 0 {
		t.Fatal("failed TryUnlink left a pending unlinked batch")
	}
	if len(th.freeIndices) != before {
		t.Fatal("failed TryUnlink leaked a hazard slot")
	}
}
