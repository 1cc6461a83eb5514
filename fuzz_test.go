package hp

import (
	"testing"
	"unsafe"

	"github.com/powergee/hp-plus/internal/testlist"
)

// FuzzRetireSequence replays randomised sequences of Insert/ProtectRaw/
// TryUnlink/reclamation against a single testlist.List shared by a small
// thread pool: each input byte selects an operation to apply next,
// opcode-switch style. The only invariant checked is that a node still in
// the list (never successfully unlinked) is not found reclaimed when a
// hazard pointer is placed on it; the run otherwise only has to complete
// without a panic.
func FuzzRetireSequence(f *testing.F) {
	f.Add([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	f.Add([]byte{4, 4, 4, 4, 2, 2, 2, 1, 1, 0})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, ops []byte) {
		if len(ops) > 256 {
			ops = ops[:256]
		}

		d := NewDomain()
		defer d.Close()

		const numThreads = 3
		threads := make([]*Thread, numThreads)
		for i := range threads {
			threads[i] = NewThread(d)
		}
		defer func() {
			for _, th := range threads {
				th.Close()
			}
		}()

		list := testlist.New()
		var live []*testlist.Node

		for i, op := range ops {
			th := threads[i%numThreads]
			key := int(op)

			switch op % 4 {
			case 0:
				list.Insert(key, int(op))
				n := list.Find(key)
				if n != nil {
					live = append(live, n)
				}
			case 1:
				hp := NewHazardPointer(th)
				if len(live) > 0 {
					n := live[int(op)%len(live)]
					hp.ProtectRaw(unsafePointerOf(n))
					if n.Freed() {
						t.Fatalf("fuzz: hazard pointer protected an already-freed node")
					}
				}
				hp.Close()
			case 2:
				if len(live) > 0 {
					idx := int(op) % len(live)
					n := live[idx]
					ok := TryUnlink(th, []*testlist.Node{n}, func() ([]*testlist.Node, bool) {
						if n.Invalidated() {
							return nil, false
						}
						got, found := list.Unlink(n.Key)
						if !found || got != n {
							return nil, false
						}
						return []*testlist.Node{n}, true
					})
					if ok {
						live = append(live[:idx], live[idx+1:]...)
					}
				}
			case 3:
				th.doInvalidation()
				th.flushRetireds()
				th.doReclamation()
			}
		}

		for _, th := range threads {
			th.doInvalidation()
			th.flushRetireds()
		}
		for _, th := range threads {
			th.doReclamation()
			th.doReclamation()
		}
	})
}

func unsafePointerOf(n *testlist.Node) unsafe.Pointer {
	return unsafe.Pointer(n)
}
