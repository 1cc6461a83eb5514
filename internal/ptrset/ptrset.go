// Package ptrset provides a small open-addressing set of pointer addresses,
// used by the reclaimer to hold the "currently guarded" address set built
// each collection pass: a set keyed by raw address with a fast,
// non-cryptographic hash rather than a general-purpose one.
package ptrset

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

const emptySlot = ^uintptr(0)

// Set is a linear-probing hash set of pointer addresses. It is not
// goroutine-safe; each reclamation pass builds its own Set and discards it.
type Set struct {
	buckets []uintptr
	mask    uint64
	count   int
}

// New returns a Set sized for at least sizeHint elements.
func New(sizeHint int) *Set {
	n := 16
	for n < sizeHint*2 {
		n *= 2
	}
	buckets := make([]uintptr, n)
	for i := range buckets {
		buckets[i] = emptySlot
	}
	return &Set{buckets: buckets, mask: uint64(n - 1)}
}

func hash(addr uintptr) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(addr))
	return xxhash.Sum64(buf[:])
}

// Insert adds addr to the set. Inserting the zero address is a no-op since
// it never denotes a hazard (nil slots mean "unprotected").
func (s *Set) Insert(addr uintptr) {
	if addr == 0 {
		return
	}
	if s.count*2 >= len(s.buckets) {
		s.grow()
	}
	s.insert(addr)
}

func (s *Set) insert(addr uintptr) {
	idx := hash(addr) & s.mask
	for {
		cur := s.buckets[idx]
		if cur == addr {
			return
		}
		if cur == emptySlot {
			s.buckets[idx] = addr
			s.count++
			return
		}
		idx = (idx + 1) & s.mask
	}
}

func (s *Set) grow() {
	old := s.buckets
	n := len(old) * 2
	s.buckets = make([]uintptr, n)
	for i := range s.buckets {
		s.buckets[i] = emptySlot
	}
	s.mask = uint64(n - 1)
	s.count = 0
	for _, addr := range old {
		if addr != emptySlot {
			s.insert(addr)
		}
	}
}

// Contains reports whether addr was previously Insert'd.
func (s *Set) Contains(addr uintptr) bool {
	if addr == 0 {
		return false
	}
	idx := hash(addr) & s.mask
	for {
		cur := s.buckets[idx]
		if cur == addr {
			return true
		}
		if cur == emptySlot {
			return false
		}
		idx = (idx + 1) & s.mask
	}
}

// Len returns the number of distinct addresses currently in the set.
func (s *Set) Len() int {
	return s.count
}
