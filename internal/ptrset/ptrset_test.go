package ptrset

import "testing"

func TestInsertContains(t *testing.T) {
	s := New(4)
	addrs := []uintptr{0x1000, 0x2000, 0x3000, 0x4000, 0x5000}
	for _, a := range addrs {
		s.Insert(a)
	}
	for _, a := range addrs {
		if !s.Contains(a) {
			t.Fatalf("expected %x to be present", a)
		}
	}
	if s.Contains(0x9999) {
		t.Fatal("unexpected address reported present")
	}
	if got := s.Len(); got != len(addrs) {
		t.Fatalf("expected Len() == %d, got %d", len(addrs), got)
	}
}

func TestInsertIsIdempotent(t *testing.T) {
	s := New(1)
	s.Insert(0x42)
	s.Insert(0x42)
	s.Insert(0x42)
	if got := s.Len(); got != 1 {
		t.Fatalf("expected Len() == 1 after repeat inserts, got %d", got)
	}
}

func TestZeroAddressIgnored(t *testing.T) {
	s := New(4)
	s.Insert(0)
	if s.Contains(0) {
		t.Fatal("zero address should never be reported present")
	}
	if got := s.Len(); got != 0 {
		t.Fatalf("expected Len() == 0, got %d", got)
	}
}

func TestGrowBeyondInitialCapacity(t *testing.T) {
	s := New(2)
	const n = 1000
	for i := 1; i <= n; i++ {
		s.Insert(uintptr(i))
	}
	if got := s.Len(); got != n {
		t.Fatalf("expected Len() == %d, got %d", n, got)
	}
	for i := 1; i <= n; i++ {
		if !s.Contains(uintptr(i)) {
			t.Fatalf("expected %d present after growth", i)
		}
	}
}
