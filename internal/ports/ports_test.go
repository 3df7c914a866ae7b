package ports

import (
	"reflect"
	"sync"
	"testing"
)

func TestSetReplaceAndContains(t *testing.T) {
	s := NewSet()
	if s.Contains(443) {
		t.Fatal("empty set should not contain 443")
	}

	s.Replace([]uint16{443, 51820})
	if !s.Contains(443) || !s.Contains(51820) {
		t.Fatalf("set %v missing replaced ports", s.List())
	}
	if s.Contains(53) {
		t.Error("set should not contain 53")
	}

	// A later replace drops ports absent from the new snapshot.
	s.Replace([]uint16{51821})
	if s.Contains(443) {
		t.Error("443 should be gone after replace")
	}
	if !s.Contains(51821) {
		t.Error("51821 should be present after replace")
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestSetListSorted(t *testing.T) {
	s := NewSet()
	s.Replace([]uint16{51820, 443, 4500})
	got := s.List()
	want := []uint16{443, 4500, 51820}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
}

func TestSetConcurrentAccess(t *testing.T) {
	s := NewSet()
	s.Replace([]uint16{443})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n uint16) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Replace([]uint16{443, n})
				s.Contains(443)
				s.List()
			}
		}(uint16(1000 + i))
	}
	wg.Wait()

	if !s.Contains(443) {
		t.Error("443 lost during concurrent replaces")
	}
}
