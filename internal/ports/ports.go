// Package ports tracks the set of local UDP ports currently owned by the
// relay process. Capture filtering consults the set on every observation
// while a background job replaces its contents, so access is synchronized.
package ports

import (
	"sort"
	"sync"
)

// Set is a concurrency-safe set of UDP port numbers.
type Set struct {
	mu    sync.RWMutex
	ports map[uint16]struct{}
}

// NewSet returns an empty port set.
func NewSet() *Set {
	return &Set{ports: make(map[uint16]struct{})}
}

// Replace swaps the whole set for the given ports atomically. Observations
// filtered mid-swap see either the old or the new set, never a mix.
func (s *Set) Replace(ports []uint16) {
	next := make(map[uint16]struct{}, len(ports))
	for _, p := range ports {
		next[p] = struct{}{}
	}
	s.mu.Lock()
	s.ports = next
	s.mu.Unlock()
}

// Contains reports whether port is in the set.
func (s *Set) Contains(port uint16) bool {
	s.mu.RLock()
	_, ok := s.ports[port]
	s.mu.RUnlock()
	return ok
}

// Len returns the number of ports in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ports)
}

// List returns the ports in ascending order.
func (s *Set) List() []uint16 {
	s.mu.RLock()
	out := make([]uint16, 0, len(s.ports))
	for p := range s.ports {
		out = append(out, p)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
