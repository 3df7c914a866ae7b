// Package tracker maintains the per-client session table behind the live
// dashboard. It is the single owner of session state: every mutation and
// every read goes through one mutex, and snapshots are deep copies that
// never alias internal storage.
package tracker

import (
	"sort"
	"sync"
	"time"

	"RelayScope/internal/model"
)

const (
	// DefaultRateWindow is the minimum span a bandwidth window must cover
	// before a throughput figure is computed from it.
	DefaultRateWindow = time.Second

	// DefaultIdleTimeout is how long a client may stay silent before its
	// session is evicted by a sweep.
	DefaultIdleTimeout = 45 * time.Second
)

// session is the mutable per-client record. All fields are guarded by the
// tracker mutex.
type session struct {
	address     string
	country     string
	totalBytes  uint64
	windowBytes uint64
	windowStart time.Time
	lastSeen    time.Time
	speedBps    float64
}

// Tracker aggregates packet observations into client sessions keyed by
// source address. Callers supply the observation clock explicitly, which
// keeps window and eviction arithmetic deterministic under test.
type Tracker struct {
	mu          sync.Mutex
	sessions    map[string]*session
	resolver    model.GeoResolver
	rateWindow  time.Duration
	idleTimeout time.Duration
}

// NewTracker returns an empty tracker. Zero durations fall back to the
// package defaults.
func NewTracker(resolver model.GeoResolver, rateWindow, idleTimeout time.Duration) *Tracker {
	if rateWindow <= 0 {
		rateWindow = DefaultRateWindow
	}
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Tracker{
		sessions:    make(map[string]*session),
		resolver:    resolver,
		rateWindow:  rateWindow,
		idleTimeout: idleTimeout,
	}
}

// Record folds one observation into the session for address, creating the
// session on first sight. The country is resolved exactly once, at creation.
//
// The observation is always counted into the current window first; only
// then, if the window now spans at least the configured rate window, the
// throughput is recomputed over the actual elapsed time and a fresh window
// starts at now. A session therefore reports speed 0 until its first full
// window has passed.
func (t *Tracker) Record(address string, size uint32, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, ok := t.sessions[address]
	if !ok {
		s = &session{
			address:     address,
			country:     t.resolver.Resolve(address),
			windowStart: now,
		}
		t.sessions[address] = s
	}

	s.totalBytes += uint64(size)
	s.windowBytes += uint64(size)
	s.lastSeen = now

	if elapsed := now.Sub(s.windowStart); elapsed >= t.rateWindow {
		s.speedBps = float64(s.windowBytes) / elapsed.Seconds()
		s.windowBytes = 0
		s.windowStart = now
	}
}

// Sweep evicts every session idle for strictly longer than the idle
// timeout and returns how many were removed. A session whose idle time
// equals the timeout exactly survives until the next sweep.
func (t *Tracker) Sweep(now time.Time) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	evicted := 0
	for address, s := range t.sessions {
		if now.Sub(s.lastSeen) > t.idleTimeout {
			delete(t.sessions, address)
			evicted++
		}
	}
	return evicted
}

// Len returns the number of active sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// Snapshot returns a consistent copy of the table taken under the lock:
// sessions ordered by last activity, newest first, plus per-country
// rollups. Mutating the returned value has no effect on the tracker.
func (t *Tracker) Snapshot(now time.Time) model.Snapshot {
	t.mu.Lock()
	sessions := make([]model.SessionView, 0, len(t.sessions))
	countries := make(map[string]model.CountryStat)
	for _, s := range t.sessions {
		sessions = append(sessions, model.SessionView{
			Address:     s.address,
			Country:     s.country,
			TotalBytes:  s.totalBytes,
			WindowBytes: s.windowBytes,
			SpeedBps:    s.speedBps,
			LastSeen:    s.lastSeen,
		})
		stat := countries[s.country]
		stat.ActiveCount++
		stat.TotalBytes += s.totalBytes
		countries[s.country] = stat
	}
	t.mu.Unlock()

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].LastSeen.After(sessions[j].LastSeen)
	})
	return model.Snapshot{
		TakenAt:   now,
		Sessions:  sessions,
		Countries: countries,
	}
}
