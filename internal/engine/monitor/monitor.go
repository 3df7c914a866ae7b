// Package monitor wires the capture side of the pipeline to the session
// table. It runs one ingestion worker that drains the observation channel
// and one sweeper that evicts idle sessions on a fixed cadence.
package monitor

import (
	"log"
	"net"
	"sync"
	"time"

	"RelayScope/internal/engine/tracker"
	"RelayScope/internal/model"
	"RelayScope/internal/ports"
)

const (
	// DefaultSweepInterval is how often idle sessions are collected.
	DefaultSweepInterval = 5 * time.Second

	// DefaultChannelSize buffers capture bursts ahead of the worker.
	DefaultChannelSize = 1024
)

// privateNets lists the source ranges that can never belong to a remote
// client: loopback plus the RFC 1918 blocks.
var privateNets = mustParseNets(
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
)

func mustParseNets(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return nets
}

func isLocalSource(ip net.IP) bool {
	for _, n := range privateNets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Monitor owns the ingestion and eviction workers around a Tracker.
type Monitor struct {
	tracker *tracker.Tracker
	ports   *ports.Set

	observationChannel chan model.PacketObservation
	drain              chan struct{}
	workerWg           sync.WaitGroup

	sweepInterval time.Duration
	done          chan struct{}
	sweeperWg     sync.WaitGroup
}

// NewMonitor creates a monitor around the given tracker and port set.
// Zero values for sweepInterval and channelSize fall back to the package
// defaults.
func NewMonitor(tr *tracker.Tracker, set *ports.Set, sweepInterval time.Duration, channelSize int) *Monitor {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}
	if channelSize <= 0 {
		channelSize = DefaultChannelSize
	}
	return &Monitor{
		tracker:            tr,
		ports:              set,
		observationChannel: make(chan model.PacketObservation, channelSize),
		drain:              make(chan struct{}),
		sweepInterval:      sweepInterval,
		done:               make(chan struct{}),
	}
}

// InputChannel is where capture sources deliver parsed observations.
func (m *Monitor) InputChannel() chan<- model.PacketObservation {
	return m.observationChannel
}

// Start launches the ingestion worker and the sweeper.
func (m *Monitor) Start() {
	m.workerWg.Add(1)
	go m.worker()

	m.sweeperWg.Add(1)
	go m.runSweeper()

	log.Printf("Monitor started, sweeping idle sessions every %s.", m.sweepInterval)
}

// Stop drains and shuts the monitor down: the worker finishes the
// buffered backlog and exits, then the sweeper stops. The input channel
// is never closed; capture sources hold the send side and may still be
// flushing, so a late send lands in the buffer instead of panicking.
// Snapshot remains usable after Stop.
func (m *Monitor) Stop() {
	log.Println("Monitor stopping...")
	close(m.drain)
	m.workerWg.Wait()

	close(m.done)
	m.sweeperWg.Wait()
	log.Println("Monitor stopped.")
}

// Snapshot returns the current session table view.
func (m *Monitor) Snapshot(now time.Time) model.Snapshot {
	return m.tracker.Snapshot(now)
}

// SessionCount returns the number of active sessions.
func (m *Monitor) SessionCount() int {
	return m.tracker.Len()
}

// worker drains the observation channel until Stop signals it, then
// finishes whatever the channel still buffers. Only observations aimed
// at a monitored port and sourced outside the private ranges reach the
// tracker; everything else is relay-unrelated host traffic and is
// dropped here rather than in the capture sources.
func (m *Monitor) worker() {
	defer m.workerWg.Done()
	for {
		select {
		case obs := <-m.observationChannel:
			m.ingest(obs)
		case <-m.drain:
			for {
				select {
				case obs := <-m.observationChannel:
					m.ingest(obs)
				default:
					return
				}
			}
		}
	}
}

func (m *Monitor) ingest(obs model.PacketObservation) {
	if !m.ports.Contains(obs.DstPort) {
		return
	}
	if obs.SrcIP == nil || isLocalSource(obs.SrcIP) {
		return
	}
	m.tracker.Record(obs.SrcIP.String(), obs.Size, time.Now())
}

func (m *Monitor) runSweeper() {
	defer m.sweeperWg.Done()
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.tracker.Sweep(time.Now()); n > 0 {
				log.Printf("Evicted %d idle sessions.", n)
			}
		case <-m.done:
			return
		}
	}
}
