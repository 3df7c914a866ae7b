package capture

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/gopacket/pcap"

	"RelayScope/internal/model"
)

const (
	snapshotLen int32 = 1600
	promiscuous       = true
)

// LiveSource captures packets from a network interface through a BPF
// filter.
type LiveSource struct {
	iface  string
	filter string

	handle *pcap.Handle
	wg     sync.WaitGroup
}

func NewLiveSource(iface, filter string) *LiveSource {
	return &LiveSource{iface: iface, filter: filter}
}

func (s *LiveSource) Start(out chan<- model.PacketObservation) error {
	handle, err := pcap.OpenLive(s.iface, snapshotLen, promiscuous, pcap.BlockForever)
	if err != nil {
		return fmt.Errorf("failed to open device %s: %w", s.iface, err)
	}
	if s.filter != "" {
		if err := handle.SetBPFFilter(s.filter); err != nil {
			handle.Close()
			return fmt.Errorf("failed to set BPF filter %q: %w", s.filter, err)
		}
	}
	s.handle = handle
	log.Printf("Live capture started on %s (filter %q).", s.iface, s.filter)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		emitPackets(handle, out)
	}()
	return nil
}

// Stop closes the handle, which ends the packet stream, and waits for the
// emitter to drain.
func (s *LiveSource) Stop() {
	if s.handle != nil {
		s.handle.Close()
	}
	s.wg.Wait()
}
