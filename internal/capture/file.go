package capture

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/gopacket/pcap"

	"RelayScope/internal/model"
)

// FileSource replays observations from a recorded capture file, mostly
// for demos and offline analysis.
type FileSource struct {
	path string

	handle *pcap.Handle
	wg     sync.WaitGroup
}

func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (s *FileSource) Start(out chan<- model.PacketObservation) error {
	handle, err := pcap.OpenOffline(s.path)
	if err != nil {
		return fmt.Errorf("failed to open capture file %s: %w", s.path, err)
	}
	s.handle = handle
	log.Printf("Replaying capture file %s...", s.path)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		emitPackets(handle, out)
		log.Printf("Capture file %s exhausted.", s.path)
	}()
	return nil
}

func (s *FileSource) Stop() {
	if s.handle != nil {
		s.handle.Close()
	}
	s.wg.Wait()
}
