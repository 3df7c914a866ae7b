package capture

import (
	"log"
	"os"

	"RelayScope/internal/model"
)

// StdinSource parses capture lines piped into the process, for running
// behind `pktmon ... | rs-monitor` style pipelines.
type StdinSource struct {
	done chan struct{}
}

func NewStdinSource() *StdinSource {
	return &StdinSource{done: make(chan struct{})}
}

func (s *StdinSource) Start(out chan<- model.PacketObservation) error {
	log.Println("Reading capture lines from stdin...")
	go scanLines(os.Stdin, out, s.done)
	return nil
}

// Stop halts emission. The scan goroutine itself may stay parked in a
// stdin read, which only process exit can release.
func (s *StdinSource) Stop() {
	close(s.done)
}
