// Package capture produces packet observations from a pluggable source: a
// spawned capture tool, a live pcap handle, an offline capture file, a
// stdin pipe, or a remote probe over NATS. Sources emit everything they can
// parse; relevance filtering belongs to the monitor downstream.
package capture

import (
	"bufio"
	"fmt"
	"io"
	"log"

	"RelayScope/internal/config"
	"RelayScope/internal/engine/protocol"
	"RelayScope/internal/model"
)

// New builds the source selected by cfg.Type.
func New(cfg *config.CaptureConfig) (model.Source, error) {
	switch cfg.Type {
	case "command":
		if cfg.Command == "" {
			return nil, fmt.Errorf("capture type %q requires a command", cfg.Type)
		}
		return NewCommandSource(cfg.Command, cfg.Args...), nil
	case "pcap":
		if cfg.Interface == "" {
			return nil, fmt.Errorf("capture type %q requires an interface", cfg.Type)
		}
		return NewLiveSource(cfg.Interface, cfg.BPFFilter), nil
	case "pcapfile":
		if cfg.File == "" {
			return nil, fmt.Errorf("capture type %q requires a file", cfg.Type)
		}
		return NewFileSource(cfg.File), nil
	case "stdin":
		return NewStdinSource(), nil
	case "nats":
		return NewNATSSource(cfg.NATSURL, cfg.NATSSubject), nil
	default:
		return nil, fmt.Errorf("unknown capture type %q", cfg.Type)
	}
}

// scanLines reads r line by line and emits every observation the parser
// recognizes. It returns when r is exhausted or fails, or when done
// closes during an emit; a nil done never fires. Unparseable lines are
// dropped without logging, capture tools are chatty.
func scanLines(r io.Reader, out chan<- model.PacketObservation, done <-chan struct{}) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		obs, ok := protocol.ParseLine(scanner.Text())
		if !ok {
			continue
		}
		select {
		case out <- obs:
		case <-done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("Capture stream ended: %v", err)
	}
}
