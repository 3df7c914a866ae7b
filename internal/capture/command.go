package capture

import (
	"fmt"
	"log"
	"os/exec"
	"sync"

	"RelayScope/internal/model"
)

// CommandSource spawns a platform capture tool (pktmon, tcpdump) and
// parses its stdout line stream.
type CommandSource struct {
	name string
	args []string

	cmd *exec.Cmd
	wg  sync.WaitGroup
}

// NewCommandSource prepares a source around the given argv. Nothing runs
// until Start.
func NewCommandSource(name string, args ...string) *CommandSource {
	return &CommandSource{name: name, args: args}
}

// Start launches the command and scans its output until the pipe closes.
func (s *CommandSource) Start(out chan<- model.PacketObservation) error {
	cmd := exec.Command(s.name, s.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to open capture pipe: %w", err)
	}
	// Capture tools tend to interleave diagnostics on stderr; fold them
	// into the same stream so the parser can skip them like any noise.
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start capture command %s: %w", s.name, err)
	}
	s.cmd = cmd
	log.Printf("Capture command started: %s (pid %d)", s.name, cmd.Process.Pid)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		scanLines(stdout, out, nil)
		if err := cmd.Wait(); err != nil {
			log.Printf("Capture command exited: %v", err)
		}
	}()
	return nil
}

// Stop kills the capture tool, which closes the pipe and releases the
// scanner, then waits for it.
func (s *CommandSource) Stop() {
	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	s.wg.Wait()
}
