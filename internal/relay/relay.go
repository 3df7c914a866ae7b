// Package relay supervises the third-party UDP relay process: liveness
// checks, start/stop, and discovery of the UDP ports it listens on. The
// relay is identified in the process table by a name substring, so a
// conduit binary is matched regardless of its platform suffix.
package relay

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	gnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"

	"RelayScope/internal/config"
)

// Controller drives the relay process described by the config.
type Controller struct {
	cfg config.RelayConfig
}

func NewController(cfg config.RelayConfig) *Controller {
	return &Controller{cfg: cfg}
}

// Status describes the relay as observed from the process table.
type Status struct {
	Running bool     `json:"running"`
	Pids    []int32  `json:"pids,omitempty"`
	Ports   []uint16 `json:"udp_ports,omitempty"`
}

// findProcesses returns every running process whose name contains the
// configured name, case-insensitively.
func (c *Controller) findProcesses() []*process.Process {
	procs, err := process.Processes()
	if err != nil {
		log.Printf("Failed to list processes: %v", err)
		return nil
	}
	needle := strings.ToLower(c.cfg.ProcessName)
	var matched []*process.Process
	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(name), needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

// IsRunning reports whether at least one relay process is alive.
func (c *Controller) IsRunning() bool {
	return len(c.findProcesses()) > 0
}

// UDPPorts returns the local UDP ports bound across all relay processes,
// sorted. These are the ports client traffic arrives on, fed to the
// monitored port set.
func (c *Controller) UDPPorts() []uint16 {
	seen := make(map[uint16]struct{})
	for _, p := range c.findProcesses() {
		conns, err := gnet.ConnectionsPid("udp", p.Pid)
		if err != nil {
			continue
		}
		for _, conn := range conns {
			if conn.Laddr.Port == 0 || conn.Laddr.Port > 65535 {
				continue
			}
			seen[uint16(conn.Laddr.Port)] = struct{}{}
		}
	}
	ports := make([]uint16, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })
	return ports
}

// Current returns the full observed status.
func (c *Controller) Current() Status {
	procs := c.findProcesses()
	st := Status{Running: len(procs) > 0}
	for _, p := range procs {
		st.Pids = append(st.Pids, p.Pid)
	}
	st.Ports = c.UDPPorts()
	return st
}

// StartArgs assembles the relay's start command line from config.
func (c *Controller) StartArgs() []string {
	return []string{
		"start",
		"-m", strconv.Itoa(c.cfg.MaxClients),
		"-b", strconv.FormatFloat(c.cfg.BandwidthMbps, 'f', -1, 64),
		"-v",
		"--metrics-addr", c.cfg.MetricsAddr,
	}
}

// Start launches the relay binary detached from the monitor, with its
// output folded into our log.
func (c *Controller) Start(ctx context.Context) error {
	if c.IsRunning() {
		return fmt.Errorf("relay %q is already running", c.cfg.ProcessName)
	}
	cmd := exec.CommandContext(ctx, c.cfg.BinaryPath, c.StartArgs()...)
	cmd.Stdout = log.Writer()
	cmd.Stderr = log.Writer()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start relay: %w", err)
	}
	log.Printf("Relay started (pid %d): %s %s", cmd.Process.Pid, c.cfg.BinaryPath, strings.Join(c.StartArgs(), " "))

	// Reap the child so a crashed relay does not linger as a zombie.
	go cmd.Wait()
	return nil
}

// Stop kills every matching relay process and returns how many it hit.
func (c *Controller) Stop() int {
	stopped := 0
	for _, p := range c.findProcesses() {
		if err := p.Kill(); err != nil {
			log.Printf("Failed to kill relay pid %d: %v", p.Pid, err)
			continue
		}
		log.Printf("Killed relay pid %d.", p.Pid)
		stopped++
	}
	return stopped
}
