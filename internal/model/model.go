package model

import (
	"net"
	"time"
)

// PacketObservation is a single parsed capture event: one client datagram
// seen on its way to the relay. Observations are transient; they are
// consumed immediately by the session tracker.
type PacketObservation struct {
	SrcIP   net.IP `json:"src_ip"`
	DstPort uint16 `json:"dst_port"`
	Size    uint32 `json:"size"`
}

// SessionView is the copy-out form of one client session as exposed to
// presentation consumers. It carries no references into the live table.
type SessionView struct {
	Address     string    `json:"address"`
	Country     string    `json:"country"`
	TotalBytes  uint64    `json:"total_bytes"`
	WindowBytes uint64    `json:"window_bytes"`
	SpeedBps    float64   `json:"speed_bps"`
	LastSeen    time.Time `json:"last_seen"`
}

// CountryStat aggregates the sessions of a single country.
type CountryStat struct {
	ActiveCount int    `json:"active_count"`
	TotalBytes  uint64 `json:"total_bytes"`
}

// Snapshot is a consistent point-in-time view of the session table:
// sessions ordered by last activity (most recent first) and a one-pass
// per-country rollup. It is the sole interface between the engine and any
// rendering or export component.
type Snapshot struct {
	TakenAt   time.Time              `json:"taken_at"`
	Sessions  []SessionView          `json:"sessions"`
	Countries map[string]CountryStat `json:"countries"`
}
