package web

import (
	"fmt"
	"strings"
	"time"

	"RelayScope/internal/model"
)

// sessionPayload is the wire form of one session row. Addresses are
// masked here, at the presentation boundary; full addresses never leave
// the engine.
type sessionPayload struct {
	Address    string  `json:"address"`
	Country    string  `json:"country"`
	SpeedBps   float64 `json:"speed_bps"`
	Speed      string  `json:"speed"`
	TotalBytes uint64  `json:"total_bytes"`
	Total      string  `json:"total"`
	LastSeen   int     `json:"last_seen_seconds_ago"`
}

type snapshotPayload struct {
	TakenAt   time.Time                    `json:"taken_at"`
	Online    int                          `json:"online"`
	Sessions  []sessionPayload             `json:"sessions"`
	Countries map[string]model.CountryStat `json:"countries"`
}

// MaskAddress hides all but the first octet of a dotted-quad address.
// Anything else passes through unchanged.
func MaskAddress(address string) string {
	parts := strings.Split(address, ".")
	if len(parts) != 4 {
		return address
	}
	return parts[0] + ".***.***.***"
}

// FormatBytes renders a byte count on the usual 1024 ladder.
func FormatBytes(v float64) string {
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if v < 1024 {
			return fmt.Sprintf("%.1f %s", v, unit)
		}
		v /= 1024
	}
	return fmt.Sprintf("%.1f TB", v)
}

func buildPayload(snap model.Snapshot) snapshotPayload {
	out := snapshotPayload{
		TakenAt:   snap.TakenAt,
		Online:    len(snap.Sessions),
		Sessions:  make([]sessionPayload, 0, len(snap.Sessions)),
		Countries: snap.Countries,
	}
	for _, s := range snap.Sessions {
		out.Sessions = append(out.Sessions, sessionPayload{
			Address:    MaskAddress(s.Address),
			Country:    s.Country,
			SpeedBps:   s.SpeedBps,
			Speed:      FormatBytes(s.SpeedBps) + "/s",
			TotalBytes: s.TotalBytes,
			Total:      FormatBytes(float64(s.TotalBytes)),
			LastSeen:   int(snap.TakenAt.Sub(s.LastSeen).Seconds()),
		})
	}
	return out
}
