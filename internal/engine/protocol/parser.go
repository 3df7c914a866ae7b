package protocol

import (
	"RelayScope/internal/model"
	"net"
	"regexp"
	"strconv"
)

// observationPattern matches one outbound UDP datagram line in the capture
// stream: source IPv4 and port, the direction marker, destination IPv4 and
// port, and the payload length. Both pktmon real-time output and tcpdump
// print this shape.
var observationPattern = regexp.MustCompile(`(\d{1,3}(?:\.\d{1,3}){3})\.\d+\s+>\s+[\d.]+\.(\d+):\s+UDP,\s+length\s+(\d+)`)

// ParseLine extracts a packet observation from a single line of capture
// output. The capture stream carries substantial non-matching noise, so a
// line that does not match yields ok == false rather than an error. Lines
// whose fields match the shape but fall outside IPv4/port/length ranges are
// skipped the same way.
func ParseLine(line string) (model.PacketObservation, bool) {
	m := observationPattern.FindStringSubmatch(line)
	if m == nil {
		return model.PacketObservation{}, false
	}

	ip := net.ParseIP(m[1])
	if ip == nil {
		return model.PacketObservation{}, false
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return model.PacketObservation{}, false
	}

	port, err := strconv.ParseUint(m[2], 10, 16)
	if err != nil {
		return model.PacketObservation{}, false
	}

	size, err := strconv.ParseUint(m[3], 10, 32)
	if err != nil {
		return model.PacketObservation{}, false
	}

	return model.PacketObservation{
		SrcIP:   ip4,
		DstPort: uint16(port),
		Size:    uint32(size),
	}, true
}
