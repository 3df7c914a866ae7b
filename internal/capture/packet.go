package capture

import (
	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"RelayScope/internal/model"
)

// emitPackets drains a pcap handle and emits one observation per IPv4/UDP
// packet. Everything else on the wire is skipped. Returns when the handle
// is closed or the file is exhausted.
func emitPackets(handle *pcap.Handle, out chan<- model.PacketObservation) {
	packetSource := gopacket.NewPacketSource(handle, handle.LinkType())
	for packet := range packetSource.Packets() {
		if obs, ok := observationFromPacket(packet); ok {
			out <- obs
		}
	}
}

func observationFromPacket(packet gopacket.Packet) (model.PacketObservation, bool) {
	ip4, _ := packet.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if ip4 == nil {
		return model.PacketObservation{}, false
	}
	udp, _ := packet.Layer(layers.LayerTypeUDP).(*layers.UDP)
	if udp == nil {
		return model.PacketObservation{}, false
	}

	// Wire length when the metadata carries it, captured bytes otherwise.
	size := packet.Metadata().Length
	if size <= 0 {
		size = len(packet.Data())
	}
	return model.PacketObservation{
		SrcIP:   ip4.SrcIP,
		DstPort: uint16(udp.DstPort),
		Size:    uint32(size),
	}, true
}
