// trafficgen fabricates relay client traffic for demos and testing: a set
// of synthetic clients sending UDP datagrams to the relay's ports. It
// writes either a pcap file for `capture.type: pcapfile` or capture-tool
// text lines on stdout for piping into rs-monitor with `capture.type:
// stdin`.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

func main() {
	outputFile := flag.String("o", "", "Output pcap file path; empty means text lines on stdout")
	packetCount := flag.Int("c", 5000, "Number of datagrams to generate")
	clientCount := flag.Int("clients", 25, "Number of distinct client addresses")
	relayAddr := flag.String("relay", "10.0.0.2", "Relay address the clients send to")
	portList := flag.String("ports", "443,51820", "Comma-separated relay UDP ports")
	pace := flag.Duration("pace", 0, "Delay between datagrams in text mode, for live demos")
	flag.Parse()

	ports, err := parsePorts(*portList)
	if err != nil {
		log.Fatalf("Invalid -ports: %v", err)
	}
	relayIP := net.ParseIP(*relayAddr).To4()
	if relayIP == nil {
		log.Fatalf("Invalid -relay address %q", *relayAddr)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	clients := make([]net.IP, *clientCount)
	for i := range clients {
		clients[i] = randomPublicIPv4(rng)
	}

	if *outputFile != "" {
		writePcap(*outputFile, *packetCount, clients, relayIP, ports, rng)
		return
	}
	writeLines(*packetCount, clients, relayIP, ports, rng, *pace)
}

func parsePorts(list string) ([]uint16, error) {
	var ports []uint16
	for _, field := range strings.Split(list, ",") {
		p, err := strconv.ParseUint(strings.TrimSpace(field), 10, 16)
		if err != nil {
			return nil, err
		}
		ports = append(ports, uint16(p))
	}
	return ports, nil
}

// randomPublicIPv4 avoids the ranges the monitor filters out, so every
// generated datagram is attributable to a synthetic client.
func randomPublicIPv4(rng *rand.Rand) net.IP {
	for {
		ip := net.IP{byte(1 + rng.Intn(222)), byte(rng.Intn(256)), byte(rng.Intn(256)), byte(1 + rng.Intn(254))}
		if isFiltered(ip) {
			continue
		}
		return ip
	}
}

func isFiltered(ip net.IP) bool {
	switch {
	case ip[0] == 10, ip[0] == 127:
		return true
	case ip[0] == 172 && ip[1] >= 16 && ip[1] < 32:
		return true
	case ip[0] == 192 && ip[1] == 168:
		return true
	case ip[0] == 169 && ip[1] == 254:
		return true
	}
	return false
}

// writeLines emits the text form the parser understands.
func writeLines(count int, clients []net.IP, relayIP net.IP, ports []uint16, rng *rand.Rand, pace time.Duration) {
	for i := 0; i < count; i++ {
		client := clients[rng.Intn(len(clients))]
		port := ports[rng.Intn(len(ports))]
		size := rng.Intn(1400) + 50
		fmt.Printf("%s.%d > %s.%d: UDP, length %d\n",
			client, 1024+rng.Intn(64511), relayIP, port, size)
		if pace > 0 {
			time.Sleep(pace)
		}
	}
}

func writePcap(path string, count int, clients []net.IP, relayIP net.IP, ports []uint16, rng *rand.Rand) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	pcapWriter := pcapgo.NewWriter(f)
	if err := pcapWriter.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		log.Fatalf("Failed to write pcap header: %v", err)
	}

	log.Printf("Generating %d datagrams from %d clients into %s...", count, len(clients), path)
	ts := time.Now().Add(-time.Duration(count) * time.Millisecond)

	for i := 0; i < count; i++ {
		client := clients[rng.Intn(len(clients))]
		port := ports[rng.Intn(len(ports))]
		payload := make([]byte, rng.Intn(1400)+50)
		rng.Read(payload)

		ethLayer := &layers.Ethernet{
			SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
			DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
			EthernetType: layers.EthernetTypeIPv4,
		}
		ipLayer := &layers.IPv4{
			SrcIP:    client,
			DstIP:    relayIP,
			Version:  4,
			TTL:      64,
			Protocol: layers.IPProtocolUDP,
		}
		udpLayer := &layers.UDP{
			SrcPort: layers.UDPPort(1024 + rng.Intn(64511)),
			DstPort: layers.UDPPort(port),
		}
		udpLayer.SetNetworkLayerForChecksum(ipLayer)

		buf := gopacket.NewSerializeBuffer()
		opts := gopacket.SerializeOptions{
			ComputeChecksums: true,
			FixLengths:       true,
		}
		if err := gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, udpLayer, gopacket.Payload(payload)); err != nil {
			log.Fatalf("Failed to serialize layers: %v", err)
		}

		ts = ts.Add(time.Millisecond)
		ci := gopacket.CaptureInfo{
			Timestamp:     ts,
			CaptureLength: len(buf.Bytes()),
			Length:        len(buf.Bytes()),
		}
		if err := pcapWriter.WritePacket(ci, buf.Bytes()); err != nil {
			log.Fatalf("Failed to write packet: %v", err)
		}
	}

	log.Printf("Successfully generated %d datagrams into %s.", count, path)
}
