package model

// Source feeds parsed packet observations into the engine. Implementations
// wrap the various capture backends (capture command stdout, live pcap,
// offline pcap replay, NATS subscription).
type Source interface {
	// Start begins emitting observations to out. It does not block; the
	// source runs its own goroutines as needed.
	Start(out chan<- PacketObservation) error

	// Stop terminates capture and releases resources. An observation
	// already in hand may still be delivered while the source winds
	// down; nothing follows it.
	Stop()
}
