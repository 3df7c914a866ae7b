package monitor

import (
	"fmt"
	"net"
	"sync"
	"testing"
	"time"

	"RelayScope/internal/engine/tracker"
	"RelayScope/internal/model"
	"RelayScope/internal/ports"
)

type staticResolver string

func (r staticResolver) Resolve(address string) string { return string(r) }

func newTestPorts(p ...uint16) *ports.Set {
	s := ports.NewSet()
	s.Replace(p)
	return s
}

func TestMonitorFiltersObservations(t *testing.T) {
	tr := tracker.NewTracker(staticResolver("Narnia"), time.Second, 45*time.Second)
	m := NewMonitor(tr, newTestPorts(443), time.Minute, 16)
	m.Start()

	in := m.InputChannel()
	in <- model.PacketObservation{SrcIP: net.ParseIP("203.0.113.7"), DstPort: 443, Size: 100}
	// Wrong port: not relay traffic.
	in <- model.PacketObservation{SrcIP: net.ParseIP("203.0.113.8"), DstPort: 53, Size: 100}
	// Private and loopback sources are never clients.
	in <- model.PacketObservation{SrcIP: net.ParseIP("192.168.1.5"), DstPort: 443, Size: 100}
	in <- model.PacketObservation{SrcIP: net.ParseIP("10.0.0.9"), DstPort: 443, Size: 100}
	in <- model.PacketObservation{SrcIP: net.ParseIP("172.16.3.4"), DstPort: 443, Size: 100}
	in <- model.PacketObservation{SrcIP: net.ParseIP("127.0.0.1"), DstPort: 443, Size: 100}

	m.Stop()

	if got := m.SessionCount(); got != 1 {
		t.Fatalf("SessionCount = %d, want 1", got)
	}
	snap := m.Snapshot(time.Now())
	if snap.Sessions[0].Address != "203.0.113.7" {
		t.Errorf("surviving session = %s, want 203.0.113.7", snap.Sessions[0].Address)
	}
}

func TestMonitorStopDrainsBacklog(t *testing.T) {
	tr := tracker.NewTracker(staticResolver("Narnia"), time.Second, 45*time.Second)
	m := NewMonitor(tr, newTestPorts(443), time.Minute, 256)
	m.Start()

	in := m.InputChannel()
	for i := 0; i < 100; i++ {
		in <- model.PacketObservation{
			SrcIP:   net.ParseIP(fmt.Sprintf("203.0.113.%d", i+1)),
			DstPort: 443,
			Size:    10,
		}
	}
	m.Stop()

	if got := m.SessionCount(); got != 100 {
		t.Fatalf("SessionCount = %d after drain, want 100", got)
	}
}

func TestMonitorStopWithActiveProducer(t *testing.T) {
	tr := tracker.NewTracker(staticResolver("Narnia"), time.Second, 45*time.Second)
	m := NewMonitor(tr, newTestPorts(443), time.Minute, 8)
	m.Start()

	// A source that keeps sending through Stop, like a stdin scan loop
	// whose blocked read only process exit can release.
	in := m.InputChannel()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		obs := model.PacketObservation{SrcIP: net.ParseIP("203.0.113.7"), DstPort: 443, Size: 1}
		for {
			select {
			case in <- obs:
			case <-stop:
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()

	time.Sleep(20 * time.Millisecond)
	m.Stop()

	if got := m.SessionCount(); got != 1 {
		t.Errorf("SessionCount = %d, want 1", got)
	}
	close(stop)
	wg.Wait()
}

func TestMonitorSweeperEvicts(t *testing.T) {
	tr := tracker.NewTracker(staticResolver("Narnia"), time.Second, 10*time.Millisecond)
	m := NewMonitor(tr, newTestPorts(443), 20*time.Millisecond, 16)
	m.Start()
	defer m.Stop()

	m.InputChannel() <- model.PacketObservation{SrcIP: net.ParseIP("203.0.113.7"), DstPort: 443, Size: 100}

	deadline := time.Now().Add(2 * time.Second)
	for m.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session not evicted, count = %d", m.SessionCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}
