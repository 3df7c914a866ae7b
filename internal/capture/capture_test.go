package capture

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"RelayScope/internal/config"
	"RelayScope/internal/model"
)

func TestScanLinesEmitsParsedObservations(t *testing.T) {
	input := strings.Join([]string{
		"Processed 12 packets",
		"203.0.113.7.54321 > 10.0.0.2.51820: UDP, length 1380",
		"some interleaved diagnostic output",
		"198.51.100.1.40000 > 10.0.0.2.443: UDP, length 120",
		"203.0.113.9.1111 > 10.0.0.2.443: TCP, length 999",
	}, "\n")

	out := make(chan model.PacketObservation, 8)
	scanLines(strings.NewReader(input), out, nil)
	close(out)

	var got []model.PacketObservation
	for obs := range out {
		got = append(got, obs)
	}
	if len(got) != 2 {
		t.Fatalf("scanLines emitted %d observations, want 2: %+v", len(got), got)
	}
	if got[0].SrcIP.String() != "203.0.113.7" || got[0].DstPort != 51820 || got[0].Size != 1380 {
		t.Errorf("first observation = %+v", got[0])
	}
	if got[1].SrcIP.String() != "198.51.100.1" || got[1].DstPort != 443 {
		t.Errorf("second observation = %+v", got[1])
	}
}

func TestScanLinesStopsWhenSignaled(t *testing.T) {
	lines := strings.Repeat("1.2.3.4.10 > 9.9.9.9.443: UDP, length 5\n", 50)
	out := make(chan model.PacketObservation)
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		scanLines(strings.NewReader(lines), out, done)
		close(finished)
	}()

	// Take one observation, then signal with the next emit blocked.
	<-out
	close(done)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("scan loop still emitting after stop signal")
	}
}

func TestCommandSource(t *testing.T) {
	line := "203.0.113.7.54321 > 10.0.0.2.51820: UDP, length 1380"
	src := NewCommandSource("echo", line)

	out := make(chan model.PacketObservation, 4)
	if err := src.Start(out); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case obs := <-out:
		if obs.SrcIP.String() != "203.0.113.7" || obs.DstPort != 51820 {
			t.Errorf("observation = %+v", obs)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no observation from command output")
	}
	src.Stop()
}

func TestCommandSourceStartFailure(t *testing.T) {
	src := NewCommandSource("relayscope-no-such-binary")
	if err := src.Start(make(chan model.PacketObservation, 1)); err == nil {
		t.Fatal("Start should fail for a missing binary")
	}
}

func TestNewSelectsSource(t *testing.T) {
	cases := []struct {
		cfg     config.CaptureConfig
		want    string
		wantErr bool
	}{
		{cfg: config.CaptureConfig{Type: "command", Command: "tcpdump"}, want: "*capture.CommandSource"},
		{cfg: config.CaptureConfig{Type: "command"}, wantErr: true},
		{cfg: config.CaptureConfig{Type: "pcap", Interface: "eth0"}, want: "*capture.LiveSource"},
		{cfg: config.CaptureConfig{Type: "pcap"}, wantErr: true},
		{cfg: config.CaptureConfig{Type: "pcapfile", File: "x.pcap"}, want: "*capture.FileSource"},
		{cfg: config.CaptureConfig{Type: "stdin"}, want: "*capture.StdinSource"},
		{cfg: config.CaptureConfig{Type: "nats"}, want: "*capture.NATSSource"},
		{cfg: config.CaptureConfig{Type: "carrier-pigeon"}, wantErr: true},
	}
	for _, tc := range cases {
		src, err := New(&tc.cfg)
		if tc.wantErr {
			if err == nil {
				t.Errorf("New(%+v) did not fail", tc.cfg)
			}
			continue
		}
		if err != nil {
			t.Errorf("New(%+v): %v", tc.cfg, err)
			continue
		}
		if got := fmt.Sprintf("%T", src); got != tc.want {
			t.Errorf("New(%+v) = %s, want %s", tc.cfg, got, tc.want)
		}
	}
}
