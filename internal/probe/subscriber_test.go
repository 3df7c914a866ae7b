package probe

import (
	"encoding/json"
	"net"
	"testing"

	"RelayScope/internal/model"
)

func TestDecodeObservation(t *testing.T) {
	payload, err := json.Marshal(model.PacketObservation{
		SrcIP:   net.ParseIP("203.0.113.7"),
		DstPort: 51820,
		Size:    1380,
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	obs, err := decodeObservation(payload)
	if err != nil {
		t.Fatalf("decodeObservation: %v", err)
	}
	if !obs.SrcIP.Equal(net.ParseIP("203.0.113.7")) {
		t.Errorf("SrcIP = %s, want 203.0.113.7", obs.SrcIP)
	}
	if obs.DstPort != 51820 || obs.Size != 1380 {
		t.Errorf("got port=%d size=%d, want 51820/1380", obs.DstPort, obs.Size)
	}
}

func TestDecodeObservationRejectsNoise(t *testing.T) {
	for _, data := range [][]byte{
		[]byte("not json"),
		[]byte(`{"src_ip":"not-an-ip","dst_port":1,"size":2}`),
		[]byte(`{"dst_port":443,"size":100}`),
		{},
	} {
		if _, err := decodeObservation(data); err == nil {
			t.Errorf("decodeObservation(%q) accepted noise", data)
		}
	}
}
