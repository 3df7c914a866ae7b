package probe

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/nats-io/nats.go"

	"RelayScope/internal/model"
)

// Handler receives every observation a subscriber decodes.
type Handler func(model.PacketObservation)

// Subscriber receives observations published by a remote probe.
type Subscriber struct {
	nc *nats.Conn
}

// NewSubscriber connects to the NATS server at url.
func NewSubscriber(url string) (*Subscriber, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return &Subscriber{nc: nc}, nil
}

// Start subscribes to subject and invokes handler for each observation.
// Payloads that do not decode are logged and dropped, like unparseable
// capture lines.
func (s *Subscriber) Start(subject string, handler Handler) error {
	if subject == "" {
		subject = DefaultSubject
	}
	_, err := s.nc.Subscribe(subject, func(msg *nats.Msg) {
		obs, err := decodeObservation(msg.Data)
		if err != nil {
			log.Printf("Discarding malformed observation: %v", err)
			return
		}
		handler(obs)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	log.Printf("Subscribed to %s, waiting for observations...", subject)
	return nil
}

// Close drains the subscription, letting an in-flight handler finish,
// and winds the connection down.
func (s *Subscriber) Close() {
	s.nc.Drain()
}

func decodeObservation(data []byte) (model.PacketObservation, error) {
	var obs model.PacketObservation
	if err := json.Unmarshal(data, &obs); err != nil {
		return model.PacketObservation{}, err
	}
	if obs.SrcIP == nil {
		return model.PacketObservation{}, fmt.Errorf("observation missing source address")
	}
	return obs, nil
}
