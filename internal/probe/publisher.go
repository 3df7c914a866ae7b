// Package probe moves packet observations between hosts over NATS: a
// publisher runs next to the capture tool, a subscriber feeds a remote
// dashboard. Payloads are the JSON encoding of model.PacketObservation.
package probe

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"RelayScope/internal/model"
)

// DefaultSubject is the NATS subject observations travel on.
const DefaultSubject = "relayscope.observations"

// Publisher publishes observations to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher connects to the NATS server at url.
func NewPublisher(url, subject string) (*Publisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return &Publisher{nc: nc, subject: subject}, nil
}

// Publish sends one observation.
func (p *Publisher) Publish(obs model.PacketObservation) error {
	data, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("failed to encode observation: %w", err)
	}
	return p.nc.Publish(p.subject, data)
}

// Close flushes buffered messages and closes the connection.
func (p *Publisher) Close() {
	p.nc.Drain()
}
