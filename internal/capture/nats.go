package capture

import (
	"RelayScope/internal/model"
	"RelayScope/internal/probe"
)

// NATSSource feeds observations published by a remote rs-probe, letting
// the dashboard run on a different host than the capture.
type NATSSource struct {
	url     string
	subject string

	sub *probe.Subscriber
}

func NewNATSSource(url, subject string) *NATSSource {
	return &NATSSource{url: url, subject: subject}
}

func (s *NATSSource) Start(out chan<- model.PacketObservation) error {
	sub, err := probe.NewSubscriber(s.url)
	if err != nil {
		return err
	}
	if err := sub.Start(s.subject, func(obs model.PacketObservation) {
		out <- obs
	}); err != nil {
		sub.Close()
		return err
	}
	s.sub = sub
	return nil
}

func (s *NATSSource) Stop() {
	if s.sub != nil {
		s.sub.Close()
	}
}
