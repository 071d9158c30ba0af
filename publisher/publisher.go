package publisher

import (
	"encoding/json"
	"log"

	natsClient "conduit/nats"
)

// EventPublisher emits domain events to NATS. Publishing is best-effort:
// a failed publish is logged and never fails the use case that caused it.
type EventPublisher struct {
	nats *natsClient.Client
}

func NewEventPublisher(nats *natsClient.Client) *EventPublisher {
	return &EventPublisher{nats: nats}
}

// Publish marshals the event and sends it on the given subject.
func (p *EventPublisher) Publish(subject string, event interface{}) {
	if p == nil || p.nats == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", subject, err)
		return
	}

	if err := p.nats.Publish(subject, data); err != nil {
		log.Printf("failed to publish %s event: %v", subject, err)
		return
	}

	log.Printf("Published event: %s", subject)
}
