package messagequeue

import (
	"encoding/json"
	"time"
)

// EventPublisher publishes named events as JSON envelopes on a fixed queue.
type EventPublisher struct {
	mq    MessageQueue
	queue string
}

// NewEventPublisher creates an EventPublisher bound to the given queue.
func NewEventPublisher(mq MessageQueue, queue string) *EventPublisher {
	return &EventPublisher{mq: mq, queue: queue}
}

type eventEnvelope struct {
	Event   string                 `json:"event"`
	At      time.Time              `json:"at"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Publish wraps the payload in an envelope and sends it.
func (p *EventPublisher) Publish(event string, payload map[string]interface{}) error {
	body, err := json.Marshal(eventEnvelope{
		Event:   event,
		At:      time.Now().UTC(),
		Payload: payload,
	})
	if err != nil {
		return err
	}
	return p.mq.Publish(p.queue, body)
}
