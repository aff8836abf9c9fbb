package events

import (
	"encoding/json"
	"time"
)

// Envelope is the frame published to Redis and forwarded verbatim to
// websocket clients.
type Envelope struct {
	Event      string          `json:"event"`
	Room       string          `json:"room,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Marshal renders the envelope as a wire frame.
func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// NewEnvelope marshals payload into a wire envelope.
func NewEnvelope(event, room string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Event:      event,
		Room:       room,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}
