package models

import "encoding/json"

// Push event types delivered over the transport channel.
const (
	EventOrderCreated   = "order:created"
	EventOrderUpdated   = "order:updated"
	EventOfferCreated   = "offer:created"
	EventOfferUpdated   = "offer:updated"
	EventMessageCreated = "message:created"
)

// Envelope is the wire shape of every push event. Payload stays raw
// until the type is known; unknown types are dropped by the consumer.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}
