package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/daviddao/aurora/pkg/clock"
)

// Payload is the message content carried by an envelope.
type Payload struct {
	Body     string   `json:"body"`
	Mentions []string `json:"mentions"`
	// ReplyToEventID is empty when the message is not a reply.
	ReplyToEventID string `json:"replyToEventId,omitempty"`
}

// Envelope is one immutable messaging event, stamped with its sender's
// vector clock at creation time. Values returned by ParseEnvelope and
// Compose own their clock and mentions; callers must not modify them.
type Envelope struct {
	ID             string            `json:"id"`
	ConversationID string            `json:"conversationId"`
	SenderID       string            `json:"senderId"`
	CreatedAt      int64             `json:"createdAt"`
	VectorClock    clock.VectorClock `json:"vectorClock"`
	Payload        Payload           `json:"payload"`
	DeliveryState  DeliveryState     `json:"deliveryState"`
	Encrypted      bool              `json:"encrypted"`
}

// Validate checks an in-memory envelope against the same rules that
// ParseEnvelope applies to raw input.
func (e Envelope) Validate() error {
	if !isUUID(e.ID) {
		return invalid("id", "must be a UUID")
	}
	if e.ConversationID == "" {
		return invalid("conversationId", "must not be empty")
	}
	if e.SenderID == "" {
		return invalid("senderId", "must not be empty")
	}
	if e.CreatedAt < 0 {
		return invalid("createdAt", "must be non-negative")
	}
	if e.VectorClock == nil {
		return invalid("vectorClock", "required")
	}
	for replica := range e.VectorClock {
		if replica == "" {
			return invalid("vectorClock", "replica id must not be empty")
		}
	}
	if e.Payload.Body == "" {
		return invalid("payload.body", "must not be empty")
	}
	for i, m := range e.Payload.Mentions {
		if m == "" {
			return invalid(indexField("payload.mentions", i), "must not be empty")
		}
	}
	if e.Payload.ReplyToEventID != "" && !isUUID(e.Payload.ReplyToEventID) {
		return invalid("payload.replyToEventId", "must be a UUID")
	}
	if !e.DeliveryState.Valid() {
		return invalid("deliveryState", "must be one of pending, sent, delivered, read, failed")
	}
	return nil
}

// ComposeParams describes a new local event.
type ComposeParams struct {
	ConversationID string
	SenderID       string
	// Clock is the sender replica's clock after ticking for this event.
	Clock     clock.VectorClock
	Body      string
	Mentions  []string
	ReplyTo   string
	Encrypted bool
	// Now defaults to time.Now.
	Now func() time.Time
}

// Compose builds a new pending envelope at the sender's causal boundary.
// It assigns a random UUID and stamps CreatedAt in epoch milliseconds.
func Compose(p ComposeParams) (Envelope, error) {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	mentions := make([]string, len(p.Mentions))
	copy(mentions, p.Mentions)

	e := Envelope{
		ID:             uuid.NewString(),
		ConversationID: p.ConversationID,
		SenderID:       p.SenderID,
		CreatedAt:      now().UnixMilli(),
		VectorClock:    p.Clock.Copy(),
		Payload: Payload{
			Body:           p.Body,
			Mentions:       mentions,
			ReplyToEventID: p.ReplyTo,
		},
		DeliveryState: StatePending,
		Encrypted:     p.Encrypted,
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// isUUID accepts only the canonical hyphenated 36-character form.
func isUUID(s string) bool {
	if len(s) != 36 {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
