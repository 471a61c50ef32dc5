// Package model defines the core domain types for aurora.
//
// Aurora orders messaging events that were produced independently on
// several devices of the same conversation. Each event travels as an
// Envelope stamped with the sender's vector clock at creation time:
//
//   - Vector clocks capture causality. If one envelope's clock dominates
//     another's, the first causally follows the second and wins.
//
//   - When clocks are equal or concurrent there is no causal order, and a
//     deterministic tie-break (createdAt, then id) picks the winner so
//     every replica converges on the same choice without coordination.
//
// DeliveryState travels with an envelope as passive data. Reconciliation
// never reads or changes it; only the store's delivery update enforces
// the transition rules defined here.
package model

import (
	"fmt"
	"time"

	"github.com/daviddao/aurora/pkg/clock"
)

// DeliveryState is the delivery/read-receipt state of a message.
type DeliveryState string

const (
	StatePending   DeliveryState = "pending"
	StateSent      DeliveryState = "sent"
	StateDelivered DeliveryState = "delivered"
	StateRead      DeliveryState = "read"
	StateFailed    DeliveryState = "failed"
)

// DeliveryStates lists every valid state in lifecycle order.
var DeliveryStates = []DeliveryState{StatePending, StateSent, StateDelivered, StateRead, StateFailed}

// Valid reports whether s is one of the five known states.
func (s DeliveryState) Valid() bool {
	switch s {
	case StatePending, StateSent, StateDelivered, StateRead, StateFailed:
		return true
	}
	return false
}

// ParseDeliveryState converts a string to a DeliveryState.
func ParseDeliveryState(s string) (DeliveryState, error) {
	ds := DeliveryState(s)
	if !ds.Valid() {
		return "", fmt.Errorf("unknown delivery state %q", s)
	}
	return ds, nil
}

// deliveryRank orders the forward path pending → sent → delivered → read.
var deliveryRank = map[DeliveryState]int{
	StatePending:   0,
	StateSent:      1,
	StateDelivered: 2,
	StateRead:      3,
}

// CanTransition reports whether a message may move from s to next.
// The forward path may skip steps (a read receipt implies delivery),
// failed is reachable from pending and sent only, and re-applying the
// current state is allowed.
func (s DeliveryState) CanTransition(next DeliveryState) bool {
	if !s.Valid() || !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	if next == StateFailed {
		return s == StatePending || s == StateSent
	}
	if s == StateFailed {
		return false
	}
	return deliveryRank[next] > deliveryRank[s]
}

// Replica is a registered device that produces events.
type Replica struct {
	ID         string            `json:"id"`
	Clock      clock.VectorClock `json:"clock"`
	Registered time.Time         `json:"registered_at"`
	LastSeen   time.Time         `json:"last_seen_at"`
}

// Head is the canonical tip of a conversation: the winner of the latest
// reconciliation and the merged clock of everything applied so far.
type Head struct {
	ConversationID string            `json:"conversation_id"`
	EventID        string            `json:"event_id"`
	Clock          clock.VectorClock `json:"clock"`
	UpdatedAt      time.Time         `json:"updated_at"`
}
