// iface.go defines StoreInterface for dependency injection and testing.
//
// The concrete *Store type satisfies this interface. The ingest pipeline
// and the CLI accept StoreInterface so tests can substitute a fake.
package store

import (
	"context"

	"github.com/daviddao/aurora/pkg/clock"
	"github.com/daviddao/aurora/pkg/model"
)

// StoreInterface defines the full set of store operations.
type StoreInterface interface {
	Close() error

	// --- Replicas ---

	// RegisterReplica creates or refreshes a replica. Idempotent.
	RegisterReplica(ctx context.Context, id string) (*model.Replica, error)
	GetReplica(ctx context.Context, id string) (*model.Replica, error)
	UpdateReplicaClock(ctx context.Context, id string, vc clock.VectorClock) error
	TickReplica(ctx context.Context, id string) (clock.VectorClock, error)
	MergeReplicaClock(ctx context.Context, id string, other clock.VectorClock) (clock.VectorClock, error)
	ListReplicas(ctx context.Context) ([]model.Replica, error)

	// --- Events ---

	// InsertEvent appends an event; duplicates report false.
	InsertEvent(ctx context.Context, e model.Envelope) (bool, error)
	GetEvent(ctx context.Context, id string) (*Record, error)
	ListConversation(ctx context.Context, conversationID string) ([]Record, error)
	ListEventsSince(ctx context.Context, since int64, limit int) ([]Record, error)
	ListConversations(ctx context.Context) ([]string, error)
	MaxSeq(ctx context.Context) int64
	CountEvents(ctx context.Context) int64
	SetDeliveryState(ctx context.Context, id string, state model.DeliveryState) error

	// --- Heads ---

	GetHead(ctx context.Context, conversationID string) (*model.Head, error)
	ListHeads(ctx context.Context) ([]model.Head, error)

	// ApplyEvent inserts e and reconciles it against the conversation head.
	ApplyEvent(ctx context.Context, e model.Envelope) (ApplyResult, error)
	// ApplyEventAs also merges e's clock into the replica clock.
	ApplyEventAs(ctx context.Context, replicaID string, e model.Envelope) (ApplyResult, error)
	// SendEvent ticks the replica clock, builds an event with it and
	// applies it, atomically.
	SendEvent(ctx context.Context, replicaID string, build func(clock.VectorClock) (model.Envelope, error)) (model.Envelope, ApplyResult, error)
}

// Compile-time check that *Store implements StoreInterface.
var _ StoreInterface = (*Store)(nil)
