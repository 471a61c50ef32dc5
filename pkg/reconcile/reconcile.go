// Package reconcile decides the canonical order of messaging events that
// were produced concurrently on different replicas.
//
// Pair compares the two envelopes' vector clocks. When one causally
// follows the other it wins outright. When the clocks are equal or
// concurrent, TieBreak applies a deterministic rule (larger createdAt,
// then lexicographically larger id) so that every replica picks the same
// winner no matter which order it sees the pair in. Wall-clock time is
// only consulted inside the tie-break and can never override causality.
//
// Everything here is pure: no state, no I/O, safe for concurrent use.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/daviddao/aurora/pkg/clock"
	"github.com/daviddao/aurora/pkg/model"
)

// ErrContractViolation matches every *ContractViolation via errors.Is.
var ErrContractViolation = errors.New("reconcile: contract violation")

// ContractViolation reports caller misuse, such as reconciling envelopes
// that belong to different conversations.
type ContractViolation struct {
	Reason string
}

func (e *ContractViolation) Error() string {
	return "reconcile: contract violation: " + e.Reason
}

// Is makes errors.Is(err, ErrContractViolation) true.
func (e *ContractViolation) Is(target error) bool {
	return target == ErrContractViolation
}

// Outcome is the result of reconciling two envelopes.
type Outcome struct {
	// Winner is always one of the two inputs.
	Winner model.Envelope `json:"winner"`
	// MergedClock is the component-wise max of both inputs' clocks,
	// whatever the relation.
	MergedClock clock.VectorClock `json:"mergedClock"`
	// Relation is the causal relation of left to right.
	Relation clock.Relation `json:"relation"`
}

// Pair reconciles left against right. It never fails; reconciling
// envelopes from different conversations yields a meaningless but
// well-formed outcome. Use CheckedPair to reject that case.
func Pair(left, right model.Envelope) Outcome {
	relation := clock.Compare(left.VectorClock, right.VectorClock)
	out := Outcome{
		MergedClock: clock.Merge(left.VectorClock, right.VectorClock),
		Relation:    relation,
	}
	switch relation {
	case clock.After:
		out.Winner = left
	case clock.Before:
		out.Winner = right
	default:
		out.Winner = TieBreak(left, right)
	}
	return out
}

// CheckedPair is Pair with the same-conversation contract enforced.
func CheckedPair(left, right model.Envelope) (Outcome, error) {
	if left.ConversationID != right.ConversationID {
		return Outcome{}, &ContractViolation{Reason: fmt.Sprintf(
			"envelopes %s and %s belong to different conversations (%q, %q)",
			left.ID, right.ID, left.ConversationID, right.ConversationID)}
	}
	return Pair(left, right), nil
}

// TieBreak picks a winner when no causal order exists: the strictly
// larger CreatedAt wins, then the lexicographically larger ID. The result
// does not depend on argument order unless both IDs are identical, in
// which case left is returned.
func TieBreak(left, right model.Envelope) model.Envelope {
	if left.CreatedAt != right.CreatedAt {
		if left.CreatedAt > right.CreatedAt {
			return left
		}
		return right
	}
	if right.ID > left.ID {
		return right
	}
	return left
}

// tieBreakLess reports whether a loses the tie-break against b.
func tieBreakLess(a, b model.Envelope) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt < b.CreatedAt
	}
	return a.ID < b.ID
}
