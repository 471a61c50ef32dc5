// Package frontier computes the causal frontier of a conversation.
//
// The frontier is the antichain (set of mutually incomparable elements)
// of causally maximal events: those that no other event in the log
// happened after. A conversation whose frontier holds a single event has
// converged; several heads mean replicas produced concurrent events that
// still need a canonical winner.
package frontier

import (
	"sort"

	"github.com/daviddao/aurora/pkg/clock"
	"github.com/daviddao/aurora/pkg/model"
	"github.com/daviddao/aurora/pkg/reconcile"
)

// Heads returns the antichain of causally maximal events, sorted by ID.
// An event e is a head iff no other event f satisfies e.Clock < f.Clock.
// Events with equal clocks are all heads. Copies of one ID are collapsed
// with reconcile.Dedup first.
func Heads(events []model.Envelope) []model.Envelope {
	events = reconcile.Dedup(events)
	var heads []model.Envelope
	for i, e := range events {
		dominated := false
		for j, f := range events {
			if i != j && clock.Compare(e.VectorClock, f.VectorClock) == clock.Before {
				dominated = true
				break
			}
		}
		if !dominated {
			heads = append(heads, e)
		}
	}
	sort.Slice(heads, func(a, b int) bool { return heads[a].ID < heads[b].ID })
	return heads
}

// Status summarizes the frontier of one conversation.
type Status struct {
	Converged bool             `json:"converged"`
	Heads     []model.Envelope `json:"heads"`
	// Canonical is the head every replica agrees on, nil for an empty log.
	Canonical *model.Envelope `json:"canonical,omitempty"`
	// Clock is the merged clock of every event in the log.
	Clock clock.VectorClock `json:"clock"`
}

// ComputeStatus returns the frontier status of a conversation's events.
// The canonical head is found by folding reconcile.Pair over the heads in
// ID order; since heads are pairwise equal or concurrent, this reduces to
// the tie-break maximum and does not depend on input order.
func ComputeStatus(events []model.Envelope) Status {
	heads := Heads(events)
	st := Status{
		Converged: len(heads) <= 1,
		Heads:     heads,
		Clock:     reconcile.MergeAll(events),
	}
	if len(heads) == 0 {
		return st
	}
	canonical := heads[0]
	for _, h := range heads[1:] {
		canonical = reconcile.Pair(canonical, h).Winner
	}
	st.Canonical = &canonical
	return st
}
