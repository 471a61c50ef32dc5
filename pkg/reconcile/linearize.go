package reconcile

import (
	"bytes"
	"container/heap"
	"encoding/json"
	"fmt"

	"github.com/daviddao/aurora/pkg/clock"
	"github.com/daviddao/aurora/pkg/model"
)

// Linearize returns the events of one conversation in canonical order.
//
// The order is a topological sort of the happened-before relation: an
// event is emitted only after every event that causally precedes it.
// Among events that are ready at the same time, the one that would lose
// TieBreak goes first, so linearizing two events always puts the Pair
// winner last. The result is independent of input order.
//
// Events sharing an ID are collapsed with Dedup. Mixing conversations
// returns a *ContractViolation.
func Linearize(events []model.Envelope) ([]model.Envelope, error) {
	if len(events) == 0 {
		return nil, nil
	}
	conv := events[0].ConversationID
	for _, e := range events {
		if e.ConversationID != conv {
			return nil, &ContractViolation{Reason: fmt.Sprintf(
				"linearize: event %s belongs to conversation %q, expected %q", e.ID, e.ConversationID, conv)}
		}
	}
	nodes := Dedup(events)

	// succ[i] lists events strictly after i; pending[j] counts events
	// strictly before j that are not yet emitted.
	succ := make([][]int, len(nodes))
	pending := make([]int, len(nodes))
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			switch clock.Compare(nodes[i].VectorClock, nodes[j].VectorClock) {
			case clock.Before:
				succ[i] = append(succ[i], j)
				pending[j]++
			case clock.After:
				succ[j] = append(succ[j], i)
				pending[i]++
			}
		}
	}

	ready := &readyQueue{nodes: nodes}
	for i := range nodes {
		if pending[i] == 0 {
			heap.Push(ready, i)
		}
	}

	out := make([]model.Envelope, 0, len(nodes))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		out = append(out, nodes[i])
		for _, j := range succ[i] {
			pending[j]--
			if pending[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}
	return out, nil
}

// Dedup keeps one envelope per ID, in order of first appearance. When
// copies of an ID differ, the kept copy does not depend on input order:
// the larger CreatedAt, then the causally later clock, then the larger
// JSON encoding.
func Dedup(events []model.Envelope) []model.Envelope {
	pos := make(map[string]int, len(events))
	out := make([]model.Envelope, 0, len(events))
	for _, e := range events {
		i, ok := pos[e.ID]
		if !ok {
			pos[e.ID] = len(out)
			out = append(out, e)
			continue
		}
		out[i] = preferCopy(out[i], e)
	}
	return out
}

// preferCopy picks between two envelopes that share an ID.
func preferCopy(a, b model.Envelope) model.Envelope {
	if a.CreatedAt != b.CreatedAt {
		if b.CreatedAt > a.CreatedAt {
			return b
		}
		return a
	}
	switch clock.Compare(a.VectorClock, b.VectorClock) {
	case clock.After:
		return a
	case clock.Before:
		return b
	}
	ja, errA := json.Marshal(a)
	jb, errB := json.Marshal(b)
	if errA == nil && errB == nil && bytes.Compare(jb, ja) > 0 {
		return b
	}
	return a
}

// MergeAll returns the merged clock of every event in events.
func MergeAll(events []model.Envelope) clock.VectorClock {
	merged := clock.VectorClock{}
	for _, e := range events {
		merged = clock.Merge(merged, e.VectorClock)
	}
	return merged
}

// readyQueue is a min-heap of node indexes ordered by tie-break rank.
type readyQueue struct {
	nodes []model.Envelope
	idx   []int
}

func (q *readyQueue) Len() int { return len(q.idx) }

func (q *readyQueue) Less(a, b int) bool {
	return tieBreakLess(q.nodes[q.idx[a]], q.nodes[q.idx[b]])
}

func (q *readyQueue) Swap(a, b int) { q.idx[a], q.idx[b] = q.idx[b], q.idx[a] }

func (q *readyQueue) Push(x any) { q.idx = append(q.idx, x.(int)) }

func (q *readyQueue) Pop() any {
	n := len(q.idx)
	x := q.idx[n-1]
	q.idx = q.idx[:n-1]
	return x
}
