// Package clock implements vector clocks for causal ordering of events
// produced independently on several replicas (devices).
//
// A VectorClock maps a replica ID to the number of events that replica
// has produced, as known by the holder of the clock. Three rules govern
// its use:
//
//	Tick:    before a replica produces an event, it increments its own entry.
//	Merge:   when two histories meet, each entry becomes the max of both.
//	Compare: a clock is Before another when every entry is <= and at least
//	         one is <; clocks where each side has a larger entry are
//	         Concurrent.
//
// Missing entries count as zero. Values are never mutated in place: every
// operation returns a fresh clock, so a VectorClock can be shared freely
// between goroutines once built.
package clock

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrEmptyReplicaID is returned by New when the replica ID is empty.
var ErrEmptyReplicaID = errors.New("clock: empty replica id")

// VectorClock maps replica IDs to event counters. Treat as immutable.
type VectorClock map[string]uint64

// New returns the clock of a freshly provisioned replica: {replicaID: 0}.
func New(replicaID string) (VectorClock, error) {
	if replicaID == "" {
		return nil, ErrEmptyReplicaID
	}
	return VectorClock{replicaID: 0}, nil
}

// Get returns the counter for replicaID, or 0 if absent.
func (vc VectorClock) Get(replicaID string) uint64 {
	return vc[replicaID]
}

// Copy returns a deep copy. A nil clock copies to an empty one.
func (vc VectorClock) Copy() VectorClock {
	out := make(VectorClock, len(vc))
	for k, v := range vc {
		out[k] = v
	}
	return out
}

// Tick returns a copy of vc with replicaID's counter advanced by one.
func (vc VectorClock) Tick(replicaID string) VectorClock {
	out := vc.Copy()
	out[replicaID]++
	return out
}

// Merge returns the component-wise maximum of vc and other.
func (vc VectorClock) Merge(other VectorClock) VectorClock {
	return Merge(vc, other)
}

// Merge returns a new clock holding max(a[k], b[k]) for every key in
// either input. It is commutative, associative and idempotent.
func Merge(a, b VectorClock) VectorClock {
	out := a.Copy()
	for k, v := range b {
		if cur, ok := out[k]; !ok || v > cur {
			out[k] = v
		}
	}
	return out
}

// Compare returns the causal relation of vc to other.
func (vc VectorClock) Compare(other VectorClock) Relation {
	return Compare(vc, other)
}

// Compare scans the union of keys of a and b. It reports After when a
// has a larger entry somewhere and no smaller one, Before for the
// mirror case, Equal when no entry differs and Concurrent when both
// sides have a larger entry.
func Compare(a, b VectorClock) Relation {
	var leftDominates, rightDominates bool
	for k, av := range a {
		bv := b[k]
		if av > bv {
			leftDominates = true
		} else if av < bv {
			rightDominates = true
		}
	}
	for k, bv := range b {
		if _, seen := a[k]; seen {
			continue
		}
		if bv > 0 {
			rightDominates = true
		}
	}

	switch {
	case leftDominates && rightDominates:
		return Concurrent
	case leftDominates:
		return After
	case rightDominates:
		return Before
	default:
		return Equal
	}
}

// Equal reports whether vc and other carry the same causal knowledge.
// Missing entries count as zero, so {a:0} equals {}.
func (vc VectorClock) Equal(other VectorClock) bool {
	return Compare(vc, other) == Equal
}

// Dominates reports whether vc strictly happened after other.
func (vc VectorClock) Dominates(other VectorClock) bool {
	return Compare(vc, other) == After
}

// IsConcurrent reports whether neither clock dominates the other.
func (vc VectorClock) IsConcurrent(other VectorClock) bool {
	return Compare(vc, other) == Concurrent
}

// Replicas returns the replica IDs present in vc, sorted.
func (vc VectorClock) Replicas() []string {
	keys := make([]string, 0, len(vc))
	for k := range vc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders the clock with sorted keys, e.g. {a:1, b:2}.
func (vc VectorClock) String() string {
	if len(vc) == 0 {
		return "{}"
	}
	keys := vc.Replicas()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, vc[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
