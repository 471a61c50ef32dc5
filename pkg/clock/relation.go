package clock

import "fmt"

// Relation is the causal relation of one clock to another.
type Relation int

const (
	// Equal: both clocks carry identical knowledge.
	Equal Relation = iota
	// Before: the left clock happened strictly before the right one.
	Before
	// After: the left clock happened strictly after the right one.
	After
	// Concurrent: neither history contains the other.
	Concurrent
)

var relationNames = [...]string{
	Equal:      "equal",
	Before:     "before",
	After:      "after",
	Concurrent: "concurrent",
}

func (r Relation) String() string {
	if r < 0 || int(r) >= len(relationNames) {
		return fmt.Sprintf("Relation(%d)", int(r))
	}
	return relationNames[r]
}

// Invert returns the relation seen from the other side: Before and After
// swap, Equal and Concurrent are symmetric.
func (r Relation) Invert() Relation {
	switch r {
	case Before:
		return After
	case After:
		return Before
	default:
		return r
	}
}

// MarshalText encodes the relation as its lower-case name.
func (r Relation) MarshalText() ([]byte, error) {
	if r < 0 || int(r) >= len(relationNames) {
		return nil, fmt.Errorf("clock: invalid relation %d", int(r))
	}
	return []byte(relationNames[r]), nil
}

// UnmarshalText parses a lower-case relation name.
func (r *Relation) UnmarshalText(text []byte) error {
	for i, name := range relationNames {
		if name == string(text) {
			*r = Relation(i)
			return nil
		}
	}
	return fmt.Errorf("clock: unknown relation %q", text)
}
