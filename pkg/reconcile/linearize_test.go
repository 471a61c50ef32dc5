package reconcile

import (
	"errors"
	"testing"

	"github.com/daviddao/aurora/pkg/clock"
	"github.com/daviddao/aurora/pkg/model"
)

func ids(events []model.Envelope) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.ID
	}
	return out
}

func sameOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLinearize_Empty(t *testing.T) {
	out, err := Linearize(nil)
	if err != nil || len(out) != 0 {
		t.Fatalf("Linearize(nil) = %v, %v", out, err)
	}
}

func TestLinearize_CausalChainBeatsTimestamps(t *testing.T) {
	first := event(id9f1, 900, clock.VectorClock{"a": 1})
	second := event(idF98, 100, clock.VectorClock{"a": 1, "b": 1})
	third := event(id0f3, 50, clock.VectorClock{"a": 2, "b": 1})

	out, err := Linearize([]model.Envelope{third, first, second})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{id9f1, idF98, id0f3}
	if got := ids(out); !sameOrder(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestLinearize_ConcurrentOrderedByTieBreak(t *testing.T) {
	base := event(id311, 10, clock.VectorClock{"a": 1})
	fromA := event(idF98, 300, clock.VectorClock{"a": 2})
	fromB := event(id0f3, 200, clock.VectorClock{"a": 1, "b": 1})

	out, err := Linearize([]model.Envelope{fromA, fromB, base})
	if err != nil {
		t.Fatal(err)
	}
	// fromB loses the tie-break against fromA (earlier createdAt).
	want := []string{id311, id0f3, idF98}
	if got := ids(out); !sameOrder(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestLinearize_InputOrderIndependent(t *testing.T) {
	events := sampleEvents()
	forward, err := Linearize(events)
	if err != nil {
		t.Fatal(err)
	}
	reversed := make([]model.Envelope, len(events))
	for i, e := range events {
		reversed[len(events)-1-i] = e
	}
	backward, err := Linearize(reversed)
	if err != nil {
		t.Fatal(err)
	}
	rotated := append(append([]model.Envelope{}, events[5:]...), events[:5]...)
	rot, err := Linearize(rotated)
	if err != nil {
		t.Fatal(err)
	}
	if !sameOrder(ids(forward), ids(backward)) || !sameOrder(ids(forward), ids(rot)) {
		t.Fatalf("order depends on input:\n%v\n%v\n%v", ids(forward), ids(backward), ids(rot))
	}
}

func TestLinearize_PairWinnerComesLast(t *testing.T) {
	events := sampleEvents()
	for _, x := range events {
		for _, y := range events {
			if x.ID == y.ID {
				continue
			}
			out, err := Linearize([]model.Envelope{x, y})
			if err != nil {
				t.Fatal(err)
			}
			if w := Pair(x, y).Winner; out[1].ID != w.ID {
				t.Fatalf("Linearize(%s, %s) ends with %s, Pair winner is %s", x.ID, y.ID, out[1].ID, w.ID)
			}
		}
	}
}

func TestLinearize_RespectsHappenedBefore(t *testing.T) {
	out, err := Linearize(sampleEvents())
	if err != nil {
		t.Fatal(err)
	}
	for i := range out {
		for j := i + 1; j < len(out); j++ {
			if clock.Compare(out[i].VectorClock, out[j].VectorClock) == clock.After {
				t.Fatalf("%s (%v) emitted before its predecessor %s (%v)",
					out[i].ID, out[i].VectorClock, out[j].ID, out[j].VectorClock)
			}
		}
	}
}

func TestLinearize_CollapsesDuplicates(t *testing.T) {
	e := event(idF98, 1, clock.VectorClock{"a": 1})
	out, err := Linearize([]model.Envelope{e, e, e})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d events, want 1", len(out))
	}
}

func TestLinearize_DivergentCopiesIgnoreInputOrder(t *testing.T) {
	tests := []struct {
		name     string
		a, b     model.Envelope
		wantBody string
	}{
		{
			"later createdAt",
			withBody(event(idF98, 1, clock.VectorClock{"a": 1}), "old"),
			withBody(event(idF98, 2, clock.VectorClock{"a": 1}), "new"),
			"new",
		},
		{
			"causally later clock",
			withBody(event(idF98, 1, clock.VectorClock{"a": 1}), "old"),
			withBody(event(idF98, 1, clock.VectorClock{"a": 2}), "new"),
			"new",
		},
		{
			"concurrent clocks",
			withBody(event(idF98, 1, clock.VectorClock{"a": 1}), "x"),
			withBody(event(idF98, 1, clock.VectorClock{"b": 1}), "y"),
			"",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other := event(id311, 5, clock.VectorClock{"c": 1})
			fwd, err := Linearize([]model.Envelope{tt.a, other, tt.b})
			if err != nil {
				t.Fatal(err)
			}
			rev, err := Linearize([]model.Envelope{tt.b, other, tt.a})
			if err != nil {
				t.Fatal(err)
			}
			if len(fwd) != 2 || len(rev) != 2 {
				t.Fatalf("got %d and %d events, want 2", len(fwd), len(rev))
			}
			if !sameOrder(ids(fwd), ids(rev)) {
				t.Fatalf("order depends on input: %v vs %v", ids(fwd), ids(rev))
			}
			for i := range fwd {
				if fwd[i].Payload.Body != rev[i].Payload.Body || !fwd[i].VectorClock.Equal(rev[i].VectorClock) {
					t.Fatalf("kept copy depends on input: %+v vs %+v", fwd[i], rev[i])
				}
			}
			if tt.wantBody != "" {
				for _, e := range fwd {
					if e.ID == idF98 && e.Payload.Body != tt.wantBody {
						t.Fatalf("kept body %q, want %q", e.Payload.Body, tt.wantBody)
					}
				}
			}
		})
	}
}

func withBody(e model.Envelope, body string) model.Envelope {
	e.Payload.Body = body
	return e
}

func TestLinearize_RejectsMixedConversations(t *testing.T) {
	a := event(idF98, 1, clock.VectorClock{"a": 1})
	b := event(id311, 2, clock.VectorClock{"a": 2})
	b.ConversationID = "other"
	if _, err := Linearize([]model.Envelope{a, b}); !errors.Is(err, ErrContractViolation) {
		t.Fatalf("Linearize: got %v, want contract violation", err)
	}
}

func TestMergeAll(t *testing.T) {
	got := MergeAll([]model.Envelope{
		event(idF98, 1, clock.VectorClock{"a": 2}),
		event(id311, 1, clock.VectorClock{"b": 3}),
		event(id0f3, 1, clock.VectorClock{"a": 1, "c": 1}),
	})
	want := clock.VectorClock{"a": 2, "b": 3, "c": 1}
	if !got.Equal(want) {
		t.Fatalf("MergeAll = %v, want %v", got, want)
	}
	if empty := MergeAll(nil); len(empty) != 0 {
		t.Fatalf("MergeAll(nil) = %v", empty)
	}
}
