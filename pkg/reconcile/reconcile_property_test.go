package reconcile

import (
	"fmt"
	"testing"

	"github.com/daviddao/aurora/pkg/clock"
	"github.com/daviddao/aurora/pkg/model"
)

// sampleEvents builds envelopes over a small grid of clocks, timestamps
// and ids so that every relation and every tie-break branch occurs.
func sampleEvents() []model.Envelope {
	clocks := []clock.VectorClock{
		{},
		{"a": 1},
		{"b": 1},
		{"a": 1, "b": 1},
		{"a": 2, "b": 0},
		{"a": 2, "b": 1},
	}
	stamps := []int64{100, 200}

	var out []model.Envelope
	n := 0
	for _, vc := range clocks {
		for _, ts := range stamps {
			// Alternate the leading hex digit so id order differs from
			// creation order.
			id := fmt.Sprintf("%x%07x-0000-4000-8000-000000000000", 15-n%16, n)
			out = append(out, event(id, ts, vc))
			n++
		}
	}
	return out
}

func TestProperty_PairOrderIndependent(t *testing.T) {
	events := sampleEvents()
	for _, x := range events {
		for _, y := range events {
			xy, yx := Pair(x, y), Pair(y, x)
			if xy.Winner.ID != yx.Winner.ID {
				t.Fatalf("Pair(%s%v@%d, %s%v@%d) winners differ: %s vs %s",
					x.ID[:4], x.VectorClock, x.CreatedAt, y.ID[:4], y.VectorClock, y.CreatedAt,
					xy.Winner.ID, yx.Winner.ID)
			}
			if xy.Relation != yx.Relation.Invert() {
				t.Fatalf("relations %v and %v are not mirror images", xy.Relation, yx.Relation)
			}
			if !xy.MergedClock.Equal(yx.MergedClock) {
				t.Fatalf("merged clocks differ: %v vs %v", xy.MergedClock, yx.MergedClock)
			}
		}
	}
}

func TestProperty_WinnerIsAnInput(t *testing.T) {
	events := sampleEvents()
	for _, x := range events {
		for _, y := range events {
			w := Pair(x, y).Winner
			if w.ID != x.ID && w.ID != y.ID {
				t.Fatalf("winner %s is neither input", w.ID)
			}
		}
	}
}

func TestProperty_MergedClockMatchesMerge(t *testing.T) {
	events := sampleEvents()
	for _, x := range events {
		for _, y := range events {
			got := Pair(x, y).MergedClock
			want := clock.Merge(x.VectorClock, y.VectorClock)
			if !got.Equal(want) || len(got) != len(want) {
				t.Fatalf("mergedClock = %v, want %v", got, want)
			}
		}
	}
}

func TestProperty_CausalWinnerDominates(t *testing.T) {
	events := sampleEvents()
	for _, x := range events {
		for _, y := range events {
			out := Pair(x, y)
			switch out.Relation {
			case clock.After:
				if out.Winner.ID != x.ID {
					t.Fatal("after: left must win")
				}
			case clock.Before:
				if out.Winner.ID != y.ID {
					t.Fatal("before: right must win")
				}
			}
		}
	}
}
