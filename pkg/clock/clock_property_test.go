package clock

import "testing"

// sampleClocks enumerates every clock over replicas {a, b} with counters
// in [0, 2], plus variants where zero entries are omitted.
func sampleClocks() []VectorClock {
	var out []VectorClock
	for a := uint64(0); a <= 2; a++ {
		for b := uint64(0); b <= 2; b++ {
			out = append(out, VectorClock{"a": a, "b": b})
			sparse := VectorClock{}
			if a > 0 {
				sparse["a"] = a
			}
			if b > 0 {
				sparse["b"] = b
			}
			out = append(out, sparse)
		}
	}
	out = append(out, VectorClock{"c": 1}, nil)
	return out
}

func TestProperty_TickLaw(t *testing.T) {
	for _, c := range sampleClocks() {
		for _, r := range []string{"a", "b", "c"} {
			next := c.Tick(r)
			if next.Get(r) != c.Get(r)+1 {
				t.Fatalf("Tick(%v, %s)[%s] = %d, want %d", c, r, r, next.Get(r), c.Get(r)+1)
			}
			for _, k := range c.Replicas() {
				if k != r && next.Get(k) != c.Get(k) {
					t.Fatalf("Tick(%v, %s) changed %s", c, r, k)
				}
			}
			if next.Compare(c) != After {
				t.Fatalf("Tick(%v, %s) should be After the input", c, r)
			}
		}
	}
}

func TestProperty_MergeCommutative(t *testing.T) {
	for _, a := range sampleClocks() {
		for _, b := range sampleClocks() {
			ab, ba := Merge(a, b), Merge(b, a)
			if !ab.Equal(ba) || len(ab) != len(ba) {
				t.Fatalf("Merge(%v, %v) = %v but reversed = %v", a, b, ab, ba)
			}
		}
	}
}

func TestProperty_MergeAssociative(t *testing.T) {
	clocks := sampleClocks()
	for _, a := range clocks {
		for _, b := range clocks {
			for _, c := range clocks {
				left := Merge(Merge(a, b), c)
				right := Merge(a, Merge(b, c))
				if !left.Equal(right) {
					t.Fatalf("associativity: (%v+%v)+%v = %v, %v+(%v+%v) = %v", a, b, c, left, a, b, c, right)
				}
			}
		}
	}
}

func TestProperty_MergeIdempotent(t *testing.T) {
	for _, a := range sampleClocks() {
		m := Merge(a, a)
		if !m.Equal(a) || len(m) != len(a) {
			t.Fatalf("Merge(%v, %v) = %v", a, a, m)
		}
	}
}

func TestProperty_MergeDominatesBoth(t *testing.T) {
	for _, a := range sampleClocks() {
		for _, b := range sampleClocks() {
			m := Merge(a, b)
			for _, in := range []VectorClock{a, b} {
				if r := m.Compare(in); r != After && r != Equal {
					t.Fatalf("Merge(%v, %v) = %v is %v relative to %v", a, b, m, r, in)
				}
			}
		}
	}
}

func TestProperty_CompareAntisymmetric(t *testing.T) {
	for _, a := range sampleClocks() {
		for _, b := range sampleClocks() {
			if ab, ba := Compare(a, b), Compare(b, a); ab != ba.Invert() {
				t.Fatalf("Compare(%v, %v) = %v but Compare(%v, %v) = %v", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestProperty_CompareExclusive(t *testing.T) {
	for _, a := range sampleClocks() {
		for _, b := range sampleClocks() {
			r := Compare(a, b)
			hits := 0
			for _, candidate := range []Relation{Equal, Before, After, Concurrent} {
				if r == candidate {
					hits++
				}
			}
			if hits != 1 {
				t.Fatalf("Compare(%v, %v) = %v matched %d relations", a, b, r, hits)
			}
		}
	}
}

func TestProperty_CompareReflexive(t *testing.T) {
	for _, a := range sampleClocks() {
		if r := Compare(a, a.Copy()); r != Equal {
			t.Fatalf("Compare(%v, copy) = %v", a, r)
		}
	}
}

func TestProperty_BeforeTransitive(t *testing.T) {
	clocks := sampleClocks()
	for _, a := range clocks {
		for _, b := range clocks {
			if Compare(a, b) != Before {
				continue
			}
			for _, c := range clocks {
				if Compare(b, c) == Before && Compare(a, c) != Before {
					t.Fatalf("transitivity: %v < %v < %v but Compare(a, c) = %v", a, b, c, Compare(a, c))
				}
			}
		}
	}
}
