package stats

import (
	"testing"

	"github.com/jfet97/petri/physics"
)

func TestRingEviction(t *testing.T) {
	r := NewRing(3)
	if _, ok := r.Last(); ok {
		t.Error("empty ring reported a last sample")
	}

	for i := int64(1); i <= 5; i++ {
		r.Push(Sample{Tick: i, Value: float64(i) * 10})
	}

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	last, ok := r.Last()
	if !ok || last.Tick != 5 {
		t.Errorf("Last = %+v, want tick 5", last)
	}

	got := r.AppendOrdered(nil, 0)
	wantTicks := []int64{3, 4, 5}
	if len(got) != len(wantTicks) {
		t.Fatalf("AppendOrdered returned %d samples, want %d", len(got), len(wantTicks))
	}
	for i, s := range got {
		if s.Tick != wantTicks[i] {
			t.Errorf("sample %d tick = %d, want %d", i, s.Tick, wantTicks[i])
		}
	}
}

func TestRingAppendOrderedMax(t *testing.T) {
	r := NewRing(10)
	for i := int64(1); i <= 6; i++ {
		r.Push(Sample{Tick: i})
	}

	got := r.AppendOrdered(nil, 2)
	if len(got) != 2 || got[0].Tick != 5 || got[1].Tick != 6 {
		t.Errorf("AppendOrdered(max=2) = %+v, want ticks 5, 6", got)
	}

	// Asking for more than stored returns everything.
	got = r.AppendOrdered(nil, 100)
	if len(got) != 6 {
		t.Errorf("AppendOrdered(max=100) returned %d, want 6", len(got))
	}
}

func TestRingZeroCapacity(t *testing.T) {
	r := NewRing(0)
	r.Push(Sample{Tick: 1})
	if r.Len() != 0 {
		t.Errorf("Len = %d, want 0", r.Len())
	}
}

func TestVecRingOrdering(t *testing.T) {
	r := NewVecRing(3)
	for i := 1; i <= 5; i++ {
		r.Push(physics.Vec{float64(i), 0, 0})
	}

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	for i, want := range []float64{3, 4, 5} {
		if got := r.At(i); got[0] != want {
			t.Errorf("At(%d) = %v, want x=%v", i, got, want)
		}
	}
}
