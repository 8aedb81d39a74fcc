package physics

import (
	"math/rand/v2"
	"testing"
)

func TestCellOfFloorsCoordinates(t *testing.T) {
	box := NewBox(2, 100, 80, 0)
	g := NewGrid(box, 10, BoundaryReflect)

	tests := []struct {
		name string
		pos  Vec
		want Cell
	}{
		{"origin", Vec{0, 0, 0}, Cell{0, 0, 0}},
		{"just under edge", Vec{9.999, 0, 0}, Cell{0, 0, 0}},
		{"on edge", Vec{10, 0, 0}, Cell{1, 0, 0}},
		{"interior", Vec{57, 33, 0}, Cell{5, 3, 0}},
		{"negative floors down", Vec{-0.5, 5, 0}, Cell{-1, 0, 0}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := g.CellOf(tc.pos); got != tc.want {
				t.Errorf("CellOf(%v) = %v, want %v", tc.pos, got, tc.want)
			}
		})
	}
}

func TestCellOfPeriodicWrapsAtMax(t *testing.T) {
	box := NewBox(2, 100, 80, 0)
	g := NewGrid(box, 10, BoundaryPeriodic)

	// Wrap folds pos == Max onto Min, and bucketing must agree.
	if got := g.CellOf(Vec{100, 80, 0}); got != (Cell{0, 0, 0}) {
		t.Errorf("CellOf(Max) = %v, want the min corner cell", got)
	}
}

// TestNeighborsSuperset checks the core grid guarantee: every agent within
// one cell edge of the probe shows up in the 3x3 block, whatever the layout.
func TestNeighborsSuperset(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	box := NewBox(2, 100, 80, 0)
	const cellSize = 10.0
	g := NewGrid(box, cellSize, BoundaryReflect)

	agents := make([]Agent, 150)
	for i := range agents {
		agents[i].Pos = Vec{rng.Float64() * 100, rng.Float64() * 80, 0}
		g.Insert(int32(i), agents[i].Pos)
	}

	var buf []int32
	for i := range agents {
		buf = g.Neighbors(agents[i].Pos, buf[:0])
		got := make(map[int32]bool, len(buf))
		for _, id := range buf {
			got[id] = true
		}
		for j := range agents {
			d := agents[i].Pos.Sub(agents[j].Pos).Len()
			if d < cellSize && !got[int32(j)] {
				t.Fatalf("agent %d at distance %.3f from agent %d missing from block query", j, d, i)
			}
		}
	}
}

// TestNeighborsSupersetPeriodic repeats the superset check across the wrap
// seam, with a span the cell size does not divide evenly.
func TestNeighborsSupersetPeriodic(t *testing.T) {
	rng := rand.New(rand.NewPCG(21, 22))
	box := NewBox(2, 100, 80, 0)
	g := NewGrid(box, 12, BoundaryPeriodic) // effective cells: 12.5 x 13.33

	agents := make([]Agent, 150)
	for i := range agents {
		agents[i].Pos = Vec{rng.Float64() * 100, rng.Float64() * 80, 0}
		g.Insert(int32(i), agents[i].Pos)
	}

	var buf []int32
	for i := range agents {
		buf = g.Neighbors(agents[i].Pos, buf[:0])
		got := make(map[int32]bool, len(buf))
		for _, id := range buf {
			got[id] = true
		}
		for j := range agents {
			d := WrapDelta(agents[i].Pos, agents[j].Pos, box).Len()
			if d < 12 && !got[int32(j)] {
				t.Fatalf("agent %d at wrapped distance %.3f from agent %d missing from block query", j, d, i)
			}
		}
	}
}

func TestNeighborsAcrossSeam(t *testing.T) {
	box := NewBox(2, 100, 80, 0)
	g := NewGrid(box, 10, BoundaryPeriodic)

	g.Insert(0, Vec{1, 40, 0})
	g.Insert(1, Vec{99, 40, 0})

	buf := g.Neighbors(Vec{1, 40, 0}, nil)
	found := false
	for _, id := range buf {
		if id == 1 {
			found = true
		}
	}
	if !found {
		t.Error("agent across the periodic seam not returned")
	}
}

func TestNeighborsNoDuplicatesInSmallWorld(t *testing.T) {
	// Two cells per axis: the wrapped block must not visit a cell twice.
	box := NewBox(2, 25, 25, 0)
	g := NewGrid(box, 10, BoundaryPeriodic)

	for i := int32(0); i < 8; i++ {
		g.Insert(i, Vec{float64(i) * 3, float64(i) * 3, 0})
	}

	buf := g.Neighbors(Vec{12, 12, 0}, nil)
	seen := make(map[int32]int)
	for _, id := range buf {
		seen[id]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Errorf("agent %d returned %d times", id, n)
		}
	}
}

func TestMoveRebuckets(t *testing.T) {
	box := NewBox(2, 100, 80, 0)
	g := NewGrid(box, 10, BoundaryReflect)

	g.Insert(7, Vec{5, 5, 0})
	g.Move(7, Vec{5, 5, 0}, Vec{55, 45, 0})

	if buf := g.Neighbors(Vec{5, 5, 0}, nil); len(buf) != 0 {
		t.Errorf("old neighborhood still holds %v", buf)
	}
	buf := g.Neighbors(Vec{55, 45, 0}, nil)
	if len(buf) != 1 || buf[0] != 7 {
		t.Errorf("new neighborhood = %v, want [7]", buf)
	}
}

func TestRemovePrunesEmptyCells(t *testing.T) {
	box := NewBox(2, 100, 80, 0)
	g := NewGrid(box, 10, BoundaryReflect)

	g.Insert(1, Vec{5, 5, 0})
	g.Insert(2, Vec{6, 6, 0})
	if s := g.Stats(); s.Cells != 1 || s.Occupants != 2 {
		t.Fatalf("stats after insert = %+v", s)
	}

	g.Remove(1, Vec{5, 5, 0})
	if s := g.Stats(); s.Cells != 1 || s.Occupants != 1 {
		t.Fatalf("stats after first remove = %+v", s)
	}

	g.Remove(2, Vec{6, 6, 0})
	if s := g.Stats(); s.Cells != 0 || s.Occupants != 0 {
		t.Fatalf("stats after second remove = %+v", s)
	}
}

func TestRebuildMatchesFreshInserts(t *testing.T) {
	rng := rand.New(rand.NewPCG(31, 32))
	box := NewBox(3, 60, 60, 60)
	g := NewGrid(box, 12, BoundaryPeriodic)

	agents := make([]Agent, 40)
	for i := range agents {
		agents[i].Pos = Vec{rng.Float64() * 60, rng.Float64() * 60, rng.Float64() * 60}
	}
	g.Rebuild(agents)
	first := g.Stats()

	// Scatter stale entries, then rebuild again: occupancy must match.
	g.Insert(99, Vec{1, 1, 1})
	g.Rebuild(agents)
	second := g.Stats()

	if first != second {
		t.Errorf("rebuild not idempotent: %+v vs %+v", first, second)
	}
	if second.Occupants != len(agents) {
		t.Errorf("occupants = %d, want %d", second.Occupants, len(agents))
	}
}
