package sim

import (
	"math"
	"testing"

	"github.com/jfet97/petri/physics"
)

// TestDiffusionJammedWalkersStall packs walkers far past the density where
// anyone can keep a clear berth and verifies blocked walkers give up and hold
// their position instead of teleporting through each other.
func TestDiffusionJammedWalkersStall(t *testing.T) {
	cfg := testConfig(t, "diffusion")
	cfg.Seed = 3
	cfg.World.Boundary = "reflect"
	cfg.World.Width = 20
	cfg.World.Height = 20
	cfg.Agents.Count = 50 // nowhere in a 20x20 box is clear of 49 discs of radius 6
	s := newTestSim(t, cfg)

	before := make([]physics.Vec, len(s.Agents()))
	for i, a := range s.Agents() {
		before[i] = a.Pos
	}

	s.Tick()

	stalls := s.StallsLastTick()
	if stalls == 0 {
		t.Fatal("no walker stalled in a jammed world")
	}
	held := 0
	for i, a := range s.Agents() {
		if a.Pos == before[i] {
			held++
		}
	}
	if held < stalls {
		t.Errorf("%d walkers held their position but %d stalled", held, stalls)
	}
	t.Logf("stalls=%d held=%d of %d", stalls, held, len(s.Agents()))
}

// TestDiffusionSpreads runs a dilute random walk and checks the MSD grows
// roughly linearly at step^2 per tick, the signature of normal diffusion.
func TestDiffusionSpreads(t *testing.T) {
	cfg := testConfig(t, "diffusion")
	cfg.Seed = 5
	cfg.World.Boundary = "periodic"
	cfg.World.Width = 2000
	cfg.World.Height = 2000
	cfg.Agents.Count = 400
	cfg.Stats.Tracked = 400
	s := newTestSim(t, cfg)

	for i := 0; i < 600; i++ {
		s.Tick()
	}
	early := s.MSD()
	for i := 0; i < 600; i++ {
		s.Tick()
	}

	if late := s.MSD(); late <= early {
		t.Errorf("MSD fell from %f to %f over the second half of the run", early, late)
	}
	slope := s.MSDSlope()
	want := cfg.Diffusion.StepSize * cfg.Diffusion.StepSize
	if slope < want/2 || slope > want*2 {
		t.Errorf("MSD slope = %f, want about %f", slope, want)
	}
	if d := s.DiffusionCoefficient(); math.Abs(d-slope/4) > 1e-12 {
		t.Errorf("DiffusionCoefficient = %f, want slope/4 = %f", d, slope/4)
	}
	if !s.Brownian() {
		t.Errorf("random walk not classified as Brownian (VACF3 = %f)", s.Autocorrelation(3))
	}
	t.Logf("slope=%f D=%f", slope, s.DiffusionCoefficient())
}

// TestDiffusionSparseWalkersAlwaysMove gives every walker ample clear space;
// none should stall and each should displace by one full step per tick.
func TestDiffusionSparseWalkersAlwaysMove(t *testing.T) {
	cfg := testConfig(t, "diffusion")
	cfg.Seed = 17
	cfg.World.Boundary = "periodic"
	cfg.Agents.Count = 5
	s := newTestSim(t, cfg)

	before := make([]physics.Vec, len(s.Agents()))
	for i, a := range s.Agents() {
		before[i] = a.Pos
	}

	s.Tick()

	if s.StallsLastTick() != 0 {
		t.Fatalf("%d walkers stalled with only 5 in the world", s.StallsLastTick())
	}
	box := s.Bounds()
	for i, a := range s.Agents() {
		moved := physics.Delta(a.Pos, before[i], box, physics.BoundaryPeriodic).Len()
		if math.Abs(moved-cfg.Diffusion.StepSize) > 1e-9 {
			t.Errorf("walker %d moved %f, want %f", i, moved, cfg.Diffusion.StepSize)
		}
	}
}
