package physics

import (
	"math"
	"math/rand/v2"
	"testing"
)

func flockWorld() (Box, FlockParams) {
	box := NewBox(2, 900, 600, 0)
	p := FlockParams{Radius: 36}
	return box, p
}

// TestDesiredHeadingVectorMean pins the alignment rule to the vector mean:
// headings 0, 0, 90 degrees blend to atan2(1,2) = 26.57 degrees, not the
// 45 degrees a naive angle average would give.
func TestDesiredHeadingVectorMean(t *testing.T) {
	box, p := flockWorld()
	rng := rand.New(rand.NewPCG(1, 1))

	agents := []Agent{
		{Pos: Vec{450, 300, 0}, Vel: Vec{2, 0, 0}},
		{Pos: Vec{455, 300, 0}, Vel: Vec{3, 0, 0}},
		{Pos: Vec{450, 305, 0}, Vel: Vec{0, 1, 0}},
	}

	h := DesiredHeading(0, agents, []int32{0, 1, 2}, p, box, BoundaryReflect, rng)

	deg := math.Atan2(h[1], h[0]) * 180 / math.Pi
	if math.Abs(deg-26.565) > 0.01 {
		t.Errorf("heading = %.3f degrees, want 26.565", deg)
	}
	if math.Abs(h.Len()-1) > 1e-9 {
		t.Errorf("|heading| = %v, want 1", h.Len())
	}
}

func TestDesiredHeadingIgnoresFarAgents(t *testing.T) {
	box, p := flockWorld()
	rng := rand.New(rand.NewPCG(1, 1))

	agents := []Agent{
		{Pos: Vec{450, 300, 0}, Vel: Vec{1, 0, 0}},
		{Pos: Vec{450 + p.Radius + 1, 300, 0}, Vel: Vec{0, 1, 0}},
	}

	h := DesiredHeading(0, agents, []int32{0, 1}, p, box, BoundaryReflect, rng)
	if h.Sub(Vec{1, 0, 0}).Len() > 1e-9 {
		t.Errorf("heading = %v, want (1,0) with the far agent ignored", h)
	}
}

func TestDesiredHeadingSeparation(t *testing.T) {
	box, p := flockWorld()
	p.Separation = 10
	rng := rand.New(rand.NewPCG(1, 1))

	// Neighbor intruding from +x; both fly +y. The blend must gain a -x
	// component, steering away without abandoning the shared direction.
	agents := []Agent{
		{Pos: Vec{450, 300, 0}, Vel: Vec{0, 2, 0}},
		{Pos: Vec{452, 300, 0}, Vel: Vec{0, 2, 0}},
	}

	h := DesiredHeading(0, agents, []int32{0, 1}, p, box, BoundaryReflect, rng)
	if h[0] >= 0 {
		t.Errorf("heading x = %v, want negative (pushed away from intruder)", h[0])
	}
	if h[1] <= 0 {
		t.Errorf("heading y = %v, want positive (alignment kept)", h[1])
	}
}

func TestDesiredHeadingSeparationScalesWithIntrusion(t *testing.T) {
	box, p := flockWorld()
	p.Separation = 10
	rng := rand.New(rand.NewPCG(1, 1))

	deflection := func(dist float64) float64 {
		agents := []Agent{
			{Pos: Vec{450, 300, 0}, Vel: Vec{0, 2, 0}},
			{Pos: Vec{450 + dist, 300, 0}, Vel: Vec{0, 2, 0}},
		}
		h := DesiredHeading(0, agents, []int32{0, 1}, p, box, BoundaryReflect, rng)
		return -h[0]
	}

	shallow := deflection(9)
	deep := deflection(2)
	if deep <= shallow {
		t.Errorf("deep intrusion deflects %v, shallow %v; want deep > shallow", deep, shallow)
	}
}

func TestDesiredHeadingCohesion3D(t *testing.T) {
	box := NewBox(3, 600, 600, 600)
	p := FlockParams{Radius: 36, CohesionRadius: 90}
	rng := rand.New(rand.NewPCG(1, 1))

	// Neighbor beyond the alignment radius but inside the cohesion radius,
	// off to +x. Self flies +y; the blend should tilt toward the neighbor.
	agents := []Agent{
		{Pos: Vec{300, 300, 300}, Vel: Vec{0, 2, 0}},
		{Pos: Vec{360, 300, 300}, Vel: Vec{0, 0, 2}},
	}

	h := DesiredHeading(0, agents, []int32{0, 1}, p, box, BoundaryReflect, rng)
	if h[0] <= 0 {
		t.Errorf("heading x = %v, want positive pull toward the distant neighbor", h[0])
	}
}

func TestDesiredHeadingNoiseBudget(t *testing.T) {
	box, p := flockWorld()
	p.Noise = 0.25
	rng := rand.New(rand.NewPCG(7, 8))

	// A lone agent keeps roughly its own heading: noise can tilt the unit
	// blend by at most asin(0.25) = 14.5 degrees.
	agents := []Agent{{Pos: Vec{450, 300, 0}, Vel: Vec{2, 0, 0}}}
	for i := 0; i < 200; i++ {
		h := DesiredHeading(0, agents, []int32{0}, p, box, BoundaryReflect, rng)
		if dev := math.Abs(math.Atan2(h[1], h[0])); dev > math.Asin(0.25)+1e-9 {
			t.Fatalf("draw %d: deviation %.4f rad exceeds noise budget", i, dev)
		}
	}
}

func TestDesiredHeadingDegenerateKeepsCourse(t *testing.T) {
	box, p := flockWorld()
	rng := rand.New(rand.NewPCG(1, 1))

	// Two agents flying exactly opposite ways cancel: each keeps its own
	// heading rather than collapsing to zero.
	agents := []Agent{
		{Pos: Vec{450, 300, 0}, Vel: Vec{1, 0, 0}},
		{Pos: Vec{455, 300, 0}, Vel: Vec{-1, 0, 0}},
	}

	h := DesiredHeading(0, agents, []int32{0, 1}, p, box, BoundaryReflect, rng)
	if h.Sub(Vec{1, 0, 0}).Len() > 1e-9 {
		t.Errorf("heading = %v, want own heading (1,0) on cancellation", h)
	}
}

func TestWallAvoid(t *testing.T) {
	box := NewBox(2, 900, 600, 0)
	rng := rand.New(rand.NewPCG(1, 1))

	t.Run("inactive away from walls", func(t *testing.T) {
		f := WallAvoid(Vec{450, 300, 0}, box, 48, 0, rng)
		if !f.IsZero() {
			t.Errorf("force = %v, want zero at center", f)
		}
	})

	t.Run("pushes inward near low wall", func(t *testing.T) {
		f := WallAvoid(Vec{5, 300, 0}, box, 48, 0, rng)
		if f[0] <= 0 || f[1] != 0 {
			t.Errorf("force = %v, want +x only", f)
		}
	})

	t.Run("pushes inward near high wall", func(t *testing.T) {
		f := WallAvoid(Vec{450, 598, 0}, box, 48, 0, rng)
		if f[1] >= 0 || f[0] != 0 {
			t.Errorf("force = %v, want -y only", f)
		}
	})

	t.Run("grows with proximity", func(t *testing.T) {
		near := WallAvoid(Vec{5, 300, 0}, box, 48, 0, rng)
		far := WallAvoid(Vec{40, 300, 0}, box, 48, 0, rng)
		if near[0] <= far[0] {
			t.Errorf("near force %v not stronger than far force %v", near[0], far[0])
		}
	})

	t.Run("jitter stays within band", func(t *testing.T) {
		base := WallAvoid(Vec{10, 300, 0}, box, 48, 0, rng)
		for i := 0; i < 200; i++ {
			f := WallAvoid(Vec{10, 300, 0}, box, 48, 0.2, rng)
			ratio := f[0] / base[0]
			if ratio < 0.8-1e-9 || ratio > 1.2+1e-9 {
				t.Fatalf("draw %d: jittered ratio %v outside [0.8, 1.2]", i, ratio)
			}
		}
	})
}
