package stats

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/jfet97/petri/physics"
)

func testParams() Params {
	return Params{
		SampleEvery:       4,
		HistoryCap:        256,
		SlopeWindow:       200,
		MinSlopePoints:    8,
		MaxLag:            8,
		VelocityWindow:    64,
		MinSpeed:          1e-6,
		BrownianLag:       3,
		BrownianThreshold: 0.7,
	}
}

func TestMeanSquaredDisplacement(t *testing.T) {
	box := physics.NewBox(2, 100, 80, 0)
	agents := []physics.Agent{
		{Pos: physics.Vec{13, 4, 0}, Origin: physics.Vec{10, 0, 0}}, // displaced (3,4): 25
		{Pos: physics.Vec{20, 20, 0}, Origin: physics.Vec{20, 20, 0}},
	}

	got := MeanSquaredDisplacement(agents, []int32{0, 1}, box, physics.BoundaryReflect)
	if math.Abs(got-12.5) > 1e-12 {
		t.Errorf("MSD = %v, want 12.5", got)
	}

	if got := MeanSquaredDisplacement(agents, nil, box, physics.BoundaryReflect); got != 0 {
		t.Errorf("MSD with no tracked agents = %v, want 0", got)
	}
}

func TestMeanSquaredDisplacementPeriodic(t *testing.T) {
	// An agent that wrapped across the seam moved 2 units, not 98.
	box := physics.NewBox(2, 100, 80, 0)
	agents := []physics.Agent{
		{Pos: physics.Vec{99, 40, 0}, Origin: physics.Vec{1, 40, 0}},
	}

	got := MeanSquaredDisplacement(agents, []int32{0}, box, physics.BoundaryPeriodic)
	if math.Abs(got-4) > 1e-9 {
		t.Errorf("wrapped MSD = %v, want 4", got)
	}
}

func TestObserveSamplingModulus(t *testing.T) {
	box := physics.NewBox(2, 100, 80, 0)
	e := NewEngine(testParams(), box, physics.BoundaryReflect, []int32{0})
	agents := []physics.Agent{{Pos: physics.Vec{50, 40, 0}, Origin: physics.Vec{50, 40, 0}}}

	for tick := int64(0); tick < 8; tick++ {
		e.Observe(agents, tick)
	}

	if e.msd.Len() != 2 {
		t.Errorf("MSD samples = %d, want 2 (ticks 0 and 4)", e.msd.Len())
	}
	if e.vel[0].Len() != 8 {
		t.Errorf("velocity samples = %d, want 8 (every tick)", e.vel[0].Len())
	}
}

func TestSlopeRecoversLinearGrowth(t *testing.T) {
	box := physics.NewBox(2, 100, 80, 0)
	e := NewEngine(testParams(), box, physics.BoundaryReflect, []int32{0})

	for tick := int64(0); tick < 100; tick += 4 {
		e.msd.Push(Sample{Tick: tick, Value: 3*float64(tick) + 5})
	}

	if got := e.Slope(); math.Abs(got-3) > 1e-9 {
		t.Errorf("Slope = %v, want 3", got)
	}
	if got := e.DiffusionCoefficient(); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("D = %v, want 0.75 (slope / 2d)", got)
	}
}

func TestSlopeFiltersCorruptSamples(t *testing.T) {
	box := physics.NewBox(2, 100, 80, 0)
	e := NewEngine(testParams(), box, physics.BoundaryReflect, []int32{0})

	for tick := int64(0); tick < 100; tick += 4 {
		e.msd.Push(Sample{Tick: tick, Value: 2 * float64(tick)})
	}
	e.msd.Push(Sample{Tick: 100, Value: math.NaN()})
	e.msd.Push(Sample{Tick: 104, Value: math.Inf(1)})
	e.msd.Push(Sample{Tick: 108, Value: -7})

	if got := e.Slope(); math.Abs(got-2) > 1e-9 {
		t.Errorf("Slope = %v, want 2 with corrupt samples dropped", got)
	}
}

func TestSlopeNeedsEnoughPoints(t *testing.T) {
	box := physics.NewBox(2, 100, 80, 0)
	e := NewEngine(testParams(), box, physics.BoundaryReflect, []int32{0})

	for tick := int64(0); tick < 7*4; tick += 4 {
		e.msd.Push(Sample{Tick: tick, Value: float64(tick)})
	}

	// 7 points against a minimum of 8.
	if got := e.Slope(); got != 0 {
		t.Errorf("Slope = %v, want 0 below the point minimum", got)
	}
}

func TestAutocorrelationConstantVelocity(t *testing.T) {
	box := physics.NewBox(2, 100, 80, 0)
	e := NewEngine(testParams(), box, physics.BoundaryReflect, []int32{0})
	agents := []physics.Agent{{Vel: physics.Vec{2, 1, 0}}}

	for tick := int64(0); tick < 20; tick++ {
		e.Observe(agents, tick)
	}

	corr := e.Autocorrelations()
	for lag, c := range corr {
		if math.Abs(c-1) > 1e-9 {
			t.Errorf("lag %d: corr = %v, want 1 for constant velocity", lag, c)
		}
	}
	if e.Brownian() {
		t.Error("constant velocity classified as Brownian")
	}
	if got := e.DecayTime(); got != 0 {
		t.Errorf("DecayTime = %v, want 0 when correlation never decays", got)
	}
}

func TestAutocorrelationAlternatingVelocity(t *testing.T) {
	box := physics.NewBox(2, 100, 80, 0)
	e := NewEngine(testParams(), box, physics.BoundaryReflect, []int32{0})
	agents := []physics.Agent{{}}

	for tick := int64(0); tick < 20; tick++ {
		if tick%2 == 0 {
			agents[0].Vel = physics.Vec{1, 0, 0}
		} else {
			agents[0].Vel = physics.Vec{-1, 0, 0}
		}
		e.Observe(agents, tick)
	}

	if c := e.Autocorrelation(1); math.Abs(c+1) > 1e-9 {
		t.Errorf("lag 1 = %v, want -1 for alternating velocity", c)
	}
	if c := e.Autocorrelation(2); math.Abs(c-1) > 1e-9 {
		t.Errorf("lag 2 = %v, want 1 for alternating velocity", c)
	}
	if got := e.DecayTime(); got != 1 {
		t.Errorf("DecayTime = %v, want 1", got)
	}
}

func TestAutocorrelationRandomDecorrelates(t *testing.T) {
	box := physics.NewBox(2, 100, 80, 0)
	e := NewEngine(testParams(), box, physics.BoundaryReflect, []int32{0, 1, 2, 3, 4, 5, 6, 7})
	rng := rand.New(rand.NewPCG(81, 82))

	agents := make([]physics.Agent, 8)
	for tick := int64(0); tick < 64; tick++ {
		for i := range agents {
			agents[i].Vel = physics.RandUnit(rng, 2)
		}
		e.Observe(agents, tick)
	}

	if c := e.Autocorrelation(3); math.Abs(c) > 0.2 {
		t.Errorf("lag 3 = %v, want near 0 for uncorrelated directions", c)
	}
	if !e.Brownian() {
		t.Error("uncorrelated motion not classified as Brownian")
	}
}

func TestAutocorrelationMinSpeedGuard(t *testing.T) {
	box := physics.NewBox(2, 100, 80, 0)
	e := NewEngine(testParams(), box, physics.BoundaryReflect, []int32{0})
	agents := []physics.Agent{{}} // at rest

	for tick := int64(0); tick < 10; tick++ {
		e.Observe(agents, tick)
	}

	for lag, c := range e.Autocorrelations() {
		if c != 0 {
			t.Errorf("lag %d = %v, want 0 when every sample is below min speed", lag, c)
		}
	}
}

func TestAutocorrelationsCached(t *testing.T) {
	box := physics.NewBox(2, 100, 80, 0)
	e := NewEngine(testParams(), box, physics.BoundaryReflect, []int32{0})
	agents := []physics.Agent{{Vel: physics.Vec{1, 0, 0}}}
	e.Observe(agents, 0)

	first := e.Autocorrelations()
	second := e.Autocorrelations()
	if &first[0] != &second[0] {
		t.Error("repeated query within one tick recomputed the slice")
	}
}

func TestOrderParameter(t *testing.T) {
	tests := []struct {
		name string
		vels []physics.Vec
		want float64
	}{
		{"perfectly aligned", []physics.Vec{{2, 0, 0}, {5, 0, 0}, {0.5, 0, 0}}, 1},
		{"opposed pair cancels", []physics.Vec{{1, 0, 0}, {-3, 0, 0}}, 0},
		{"single agent", []physics.Vec{{0, 4, 0}}, 1},
		{"perpendicular pair", []physics.Vec{{1, 0, 0}, {0, 1, 0}}, math.Sqrt2 / 2},
		{"all at rest", []physics.Vec{{}, {}}, 0},
		{"empty population", nil, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			agents := make([]physics.Agent, len(tc.vels))
			for i, v := range tc.vels {
				agents[i].Vel = v
			}
			got := OrderParameter(agents, 1e-6)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("OrderParameter = %v, want %v", got, tc.want)
			}
			if got < 0 || got > 1+1e-12 {
				t.Errorf("OrderParameter = %v outside [0, 1]", got)
			}
		})
	}
}

func TestOrderParameterUniformHeadings(t *testing.T) {
	// Random directions cancel; the residual mean scales like 1/sqrt(N).
	rng := rand.New(rand.NewPCG(7, 8))
	agents := make([]physics.Agent, 10000)
	for i := range agents {
		agents[i].Vel = physics.RandUnit(rng, 2)
	}

	if got := OrderParameter(agents, 1e-6); got > 0.05 {
		t.Errorf("OrderParameter = %v for uniform headings, want near 0", got)
	}
}

func TestKinetics(t *testing.T) {
	agents := []physics.Agent{
		{Mass: 2, Vel: physics.Vec{3, 0, 0}},
		{Mass: 1, Vel: physics.Vec{0, -4, 0}},
	}

	ke, p, mean := Kinetics(agents)
	if math.Abs(ke-17) > 1e-12 { // 0.5*2*9 + 0.5*1*16
		t.Errorf("KE = %v, want 17", ke)
	}
	if p.Sub(physics.Vec{6, -4, 0}).Len() > 1e-12 {
		t.Errorf("momentum = %v, want (6,-4)", p)
	}
	if math.Abs(mean-3.5) > 1e-12 {
		t.Errorf("mean speed = %v, want 3.5", mean)
	}
}
