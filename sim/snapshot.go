package sim

import (
	"github.com/jfet97/petri/physics"
	"github.com/jfet97/petri/stats"
)

// AgentView is the render-facing copy of one agent.
type AgentView struct {
	Pos    physics.Vec
	Vel    physics.Vec
	Radius float64
	Kind   physics.Kind
}

// Metrics bundles the diagnostics a frontend displays alongside the world.
type Metrics struct {
	Tick       int64
	Population int

	MSD       float64
	Slope     float64
	Diffusion float64
	VACF1     float64
	VACF3     float64
	DecayTime float64
	Brownian  bool

	OrderParam    float64
	KineticEnergy float64
	MomentumMag   float64
	MeanSpeed     float64

	Collisions      int
	TotalCollisions int64
	Bounces         int
	Stalls          int
}

// Snapshot is a self-contained copy of the visible simulation state.
type Snapshot struct {
	Tick    int64
	Dims    int
	Bounds  physics.Box
	Agents  []AgentView
	Metrics Metrics
}

// Snapshot copies the current state into a reusable buffer. The returned
// pointer and its Agents slice stay valid until the next call.
func (s *Simulation) Snapshot() *Snapshot {
	s.snap.Tick = s.tick
	s.snap.Dims = s.box.Dims
	s.snap.Bounds = s.box

	if cap(s.snap.Agents) < len(s.agents) {
		s.snap.Agents = make([]AgentView, len(s.agents))
	}
	s.snap.Agents = s.snap.Agents[:len(s.agents)]
	for i := range s.agents {
		a := &s.agents[i]
		s.snap.Agents[i] = AgentView{Pos: a.Pos, Vel: a.Vel, Radius: a.Radius, Kind: a.Kind}
	}

	s.snap.Metrics = s.Metrics()
	return &s.snap
}

// Metrics recomputes the diagnostic bundle from the live state.
func (s *Simulation) Metrics() Metrics {
	ke, momentum, meanSpeed := stats.Kinetics(s.agents)
	return Metrics{
		Tick:            s.tick,
		Population:      len(s.agents),
		MSD:             s.engine.MSD(),
		Slope:           s.engine.Slope(),
		Diffusion:       s.engine.DiffusionCoefficient(),
		VACF1:           s.engine.Autocorrelation(1),
		VACF3:           s.engine.Autocorrelation(3),
		DecayTime:       s.engine.DecayTime(),
		Brownian:        s.engine.Brownian(),
		OrderParam:      stats.OrderParameter(s.agents, s.cfg.Stats.MinSpeed),
		KineticEnergy:   ke,
		MomentumMag:     momentum.Len(),
		MeanSpeed:       meanSpeed,
		Collisions:      s.collisions,
		TotalCollisions: s.totalCollisions,
		Bounces:         s.bounces,
		Stalls:          s.stalls,
	}
}
