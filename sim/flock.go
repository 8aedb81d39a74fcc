package sim

import (
	"github.com/jfet97/petri/physics"
	"github.com/jfet97/petri/telemetry"
)

// stepFlock advances the flock by one tick. Headings are computed for every
// boid against the tick-start state and only then applied, so the update
// order never leaks into the dynamics. The grid is rebuilt wholesale after
// the move; with the entire population displacing every tick that beats
// per-agent rebucketing.
func (s *Simulation) stepFlock() {
	s.perf.StartPhase(telemetry.PhaseInteract)
	s.par.computeHeadings(s.flockParams())

	s.perf.StartPhase(telemetry.PhaseIntegrate)
	speed := s.cfg.Flock.Speed
	for i := range s.agents {
		a := &s.agents[i]
		a.Vel = s.par.headings[i].Scale(speed)
		a.Pos = a.Pos.Add(a.Vel)
		a.Pos, a.Vel = physics.Apply(s.bmode, a.Pos, a.Vel, s.box, a.Radius, 1)
	}

	s.perf.StartPhase(telemetry.PhaseSpatialGrid)
	s.grid.Rebuild(s.agents)
}

// flockParams assembles interaction parameters from config. Wall avoidance is
// disabled under periodic boundaries, where there is no wall to avoid, and
// cohesion only engages in 3D, where flocks otherwise thin out along the
// extra axis.
func (s *Simulation) flockParams() physics.FlockParams {
	f := s.cfg.Flock
	p := physics.FlockParams{
		Radius:     f.InteractionRadius,
		Separation: f.SeparationDistance,
		Noise:      f.Noise,
	}
	if s.box.Dims == 3 {
		p.CohesionRadius = s.cfg.Derived.CohesionRadius
	}
	if s.bmode != physics.BoundaryPeriodic {
		p.WallDistance = f.WallAvoidDistance
		p.WallJitter = f.WallJitter
	}
	return p
}
