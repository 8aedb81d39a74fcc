package sim

import (
	"github.com/jfet97/petri/physics"
	"github.com/jfet97/petri/telemetry"
)

// stepBath advances the thermal bath by one tick in two passes. First every
// particle drifts ballistically and the wall policy is enforced; then contacts
// are resolved pairwise against the drifted positions, at most one resolved
// collision per agent per tick. The second pass runs over the whole population
// only after the first completes, so no pair is judged with one side moved and
// the other not.
func (s *Simulation) stepBath() {
	s.perf.StartPhase(telemetry.PhaseIntegrate)
	for i := range s.agents {
		a := &s.agents[i]
		old := a.Pos
		a.Pos = a.Pos.Add(a.Vel)
		s.applyBathBoundary(a)
		s.grid.Move(int32(i), old, a.Pos)
	}

	s.perf.StartPhase(telemetry.PhaseInteract)
	b := s.cfg.Bath
	for i := range s.agents {
		a := &s.agents[i]
		s.neighbors = s.grid.Neighbors(a.Pos, s.neighbors[:0])
		for _, j := range s.neighbors {
			if int(j) == i {
				continue
			}
			other := &s.agents[j]
			pa, pb := a.Pos, other.Pos
			d := physics.Delta(a.Pos, other.Pos, s.box, s.bmode)
			if !physics.TryElastic(a, other, d, s.tick, b.MinCollisionInterval, b.SeparationBuffer) {
				continue
			}
			s.collisions++

			// Separation may have pushed either side into a wall.
			s.applyBathBoundary(a)
			s.applyBathBoundary(other)
			s.grid.Move(int32(i), pa, a.Pos)
			s.grid.Move(j, pb, other.Pos)
			break
		}
	}
}

// applyBathBoundary enforces the wall policy for one agent. The tracer is
// always clamped inside with damping so it cannot ring against a wall,
// whatever mode the bath itself runs under.
func (s *Simulation) applyBathBoundary(a *physics.Agent) {
	if a.Kind == physics.KindTracer {
		a.Pos, a.Vel = physics.ClampInward(a.Pos, a.Vel, s.box, a.Radius, s.cfg.Bath.WallDamping)
		return
	}
	a.Pos, a.Vel = physics.Apply(s.bmode, a.Pos, a.Vel, s.box, a.Radius, s.cfg.Bath.WallDamping)
}
