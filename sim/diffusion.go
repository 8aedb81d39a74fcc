package sim

import (
	"github.com/jfet97/petri/physics"
	"github.com/jfet97/petri/telemetry"
)

// stepDiffusion advances every walker by one random step. A proposed position
// that overlaps a neighbor triggers a bounce directly away from the first
// blocker found; if the bounce is blocked too, the walker redraws. After
// MaxMoveAttempts failed proposals it stays put for the tick.
//
// Walkers update sequentially, so each one sees the committed positions of
// everyone processed before it.
func (s *Simulation) stepDiffusion() {
	s.perf.StartPhase(telemetry.PhaseIntegrate)

	step := s.cfg.Diffusion.StepSize
	maxAttempts := s.cfg.Diffusion.MaxMoveAttempts

	for i := range s.agents {
		a := &s.agents[i]
		moved := false

		for attempt := 0; attempt < maxAttempts; attempt++ {
			cand := a.Pos.Add(physics.RandUnit(s.rng, s.box.Dims).Scale(step))
			cand, _ = physics.Apply(s.bmode, cand, physics.Vec{}, s.box, a.Radius, 1)

			s.neighbors = s.grid.Neighbors(cand, s.neighbors[:0])
			hit := physics.FirstOverlap(cand, a.Radius, int32(i), s.agents, s.neighbors, s.box, s.bmode)
			if hit < 0 {
				s.commitWalker(a, int32(i), cand)
				moved = true
				break
			}

			// Blocked: retreat directly away from the first blocker.
			s.bounces++
			back := physics.Bounce(a.Pos, s.agents[hit].Pos, step, s.box, s.bmode)
			back, _ = physics.Apply(s.bmode, back, physics.Vec{}, s.box, a.Radius, 1)

			s.neighbors = s.grid.Neighbors(back, s.neighbors[:0])
			if physics.FirstOverlap(back, a.Radius, int32(i), s.agents, s.neighbors, s.box, s.bmode) < 0 {
				s.commitWalker(a, int32(i), back)
				moved = true
				break
			}
		}

		if !moved {
			s.stalls++
			a.Vel = physics.Vec{}
		}
	}
}

// commitWalker moves a walker to pos, rebuckets it, and records the realized
// displacement as its velocity so direction statistics see actual motion.
func (s *Simulation) commitWalker(a *physics.Agent, id int32, pos physics.Vec) {
	old := a.Pos
	a.Pos = pos
	s.grid.Move(id, old, pos)
	a.Vel = physics.Delta(pos, old, s.box, s.bmode)
}
