package sim

import (
	"fmt"

	"github.com/jfet97/petri/physics"
)

// maxPlacementTries bounds rejection sampling when spawning around the tracer.
const maxPlacementTries = 1000

// populate fills the agent slice for the configured mode. Every agent records
// its spawn position as Origin so displacement statistics measure from birth.
func (s *Simulation) populate() error {
	switch s.mode {
	case ModeDiffusion:
		s.populateWalkers()
	case ModeBath:
		return s.populateBath()
	case ModeFlock:
		s.populateBoids()
	}
	return nil
}

// randomPos draws a uniform position inset from the walls by radius, so no
// agent spawns already embedded in a boundary.
func (s *Simulation) randomPos(radius float64) physics.Vec {
	var p physics.Vec
	for ax := 0; ax < s.box.Dims; ax++ {
		lo := s.box.Min[ax] + radius
		hi := s.box.Max[ax] - radius
		if hi <= lo {
			p[ax] = (s.box.Min[ax] + s.box.Max[ax]) / 2
			continue
		}
		p[ax] = lo + s.rng.Float64()*(hi-lo)
	}
	return p
}

func (s *Simulation) populateWalkers() {
	n := s.cfg.Agents.Count
	s.agents = make([]physics.Agent, 0, n)
	for i := 0; i < n; i++ {
		pos := s.randomPos(s.cfg.Agents.Radius)
		s.agents = append(s.agents, physics.Agent{
			Pos:    pos,
			Origin: pos,
			Radius: s.cfg.Agents.Radius,
			Mass:   s.cfg.Agents.Mass,
			Kind:   physics.KindWalker,
		})
	}
}

// populateBath spawns the tracer at rest in the world center, then the bath
// particles around it with Maxwell-Boltzmann velocities. Cooldown stamps are
// backdated so collisions can fire from the very first tick.
func (s *Simulation) populateBath() error {
	b := s.cfg.Bath
	n := s.cfg.Agents.Count
	s.agents = make([]physics.Agent, 0, n+1)

	tracer := physics.Agent{
		Pos:     s.box.Center(),
		Radius:  b.TracerRadius,
		Mass:    b.TracerMass,
		Kind:    physics.KindTracer,
		LastHit: -b.MinCollisionInterval,
	}
	tracer.Origin = tracer.Pos
	s.agents = append(s.agents, tracer)

	minDist := s.cfg.Agents.Radius + b.TracerRadius
	for i := 0; i < n; i++ {
		var pos physics.Vec
		placed := false
		for try := 0; try < maxPlacementTries; try++ {
			pos = s.randomPos(s.cfg.Agents.Radius)
			d := physics.Delta(pos, tracer.Pos, s.box, s.bmode)
			if d.LenSq() > minDist*minDist {
				placed = true
				break
			}
		}
		if !placed {
			return fmt.Errorf("could not place bath particle %d clear of the tracer", i)
		}
		s.agents = append(s.agents, physics.Agent{
			Pos:     pos,
			Origin:  pos,
			Vel:     physics.MaxwellBoltzmann(s.rng, s.box.Dims, b.Temperature, s.cfg.Agents.Mass),
			Radius:  s.cfg.Agents.Radius,
			Mass:    s.cfg.Agents.Mass,
			Kind:    physics.KindBath,
			LastHit: -b.MinCollisionInterval,
		})
	}
	return nil
}

func (s *Simulation) populateBoids() {
	n := s.cfg.Agents.Count
	s.agents = make([]physics.Agent, 0, n)
	for i := 0; i < n; i++ {
		pos := s.randomPos(s.cfg.Agents.Radius)
		s.agents = append(s.agents, physics.Agent{
			Pos:    pos,
			Origin: pos,
			Vel:    physics.RandUnit(s.rng, s.box.Dims).Scale(s.cfg.Flock.Speed),
			Radius: s.cfg.Agents.Radius,
			Mass:   s.cfg.Agents.Mass,
			Kind:   physics.KindBoid,
		})
	}
}
