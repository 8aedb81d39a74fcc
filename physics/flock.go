package physics

import "math/rand/v2"

// FlockParams are the per-tick steering weights for one boid update.
// CohesionRadius == 0 disables cohesion (the 2D rule set) and
// WallDistance == 0 disables wall avoidance (periodic worlds).
type FlockParams struct {
	Radius         float64
	Separation     float64
	CohesionRadius float64
	Noise          float64
	WallDistance   float64
	WallJitter     float64
}

// DesiredHeading computes the unit heading agent self should adopt next
// tick, reading only current-tick state. Callers must compute headings for
// the whole population before applying any of them, otherwise later agents
// would steer off half-updated neighbors.
//
// The new heading blends the vector mean of self+neighbor headings (never
// an average of raw angles, which breaks across the ±π seam), a separation
// push that grows linearly with intrusion depth, in 3D an attraction toward
// the local centroid, a near-wall inward force, and isotropic noise.
func DesiredHeading(self int32, agents []Agent, candidates []int32, p FlockParams, box Box, mode BoundaryMode, rng *rand.Rand) Vec {
	me := &agents[self]
	align := me.Heading()
	alignN := 1
	var sep, coh Vec
	cohN := 0

	outer := p.Radius
	if p.CohesionRadius > outer {
		outer = p.CohesionRadius
	}
	for _, id := range candidates {
		if id == self {
			continue
		}
		nb := &agents[id]
		d := Delta(me.Pos, nb.Pos, box, mode)
		distSq := d.LenSq()
		if distSq >= outer*outer {
			continue
		}
		dist := d.Len()
		if dist < p.Radius {
			align = align.Add(nb.Heading())
			alignN++
		}
		if dist < p.Separation {
			away := d.Normalize()
			if away.IsZero() {
				away = RandUnit(rng, box.Dims)
			}
			sep = sep.Add(away.Scale(1 - dist/p.Separation))
		}
		if p.CohesionRadius > 0 && dist < p.CohesionRadius {
			coh = coh.Add(d)
			cohN++
		}
	}

	desired := align.Scale(1 / float64(alignN))
	desired = desired.Add(sep)
	if cohN > 0 {
		// d points neighbor->self, so the centroid lies along -coh.
		desired = desired.Add(coh.Scale(-1 / float64(cohN)).Normalize())
	}
	if p.WallDistance > 0 {
		desired = desired.Add(WallAvoid(me.Pos, box, p.WallDistance, p.WallJitter, rng))
	}
	if p.Noise > 0 {
		desired = desired.Add(RandUnit(rng, box.Dims).Scale(p.Noise))
	}

	out := desired.Normalize()
	if out.IsZero() {
		// Forces cancelled exactly; keep flying as before.
		return me.Heading()
	}
	return out
}

// WallAvoid returns an inward steering force that activates within dist of
// any wall and grows linearly as the wall gets closer. The whole force is
// scaled by a random factor in [1-jitter, 1+jitter] so a dense group does
// not execute a synchronized turn.
func WallAvoid(pos Vec, box Box, dist, jitter float64, rng *rand.Rand) Vec {
	var f Vec
	active := false
	for ax := 0; ax < box.Dims; ax++ {
		if low := pos[ax] - box.Min[ax]; low < dist {
			f[ax] += 1 - low/dist
			active = true
		}
		if high := box.Max[ax] - pos[ax]; high < dist {
			f[ax] -= 1 - high/dist
			active = true
		}
	}
	if !active {
		return Vec{}
	}
	if jitter > 0 {
		f = f.Scale(1 + jitter*(2*rng.Float64()-1))
	}
	return f
}
