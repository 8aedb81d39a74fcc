package physics

import "math"

// TryElastic resolves a hard-sphere collision between a and b if one is due.
// d must be the displacement from b to a, boundary-aware in periodic worlds.
// It returns false without touching either agent when the pair is out of
// contact, inside the cooldown window, numerically degenerate (coincident
// centers carry no contact normal), or already separating along the normal.
//
// On resolve the normal velocity components are exchanged by the standard
// unequal-mass elastic formulas (tangential components untouched), both
// agents are pushed apart along the normal until their gap is buffer, and
// both cooldown stamps are set to now. Total momentum and kinetic energy are
// conserved exactly.
func TryElastic(a, b *Agent, d Vec, now, minInterval int64, buffer float64) bool {
	sum := a.Radius + b.Radius
	distSq := d.LenSq()
	if distSq >= sum*sum {
		return false
	}
	if now-a.LastHit < minInterval || now-b.LastHit < minInterval {
		return false
	}
	dist := math.Sqrt(distSq)
	if dist < 1e-12 {
		return false
	}
	n := d.Scale(1 / dist)
	if a.Vel.Sub(b.Vel).Dot(n) >= 0 {
		// Already separating; nothing physical to resolve.
		return false
	}

	v1n := a.Vel.Dot(n)
	v2n := b.Vel.Dot(n)
	m1, m2 := a.Mass, b.Mass
	v1p := ((m1-m2)*v1n + 2*m2*v2n) / (m1 + m2)
	v2p := ((m2-m1)*v2n + 2*m1*v1n) / (m1 + m2)
	a.Vel = a.Vel.Add(n.Scale(v1p - v1n))
	b.Vel = b.Vel.Add(n.Scale(v2p - v2n))

	// Separate the overlap symmetrically so the pair ends buffer apart.
	push := (sum - dist + buffer) / 2
	a.Pos = a.Pos.Add(n.Scale(push))
	b.Pos = b.Pos.Sub(n.Scale(push))

	a.LastHit = now
	b.LastHit = now
	return true
}
