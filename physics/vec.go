// Package physics implements the spatial core of the simulation: vectors,
// world bounds with boundary policies, the uniform hash grid, and the
// pairwise interaction rules (elastic collisions, random-walk bounces,
// flock steering, thermal sampling).
package physics

import (
	"math"
	"math/rand/v2"
)

// Vec is a 2D or 3D point or direction. 2D worlds keep the Z component at
// zero; axis loops are bounded by Box.Dims and never touch unused components.
type Vec [3]float64

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{v[0] + o[0], v[1] + o[1], v[2] + o[2]}
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{v[0] - o[0], v[1] - o[1], v[2] - o[2]}
}

// Scale returns v * s.
func (v Vec) Scale(s float64) Vec {
	return Vec{v[0] * s, v[1] * s, v[2] * s}
}

// Dot returns the dot product of v and o.
func (v Vec) Dot(o Vec) float64 {
	return v[0]*o[0] + v[1]*o[1] + v[2]*o[2]
}

// LenSq returns the squared length of v.
func (v Vec) LenSq() float64 {
	return v.Dot(v)
}

// Len returns the length of v.
func (v Vec) Len() float64 {
	return math.Sqrt(v.LenSq())
}

// Normalize returns the unit vector of v, or the zero vector when v is too
// short to carry a direction.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l < 1e-12 {
		return Vec{}
	}
	return v.Scale(1 / l)
}

// IsZero reports whether every component is exactly zero.
func (v Vec) IsZero() bool {
	return v == Vec{}
}

// RandUnit returns a uniformly distributed unit vector with dims components.
func RandUnit(rng *rand.Rand, dims int) Vec {
	if dims == 2 {
		theta := 2 * math.Pi * rng.Float64()
		return Vec{math.Cos(theta), math.Sin(theta), 0}
	}
	// Normalized Gaussian triple is uniform on the sphere. The retry bound
	// only guards the astronomically unlikely all-zero draw.
	for i := 0; i < 8; i++ {
		v := Vec{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}
		if l := v.Len(); l > 1e-9 {
			return v.Scale(1 / l)
		}
	}
	return Vec{1, 0, 0}
}
