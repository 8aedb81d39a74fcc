package physics

import (
	"fmt"
	"math"
)

// BoundaryMode selects how agents interact with the world edge.
type BoundaryMode uint8

const (
	BoundaryReflect BoundaryMode = iota
	BoundaryPeriodic
	BoundaryClamp
)

// ParseBoundary maps a config string to a BoundaryMode.
func ParseBoundary(s string) (BoundaryMode, error) {
	switch s {
	case "reflect":
		return BoundaryReflect, nil
	case "periodic":
		return BoundaryPeriodic, nil
	case "clamp":
		return BoundaryClamp, nil
	}
	return 0, fmt.Errorf("unknown boundary mode %q", s)
}

func (m BoundaryMode) String() string {
	switch m {
	case BoundaryReflect:
		return "reflect"
	case BoundaryPeriodic:
		return "periodic"
	case BoundaryClamp:
		return "clamp"
	}
	return "unknown"
}

// Box is an axis-aligned world volume. Dims is 2 or 3.
type Box struct {
	Min, Max Vec
	Dims     int
}

// NewBox builds a box with its minimum corner at the origin. depth is ignored
// for dims = 2.
func NewBox(dims int, width, height, depth float64) Box {
	b := Box{Dims: dims}
	b.Max[0] = width
	b.Max[1] = height
	if dims == 3 {
		b.Max[2] = depth
	}
	return b
}

// Span returns the extent of the box along one axis.
func (b Box) Span(axis int) float64 {
	return b.Max[axis] - b.Min[axis]
}

// Center returns the midpoint of the box.
func (b Box) Center() Vec {
	var c Vec
	for a := 0; a < b.Dims; a++ {
		c[a] = (b.Min[a] + b.Max[a]) / 2
	}
	return c
}

// Contains reports whether p lies inside the box (inclusive).
func (b Box) Contains(p Vec) bool {
	for a := 0; a < b.Dims; a++ {
		if p[a] < b.Min[a] || p[a] > b.Max[a] {
			return false
		}
	}
	return true
}

// Reflect mirrors pos back into the box and negates the velocity component on
// each violated axis. A position at distance d outside comes back at distance
// d inside, so speed magnitude is conserved exactly; positions already inside
// are returned unchanged.
func Reflect(pos, vel Vec, box Box) (Vec, Vec) {
	for a := 0; a < box.Dims; a++ {
		if pos[a] < box.Min[a] {
			pos[a] = 2*box.Min[a] - pos[a]
			vel[a] = -vel[a]
		} else if pos[a] > box.Max[a] {
			pos[a] = 2*box.Max[a] - pos[a]
			vel[a] = -vel[a]
		}
	}
	return pos, vel
}

// Wrap maps pos onto the torus defined by the box. Velocity is unaffected by
// a wrap, so only the position is returned.
func Wrap(pos Vec, box Box) Vec {
	for a := 0; a < box.Dims; a++ {
		span := box.Max[a] - box.Min[a]
		x := math.Mod(pos[a]-box.Min[a], span)
		if x < 0 {
			x += span
		}
		pos[a] = box.Min[a] + x
	}
	return pos
}

// WrapDelta returns the shortest displacement from b to a on the torus:
// each component of a-b folded into [-span/2, span/2].
func WrapDelta(a, b Vec, box Box) Vec {
	var d Vec
	for ax := 0; ax < box.Dims; ax++ {
		dd := a[ax] - b[ax]
		span := box.Max[ax] - box.Min[ax]
		if dd > span/2 {
			dd -= span
		} else if dd < -span/2 {
			dd += span
		}
		d[ax] = dd
	}
	return d
}

// Delta returns the displacement from b to a under the given boundary mode.
// Periodic worlds measure along the torus; the others measure directly.
func Delta(a, b Vec, box Box, mode BoundaryMode) Vec {
	if mode == BoundaryPeriodic {
		return WrapDelta(a, b, box)
	}
	return a.Sub(b)
}

// ClampInward pins pos to the box inset by radius. On contact the velocity
// component is forced to point inward and damped, which keeps a heavy agent
// from ringing against a wall indefinitely.
func ClampInward(pos, vel Vec, box Box, radius, damping float64) (Vec, Vec) {
	for a := 0; a < box.Dims; a++ {
		lo := box.Min[a] + radius
		hi := box.Max[a] - radius
		if lo > hi {
			// Inset wider than the box: collapse to the midline.
			mid := (box.Min[a] + box.Max[a]) / 2
			lo, hi = mid, mid
		}
		if pos[a] < lo {
			pos[a] = lo
			if vel[a] < 0 {
				vel[a] = -vel[a]
			}
			vel[a] *= damping
		} else if pos[a] > hi {
			pos[a] = hi
			if vel[a] > 0 {
				vel[a] = -vel[a]
			}
			vel[a] *= damping
		}
	}
	return pos, vel
}

// Apply runs the boundary policy selected by mode. radius and damping are
// used only by the clamp policy.
func Apply(mode BoundaryMode, pos, vel Vec, box Box, radius, damping float64) (Vec, Vec) {
	switch mode {
	case BoundaryPeriodic:
		return Wrap(pos, box), vel
	case BoundaryClamp:
		return ClampInward(pos, vel, box, radius, damping)
	default:
		return Reflect(pos, vel, box)
	}
}
