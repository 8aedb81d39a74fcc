package physics

import "math"

// Cell addresses one grid bucket by its integer cell coordinates.
type Cell struct {
	X, Y, Z int32
}

// Grid buckets agent indices into fixed-size cells so a 3x3 (3x3x3 in 3D)
// block query covers the full interaction radius. Cells are created lazily
// and deleted when emptied, so memory tracks the occupied region rather than
// the world volume.
//
// In periodic worlds the cell count per axis is fixed and block queries wrap
// modulo that count, so neighbors across the seam are found. To keep the
// wrap exact the per-axis cell edge is stretched to divide the span evenly;
// it never shrinks below the requested size, so coverage still holds.
type Grid struct {
	box  Box
	wrap bool

	size [3]float64 // effective cell edge per axis
	inv  [3]float64
	n    [3]int32 // cells per axis, wrap modulus (periodic only)

	cells map[Cell][]int32
}

// NewGrid builds a grid over box with cells at least cellSize wide. The grid
// wraps queries when mode is periodic.
func NewGrid(box Box, cellSize float64, mode BoundaryMode) *Grid {
	g := &Grid{
		box:   box,
		wrap:  mode == BoundaryPeriodic,
		cells: make(map[Cell][]int32, 64),
	}
	for a := 0; a < box.Dims; a++ {
		size := cellSize
		n := int32(1)
		if g.wrap {
			span := box.Span(a)
			if k := int32(math.Floor(span / cellSize)); k > 1 {
				n = k
			}
			size = box.Span(a) / float64(n)
		}
		g.size[a] = size
		g.inv[a] = 1 / size
		g.n[a] = n
	}
	// Unused Z axis still needs a sane scale so CellOf stays total.
	for a := box.Dims; a < 3; a++ {
		g.size[a] = cellSize
		g.inv[a] = 1 / cellSize
		g.n[a] = 1
	}
	return g
}

// CellOf returns the bucket containing pos. Bucketing floors the scaled
// coordinate, so boundary-exact and negative positions land consistently on
// every axis.
func (g *Grid) CellOf(pos Vec) Cell {
	var c [3]int32
	for a := 0; a < g.box.Dims; a++ {
		i := int32(math.Floor((pos[a] - g.box.Min[a]) * g.inv[a]))
		if g.wrap {
			i = wrapIndex(i, g.n[a])
		}
		c[a] = i
	}
	return Cell{X: c[0], Y: c[1], Z: c[2]}
}

// Insert places id into the cell derived from pos.
func (g *Grid) Insert(id int32, pos Vec) {
	c := g.CellOf(pos)
	g.cells[c] = append(g.cells[c], id)
}

// Remove deletes id from the cell derived from pos, which must be the
// position it was inserted under. Removing an absent id is a no-op.
func (g *Grid) Remove(id int32, pos Vec) {
	g.removeFrom(id, g.CellOf(pos))
}

// Move re-buckets id after a position change. Moves within one cell are free.
func (g *Grid) Move(id int32, old, new Vec) {
	from := g.CellOf(old)
	to := g.CellOf(new)
	if from == to {
		return
	}
	g.removeFrom(id, from)
	g.cells[to] = append(g.cells[to], id)
}

func (g *Grid) removeFrom(id int32, c Cell) {
	bucket := g.cells[c]
	for i, v := range bucket {
		if v == id {
			bucket[i] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			if len(bucket) == 0 {
				delete(g.cells, c)
			} else {
				g.cells[c] = bucket
			}
			return
		}
	}
}

// Neighbors appends every agent in the 3^d cell block centered on pos to buf
// and returns it. The result is a superset of all agents within the cell size
// of pos; callers filter by exact distance. Empty regions contribute nothing.
func (g *Grid) Neighbors(pos Vec, buf []int32) []int32 {
	c := g.CellOf(pos)

	// Worlds narrower than three cells would visit a wrapped cell twice;
	// shrink the block instead of deduplicating.
	xlo, xhi := g.axisRange(0)
	ylo, yhi := g.axisRange(1)
	zlo, zhi := int32(0), int32(0)
	if g.box.Dims == 3 {
		zlo, zhi = g.axisRange(2)
	}

	for dz := zlo; dz <= zhi; dz++ {
		for dy := ylo; dy <= yhi; dy++ {
			for dx := xlo; dx <= xhi; dx++ {
				cc := Cell{c.X + dx, c.Y + dy, c.Z + dz}
				if g.wrap {
					cc.X = wrapIndex(cc.X, g.n[0])
					cc.Y = wrapIndex(cc.Y, g.n[1])
					if g.box.Dims == 3 {
						cc.Z = wrapIndex(cc.Z, g.n[2])
					}
				}
				if bucket, ok := g.cells[cc]; ok {
					buf = append(buf, bucket...)
				}
			}
		}
	}
	return buf
}

func (g *Grid) axisRange(a int) (int32, int32) {
	if !g.wrap || g.n[a] >= 3 {
		return -1, 1
	}
	if g.n[a] == 2 {
		return 0, 1
	}
	return 0, 0
}

// Rebuild clears the grid and reinserts every agent at its current position.
func (g *Grid) Rebuild(agents []Agent) {
	clear(g.cells)
	for i := range agents {
		g.Insert(int32(i), agents[i].Pos)
	}
}

// CellSize returns the effective cell edge along the given axis.
func (g *Grid) CellSize(axis int) float64 {
	return g.size[axis]
}

// GridStats summarizes occupancy for perf logging.
type GridStats struct {
	Cells     int
	Occupants int
	MaxBucket int
}

// Stats walks the cell map and reports occupancy totals.
func (g *Grid) Stats() GridStats {
	s := GridStats{Cells: len(g.cells)}
	for _, bucket := range g.cells {
		s.Occupants += len(bucket)
		if len(bucket) > s.MaxBucket {
			s.MaxBucket = len(bucket)
		}
	}
	return s
}

func wrapIndex(i, n int32) int32 {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
