package physics

// FirstOverlap returns the id of the first candidate overlapping a disc of
// radius r centered at pos, or -1 if the spot is clear. Candidates are
// scanned in grid order and the scan stops at the first hit, so at most one
// neighbor ever influences a walker in a single step.
func FirstOverlap(pos Vec, r float64, self int32, agents []Agent, candidates []int32, box Box, mode BoundaryMode) int32 {
	for _, id := range candidates {
		if id == self {
			continue
		}
		nb := &agents[id]
		minDist := r + nb.Radius
		if Delta(pos, nb.Pos, box, mode).LenSq() < minDist*minDist {
			return id
		}
	}
	return -1
}

// Bounce proposes a retreat of length step directly away from the blocking
// neighbor. If the two centers coincide there is no away direction and the
// walker stays where it is.
func Bounce(pos, neighbor Vec, step float64, box Box, mode BoundaryMode) Vec {
	away := Delta(pos, neighbor, box, mode).Normalize()
	if away.IsZero() {
		return pos
	}
	return pos.Add(away.Scale(step))
}
