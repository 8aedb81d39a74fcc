package physics

// Kind tags the role of an agent within its simulation variant.
type Kind uint8

const (
	KindWalker Kind = iota
	KindBath
	KindTracer
	KindBoid
)

func (k Kind) String() string {
	switch k {
	case KindWalker:
		return "walker"
	case KindBath:
		return "bath"
	case KindTracer:
		return "tracer"
	case KindBoid:
		return "boid"
	}
	return "unknown"
}

// Agent is one simulated particle or boid. Agents live in a flat slice owned
// by the simulation; the slice index is the identity the spatial grid stores.
type Agent struct {
	Pos    Vec
	Vel    Vec
	Origin Vec // position at t=0, the reference for mean squared displacement

	Radius float64
	Mass   float64

	Kind    Kind
	LastHit int64 // tick of the last resolved collision, drives the cooldown
}

// Heading returns the unit direction of travel, or the zero vector for an
// agent at rest.
func (a *Agent) Heading() Vec {
	return a.Vel.Normalize()
}

// Speed returns the magnitude of the velocity.
func (a *Agent) Speed() float64 {
	return a.Vel.Len()
}
