package physics

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// MaxwellBoltzmann draws a thermal velocity for a particle of the given
// mass: each component is an independent Gaussian with sigma = sqrt(T/m),
// which is the equilibrium distribution of an ideal bath at temperature T
// (in units where kB = 1). Temperature <= 0 yields a particle at rest.
func MaxwellBoltzmann(src rand.Source, dims int, temperature, mass float64) Vec {
	if temperature <= 0 {
		return Vec{}
	}
	dist := distuv.Normal{Mu: 0, Sigma: math.Sqrt(temperature / mass), Src: src}
	var v Vec
	for ax := 0; ax < dims; ax++ {
		v[ax] = dist.Rand()
	}
	return v
}
