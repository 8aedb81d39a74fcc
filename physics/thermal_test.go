package physics

import (
	"math"
	"math/rand/v2"
	"testing"
)

// TestMaxwellBoltzmannStatistics checks that sampled components match the
// target distribution: zero mean and variance T/m per axis.
func TestMaxwellBoltzmannStatistics(t *testing.T) {
	src := rand.NewPCG(51, 52)
	const (
		n           = 50000
		temperature = 4.0
		mass        = 2.0
	)
	want := temperature / mass

	var sum, sumSq float64
	for i := 0; i < n; i++ {
		v := MaxwellBoltzmann(src, 2, temperature, mass)
		sum += v[0]
		sumSq += v[0] * v[0]
		if v[2] != 0 {
			t.Fatal("2D sample has a z component")
		}
	}

	mean := sum / n
	variance := sumSq/n - mean*mean
	if math.Abs(mean) > 0.05 {
		t.Errorf("mean = %v, want ~0", mean)
	}
	if math.Abs(variance-want) > 0.1*want {
		t.Errorf("variance = %v, want ~%v", variance, want)
	}
}

func TestMaxwellBoltzmannHeavyIsSlower(t *testing.T) {
	src := rand.NewPCG(61, 62)
	const n = 20000

	speedSq := func(mass float64) float64 {
		total := 0.0
		for i := 0; i < n; i++ {
			total += MaxwellBoltzmann(src, 3, 4.0, mass).LenSq()
		}
		return total / n
	}

	light := speedSq(1)
	heavy := speedSq(28)
	// Mean squared speed is d*T/m, so the ratio tracks the mass ratio.
	if ratio := light / heavy; math.Abs(ratio-28) > 3 {
		t.Errorf("light/heavy mean squared speed ratio = %v, want ~28", ratio)
	}
}

func TestMaxwellBoltzmannZeroTemperature(t *testing.T) {
	src := rand.NewPCG(71, 72)
	if v := MaxwellBoltzmann(src, 3, 0, 1); !v.IsZero() {
		t.Errorf("T=0 sample = %v, want rest", v)
	}
}
