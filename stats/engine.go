package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/jfet97/petri/physics"
)

// Params sizes the rolling estimators. All windows are in ticks except
// HistoryCap and SlopeWindow, which count stored samples.
type Params struct {
	SampleEvery       int64   // MSD sampling modulus
	HistoryCap        int     // MSD ring capacity
	SlopeWindow       int     // samples fed to the MSD regression
	MinSlopePoints    int     // below this the slope reports 0
	MaxLag            int     // largest autocorrelation lag, in ticks
	VelocityWindow    int     // per-agent velocity history length
	MinSpeed          float64 // velocities below this carry no direction
	BrownianLag       int     // lag probed by the Brownian classifier
	BrownianThreshold float64 // decorrelation level counted as Brownian
}

// Engine accumulates per-tick observations for a fixed set of tracked
// agents and answers statistical queries about them. Population or world
// changes invalidate the histories; the simulation builds a fresh Engine
// rather than patching one in place.
type Engine struct {
	p       Params
	box     physics.Box
	mode    physics.BoundaryMode
	tracked []int32

	msd *Ring
	vel []*VecRing

	tick     int64
	corr     []float64
	corrTick int64

	xs, ys  []float64
	scratch []Sample
}

// NewEngine builds an engine tracking the given agent indices.
func NewEngine(p Params, box physics.Box, mode physics.BoundaryMode, tracked []int32) *Engine {
	e := &Engine{
		p:        p,
		box:      box,
		mode:     mode,
		tracked:  tracked,
		msd:      NewRing(p.HistoryCap),
		vel:      make([]*VecRing, len(tracked)),
		corrTick: -1,
	}
	for i := range e.vel {
		e.vel[i] = NewVecRing(p.VelocityWindow)
	}
	return e
}

// Tracked returns the agent indices under observation.
func (e *Engine) Tracked() []int32 {
	return e.tracked
}

// Observe folds the current agent state into the rolling histories.
// Velocities are recorded every tick; MSD only on the sampling modulus.
func (e *Engine) Observe(agents []physics.Agent, tick int64) {
	e.tick = tick
	for i, id := range e.tracked {
		e.vel[i].Push(agents[id].Vel)
	}
	if e.p.SampleEvery > 0 && tick%e.p.SampleEvery == 0 {
		e.msd.Push(Sample{Tick: tick, Value: MeanSquaredDisplacement(agents, e.tracked, e.box, e.mode)})
	}
}

// MSD returns the most recent mean squared displacement sample, or 0
// before the first one lands.
func (e *Engine) MSD() float64 {
	s, ok := e.msd.Last()
	if !ok {
		return 0
	}
	return s.Value
}

// MSDSeries appends the stored MSD samples, oldest first, to dst.
func (e *Engine) MSDSeries(dst []Sample) []Sample {
	return e.msd.AppendOrdered(dst, 0)
}

// Slope fits MSD against tick time by ordinary least squares over the most
// recent samples. Non-finite or negative samples are dropped before the
// fit; too few surviving points yields 0 instead of a fit on noise.
func (e *Engine) Slope() float64 {
	e.scratch = e.msd.AppendOrdered(e.scratch[:0], e.p.SlopeWindow)
	e.xs = e.xs[:0]
	e.ys = e.ys[:0]
	for _, s := range e.scratch {
		if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) || s.Value < 0 {
			continue
		}
		e.xs = append(e.xs, float64(s.Tick))
		e.ys = append(e.ys, s.Value)
	}
	if len(e.xs) < e.p.MinSlopePoints || len(e.xs) < 2 {
		return 0
	}
	_, beta := stat.LinearRegression(e.xs, e.ys, nil, false)
	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return 0
	}
	return beta
}

// DiffusionCoefficient derives D from the MSD slope via slope = 2*d*D.
func (e *Engine) DiffusionCoefficient() float64 {
	return e.Slope() / (2 * float64(e.box.Dims))
}

// Autocorrelations returns the mean velocity cosine at every lag from 0 to
// MaxLag, averaged over all tracked agents and sample pairs. Pairs where
// either velocity is below MinSpeed are skipped; lags with no valid pair
// report 0. The slice is cached until the next Observe and must not be
// mutated by callers.
func (e *Engine) Autocorrelations() []float64 {
	if e.corrTick == e.tick && e.corr != nil {
		return e.corr
	}
	if e.corr == nil {
		e.corr = make([]float64, e.p.MaxLag+1)
	}
	for lag := 0; lag <= e.p.MaxLag; lag++ {
		sum := 0.0
		n := 0
		for _, ring := range e.vel {
			m := ring.Len()
			for i := 0; i+lag < m; i++ {
				a := ring.At(i)
				b := ring.At(i + lag)
				la, lb := a.Len(), b.Len()
				if la < e.p.MinSpeed || lb < e.p.MinSpeed {
					continue
				}
				sum += a.Dot(b) / (la * lb)
				n++
			}
		}
		if n == 0 {
			e.corr[lag] = 0
		} else {
			e.corr[lag] = sum / float64(n)
		}
	}
	e.corrTick = e.tick
	return e.corr
}

// Autocorrelation returns the mean velocity cosine at one lag.
func (e *Engine) Autocorrelation(lag int) float64 {
	if lag < 0 || lag > e.p.MaxLag {
		return 0
	}
	return e.Autocorrelations()[lag]
}

// Brownian reports whether the velocity direction has decorrelated at the
// classifier lag, the signature separating diffusive motion from ballistic
// or collectively ordered motion.
func (e *Engine) Brownian() bool {
	return e.Autocorrelation(e.p.BrownianLag) < e.p.BrownianThreshold
}

// DecayTime returns the first lag, in ticks, at which the autocorrelation
// falls to 1/e or below, or 0 if it never does within MaxLag.
func (e *Engine) DecayTime() float64 {
	corr := e.Autocorrelations()
	for lag := 1; lag < len(corr); lag++ {
		if corr[lag] <= 1/math.E {
			return float64(lag)
		}
	}
	return 0
}

// MeanSquaredDisplacement averages the squared distance of each tracked
// agent from its origin. Under periodic boundaries the distance is the
// shortest wrapped displacement, so a wrap does not fake a jump.
func MeanSquaredDisplacement(agents []physics.Agent, tracked []int32, box physics.Box, mode physics.BoundaryMode) float64 {
	if len(tracked) == 0 {
		return 0
	}
	sum := 0.0
	for _, id := range tracked {
		a := &agents[id]
		sum += physics.Delta(a.Pos, a.Origin, box, mode).LenSq()
	}
	return sum / float64(len(tracked))
}

// OrderParameter measures collective alignment: the magnitude of the mean
// unit heading over all moving agents. 1 is perfect alignment, near 0 is
// isotropy. Agents slower than minSpeed have no meaningful heading and are
// excluded; with no moving agents the order parameter is 0.
func OrderParameter(agents []physics.Agent, minSpeed float64) float64 {
	var sum physics.Vec
	n := 0
	for i := range agents {
		v := agents[i].Vel
		l := v.Len()
		if l < minSpeed {
			continue
		}
		sum = sum.Add(v.Scale(1 / l))
		n++
	}
	if n == 0 {
		return 0
	}
	return sum.Len() / float64(n)
}

// Kinetics totals kinetic energy and momentum over the population and
// reports the mean speed alongside.
func Kinetics(agents []physics.Agent) (ke float64, momentum physics.Vec, meanSpeed float64) {
	for i := range agents {
		a := &agents[i]
		ke += 0.5 * a.Mass * a.Vel.LenSq()
		momentum = momentum.Add(a.Vel.Scale(a.Mass))
		meanSpeed += a.Vel.Len()
	}
	if len(agents) > 0 {
		meanSpeed /= float64(len(agents))
	}
	return ke, momentum, meanSpeed
}
