// Package sim owns the simulation state and the per-tick update pipeline.
// A Simulation advances synchronously, one Tick at a time; pacing, rendering
// and parameter input are the caller's concern.
package sim

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jfet97/petri/config"
	"github.com/jfet97/petri/physics"
	"github.com/jfet97/petri/stats"
	"github.com/jfet97/petri/telemetry"
)

// Mode selects the interaction model agents evolve under.
type Mode uint8

const (
	ModeDiffusion Mode = iota
	ModeBath
	ModeFlock
)

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "diffusion":
		return ModeDiffusion, nil
	case "bath":
		return ModeBath, nil
	case "flock":
		return ModeFlock, nil
	}
	return 0, fmt.Errorf("unknown simulation mode %q", s)
}

func (m Mode) String() string {
	switch m {
	case ModeDiffusion:
		return "diffusion"
	case ModeBath:
		return "bath"
	case ModeFlock:
		return "flock"
	}
	return "unknown"
}

// Simulation holds the agent population, the spatial grid over it, and the
// rolling statistics. All methods must be called from a single goroutine;
// the internal worker pool is invisible to callers.
type Simulation struct {
	cfg   *config.Config
	mode  Mode
	bmode physics.BoundaryMode
	box   physics.Box

	agents []physics.Agent
	grid   *physics.Grid
	engine *stats.Engine

	seed uint64
	rng  *rand.Rand

	tick        int64
	lastPerfLog int64

	// Per-tick event counters, reset at the start of every Tick.
	collisions int
	bounces    int
	stalls     int

	totalCollisions int64

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
	output    *telemetry.OutputManager

	par       *headingPool
	neighbors []int32
	speeds    []float64

	snap Snapshot
}

// New builds a simulation from a finalized config. output may be nil, which
// disables CSV export but keeps window logging.
func New(cfg *config.Config, output *telemetry.OutputManager) (*Simulation, error) {
	mode, err := ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	bmode, err := physics.ParseBoundary(cfg.World.Boundary)
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
		slog.Info("seed chosen", "seed", seed)
	}

	s := &Simulation{
		cfg:    cfg,
		mode:   mode,
		bmode:  bmode,
		seed:   seed,
		output: output,
	}
	s.par = newHeadingPool(s)

	if err := s.rebuild(); err != nil {
		return nil, err
	}
	if err := output.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("writing run config: %w", err)
	}
	return s, nil
}

// rebuild recreates agents, grid and statistics from the current config.
// Population and world-size changes funnel through here so the three stay
// consistent; nothing is ever resized in place.
func (s *Simulation) rebuild() error {
	if err := s.cfg.Finalize(); err != nil {
		return err
	}
	bmode, err := physics.ParseBoundary(s.cfg.World.Boundary)
	if err != nil {
		return err
	}
	s.bmode = bmode

	s.box = physics.NewBox(s.cfg.World.Dims, s.cfg.World.Width, s.cfg.World.Height, s.cfg.World.Depth)
	s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9E3779B97F4A7C15))
	s.tick = 0
	s.lastPerfLog = 0
	s.collisions = 0
	s.bounces = 0
	s.stalls = 0
	s.totalCollisions = 0

	// Telemetry windows restart with the run so counters never straddle a
	// rebuild.
	s.collector = telemetry.NewCollector(int64(s.cfg.Telemetry.WindowTicks))
	s.perf = telemetry.NewPerfCollector(s.cfg.Telemetry.PerfWindow)

	s.grid = physics.NewGrid(s.box, s.cfg.Derived.CellSize, s.bmode)
	if err := s.populate(); err != nil {
		return err
	}
	s.grid.Rebuild(s.agents)

	s.engine = stats.NewEngine(stats.Params{
		SampleEvery:       int64(s.cfg.Stats.SampleEvery),
		HistoryCap:        s.cfg.Stats.HistoryCap,
		SlopeWindow:       s.cfg.Stats.SlopeWindow,
		MinSlopePoints:    s.cfg.Stats.MinSlopePoints,
		MaxLag:            s.cfg.Stats.MaxLag,
		VelocityWindow:    s.cfg.Stats.VelocityWindow,
		MinSpeed:          s.cfg.Stats.MinSpeed,
		BrownianLag:       s.cfg.Stats.BrownianLag,
		BrownianThreshold: s.cfg.Stats.BrownianThreshold,
	}, s.box, s.bmode, s.trackedIDs())

	// Baseline observation: MSD 0 at tick 0 anchors the regression.
	s.engine.Observe(s.agents, 0)

	slog.Info("simulation built",
		"mode", s.mode.String(),
		"boundary", s.bmode.String(),
		"dims", s.box.Dims,
		"agents", len(s.agents),
		"cell_size", s.cfg.Derived.CellSize,
		"seed", s.seed,
	)
	return nil
}

// trackedIDs selects the agents the statistics engine follows. The bath
// variant tracks only the tracer; the others track a configured sample of
// the population.
func (s *Simulation) trackedIDs() []int32 {
	if s.mode == ModeBath {
		return []int32{0}
	}
	n := s.cfg.Derived.Tracked
	if n > len(s.agents) {
		n = len(s.agents)
	}
	ids := make([]int32, n)
	for i := range ids {
		ids[i] = int32(i)
	}
	return ids
}

// Tick advances the simulation by one step: move and interact, fold the new
// state into the statistics, then flush telemetry if a window closed.
func (s *Simulation) Tick() {
	s.perf.StartTick()
	s.tick++
	s.collisions = 0
	s.bounces = 0
	s.stalls = 0

	switch s.mode {
	case ModeDiffusion:
		s.stepDiffusion()
	case ModeBath:
		s.stepBath()
	case ModeFlock:
		s.stepFlock()
	}
	s.totalCollisions += int64(s.collisions)

	s.perf.StartPhase(telemetry.PhaseStats)
	s.engine.Observe(s.agents, s.tick)
	s.collector.RecordCollisions(s.collisions)
	s.collector.RecordBounces(s.bounces)
	s.collector.RecordStalls(s.stalls)

	s.perf.StartPhase(telemetry.PhaseTelemetry)
	if s.collector.ShouldFlush(s.tick) {
		s.flushTelemetry()
	}
	s.perf.EndTick()
}

// flushTelemetry closes the current window: logs it, exports it, and every
// few windows logs the perf breakdown too.
func (s *Simulation) flushTelemetry() {
	s.speeds = s.speeds[:0]
	for i := range s.agents {
		s.speeds = append(s.speeds, s.agents[i].Speed())
	}

	gridStats := s.grid.Stats()
	ke, momentum, _ := stats.Kinetics(s.agents)
	ws := s.collector.Flush(s.tick, s.mode.String(), len(s.agents), s.speeds, telemetry.Diagnostics{
		MSD:           s.engine.MSD(),
		Slope:         s.engine.Slope(),
		Diffusion:     s.engine.DiffusionCoefficient(),
		VACF1:         s.engine.Autocorrelation(1),
		VACF3:         s.engine.Autocorrelation(3),
		DecayTime:     s.engine.DecayTime(),
		Brownian:      s.engine.Brownian(),
		OrderParam:    stats.OrderParameter(s.agents, s.cfg.Stats.MinSpeed),
		KineticEnergy: ke,
		MomentumMag:   momentum.Len(),
		GridCells:     gridStats.Cells,
		GridMaxBucket: gridStats.MaxBucket,
	})
	ws.LogStats()
	if err := s.output.WriteTelemetry(ws); err != nil {
		slog.Error("telemetry export failed", "error", err)
	}

	perfStats := s.perf.Stats()
	if err := s.output.WritePerf(perfStats, s.tick); err != nil {
		slog.Error("perf export failed", "error", err)
	}
	if s.cfg.Telemetry.PerfLogEvery > 0 && s.tick-s.lastPerfLog >= int64(s.cfg.Telemetry.PerfLogEvery) {
		perfStats.LogStats()
		s.lastPerfLog = s.tick
	}
}

// CurrentTick returns the number of completed ticks.
func (s *Simulation) CurrentTick() int64 {
	return s.tick
}

// Mode returns the active interaction model.
func (s *Simulation) Mode() Mode {
	return s.mode
}

// Bounds returns the world box.
func (s *Simulation) Bounds() physics.Box {
	return s.box
}

// Agents exposes the live agent slice for read-only inspection.
func (s *Simulation) Agents() []physics.Agent {
	return s.agents
}

// GridStats reports spatial-grid occupancy.
func (s *Simulation) GridStats() physics.GridStats {
	return s.grid.Stats()
}

// MSD returns the latest mean squared displacement sample.
func (s *Simulation) MSD() float64 {
	return s.engine.MSD()
}

// MSDSlope returns the fitted MSD growth rate per tick.
func (s *Simulation) MSDSlope() float64 {
	return s.engine.Slope()
}

// DiffusionCoefficient returns D estimated from the MSD slope.
func (s *Simulation) DiffusionCoefficient() float64 {
	return s.engine.DiffusionCoefficient()
}

// Autocorrelation returns the velocity direction correlation at a lag.
func (s *Simulation) Autocorrelation(lag int) float64 {
	return s.engine.Autocorrelation(lag)
}

// Brownian reports whether tracked motion currently looks diffusive.
func (s *Simulation) Brownian() bool {
	return s.engine.Brownian()
}

// DecayTime returns the velocity decorrelation time in ticks.
func (s *Simulation) DecayTime() float64 {
	return s.engine.DecayTime()
}

// OrderParameter returns the population's current alignment in [0, 1].
func (s *Simulation) OrderParameter() float64 {
	return stats.OrderParameter(s.agents, s.cfg.Stats.MinSpeed)
}

// CollisionsLastTick returns collisions resolved during the latest tick.
func (s *Simulation) CollisionsLastTick() int {
	return s.collisions
}

// TotalCollisions returns collisions resolved since the last rebuild.
func (s *Simulation) TotalCollisions() int64 {
	return s.totalCollisions
}

// StallsLastTick returns agents that exhausted their move attempts during
// the latest tick.
func (s *Simulation) StallsLastTick() int {
	return s.stalls
}

// MarkFrame records a rendered frame for the perf breakdown. Headless runs
// never call it and the FPS column stays zero.
func (s *Simulation) MarkFrame() {
	s.perf.RecordFrame()
}

// SetNoise adjusts the flock noise level in place.
func (s *Simulation) SetNoise(v float64) {
	s.cfg.Flock.Noise = v
}

// SetSpeed adjusts the flock cruise speed in place.
func (s *Simulation) SetSpeed(v float64) {
	s.cfg.Flock.Speed = v
}

// SetStepSize adjusts the random-walk step length in place.
func (s *Simulation) SetStepSize(v float64) {
	s.cfg.Diffusion.StepSize = v
}

// SetTemperature changes the bath temperature and re-thermalizes every bath
// particle from the new distribution. The tracer keeps its velocity.
func (s *Simulation) SetTemperature(v float64) {
	s.cfg.Bath.Temperature = v
	for i := range s.agents {
		a := &s.agents[i]
		if a.Kind != physics.KindBath {
			continue
		}
		a.Vel = physics.MaxwellBoltzmann(s.rng, s.box.Dims, v, a.Mass)
	}
}

// SetAgentCount changes the population and rebuilds the whole simulation:
// agents, grid and statistics always change together. On a rejected value the
// config rolls back and the running state is untouched.
func (s *Simulation) SetAgentCount(n int) error {
	prev := s.cfg.Agents.Count
	s.cfg.Agents.Count = n
	if err := s.rebuild(); err != nil {
		s.cfg.Agents.Count = prev
		return err
	}
	return nil
}

// SetWorldSize changes the world bounds and rebuilds the whole simulation,
// rolling the config back if the new bounds are rejected.
func (s *Simulation) SetWorldSize(width, height, depth float64) error {
	prevW, prevH, prevD := s.cfg.World.Width, s.cfg.World.Height, s.cfg.World.Depth
	s.cfg.World.Width = width
	s.cfg.World.Height = height
	s.cfg.World.Depth = depth
	if err := s.rebuild(); err != nil {
		s.cfg.World.Width, s.cfg.World.Height, s.cfg.World.Depth = prevW, prevH, prevD
		return err
	}
	return nil
}

// Reset rebuilds the simulation from the current config and seed,
// reproducing the original run exactly.
func (s *Simulation) Reset() error {
	return s.rebuild()
}

// Close stops the worker pool and flushes the MSD history to disk.
func (s *Simulation) Close() error {
	s.par.stop()
	series := s.engine.MSDSeries(nil)
	if err := s.output.WriteMSDSeries(series); err != nil {
		return fmt.Errorf("exporting msd series: %w", err)
	}
	return nil
}
