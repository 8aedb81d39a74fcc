package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step.
const (
	PhaseInteract    = "interact"
	PhaseIntegrate   = "integrate"
	PhaseSpatialGrid = "spatial_grid"
	PhaseStats       = "stats"
	PhaseTelemetry   = "telemetry"
)

// phaseNames fixes the reporting order; its indices key the per-tick arrays.
var phaseNames = [...]string{
	PhaseInteract, PhaseIntegrate, PhaseSpatialGrid, PhaseStats, PhaseTelemetry,
}

const numPhases = len(phaseNames)

func phaseIndex(name string) int {
	for i, n := range phaseNames {
		if n == name {
			return i
		}
	}
	return -1
}

// tickSample is the timing of one completed tick, split by phase.
type tickSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
}

// PerfCollector times simulation ticks phase by phase and aggregates them
// over a rolling window. A phase runs from its StartPhase call until the next
// StartPhase or EndTick; a phase started more than once in a tick accumulates.
// Phase names outside the known set are ignored.
type PerfCollector struct {
	window []tickSample
	next   int
	filled int

	cur       tickSample
	tickStart time.Time
	phaseAt   time.Time
	phase     int // index of the running phase, -1 when none

	lastFrame time.Time
	frameDur  time.Duration
}

// NewPerfCollector creates a collector averaging over the given number of
// ticks. Sizes below one fall back to 60.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{window: make([]tickSample, windowSize), phase: -1}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.cur = tickSample{}
	p.phase = -1
	p.tickStart = time.Now()
}

// StartPhase closes the running phase, if any, and starts the named one.
func (p *PerfCollector) StartPhase(name string) {
	now := time.Now()
	p.settle(now)
	p.phase = phaseIndex(name)
	p.phaseAt = now
}

// EndTick closes the running phase and commits the tick to the window.
func (p *PerfCollector) EndTick() {
	now := time.Now()
	p.settle(now)
	p.phase = -1
	p.cur.total = now.Sub(p.tickStart)

	p.window[p.next] = p.cur
	p.next = (p.next + 1) % len(p.window)
	if p.filled < len(p.window) {
		p.filled++
	}
}

func (p *PerfCollector) settle(now time.Time) {
	if p.phase >= 0 {
		p.cur.phases[p.phase] += now.Sub(p.phaseAt)
	}
}

// RecordFrame marks a rendered frame; the gap between consecutive calls is
// the frame duration. Only meaningful in windowed mode.
func (p *PerfCollector) RecordFrame() {
	now := time.Now()
	if !p.lastFrame.IsZero() {
		p.frameDur = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats is the aggregate over the collector's current window.
type PerfStats struct {
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration

	// Per-phase average duration and share of tick time, keyed by phase
	// name. Phases that never ran are absent.
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	TicksPerSecond float64

	// Frame timing, zero in headless runs.
	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the window. Frame timing is reported even before the
// first tick completes.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		PhaseAvg:      make(map[string]time.Duration, numPhases),
		PhasePct:      make(map[string]float64, numPhases),
		FrameDuration: p.frameDur,
	}
	if p.frameDur > 0 {
		out.FPS = float64(time.Second) / float64(p.frameDur)
	}
	if p.filled == 0 {
		return out
	}

	var total time.Duration
	var phaseTotal [numPhases]time.Duration
	out.MinTickDuration = p.window[0].total
	for _, s := range p.window[:p.filled] {
		total += s.total
		if s.total < out.MinTickDuration {
			out.MinTickDuration = s.total
		}
		if s.total > out.MaxTickDuration {
			out.MaxTickDuration = s.total
		}
		for i, d := range s.phases {
			phaseTotal[i] += d
		}
	}

	n := time.Duration(p.filled)
	out.AvgTickDuration = total / n
	if out.AvgTickDuration > 0 {
		out.TicksPerSecond = float64(time.Second) / float64(out.AvgTickDuration)
	}
	for i, sum := range phaseTotal {
		if sum == 0 {
			continue
		}
		avg := sum / n
		out.PhaseAvg[phaseNames[i]] = avg
		if out.AvgTickDuration > 0 {
			out.PhasePct[phaseNames[i]] = float64(avg) / float64(out.AvgTickDuration) * 100
		}
	}
	return out
}

// LogStats logs the aggregate using slog.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"min_tick_us", s.MinTickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}
	for _, name := range phaseNames {
		if pct := s.PhasePct[name]; pct > 0.1 {
			attrs = append(attrs, name+"_pct", int(pct*10)/10.0)
		}
	}
	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, name := range phaseNames {
		if pct, ok := s.PhasePct[name]; ok {
			attrs = append(attrs, slog.Float64(name+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat row for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd      int64   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	MinTickUS      int64   `csv:"min_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	FPS            float64 `csv:"fps"`
	InteractPct    float64 `csv:"interact_pct"`
	IntegratePct   float64 `csv:"integrate_pct"`
	SpatialGridPct float64 `csv:"spatial_grid_pct"`
	StatsPct       float64 `csv:"stats_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
}

// ToCSV flattens the stats for export, stamped with the closing tick.
func (s PerfStats) ToCSV(windowEnd int64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTickDuration.Microseconds(),
		MinTickUS:      s.MinTickDuration.Microseconds(),
		MaxTickUS:      s.MaxTickDuration.Microseconds(),
		TicksPerSec:    s.TicksPerSecond,
		FPS:            s.FPS,
		InteractPct:    s.PhasePct[PhaseInteract],
		IntegratePct:   s.PhasePct[PhaseIntegrate],
		SpatialGridPct: s.PhasePct[PhaseSpatialGrid],
		StatsPct:       s.PhasePct[PhaseStats],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
	}
}
