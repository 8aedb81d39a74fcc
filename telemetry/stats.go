package telemetry

import (
	"log/slog"
	"math"
	"slices"
)

// WindowStats holds aggregated statistics for one telemetry window.
type WindowStats struct {
	WindowStartTick int64  `csv:"-"`
	WindowEndTick   int64  `csv:"window_end"`
	Mode            string `csv:"mode"`

	// Population at window end
	Population int `csv:"population"`

	// Events during the window
	Collisions    int     `csv:"collisions"`
	CollisionRate float64 `csv:"collision_rate"`
	Bounces       int     `csv:"bounces"`
	Stalls        int     `csv:"stalls"`

	// Diffusion diagnostics (sampled at window end)
	MSD       float64 `csv:"msd"`
	Slope     float64 `csv:"msd_slope"`
	Diffusion float64 `csv:"diffusion_coeff"`
	VACF1     float64 `csv:"vacf_lag1"`
	VACF3     float64 `csv:"vacf_lag3"`
	DecayTime float64 `csv:"decay_time"`
	Brownian  bool    `csv:"brownian"`

	// Collective state
	OrderParam    float64 `csv:"order_param"`
	KineticEnergy float64 `csv:"kinetic_energy"`
	MomentumMag   float64 `csv:"momentum_mag"`

	// Speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Grid occupancy
	GridCells     int `csv:"grid_cells"`
	GridMaxBucket int `csv:"grid_max_bucket"`
}

// Percentile reads the p-th percentile (p in [0, 1]) from an ascending
// slice, interpolating linearly between the two nearest ranks. An empty
// slice yields 0.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	last := len(sorted) - 1
	rank := p * float64(last)
	if rank <= 0 {
		return sorted[0]
	}
	if rank >= float64(last) {
		return sorted[last]
	}
	i := int(math.Floor(rank))
	w := rank - float64(i)
	return sorted[i] + w*(sorted[i+1]-sorted[i])
}

// ComputeSpeedStats summarizes a speed distribution as mean, 10th, median
// and 90th percentile. The input is left untouched.
func ComputeSpeedStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)
	for _, v := range sorted {
		mean += v
	}
	mean /= float64(len(sorted))

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("window_start", s.WindowStartTick),
		slog.Int64("window_end", s.WindowEndTick),
		slog.String("mode", s.Mode),
		slog.Int("population", s.Population),
		slog.Int("collisions", s.Collisions),
		slog.Float64("collision_rate", s.CollisionRate),
		slog.Int("bounces", s.Bounces),
		slog.Int("stalls", s.Stalls),
		slog.Float64("msd", s.MSD),
		slog.Float64("msd_slope", s.Slope),
		slog.Float64("diffusion_coeff", s.Diffusion),
		slog.Float64("vacf_lag1", s.VACF1),
		slog.Float64("vacf_lag3", s.VACF3),
		slog.Float64("decay_time", s.DecayTime),
		slog.Bool("brownian", s.Brownian),
		slog.Float64("order_param", s.OrderParam),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("momentum_mag", s.MomentumMag),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Int("grid_cells", s.GridCells),
		slog.Int("grid_max_bucket", s.GridMaxBucket),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"mode", s.Mode,
		"population", s.Population,
		"collisions", s.Collisions,
		"collision_rate", s.CollisionRate,
		"bounces", s.Bounces,
		"stalls", s.Stalls,
		"msd", s.MSD,
		"msd_slope", s.Slope,
		"diffusion_coeff", s.Diffusion,
		"vacf_lag1", s.VACF1,
		"vacf_lag3", s.VACF3,
		"decay_time", s.DecayTime,
		"brownian", s.Brownian,
		"order_param", s.OrderParam,
		"kinetic_energy", s.KineticEnergy,
		"momentum_mag", s.MomentumMag,
		"speed_mean", s.SpeedMean,
		"speed_p10", s.SpeedP10,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"grid_cells", s.GridCells,
		"grid_max_bucket", s.GridMaxBucket,
	)
}
