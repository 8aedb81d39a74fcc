package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationTicks int64

	// Current window tracking
	windowStartTick int64

	// Event counters for current window
	collisions int
	bounces    int
	stalls     int
}

// NewCollector creates a new stats collector flushing every windowTicks.
func NewCollector(windowTicks int64) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{
		windowDurationTicks: windowTicks,
		windowStartTick:     0,
	}
}

// RecordCollisions records resolved elastic collisions.
func (c *Collector) RecordCollisions(n int) {
	c.collisions += n
}

// RecordBounces records random-walk steps rejected into bounces.
func (c *Collector) RecordBounces(n int) {
	c.bounces += n
}

// RecordStalls records agents that exhausted their move attempts and stayed put.
func (c *Collector) RecordStalls(n int) {
	c.stalls += n
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int64) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Diagnostics holds the estimator outputs sampled at flush time.
// The caller reads them off its statistics engine; the collector only
// forwards them into the window record.
type Diagnostics struct {
	MSD       float64
	Slope     float64
	Diffusion float64
	VACF1     float64
	VACF3     float64
	DecayTime float64
	Brownian  bool

	OrderParam    float64
	KineticEnergy float64
	MomentumMag   float64

	GridCells     int
	GridMaxBucket int
}

// Flush produces a WindowStats and resets counters for the next window.
// speeds are the current per-agent speeds, used for the distribution
// percentiles; diag carries the rolling-estimator outputs.
func (c *Collector) Flush(currentTick int64, mode string, population int, speeds []float64, diag Diagnostics) WindowStats {
	window := currentTick - c.windowStartTick
	var collisionRate float64
	if window > 0 {
		collisionRate = float64(c.collisions) / float64(window)
	}

	speedMean, speedP10, speedP50, speedP90 := ComputeSpeedStats(speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		Mode:            mode,

		Population: population,

		Collisions:    c.collisions,
		CollisionRate: collisionRate,
		Bounces:       c.bounces,
		Stalls:        c.stalls,

		MSD:       diag.MSD,
		Slope:     diag.Slope,
		Diffusion: diag.Diffusion,
		VACF1:     diag.VACF1,
		VACF3:     diag.VACF3,
		DecayTime: diag.DecayTime,
		Brownian:  diag.Brownian,

		OrderParam:    diag.OrderParam,
		KineticEnergy: diag.KineticEnergy,
		MomentumMag:   diag.MomentumMag,

		SpeedMean: speedMean,
		SpeedP10:  speedP10,
		SpeedP50:  speedP50,
		SpeedP90:  speedP90,

		GridCells:     diag.GridCells,
		GridMaxBucket: diag.GridMaxBucket,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.collisions = 0
	c.bounces = 0
	c.stalls = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int64 {
	return c.windowDurationTicks
}
