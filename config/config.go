// Package config provides configuration loading and validation for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation parameters. It is passed explicitly to the
// simulation constructor; there is no package-level instance.
type Config struct {
	Mode string `yaml:"mode"` // diffusion | bath | flock
	Seed uint64 `yaml:"seed"` // 0 = derive from wall clock

	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Agents    AgentsConfig    `yaml:"agents"`
	Diffusion DiffusionConfig `yaml:"diffusion"`
	Bath      BathConfig      `yaml:"bath"`
	Flock     FlockConfig     `yaml:"flock"`
	Grid      GridConfig      `yaml:"grid"`
	Stats     StatsConfig     `yaml:"stats"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the world box and boundary behavior.
type WorldConfig struct {
	Dims     int     `yaml:"dims"`     // 2 or 3
	Width    float64 `yaml:"width"`    // X span in world units
	Height   float64 `yaml:"height"`   // Y span in world units
	Depth    float64 `yaml:"depth"`    // Z span, used when dims = 3
	Boundary string  `yaml:"boundary"` // reflect | periodic | clamp
}

// AgentsConfig holds parameters shared by the bulk population
// (walkers, bath particles, boids).
type AgentsConfig struct {
	Count  int     `yaml:"count"`
	Radius float64 `yaml:"radius"`
	Mass   float64 `yaml:"mass"`
}

// DiffusionConfig holds random-walk parameters.
type DiffusionConfig struct {
	StepSize        float64 `yaml:"step_size"`         // step length per tick
	MaxMoveAttempts int     `yaml:"max_move_attempts"` // retry bound before the agent stays put
}

// BathConfig holds tracer-in-thermal-bath parameters.
type BathConfig struct {
	TracerRadius         float64 `yaml:"tracer_radius"`
	TracerMass           float64 `yaml:"tracer_mass"`
	Temperature          float64 `yaml:"temperature"`            // Maxwell-Boltzmann sigma = sqrt(T/m)
	MinCollisionInterval int64   `yaml:"min_collision_interval"` // cooldown in ticks, >= 1
	SeparationBuffer     float64 `yaml:"separation_buffer"`      // extra gap after overlap resolution
	WallDamping          float64 `yaml:"wall_damping"`           // tracer velocity factor on wall contact
}

// FlockConfig holds Vicsek-style flocking parameters.
type FlockConfig struct {
	Speed              float64 `yaml:"speed"`               // constant boid speed
	InteractionRadius  float64 `yaml:"interaction_radius"`  // alignment neighborhood
	SeparationDistance float64 `yaml:"separation_distance"` // repulsion onset
	CohesionFactor     float64 `yaml:"cohesion_factor"`     // cohesion radius = factor * interaction radius (3D)
	Noise              float64 `yaml:"noise"`               // isotropic heading noise magnitude
	WallAvoidDistance  float64 `yaml:"wall_avoid_distance"` // wall repulsion onset
	WallJitter         float64 `yaml:"wall_jitter"`         // wall force randomization, e.g. 0.2 = +/-20%
}

// GridConfig holds spatial grid tuning.
type GridConfig struct {
	CellScale float64 `yaml:"cell_scale"` // cell size = scale * largest interaction distance, >= 1
}

// StatsConfig holds the statistics engine windows and thresholds.
type StatsConfig struct {
	SampleEvery       int     `yaml:"sample_every"`       // MSD sampling modulus in ticks
	HistoryCap        int     `yaml:"history_cap"`        // MSD ring capacity
	SlopeWindow       int     `yaml:"slope_window"`       // samples in the OLS slope fit
	MinSlopePoints    int     `yaml:"min_slope_points"`   // below this the slope reports 0
	MaxLag            int     `yaml:"max_lag"`            // autocorrelation lags [0, max]
	VelocityWindow    int     `yaml:"velocity_window"`    // velocity ring capacity per tracked agent
	MinSpeed          float64 `yaml:"min_speed"`          // magnitude floor for cosine correlation
	BrownianLag       int     `yaml:"brownian_lag"`       // lag inspected by the Brownian classifier
	BrownianThreshold float64 `yaml:"brownian_threshold"` // correlation below this = Brownian
	Tracked           int     `yaml:"tracked"`            // max agents feeding MSD/autocorrelation
}

// TelemetryConfig holds telemetry cadence settings.
type TelemetryConfig struct {
	WindowTicks  int `yaml:"window_ticks"`   // ticks per stats window flush
	PerfWindow   int `yaml:"perf_window"`    // samples in the perf rolling window
	PerfLogEvery int `yaml:"perf_log_every"` // ticks between perf debug logs, 0 = off
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	CellSize       float64 // grid cell edge
	MaxInteraction float64 // largest pair interaction distance for the active mode
	CohesionRadius float64 // flock cohesion radius, 0 unless dims = 3
	Tracked        int     // agents feeding MSD/autocorrelation (tracer only in bath mode)
}

// Load loads configuration from a YAML file, merging with embedded defaults,
// then validates and computes derived values. If path is empty, only embedded
// defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates the config and computes derived values. Callers building
// a Config by hand (tests, sweeps) must call it before use.
func (c *Config) Finalize() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Validate checks every parameter the simulation depends on. The simulation
// refuses to start on the first violation.
func (c *Config) Validate() error {
	switch c.Mode {
	case "diffusion", "bath", "flock":
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	switch c.World.Boundary {
	case "reflect", "periodic", "clamp":
	default:
		return fmt.Errorf("config: unknown boundary %q", c.World.Boundary)
	}
	if c.World.Dims != 2 && c.World.Dims != 3 {
		return fmt.Errorf("config: world.dims must be 2 or 3, got %d", c.World.Dims)
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("config: world size must be positive, got %gx%g", c.World.Width, c.World.Height)
	}
	if c.World.Dims == 3 && c.World.Depth <= 0 {
		return fmt.Errorf("config: world.depth must be positive in 3D, got %g", c.World.Depth)
	}
	if c.Agents.Count < 1 {
		return fmt.Errorf("config: agents.count must be >= 1, got %d", c.Agents.Count)
	}
	if c.Agents.Radius <= 0 || c.Agents.Mass <= 0 {
		return fmt.Errorf("config: agent radius and mass must be positive")
	}
	if c.Diffusion.StepSize <= 0 {
		return fmt.Errorf("config: diffusion.step_size must be positive, got %g", c.Diffusion.StepSize)
	}
	if c.Diffusion.MaxMoveAttempts < 1 {
		return fmt.Errorf("config: diffusion.max_move_attempts must be >= 1, got %d", c.Diffusion.MaxMoveAttempts)
	}
	if c.Bath.TracerRadius <= 0 || c.Bath.TracerMass <= 0 {
		return fmt.Errorf("config: tracer radius and mass must be positive")
	}
	if c.Bath.Temperature < 0 {
		return fmt.Errorf("config: bath.temperature must be >= 0, got %g", c.Bath.Temperature)
	}
	if c.Bath.MinCollisionInterval < 1 {
		return fmt.Errorf("config: bath.min_collision_interval must be >= 1, got %d", c.Bath.MinCollisionInterval)
	}
	if c.Bath.SeparationBuffer < 0 {
		return fmt.Errorf("config: bath.separation_buffer must be >= 0, got %g", c.Bath.SeparationBuffer)
	}
	if c.Bath.WallDamping <= 0 || c.Bath.WallDamping > 1 {
		return fmt.Errorf("config: bath.wall_damping must be in (0,1], got %g", c.Bath.WallDamping)
	}
	if c.Mode == "bath" {
		span := c.World.Width
		if c.World.Height < span {
			span = c.World.Height
		}
		if c.World.Dims == 3 && c.World.Depth < span {
			span = c.World.Depth
		}
		if 2*c.Bath.TracerRadius >= span {
			return fmt.Errorf("config: tracer diameter %g does not fit world span %g", 2*c.Bath.TracerRadius, span)
		}
	}
	if c.Flock.Speed <= 0 {
		return fmt.Errorf("config: flock.speed must be positive, got %g", c.Flock.Speed)
	}
	if c.Flock.InteractionRadius <= 0 {
		return fmt.Errorf("config: flock.interaction_radius must be positive, got %g", c.Flock.InteractionRadius)
	}
	if c.Flock.SeparationDistance < 0 || c.Flock.Noise < 0 || c.Flock.WallAvoidDistance < 0 {
		return fmt.Errorf("config: flock distances and noise must be >= 0")
	}
	if c.Flock.CohesionFactor < 1 {
		return fmt.Errorf("config: flock.cohesion_factor must be >= 1, got %g", c.Flock.CohesionFactor)
	}
	if c.Flock.WallJitter < 0 || c.Flock.WallJitter > 1 {
		return fmt.Errorf("config: flock.wall_jitter must be in [0,1], got %g", c.Flock.WallJitter)
	}
	if c.Grid.CellScale < 1 {
		// Below 1 the 3x3 block no longer covers the interaction radius.
		return fmt.Errorf("config: grid.cell_scale must be >= 1, got %g", c.Grid.CellScale)
	}
	if c.Stats.SampleEvery < 1 {
		return fmt.Errorf("config: stats.sample_every must be >= 1, got %d", c.Stats.SampleEvery)
	}
	if c.Stats.MinSlopePoints < 2 || c.Stats.HistoryCap < c.Stats.MinSlopePoints {
		return fmt.Errorf("config: stats history_cap/min_slope_points out of range")
	}
	if c.Stats.SlopeWindow < c.Stats.MinSlopePoints {
		return fmt.Errorf("config: stats.slope_window must be >= min_slope_points")
	}
	if c.Stats.MaxLag < 1 || c.Stats.MaxLag < c.Stats.BrownianLag {
		return fmt.Errorf("config: stats.max_lag must cover brownian_lag")
	}
	if c.Stats.VelocityWindow <= c.Stats.MaxLag {
		return fmt.Errorf("config: stats.velocity_window must exceed max_lag")
	}
	if c.Stats.MinSpeed < 0 {
		return fmt.Errorf("config: stats.min_speed must be >= 0, got %g", c.Stats.MinSpeed)
	}
	if c.Stats.BrownianThreshold <= 0 || c.Stats.BrownianThreshold >= 1 {
		return fmt.Errorf("config: stats.brownian_threshold must be in (0,1), got %g", c.Stats.BrownianThreshold)
	}
	if c.Stats.Tracked < 1 {
		return fmt.Errorf("config: stats.tracked must be >= 1, got %d", c.Stats.Tracked)
	}
	if c.Telemetry.WindowTicks < 1 || c.Telemetry.PerfWindow < 1 {
		return fmt.Errorf("config: telemetry windows must be >= 1")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.CohesionRadius = 0
	switch c.Mode {
	case "diffusion":
		c.Derived.MaxInteraction = 2 * c.Agents.Radius
	case "bath":
		c.Derived.MaxInteraction = c.Bath.TracerRadius + c.Agents.Radius
	case "flock":
		c.Derived.MaxInteraction = c.Flock.InteractionRadius
		if c.World.Dims == 3 {
			c.Derived.CohesionRadius = c.Flock.CohesionFactor * c.Flock.InteractionRadius
			c.Derived.MaxInteraction = c.Derived.CohesionRadius
		}
	}
	c.Derived.CellSize = c.Grid.CellScale * c.Derived.MaxInteraction

	c.Derived.Tracked = c.Stats.Tracked
	if c.Derived.Tracked > c.Agents.Count {
		c.Derived.Tracked = c.Agents.Count
	}
	if c.Mode == "bath" {
		// Statistics follow the tracer alone.
		c.Derived.Tracked = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
