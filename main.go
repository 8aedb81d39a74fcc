package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/time/rate"

	"github.com/jfet97/petri/config"
	"github.com/jfet97/petri/sim"
	"github.com/jfet97/petri/telemetry"
	"github.com/jfet97/petri/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	mode := flag.String("mode", "", "Override simulation mode: diffusion, bath or flock")
	seed := flag.Uint64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	tps := flag.Float64("tps", 0, "Headless ticks per second (0 = unthrottled)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(*logLevel)}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Mode = *mode
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to open output dir", "error", err)
		os.Exit(1)
	}

	s, err := sim.New(cfg, output)
	if err != nil {
		slog.Error("failed to build simulation", "error", err)
		os.Exit(1)
	}

	if *headless {
		runHeadless(s, *maxTicks, *tps)
	} else {
		runWindow(cfg, s, *maxTicks)
	}

	m := s.Metrics()
	slog.Info("run finished",
		"tick", m.Tick,
		"collisions", m.TotalCollisions,
		"msd", m.MSD,
		"diffusion", m.Diffusion,
		"order", m.OrderParam,
	)

	if err := s.Close(); err != nil {
		slog.Error("shutdown incomplete", "error", err)
	}
	if err := output.Close(); err != nil {
		slog.Error("closing output", "error", err)
	}
}

// runHeadless drives the simulation without a window, optionally paced to a
// target tick rate, until the tick budget runs out or the process is
// interrupted.
func runHeadless(s *sim.Simulation, maxTicks int64, tps float64) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var limiter *rate.Limiter
	if tps > 0 {
		limiter = rate.NewLimiter(rate.Limit(tps), 1)
	}

	slog.Info("headless run started", "max_ticks", maxTicks, "tps", tps)
	for {
		select {
		case <-ctx.Done():
			slog.Info("interrupted", "tick", s.CurrentTick())
			return
		default:
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				slog.Info("interrupted", "tick", s.CurrentTick())
				return
			}
		}

		s.Tick()
		if maxTicks > 0 && s.CurrentTick() >= maxTicks {
			slog.Info("max ticks reached", "tick", s.CurrentTick())
			return
		}
	}
}

// runWindow drives the graphical loop; raylib requires the main thread.
func runWindow(cfg *config.Config, s *sim.Simulation, maxTicks int64) {
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Petri")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v := ui.NewViewer(cfg, s)
	for !rl.WindowShouldClose() {
		v.Update()
		v.Draw()

		if maxTicks > 0 && s.CurrentTick() >= maxTicks {
			break
		}
	}
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
