// Package main sweeps one simulation parameter across a value range, running
// several seeds per point concurrently, and writes the aggregated results to
// CSV. The default flock-noise sweep traces the order-disorder transition
// curve; the temperature sweep maps bath temperature to the tracer's
// diffusion coefficient.
//
// Usage: go run ./cmd/sweep -param noise -from 0 -to 4 -points 17 -runs 4
package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"
	"sync"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"github.com/jfet97/petri/config"
	"github.com/jfet97/petri/sim"
)

// Result is one aggregated sweep point, one CSV row.
type Result struct {
	Param      string  `csv:"param"`
	Value      float64 `csv:"value"`
	Runs       int     `csv:"runs"`
	Ticks      int64   `csv:"ticks"`
	OrderMean  float64 `csv:"order_mean"`
	OrderStd   float64 `csv:"order_std"`
	Diffusion  float64 `csv:"diffusion_mean"`
	Collisions float64 `csv:"collisions_per_tick"`
}

// runOutcome holds the final diagnostics of a single seeded run.
type runOutcome struct {
	order      float64
	diffusion  float64
	collisions float64
}

func main() {
	configPath := flag.String("config", "", "Base config YAML (empty = defaults)")
	param := flag.String("param", "noise", "Swept parameter: noise (flock) or temperature (bath)")
	from := flag.Float64("from", 0, "Sweep start value")
	to := flag.Float64("to", 4, "Sweep end value")
	points := flag.Int("points", 17, "Number of sweep points")
	runs := flag.Int("runs", 4, "Seeds per point")
	ticks := flag.Int64("ticks", 4000, "Ticks per run")
	out := flag.String("out", "sweep.csv", "Output CSV path")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *param != "noise" && *param != "temperature" {
		slog.Error("unknown sweep parameter", "param", *param)
		os.Exit(1)
	}
	if *points < 2 {
		slog.Error("need at least 2 sweep points", "points", *points)
		os.Exit(1)
	}

	results := make([]Result, 0, *points)
	for p := 0; p < *points; p++ {
		value := *from + (*to-*from)*float64(p)/float64(*points-1)
		outcomes, err := sweepPoint(*configPath, *param, value, *runs, *ticks)
		if err != nil {
			slog.Error("sweep point failed", "value", value, "error", err)
			os.Exit(1)
		}

		orders := make([]float64, len(outcomes))
		diffs := make([]float64, len(outcomes))
		colls := make([]float64, len(outcomes))
		for i, o := range outcomes {
			orders[i] = o.order
			diffs[i] = o.diffusion
			colls[i] = o.collisions
		}
		std := 0.0
		if len(orders) > 1 {
			std = stat.StdDev(orders, nil)
		}

		res := Result{
			Param:      *param,
			Value:      value,
			Runs:       *runs,
			Ticks:      *ticks,
			OrderMean:  stat.Mean(orders, nil),
			OrderStd:   std,
			Diffusion:  stat.Mean(diffs, nil),
			Collisions: stat.Mean(colls, nil),
		}
		results = append(results, res)
		slog.Info("sweep point done",
			"param", *param,
			"value", value,
			"order", res.OrderMean,
			"diffusion", res.Diffusion,
		)
	}

	f, err := os.Create(*out)
	if err != nil {
		slog.Error("creating output file", "error", err)
		os.Exit(1)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&results, f); err != nil {
		slog.Error("writing results", "error", err)
		os.Exit(1)
	}
	slog.Info("sweep complete", "points", len(results), "out", *out)
}

// sweepPoint runs one parameter value across several seeds concurrently and
// returns the per-run outcomes. Concurrency is capped at GOMAXPROCS; each run
// owns its whole simulation, so they share nothing.
func sweepPoint(cfgPath, param string, value float64, runs int, ticks int64) ([]runOutcome, error) {
	outcomes := make([]runOutcome, runs)
	errs := make([]error, runs)

	sem := make(chan struct{}, runtime.GOMAXPROCS(0))
	var wg sync.WaitGroup
	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(run int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[run], errs[run] = oneRun(cfgPath, param, value, run, ticks)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return outcomes, nil
}

// oneRun executes a single headless simulation and reads off its final
// diagnostics. Seeds repeat across sweep points so every point sees the same
// draw sequence.
func oneRun(cfgPath, param string, value float64, run int, ticks int64) (runOutcome, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return runOutcome{}, err
	}
	switch param {
	case "noise":
		cfg.Mode = "flock"
		cfg.Flock.Noise = value
	case "temperature":
		cfg.Mode = "bath"
		cfg.Bath.Temperature = value
	}
	cfg.Seed = uint64(run*1000 + 42)
	cfg.Telemetry.WindowTicks = int(ticks) + 1 // no mid-run flushes
	if err := cfg.Finalize(); err != nil {
		return runOutcome{}, err
	}

	s, err := sim.New(cfg, nil)
	if err != nil {
		return runOutcome{}, err
	}
	defer func() { _ = s.Close() }()

	for t := int64(0); t < ticks; t++ {
		s.Tick()
	}

	m := s.Metrics()
	return runOutcome{
		order:      m.OrderParam,
		diffusion:  m.Diffusion,
		collisions: float64(m.TotalCollisions) / float64(ticks),
	}, nil
}
