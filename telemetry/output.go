// Package telemetry aggregates per-window simulation counters, tick timing,
// and structured experiment output.
package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/jfet97/petri/config"
	"github.com/jfet97/petri/stats"
)

// csvLog is an append-only CSV file that emits its header exactly once,
// on the first append.
type csvLog struct {
	f        *os.File
	headered bool
}

func newCSVLog(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{f: f}, nil
}

func (l *csvLog) append(records any) error {
	if l.headered {
		return gocsv.MarshalWithoutHeaders(records, l.f)
	}
	if err := gocsv.Marshal(records, l.f); err != nil {
		return err
	}
	l.headered = true
	return nil
}

func (l *csvLog) close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}

// OutputManager writes an experiment's artifacts into one directory: the
// effective config, rolling telemetry and perf CSVs, and the final MSD
// series. A nil OutputManager is valid and discards everything, so callers
// never need to guard their writes.
type OutputManager struct {
	dir       string
	telemetry *csvLog
	perf      *csvLog
}

// NewOutputManager creates the output directory and its CSV logs.
// An empty dir disables output: the returned manager is nil.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	tl, err := newCSVLog(dir, "telemetry.csv")
	if err != nil {
		return nil, err
	}
	pl, err := newCSVLog(dir, "perf.csv")
	if err != nil {
		tl.close()
		return nil, err
	}
	return &OutputManager{dir: dir, telemetry: tl, perf: pl}, nil
}

// WriteConfig saves the effective configuration as YAML, so a run can be
// reproduced from its output directory alone.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry appends one window stats row to telemetry.csv.
func (om *OutputManager) WriteTelemetry(ws WindowStats) error {
	if om == nil {
		return nil
	}
	if err := om.telemetry.append([]WindowStats{ws}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf appends one performance stats row to perf.csv.
func (om *OutputManager) WritePerf(ps PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	if err := om.perf.append([]PerfStatsCSV{ps.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// MSDRecord is one row of the exported MSD time series.
type MSDRecord struct {
	Tick int64   `csv:"tick"`
	MSD  float64 `csv:"msd"`
}

// WriteMSDSeries dumps the full MSD history as msd.csv in one shot,
// typically at shutdown.
func (om *OutputManager) WriteMSDSeries(samples []stats.Sample) error {
	if om == nil {
		return nil
	}

	records := make([]MSDRecord, len(samples))
	for i, s := range samples {
		records[i] = MSDRecord{Tick: s.Tick, MSD: s.Value}
	}

	log, err := newCSVLog(om.dir, "msd.csv")
	if err != nil {
		return err
	}
	if err := log.append(records); err != nil {
		log.close()
		return fmt.Errorf("writing msd series: %w", err)
	}
	return log.close()
}

// Dir returns the output directory path, empty when output is disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes the rolling logs.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(om.telemetry.close(), om.perf.close())
}
