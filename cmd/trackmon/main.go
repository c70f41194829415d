// trackmon runs the pose-quality telemetry pipeline against a frame source
// and exports the collected samples as CSV on shutdown. Without real
// tracking hardware it drives a built-in simulated device set, which is
// enough to observe jitter, loss-rate and drift behaviour end to end.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/vrqa/trackmon/acquire"
	"github.com/vrqa/trackmon/config"
	"github.com/vrqa/trackmon/export"
	"github.com/vrqa/trackmon/telemetry"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (defaults apply when empty)")
	duration := flag.Duration("duration", 0, "stop after this long (0 = run until signal)")
	seed := flag.Uint64("seed", 42, "simulation seed")
	out := flag.String("out", "", "export filename (default tracker_jitter_<timestamp>.csv)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		cfg = loaded
	}

	exporter := export.NewCSVExporter()
	pipe := telemetry.NewPipeline(
		telemetry.NewRollingStatsTracker(cfg.WindowSize),
		telemetry.NewLossRateTracker(),
		telemetry.NewDriftMonitor(cfg.DriftThresholdM, cfg.DriftHistoryCap),
		exporter,
	)

	source := acquire.NewSimSource(*seed, simScenario())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	log.Printf("session %s: %d Hz, window %d, drift threshold %.1f mm",
		pipe.SessionID, cfg.SampleRateHz, cfg.WindowSize, cfg.DriftThresholdM*1000)

	ticker := time.NewTicker(time.Second / time.Duration(cfg.SampleRateHz))
	defer ticker.Stop()
	report := time.NewTicker(time.Second)
	defer report.Stop()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case now := <-ticker.C:
			ts := float64(now.UnixNano()) / 1e9
			if _, err := pipe.Process(source.Frames(ts)); err != nil {
				log.Printf("tick: %v", err)
			}
		case <-report.C:
			logSummary(pipe, exporter)
		}
	}

	path, err := exporter.Save(cfg.ExportDir, *out)
	if err != nil {
		log.Fatalf("export: %v", err)
	}
	log.Printf("saved %d samples to %s", exporter.Len(), path)
}

// logSummary prints one line per device. Reading the trackers once a
// second while the pipeline ticks at full rate is exactly the cadence
// split the core is designed for.
func logSummary(pipe *telemetry.Pipeline, exporter *export.CSVExporter) {
	for _, id := range pipe.Loss().Devices() {
		sx, sy, sz := pipe.Stats().StdDev(id)
		line := ""
		if state := pipe.Drift().State(id); state != telemetry.DriftCalibrating {
			line = "  drift=" + state.String()
		}
		log.Printf("%-24s σ=(%.4f %.4f %.4f) mm loss=%.1f%%%s",
			id, sx*1000, sy*1000, sz*1000, pipe.Loss().LossRate(id)*100, line)
	}
	log.Printf("samples buffered: %d", exporter.Len())
}

// simScenario is the default simulated device set: two jittery trackers,
// one controller with dropout, a solid reference and a reference that
// starts creeping after ten seconds.
func simScenario() []acquire.SimDevice {
	return []acquire.SimDevice{
		{
			ID:           "LHR-TRACKER-01",
			Class:        telemetry.ClassTracker,
			Origin:       telemetry.NewVec3(0.2, 1.1, -0.5),
			JitterSigmaM: 0.0004,
			WobbleDeg:    0.5,
		},
		{
			ID:           "LHR-TRACKER-02",
			Class:        telemetry.ClassTracker,
			Origin:       telemetry.NewVec3(-0.3, 0.9, -0.4),
			JitterSigmaM: 0.0011,
			WobbleDeg:    0.5,
		},
		{
			ID:           "LHR-CTRL-01",
			Class:        telemetry.ClassController,
			Origin:       telemetry.NewVec3(0.0, 1.3, -0.2),
			JitterSigmaM: 0.0006,
			DropoutRate:  0.05,
		},
		{
			ID:           "LHB-BASE-A",
			Class:        telemetry.ClassReference,
			Origin:       telemetry.NewVec3(-1.8, 2.2, 1.6),
			JitterSigmaM: 0.0001,
		},
		{
			ID:             "LHB-BASE-B",
			Class:          telemetry.ClassReference,
			Origin:         telemetry.NewVec3(1.9, 2.3, 1.5),
			JitterSigmaM:   0.0001,
			DriftAfterS:    10,
			DriftRateMPerS: 0.001,
		},
	}
}
