// Package export buffers per-sample telemetry records and writes them as
// CSV for offline analysis. The column order and 6-decimal precision are a
// fixed contract: downstream tooling parses by position.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vrqa/trackmon/telemetry"
)

// Sample is one exported observation: pose plus the per-axis jitter at the
// moment the pose was taken.
type Sample struct {
	Timestamp float64
	Device    telemetry.DeviceID
	X         float64
	Y         float64
	Z         float64
	Pitch     float64
	Yaw       float64
	Roll      float64
	SigmaX    float64
	SigmaY    float64
	SigmaZ    float64
}

var header = []string{
	"Timestamp",
	"Device Serial",
	"Pos X", "Pos Y", "Pos Z",
	"Rot Pitch", "Rot Yaw", "Rot Roll",
	"Sigma X", "Sigma Y", "Sigma Z",
}

func (s Sample) row() []string {
	f := func(v float64) string {
		return strconv.FormatFloat(v, 'f', 6, 64)
	}
	return []string{
		f(s.Timestamp),
		string(s.Device),
		f(s.X), f(s.Y), f(s.Z),
		f(s.Pitch), f(s.Yaw), f(s.Roll),
		f(s.SigmaX), f(s.SigmaY), f(s.SigmaZ),
	}
}

// CSVExporter collects samples in memory during a measurement session and
// writes them out on demand. It implements telemetry.Sink, recording only
// valid poses. Safe for a host that saves from a different goroutine than
// the acquisition tick.
type CSVExporter struct {
	mu      sync.Mutex
	samples []Sample
}

func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Consume implements telemetry.Sink. Invalid samples are skipped: a lost
// frame contributes to the loss rate, not to the export.
func (e *CSVExporter) Consume(res telemetry.Result) error {
	if !res.Sample.Valid {
		return nil
	}
	e.Add(Sample{
		Timestamp: res.Sample.Timestamp,
		Device:    res.Device,
		X:         res.Sample.Position.X,
		Y:         res.Sample.Position.Y,
		Z:         res.Sample.Position.Z,
		Pitch:     res.Sample.Rotation.Pitch,
		Yaw:       res.Sample.Rotation.Yaw,
		Roll:      res.Sample.Rotation.Roll,
		SigmaX:    res.SigmaX,
		SigmaY:    res.SigmaY,
		SigmaZ:    res.SigmaZ,
	})
	return nil
}

// Add appends a sample to the buffer.
func (e *CSVExporter) Add(s Sample) {
	e.mu.Lock()
	e.samples = append(e.samples, s)
	e.mu.Unlock()
}

// Len returns the number of buffered samples.
func (e *CSVExporter) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.samples)
}

// Clear empties the sample buffer.
func (e *CSVExporter) Clear() {
	e.mu.Lock()
	e.samples = nil
	e.mu.Unlock()
}

// Save writes the buffered samples to a CSV file and returns its path.
// An empty directory means the current working directory; an empty
// filename produces tracker_jitter_<YYYYMMDD_HHMMSS>.csv.
func (e *CSVExporter) Save(directory, filename string) (string, error) {
	if directory == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, "Can't resolve working directory")
		}
		directory = wd
	}
	if filename == "" {
		filename = fmt.Sprintf("tracker_jitter_%s.csv", time.Now().Format("20060102_150405"))
	}
	path := filepath.Join(directory, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "Can't create export file %s", path)
	}
	defer f.Close()

	e.mu.Lock()
	rows := make([]Sample, len(e.samples))
	copy(rows, e.samples)
	e.mu.Unlock()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return "", errors.Wrap(err, "Can't write CSV header")
	}
	for _, s := range rows {
		if err := w.Write(s.row()); err != nil {
			return "", errors.Wrapf(err, "Can't write CSV row for device %s", s.Device)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrapf(err, "Can't flush export file %s", path)
	}
	return path, nil
}
