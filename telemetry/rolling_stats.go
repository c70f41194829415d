package telemetry

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultWindowSize is the default rolling-window capacity per device.
const DefaultWindowSize = 100

// RollingStatsTracker maintains a bounded sliding window of valid positions
// per device and derives jitter statistics from it. Statistics are
// recomputed from the full window on every query rather than maintained
// incrementally: at these window sizes the extra cost is negligible and the
// result is free of long-session floating-point drift.
type RollingStatsTracker struct {
	windowSize int
	windows    map[DeviceID]*positionWindow
}

// NewRollingStatsTracker creates a tracker with the given per-device window
// capacity. Non-positive values fall back to DefaultWindowSize.
func NewRollingStatsTracker(windowSize int) *RollingStatsTracker {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &RollingStatsTracker{
		windowSize: windowSize,
		windows:    make(map[DeviceID]*positionWindow),
	}
}

// AddSample appends a position to the device's window, creating the window
// on first use and evicting the oldest entry at capacity. Callers must not
// pass invalid-pose samples; the tracker does not filter validity itself.
func (t *RollingStatsTracker) AddSample(device DeviceID, position Vec3) {
	w, ok := t.windows[device]
	if !ok {
		w = newPositionWindow(t.windowSize)
		t.windows[device] = w
	}
	w.push(position)
}

// StdDev returns the per-axis population standard deviation (σx, σy, σz)
// over the device's current window. Fewer than two samples have no defined
// spread and yield (0, 0, 0).
func (t *RollingStatsTracker) StdDev(device DeviceID) (float64, float64, float64) {
	w, ok := t.windows[device]
	if !ok || w.len() < 2 {
		return 0, 0, 0
	}
	positions := w.snapshot()
	xs := make([]float64, len(positions))
	ys := make([]float64, len(positions))
	zs := make([]float64, len(positions))
	for i, p := range positions {
		xs[i] = p.X
		ys[i] = p.Y
		zs[i] = p.Z
	}
	return stat.PopStdDev(xs, nil), stat.PopStdDev(ys, nil), stat.PopStdDev(zs, nil)
}

// DistanceStd returns the population standard deviation of each windowed
// sample's Euclidean distance from the window's mean position — a single
// scalar summarising 3D jitter magnitude. Same <2-sample guard as StdDev.
func (t *RollingStatsTracker) DistanceStd(device DeviceID) float64 {
	w, ok := t.windows[device]
	if !ok || w.len() < 2 {
		return 0
	}
	positions := w.snapshot()
	xs := make([]float64, len(positions))
	ys := make([]float64, len(positions))
	zs := make([]float64, len(positions))
	for i, p := range positions {
		xs[i] = p.X
		ys[i] = p.Y
		zs[i] = p.Z
	}
	mean := Vec3{
		X: stat.Mean(xs, nil),
		Y: stat.Mean(ys, nil),
		Z: stat.Mean(zs, nil),
	}
	distances := make([]float64, len(positions))
	for i, p := range positions {
		distances[i] = euclideanDistance(p, mean)
	}
	return stat.PopStdDev(distances, nil)
}

// SampleCount returns the number of positions currently windowed for the
// device. Unknown devices report 0.
func (t *RollingStatsTracker) SampleCount(device DeviceID) int {
	w, ok := t.windows[device]
	if !ok {
		return 0
	}
	return w.len()
}

// Devices returns the IDs with a window, sorted for determinism.
func (t *RollingStatsTracker) Devices() []DeviceID {
	out := make([]DeviceID, 0, len(t.windows))
	for id := range t.windows {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clear empties the window for one device.
func (t *RollingStatsTracker) Clear(device DeviceID) {
	if w, ok := t.windows[device]; ok {
		w.clear()
	}
}

// ClearAll drops every per-device window.
func (t *RollingStatsTracker) ClearAll() {
	t.windows = make(map[DeviceID]*positionWindow)
}
