package telemetry

import "sort"

// lossCounters holds the cumulative frame counters for one device.
// Invariant: lost <= total.
type lossCounters struct {
	total uint64
	lost  uint64
}

// LossRateTracker accumulates valid/invalid frame counts per device and
// derives the tracking-loss ratio. The ratio is cumulative since the last
// clear, not a sliding-window rate: a long disconnected period raises the
// historical ratio until the user clears it.
type LossRateTracker struct {
	counters map[DeviceID]*lossCounters
}

func NewLossRateTracker() *LossRateTracker {
	return &LossRateTracker{
		counters: make(map[DeviceID]*lossCounters),
	}
}

// RecordFrame counts one acquisition tick for the device: total always,
// lost iff the frame was invalid. Must be called exactly once per tick per
// known device so the denominator reflects wall-clock coverage.
func (t *LossRateTracker) RecordFrame(device DeviceID, valid bool) {
	c, ok := t.counters[device]
	if !ok {
		c = &lossCounters{}
		t.counters[device] = c
	}
	c.total++
	if !valid {
		c.lost++
	}
}

// LossRate returns lost/total in [0, 1], or 0.0 before any frame has been
// observed for the device.
func (t *LossRateTracker) LossRate(device DeviceID) float64 {
	c, ok := t.counters[device]
	if !ok || c.total == 0 {
		return 0.0
	}
	return float64(c.lost) / float64(c.total)
}

// Counts returns the raw (total, lost) counters for the device.
func (t *LossRateTracker) Counts(device DeviceID) (uint64, uint64) {
	c, ok := t.counters[device]
	if !ok {
		return 0, 0
	}
	return c.total, c.lost
}

// Devices returns the IDs with counters, sorted for determinism.
func (t *LossRateTracker) Devices() []DeviceID {
	out := make([]DeviceID, 0, len(t.counters))
	for id := range t.counters {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clear resets one device's counters to zero.
func (t *LossRateTracker) Clear(device DeviceID) {
	if c, ok := t.counters[device]; ok {
		c.total = 0
		c.lost = 0
	}
}

// ClearAll drops every per-device counter.
func (t *LossRateTracker) ClearAll() {
	t.counters = make(map[DeviceID]*lossCounters)
}
