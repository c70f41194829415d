package telemetry

import "sort"

// DriftState classifies a stationary reference device relative to its
// calibrated baseline.
type DriftState int

const (
	// DriftCalibrating means no baseline has been captured yet.
	DriftCalibrating DriftState = iota
	// DriftStable means displacement from baseline has never exceeded
	// the threshold.
	DriftStable
	// DriftDisplaced means displacement exceeded the threshold at least
	// once since calibration. The state latches: it persists even if the
	// device later returns under the threshold.
	DriftDisplaced
)

var driftStateNames = map[DriftState]string{
	DriftCalibrating: "CALIBRATING",
	DriftStable:      "STABLE",
	DriftDisplaced:   "DISPLACED",
}

func (s DriftState) String() string {
	if n, ok := driftStateNames[s]; ok {
		return n
	}
	return "UNKNOWN"
}

// DriftPoint is one observation in a device's displacement time series.
type DriftPoint struct {
	// Elapsed is seconds since the device's time origin.
	Elapsed float64
	// DisplacementMM is the Euclidean distance from baseline, in mm.
	DisplacementMM float64
}

type driftBucket struct {
	baseline    Vec3
	hasBaseline bool
	startTime   float64
	state       DriftState
	history     []DriftPoint
	lastMM      float64
	maxMM       float64
}

const (
	// DefaultDriftThresholdM is the displacement alarm threshold: 5 mm.
	DefaultDriftThresholdM = 0.005
	// DefaultDriftHistoryCap bounds the retained displacement series.
	DefaultDriftHistoryCap = 3000
)

// DriftMonitor detects unwanted physical displacement of devices expected
// to stay fixed (reference/base stations) by comparing each valid position
// against a baseline captured on the first sample after (re)start.
//
// Once a device is classified DISPLACED it stays DISPLACED until an
// explicit Reset: the monitor answers "has this device moved at all since
// calibration", not "is it currently moved". Whether a hysteresis/unlatch
// variant is wanted remains an open question; re-baselining via Reset is
// the supported path today.
type DriftMonitor struct {
	thresholdM float64
	historyCap int
	buckets    map[DeviceID]*driftBucket
}

// NewDriftMonitor creates a monitor with the given threshold (meters) and
// history cap. Non-positive arguments fall back to the defaults.
func NewDriftMonitor(thresholdM float64, historyCap int) *DriftMonitor {
	if thresholdM <= 0 {
		thresholdM = DefaultDriftThresholdM
	}
	if historyCap <= 0 {
		historyCap = DefaultDriftHistoryCap
	}
	return &DriftMonitor{
		thresholdM: thresholdM,
		historyCap: historyCap,
		buckets:    make(map[DeviceID]*driftBucket),
	}
}

// AddSample records a valid position for the device and returns the current
// displacement from baseline in millimeters. The first sample captures the
// baseline position and time origin and moves the device to STABLE with
// displacement zero. Callers must not pass invalid-pose samples.
func (m *DriftMonitor) AddSample(device DeviceID, timestamp float64, position Vec3) float64 {
	b, ok := m.buckets[device]
	if !ok {
		b = &driftBucket{state: DriftCalibrating}
		m.buckets[device] = b
	}
	if !b.hasBaseline {
		b.baseline = position
		b.hasBaseline = true
		b.startTime = timestamp
		b.state = DriftStable
	}

	distance := euclideanDistance(position, b.baseline)
	mm := distance * 1000.0

	b.history = append(b.history, DriftPoint{
		Elapsed:        timestamp - b.startTime,
		DisplacementMM: mm,
	})
	if len(b.history) > m.historyCap {
		b.history = b.history[1:]
	}

	b.lastMM = mm
	if mm > b.maxMM {
		b.maxMM = mm
	}
	if distance > m.thresholdM {
		b.state = DriftDisplaced
	}
	return mm
}

// State returns the device's current classification. Unknown devices are
// CALIBRATING, not an error.
func (m *DriftMonitor) State(device DeviceID) DriftState {
	b, ok := m.buckets[device]
	if !ok {
		return DriftCalibrating
	}
	return b.state
}

// LastDisplacement returns the most recently observed displacement in mm.
func (m *DriftMonitor) LastDisplacement(device DeviceID) float64 {
	b, ok := m.buckets[device]
	if !ok {
		return 0
	}
	return b.lastMM
}

// MaxDisplacement returns the peak displacement in mm since calibration.
// It is tracked separately from the bounded history, so eviction never
// loses the peak.
func (m *DriftMonitor) MaxDisplacement(device DeviceID) float64 {
	b, ok := m.buckets[device]
	if !ok {
		return 0
	}
	return b.maxMM
}

// Baseline returns the captured baseline position and whether one exists.
func (m *DriftMonitor) Baseline(device DeviceID) (Vec3, bool) {
	b, ok := m.buckets[device]
	if !ok || !b.hasBaseline {
		return Vec3{}, false
	}
	return b.baseline, true
}

// History returns a copy of the bounded (elapsed, displacement-mm) series.
func (m *DriftMonitor) History(device DeviceID) []DriftPoint {
	b, ok := m.buckets[device]
	if !ok {
		return nil
	}
	out := make([]DriftPoint, len(b.history))
	copy(out, b.history)
	return out
}

// Devices returns the IDs with drift state, sorted for determinism.
func (m *DriftMonitor) Devices() []DeviceID {
	out := make([]DeviceID, 0, len(m.buckets))
	for id := range m.buckets {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Reset clears one device's baseline and history, returning it to
// CALIBRATING. Used to re-baseline after an intentional repositioning.
func (m *DriftMonitor) Reset(device DeviceID) {
	delete(m.buckets, device)
}

// ResetAll clears every device.
func (m *DriftMonitor) ResetAll() {
	m.buckets = make(map[DeviceID]*driftBucket)
}
