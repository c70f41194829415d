package telemetry

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// DriftStatus is attached to results for reference-class devices.
type DriftStatus struct {
	State             DriftState
	DisplacementMM    float64
	MaxDisplacementMM float64
}

// Result is the normalized per-device record emitted once per tick.
type Result struct {
	Device   DeviceID
	Class    DeviceClass
	Sample   PoseSample
	SigmaX   float64
	SigmaY   float64
	SigmaZ   float64
	LossRate float64
	// Drift is nil for non-reference devices.
	Drift *DriftStatus
}

// Sink consumes one Result per processed device per tick. The pipeline
// pushes every tick at the raw acquisition rate; any cadence throttling is
// the sink's own concern.
type Sink interface {
	Consume(Result) error
}

// Pipeline fans each acquisition tick out to the telemetry trackers:
// decode, loss accounting, rolling statistics, drift monitoring for
// reference devices, then emission to the attached sinks. Per-device state
// is created lazily on first observation, so hot-plugged devices need no
// registration and vanished devices need no removal.
//
// The pipeline is single-threaded by contract: one tick at a time.
type Pipeline struct {
	// SessionID identifies one measurement session.
	SessionID uuid.UUID

	stats *RollingStatsTracker
	loss  *LossRateTracker
	drift *DriftMonitor
	sinks []Sink
}

// NewPipeline wires the given trackers and sinks together. The pipeline
// takes exclusive ownership of the trackers' per-device state.
func NewPipeline(stats *RollingStatsTracker, loss *LossRateTracker, drift *DriftMonitor, sinks ...Sink) *Pipeline {
	return &Pipeline{
		SessionID: uuid.New(),
		stats:     stats,
		loss:      loss,
		drift:     drift,
		sinks:     sinks,
	}
}

// NewDefaultPipeline builds a pipeline with default-configured trackers.
func NewDefaultPipeline(sinks ...Sink) *Pipeline {
	return NewPipeline(
		NewRollingStatsTracker(DefaultWindowSize),
		NewLossRateTracker(),
		NewDriftMonitor(DefaultDriftThresholdM, DefaultDriftHistoryCap),
		sinks...,
	)
}

// Process handles one acquisition tick: one raw frame per known device.
// Loss accounting happens for every frame; statistics and drift updates
// only for valid ones. Every frame is processed and every result emitted
// even when a sink fails, so telemetry state never diverges from the frame
// stream; the first sink error is returned after the tick completes.
func (p *Pipeline) Process(frames []RawFrame) ([]Result, error) {
	var firstErr error
	results := make([]Result, 0, len(frames))
	for _, frame := range frames {
		sample := DecodePose(frame)
		p.loss.RecordFrame(frame.Device, sample.Valid)

		if sample.Valid {
			p.stats.AddSample(frame.Device, sample.Position)
			if frame.Class == ClassReference {
				p.drift.AddSample(frame.Device, sample.Timestamp, sample.Position)
			}
		}

		res := Result{
			Device:   frame.Device,
			Class:    frame.Class,
			Sample:   sample,
			LossRate: p.loss.LossRate(frame.Device),
		}
		res.SigmaX, res.SigmaY, res.SigmaZ = p.stats.StdDev(frame.Device)
		if frame.Class == ClassReference {
			res.Drift = &DriftStatus{
				State:             p.drift.State(frame.Device),
				DisplacementMM:    p.drift.LastDisplacement(frame.Device),
				MaxDisplacementMM: p.drift.MaxDisplacement(frame.Device),
			}
		}
		results = append(results, res)

		for _, sink := range p.sinks {
			if err := sink.Consume(res); err != nil && firstErr == nil {
				firstErr = errors.Wrapf(err, "Can't deliver result for device %s", frame.Device)
			}
		}
	}
	return results, firstErr
}

// Stats exposes the rolling-statistics tracker for direct queries.
func (p *Pipeline) Stats() *RollingStatsTracker { return p.stats }

// Loss exposes the loss-rate tracker for direct queries.
func (p *Pipeline) Loss() *LossRateTracker { return p.loss }

// Drift exposes the drift monitor for direct queries.
func (p *Pipeline) Drift() *DriftMonitor { return p.drift }

// Reset clears all per-device telemetry state for a fresh measurement and
// assigns a new session identity. Sinks are not touched; their buffers
// belong to their owners.
func (p *Pipeline) Reset() {
	p.stats.ClearAll()
	p.loss.ClearAll()
	p.drift.ResetAll()
	p.SessionID = uuid.New()
}
