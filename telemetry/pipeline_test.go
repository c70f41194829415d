package telemetry

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	results []Result
}

func (s *recordingSink) Consume(res Result) error {
	s.results = append(s.results, res)
	return nil
}

type failingSink struct {
	calls int
}

func (s *failingSink) Consume(Result) error {
	s.calls++
	return errors.New("disk full")
}

func validFrame(id DeviceID, class DeviceClass, ts float64, pos Vec3) RawFrame {
	return RawFrame{
		Device: id,
		Class:  class,
		Transform: [3][4]float64{
			{1, 0, 0, pos.X},
			{0, 1, 0, pos.Y},
			{0, 0, 1, pos.Z},
		},
		Valid:     true,
		Timestamp: ts,
	}
}

func invalidFrame(id DeviceID, class DeviceClass, ts float64) RawFrame {
	return RawFrame{Device: id, Class: class, Timestamp: ts}
}

func TestPipelineLossAccountingAndStatsFiltering(t *testing.T) {
	// 10 frames, 3 invalid: loss rate 0.3 exactly, and the stats window
	// only ever saw the 7 valid positions.
	pipe := NewDefaultPipeline()

	for i := 0; i < 10; i++ {
		var frame RawFrame
		if i < 3 {
			frame = invalidFrame("dev", ClassTracker, float64(i))
		} else {
			frame = validFrame("dev", ClassTracker, float64(i), NewVec3(float64(i), 0, 0))
		}
		_, err := pipe.Process([]RawFrame{frame})
		require.NoError(t, err)
	}

	assert.Equal(t, 0.3, pipe.Loss().LossRate("dev"))
	assert.Equal(t, 7, pipe.Stats().SampleCount("dev"))
}

func TestPipelineRoutesReferenceToDrift(t *testing.T) {
	pipe := NewDefaultPipeline()

	_, err := pipe.Process([]RawFrame{
		validFrame("tracker-1", ClassTracker, 0, NewVec3(0, 1, 0)),
		validFrame("base-1", ClassReference, 0, NewVec3(2, 2, 2)),
	})
	require.NoError(t, err)

	// Only the reference device entered the drift monitor.
	assert.Equal(t, DriftCalibrating, pipe.Drift().State("tracker-1"))
	assert.Equal(t, DriftStable, pipe.Drift().State("base-1"))
	assert.Equal(t, []DeviceID{"base-1"}, pipe.Drift().Devices())
}

func TestPipelineResultRecord(t *testing.T) {
	sink := &recordingSink{}
	pipe := NewDefaultPipeline(sink)

	_, err := pipe.Process([]RawFrame{
		validFrame("tracker-1", ClassTracker, 1.0, NewVec3(0.5, 1.0, -0.5)),
		validFrame("base-1", ClassReference, 1.0, NewVec3(2, 2, 2)),
	})
	require.NoError(t, err)
	require.Len(t, sink.results, 2)

	tr := sink.results[0]
	assert.Equal(t, DeviceID("tracker-1"), tr.Device)
	assert.True(t, tr.Sample.Valid)
	assert.Equal(t, NewVec3(0.5, 1.0, -0.5), tr.Sample.Position)
	assert.Nil(t, tr.Drift)

	ref := sink.results[1]
	require.NotNil(t, ref.Drift)
	assert.Equal(t, DriftStable, ref.Drift.State)
	assert.Equal(t, 0.0, ref.Drift.DisplacementMM)
}

func TestPipelineDriftStatusOnDroppedReferenceFrame(t *testing.T) {
	pipe := NewDefaultPipeline()

	_, err := pipe.Process([]RawFrame{validFrame("base-1", ClassReference, 0, NewVec3(0, 0, 0))})
	require.NoError(t, err)
	_, err = pipe.Process([]RawFrame{validFrame("base-1", ClassReference, 1, NewVec3(0.02, 0, 0))})
	require.NoError(t, err)

	// A dropped frame still reports the latched drift state.
	results, err := pipe.Process([]RawFrame{invalidFrame("base-1", ClassReference, 2)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Drift)
	assert.Equal(t, DriftDisplaced, results[0].Drift.State)
	assert.InDelta(t, 20.0, results[0].Drift.MaxDisplacementMM, 1e-9)
}

func TestPipelineSinkErrorDoesNotStopProcessing(t *testing.T) {
	failing := &failingSink{}
	pipe := NewDefaultPipeline(failing)

	results, err := pipe.Process([]RawFrame{
		validFrame("a", ClassTracker, 0, NewVec3(0, 0, 0)),
		validFrame("b", ClassTracker, 0, NewVec3(1, 1, 1)),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	// Both frames were processed and delivered despite the failure.
	assert.Len(t, results, 2)
	assert.Equal(t, 2, failing.calls)
	assert.Equal(t, 1, pipe.Stats().SampleCount("a"))
	assert.Equal(t, 1, pipe.Stats().SampleCount("b"))
}

func TestPipelineEmptySessionNeutralDefaults(t *testing.T) {
	pipe := NewDefaultPipeline()

	// Zero ticks: every query returns a neutral default without fault.
	sx, sy, sz := pipe.Stats().StdDev("ghost")
	assert.Zero(t, sx)
	assert.Zero(t, sy)
	assert.Zero(t, sz)
	assert.Equal(t, 0.0, pipe.Loss().LossRate("ghost"))
	assert.Equal(t, DriftCalibrating, pipe.Drift().State("ghost"))

	results, err := pipe.Process(nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestPipelineDeviceChurn(t *testing.T) {
	// Devices appearing and disappearing every tick must never fault:
	// per-device state is created lazily and stale buckets are harmless.
	pipe := NewDefaultPipeline()

	for i := 0; i < 20; i++ {
		id := DeviceID(string(rune('a' + i%5)))
		_, err := pipe.Process([]RawFrame{validFrame(id, ClassTracker, float64(i), NewVec3(float64(i), 0, 0))})
		require.NoError(t, err)
	}
	assert.Len(t, pipe.Loss().Devices(), 5)
}

func TestPipelineReset(t *testing.T) {
	pipe := NewDefaultPipeline()
	before := pipe.SessionID

	_, err := pipe.Process([]RawFrame{
		validFrame("tracker-1", ClassTracker, 0, NewVec3(1, 1, 1)),
		validFrame("base-1", ClassReference, 0, NewVec3(2, 2, 2)),
	})
	require.NoError(t, err)

	pipe.Reset()
	assert.NotEqual(t, before, pipe.SessionID)
	assert.Empty(t, pipe.Stats().Devices())
	assert.Empty(t, pipe.Loss().Devices())
	assert.Equal(t, DriftCalibrating, pipe.Drift().State("base-1"))
}
