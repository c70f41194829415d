package acquire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vrqa/trackmon/telemetry"
)

func TestSimSourceOneFramePerDevice(t *testing.T) {
	source := NewSimSource(1, []SimDevice{
		{ID: "t1", Class: telemetry.ClassTracker, Origin: telemetry.NewVec3(0, 1, 0)},
		{ID: "b1", Class: telemetry.ClassReference, Origin: telemetry.NewVec3(2, 2, 2)},
	})

	frames := source.Frames(100.0)
	require.Len(t, frames, 2)
	assert.Equal(t, telemetry.DeviceID("t1"), frames[0].Device)
	assert.Equal(t, telemetry.ClassTracker, frames[0].Class)
	assert.Equal(t, telemetry.DeviceID("b1"), frames[1].Device)
	assert.Equal(t, 100.0, frames[0].Timestamp)
}

func TestSimSourceDeterministicForSeed(t *testing.T) {
	devices := []SimDevice{{
		ID:           "t1",
		Class:        telemetry.ClassTracker,
		Origin:       telemetry.NewVec3(0, 1, 0),
		JitterSigmaM: 0.001,
		DropoutRate:  0.1,
	}}

	a := NewSimSource(7, devices)
	b := NewSimSource(7, devices)
	for i := 0; i < 50; i++ {
		now := float64(i) / 90.0
		assert.Equal(t, a.Frames(now), b.Frames(now))
	}
}

func TestSimSourceFullDropout(t *testing.T) {
	source := NewSimSource(3, []SimDevice{{
		ID:          "t1",
		Class:       telemetry.ClassController,
		DropoutRate: 1.0,
	}})

	for i := 0; i < 20; i++ {
		frames := source.Frames(float64(i))
		require.Len(t, frames, 1)
		assert.False(t, frames[0].Valid)
	}
}

func TestSimSourceJitterDecodesAroundOrigin(t *testing.T) {
	origin := telemetry.NewVec3(1.0, 2.0, 3.0)
	source := NewSimSource(11, []SimDevice{{
		ID:           "t1",
		Class:        telemetry.ClassTracker,
		Origin:       origin,
		JitterSigmaM: 0.001,
	}})

	for i := 0; i < 100; i++ {
		frames := source.Frames(float64(i) / 90.0)
		sample := telemetry.DecodePose(frames[0])
		require.True(t, sample.Valid)
		// 1 mm sigma noise stays well within 1 cm of the origin.
		assert.InDelta(t, origin.X, sample.Position.X, 0.01)
		assert.InDelta(t, origin.Y, sample.Position.Y, 0.01)
		assert.InDelta(t, origin.Z, sample.Position.Z, 0.01)
	}
}

func TestSimSourceScriptedDriftTripsMonitor(t *testing.T) {
	source := NewSimSource(5, []SimDevice{{
		ID:             "base",
		Class:          telemetry.ClassReference,
		Origin:         telemetry.NewVec3(0, 2, 0),
		DriftAfterS:    1.0,
		DriftRateMPerS: 0.01,
	}})
	monitor := telemetry.NewDriftMonitor(0.005, 100)

	// Drive 3 simulated seconds at 10 Hz: drift starts after 1 s and
	// accumulates 10 mm/s, far beyond the 5 mm threshold.
	for i := 0; i <= 30; i++ {
		now := float64(i) / 10.0
		frames := source.Frames(now)
		sample := telemetry.DecodePose(frames[0])
		require.True(t, sample.Valid)
		monitor.AddSample("base", sample.Timestamp, sample.Position)
	}

	assert.Equal(t, telemetry.DriftDisplaced, monitor.State("base"))
	assert.Greater(t, monitor.MaxDisplacement("base"), 5.0)
}

func TestSimSourceWobbleStaysBounded(t *testing.T) {
	source := NewSimSource(9, []SimDevice{{
		ID:        "t1",
		Class:     telemetry.ClassTracker,
		Origin:    telemetry.NewVec3(0, 1, 0),
		WobbleDeg: 2.0,
	}})

	for i := 0; i < 100; i++ {
		frames := source.Frames(float64(i) / 10.0)
		sample := telemetry.DecodePose(frames[0])
		assert.LessOrEqual(t, sample.Rotation.Yaw, 2.0+1e-9)
		assert.GreaterOrEqual(t, sample.Rotation.Yaw, -2.0-1e-9)
	}
}
