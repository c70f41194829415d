package acquire

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/vrqa/trackmon/telemetry"
)

// SimDevice describes one synthetic tracked device.
type SimDevice struct {
	ID     telemetry.DeviceID
	Class  telemetry.DeviceClass
	Origin telemetry.Vec3
	// JitterSigmaM is the per-axis positional noise, in meters.
	JitterSigmaM float64
	// WobbleDeg is the amplitude of a slow yaw oscillation, in degrees.
	WobbleDeg float64
	// DropoutRate is the probability a tick reports an invalid pose.
	DropoutRate float64
	// DriftAfterS, when positive, starts a slow positional drift along X
	// once this many seconds have elapsed. Meant for reference devices.
	DriftAfterS float64
	// DriftRateMPerS is the drift speed once DriftAfterS has passed.
	DriftRateMPerS float64
}

// SimSource emulates the acquisition collaborator: stationary devices with
// Gaussian positional jitter, optional frame dropout and an optional
// scripted drift. Deterministic for a given seed.
type SimSource struct {
	devices []SimDevice
	rng     *rand.Rand
	noise   distuv.Normal
	startAt float64
	started bool
}

// NewSimSource creates a simulated source over the given devices.
func NewSimSource(seed uint64, devices []SimDevice) *SimSource {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	return &SimSource{
		devices: devices,
		rng:     rng,
		noise: distuv.Normal{
			Mu:    0,
			Sigma: 1,
			Src:   rng,
		},
	}
}

// Frames implements Source.
func (s *SimSource) Frames(now float64) []telemetry.RawFrame {
	if !s.started {
		s.startAt = now
		s.started = true
	}
	elapsed := now - s.startAt

	frames := make([]telemetry.RawFrame, 0, len(s.devices))
	for _, dev := range s.devices {
		if s.rng.Float64() < dev.DropoutRate {
			frames = append(frames, telemetry.RawFrame{
				Device:    dev.ID,
				Class:     dev.Class,
				Valid:     false,
				Timestamp: now,
			})
			continue
		}

		pos := dev.Origin
		if dev.JitterSigmaM > 0 {
			pos = pos.Add(telemetry.Vec3{
				X: s.noise.Rand() * dev.JitterSigmaM,
				Y: s.noise.Rand() * dev.JitterSigmaM,
				Z: s.noise.Rand() * dev.JitterSigmaM,
			})
		}
		if dev.DriftAfterS > 0 && elapsed > dev.DriftAfterS {
			pos.X += (elapsed - dev.DriftAfterS) * dev.DriftRateMPerS
		}

		yaw := 0.0
		if dev.WobbleDeg > 0 {
			yaw = dev.WobbleDeg * math.Pi / 180.0 * math.Sin(elapsed)
		}

		frames = append(frames, telemetry.RawFrame{
			Device:    dev.ID,
			Class:     dev.Class,
			Transform: poseTransform(pos, yaw),
			Valid:     true,
			Timestamp: now,
		})
	}
	return frames
}

// poseTransform builds a device-to-world transform from a position and a
// rotation about the Y axis.
func poseTransform(pos telemetry.Vec3, yaw float64) [3][4]float64 {
	c := math.Cos(yaw)
	sn := math.Sin(yaw)
	return [3][4]float64{
		{c, 0, sn, pos.X},
		{0, 1, 0, pos.Y},
		{-sn, 0, c, pos.Z},
	}
}
