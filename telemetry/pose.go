package telemetry

import "math"

// DeviceID is the opaque stable identifier of one physical device for the
// session. It is assigned by the discovery collaborator and never changes
// while the device stays connected.
type DeviceID string

// DeviceClass tags the kind of tracked device.
type DeviceClass int

const (
	ClassTracker DeviceClass = iota
	ClassController
	ClassReference
)

var classNames = map[DeviceClass]string{
	ClassTracker:    "tracker",
	ClassController: "controller",
	ClassReference:  "reference",
}

func (c DeviceClass) String() string {
	if n, ok := classNames[c]; ok {
		return n
	}
	return "unknown"
}

// RawFrame is one device's pose report for a single acquisition tick.
// Transform is the 3x4 device-to-world matrix: a 3x3 rotation block plus
// the translation column at index 3.
type RawFrame struct {
	Device    DeviceID
	Class     DeviceClass
	Transform [3][4]float64
	Valid     bool
	// Timestamp is the acquisition time in seconds.
	Timestamp float64
}

// Euler holds a rotation as Tait-Bryan angles in degrees.
type Euler struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// PoseSample is a decoded pose: position in meters, rotation in degrees.
// Timestamp and Valid are carried through from the source frame unchanged,
// so downstream consumers distinguish "stationary at origin" from "no data"
// via the flag, never via the numeric value.
type PoseSample struct {
	Position  Vec3
	Rotation  Euler
	Timestamp float64
	Valid     bool
}

// DecodePose converts a raw device-to-world transform into a PoseSample.
// Position is the translation column; rotation is recovered as Euler angles
// assuming a right-handed Y-up convention:
//
//	pitch = atan2(r21, r22)
//	yaw   = asin(-r20)
//	roll  = atan2(r10, r00)
//
// The decomposition degenerates near yaw = ±90° (gimbal lock); this is an
// accepted approximation and is not corrected. An invalid frame decodes to
// a zero pose with Valid = false.
func DecodePose(frame RawFrame) PoseSample {
	if !frame.Valid {
		return PoseSample{Timestamp: frame.Timestamp}
	}
	m := frame.Transform
	position := Vec3{
		X: m[0][3],
		Y: m[1][3],
		Z: m[2][3],
	}
	pitch := math.Atan2(m[2][1], m[2][2])
	yaw := math.Asin(-m[2][0])
	roll := math.Atan2(m[1][0], m[0][0])
	return PoseSample{
		Position: position,
		Rotation: Euler{
			Pitch: degrees(pitch),
			Yaw:   degrees(yaw),
			Roll:  degrees(roll),
		},
		Timestamp: frame.Timestamp,
		Valid:     true,
	}
}
