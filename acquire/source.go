// Package acquire defines the acquisition boundary: where raw per-device
// pose frames come from. Real deployments implement Source against a
// vendor tracking runtime; this package ships a synthetic implementation
// for development and end-to-end testing.
package acquire

import "github.com/vrqa/trackmon/telemetry"

// Source produces one RawFrame per known device per acquisition tick.
// The device set may change between ticks (hot-plug); consumers create
// per-device state lazily and need no removal notification.
type Source interface {
	// Frames reports every known device's pose at the given time,
	// expressed in seconds.
	Frames(now float64) []telemetry.RawFrame
}
