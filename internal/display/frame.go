package display

import (
	"codeberg.org/mikkl/hwmond/internal/connectivity"
	"codeberg.org/mikkl/hwmond/internal/environ"
	"codeberg.org/mikkl/hwmond/internal/telemetry"
)

// NumPages is how many telemetry screens the active mode cycles through.
const NumPages = 3

// Frame is the read-only snapshot handed to the renderer each tick. The
// renderer owns no state and must not mutate any of it.
type Frame struct {
	Mode         Mode
	Page         int
	Telemetry    telemetry.Record
	Connectivity connectivity.State
	Environment  environ.Snapshot
	TimeText     string
	DateText     string
	Live         bool
	HotAlert     bool
}

// Renderer draws the frame for the currently active mode. Called exactly
// once per tick.
type Renderer interface {
	Render(frame Frame) error
}
