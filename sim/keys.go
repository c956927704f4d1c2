package sim

import (
	"io"

	"github.com/reglet-dev/reglet-idb/domain/entities"
)

// Keys published by the simulation modules.
var (
	TimeKey       = entities.Key("sim::ITime", "default")
	ScreenTextKey = entities.Key("sim::IScreenText", "default")
	FrameRateKey  = entities.Key("sim::IFrameRate", "default")
)

// Time keeps track of elapsed time.
type Time interface {
	// UpdateTime is called at the beginning of each frame.
	UpdateTime()
	// FrameTime returns the duration of the last frame in seconds.
	FrameTime() float64
	// AppTime returns the seconds elapsed since the clock was set up.
	AppTime() float64
}

// ScreenText collects lines of text and flushes them once per frame.
type ScreenText interface {
	PrintLineTopLeft(text string) error
	Render(w io.Writer) error
}

// FrameRate turns per-frame timings into frame-rate statistics.
type FrameRate interface {
	FrameStatistics(seconds float64) error
	AverageFrameTime() float64
	Stats() FrameStats
}
