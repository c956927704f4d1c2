package sim

import (
	"context"
	"fmt"
	"io"

	idb "github.com/reglet-dev/reglet-idb"
	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
	"github.com/reglet-dev/reglet-idb/host"
)

// Modules returns fresh instances of every simulation module in setup order.
func Modules(opts ...ClockOption) []host.Module {
	return []host.Module{NewClock(opts...), NewTextBuffer(), NewFrameCounter()}
}

// Run drives frames frames on behalf of scope's module. Each frame advances
// the clock, reports its duration to the frame-rate tracker and renders the
// screen text to w. The subscriptions Run takes are closed before it returns.
func Run(ctx context.Context, scope *idb.Scope, frames int, w io.Writer) (FrameStats, error) {
	clock := idb.Subscribe[Time](scope, TimeKey)
	defer clock.Close()
	rate := idb.Subscribe[FrameRate](scope, FrameRateKey)
	defer rate.Close()
	screen := idb.Subscribe[ScreenText](scope, ScreenTextKey)
	defer screen.Close()

	for frame := range frames {
		if err := ctx.Err(); err != nil {
			return FrameStats{}, err
		}

		t, ok := clock.Get()
		if !ok {
			return FrameStats{}, unbound(TimeKey.String())
		}
		fr, ok := rate.Get()
		if !ok {
			return FrameStats{}, unbound(FrameRateKey.String())
		}
		st, ok := screen.Get()
		if !ok {
			return FrameStats{}, unbound(ScreenTextKey.String())
		}

		t.UpdateTime()
		if err := fr.FrameStatistics(t.FrameTime()); err != nil {
			return FrameStats{}, fmt.Errorf("frame %d: %w", frame, err)
		}
		if err := st.Render(w); err != nil {
			return FrameStats{}, fmt.Errorf("frame %d: %w", frame, err)
		}
	}

	var stats FrameStats
	if fr, ok := rate.Get(); ok {
		stats = fr.Stats()
	}
	scope.Logger().InfoContext(ctx, "simulation finished",
		"module", scope.Module(), "frames", frames, "fps", stats.SmoothFPS, "class", rate.Class())
	return stats, nil
}

func unbound(key string) error {
	return fmt.Errorf("simulation: %s: %w", key, domainerrors.ErrUnbound)
}
