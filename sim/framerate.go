package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	idb "github.com/reglet-dev/reglet-idb"
	"github.com/reglet-dev/reglet-idb/domain/entities"
	domainerrors "github.com/reglet-dev/reglet-idb/domain/errors"
	"github.com/reglet-dev/reglet-idb/domain/ports"
	"github.com/reglet-dev/reglet-idb/host"
	"github.com/reglet-dev/reglet-idb/internal/collection"
)

const (
	// BucketSeconds is the amount of frame time one history bucket collects.
	BucketSeconds = 0.25
	// MaxBuckets is the history length; the oldest bucket is evicted beyond it.
	MaxBuckets = 30

	bucketsPerSecond = 4
	recentBuckets    = bucketsPerSecond * 2
)

// bucket aggregates consecutive frames until it holds BucketSeconds.
type bucket struct {
	frames  int
	seconds float64
}

// FrameStats is the frame-rate tracker's current view.
type FrameStats struct {
	// RecentFPS covers roughly the last two seconds.
	RecentFPS float64 `json:"recent_fps"`
	// SmoothFPS covers the whole history.
	SmoothFPS float64 `json:"smooth_fps"`
	// AverageFrameTime is the history's mean frame duration in seconds.
	AverageFrameTime float64 `json:"average_frame_time"`
	Buckets          int     `json:"buckets"`
}

// FrameCounter publishes sim::IFrameRate.default and prints its readings
// through sim::IScreenText.default.
type FrameCounter struct {
	screen  *idb.Subscription[ScreenText]
	buckets *collection.Array[bucket]
	spares  *collection.Array[bucket]
	stats   FrameStats
	mu      sync.Mutex
}

var (
	_ FrameRate     = (*FrameCounter)(nil)
	_ ports.Invoker = (*FrameCounter)(nil)
	_ host.Module   = (*FrameCounter)(nil)
	_ host.Stopper  = (*FrameCounter)(nil)
)

// NewFrameCounter creates a tracker with an empty history.
func NewFrameCounter() *FrameCounter {
	return &FrameCounter{
		buckets: collection.NewQueue[bucket](),
		spares:  collection.New[bucket](collection.Owning(func(b *bucket) { *b = bucket{} })),
	}
}

// Name implements host.Module.
func (f *FrameCounter) Name() entities.ModuleID { return "framerate" }

// Setup subscribes to the screen text and publishes the tracker.
func (f *FrameCounter) Setup(scope *idb.Scope, _ idb.Config) error {
	f.screen = idb.Subscribe[ScreenText](scope, ScreenTextKey)
	scope.Publish(FrameRateKey, "FrameCounter", f)
	return nil
}

// FrameStatistics records the duration of the frame just rendered and prints
// the recent and smoothed frame rates.
func (f *FrameCounter) FrameStatistics(seconds float64) error {
	stats := f.record(seconds)

	if f.screen == nil {
		return fmt.Errorf("frame rate: %s: %w", ScreenTextKey, domainerrors.ErrUnbound)
	}
	screen, ok := f.screen.Get()
	if !ok {
		return fmt.Errorf("frame rate: %s: %w", ScreenTextKey, domainerrors.ErrUnbound)
	}
	if err := screen.PrintLineTopLeft(formatFPS(stats)); err != nil {
		return fmt.Errorf("frame rate: displaying frame rate: %w", err)
	}
	return nil
}

// AverageFrameTime implements FrameRate.
func (f *FrameCounter) AverageFrameTime() float64 {
	return f.Stats().AverageFrameTime
}

// Stats returns the last computed statistics.
func (f *FrameCounter) Stats() FrameStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *FrameCounter) record(seconds float64) FrameStats {
	f.mu.Lock()
	defer f.mu.Unlock()

	var last *bucket
	if n := f.buckets.Len(); n > 0 {
		last = f.buckets.Get(n - 1)
	}

	if last != nil && last.seconds < BucketSeconds {
		last.seconds += seconds
		last.frames++
	} else {
		b, ok := f.spares.Pop()
		if !ok {
			b = &bucket{}
		}
		b.seconds, b.frames = seconds, 1
		f.buckets.Add(b)
	}

	for f.buckets.Len() > MaxBuckets {
		oldest, _ := f.buckets.Pop()
		f.spares.Add(oldest)
	}

	var (
		totalFrames  int
		totalSeconds float64
		recentFrames int
		recentSecs   float64
	)
	n := f.buckets.Len()
	for i, b := range f.buckets.All() {
		totalFrames += b.frames
		totalSeconds += b.seconds
		if i >= n-recentBuckets {
			recentFrames += b.frames
			recentSecs += b.seconds
		}
	}

	f.stats = FrameStats{
		RecentFPS:        rate(float64(recentFrames), recentSecs),
		SmoothFPS:        rate(float64(totalFrames), totalSeconds),
		AverageFrameTime: rate(totalSeconds, float64(totalFrames)),
		Buckets:          n,
	}
	return f.stats
}

// rate divides, treating an empty denominator as no reading.
func rate(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}

func formatFPS(s FrameStats) string {
	return fmt.Sprintf("%3.0f FPS (%3.0f)", s.RecentFPS, s.SmoothFPS)
}

type frameRequest struct {
	Seconds *float64 `json:"seconds,omitempty"`
}

// Invoke lets guests read the statistics. A payload carrying "seconds"
// records a frame first.
func (f *FrameCounter) Invoke(_ context.Context, payload []byte) ([]byte, error) {
	var req frameRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("frame rate: invalid request: %w", err)
		}
	}
	if req.Seconds != nil {
		if err := f.FrameStatistics(*req.Seconds); err != nil {
			return nil, err
		}
	}
	return json.Marshal(f.Stats())
}

// Stop closes the screen subscription and drops the history.
func (f *FrameCounter) Stop(context.Context) error {
	if f.screen != nil {
		f.screen.Close()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets.Reset()
	f.spares.Reset()
	f.stats = FrameStats{}
	return nil
}
