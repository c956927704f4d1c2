package sim

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	idb "github.com/reglet-dev/reglet-idb"
	"github.com/reglet-dev/reglet-idb/domain/entities"
	"github.com/reglet-dev/reglet-idb/domain/ports"
	"github.com/reglet-dev/reglet-idb/host"
)

// ClockOption configures a Clock.
type ClockOption func(*clockConfig)

type clockConfig struct {
	now  func() time.Time
	step time.Duration
}

func defaultClockConfig() clockConfig {
	return clockConfig{now: time.Now}
}

// WithNow replaces the wall clock.
func WithNow(now func() time.Time) ClockOption {
	return func(c *clockConfig) {
		c.now = now
	}
}

// WithStep makes every frame last exactly step instead of the measured time.
// The "step" module config value overrides it.
func WithStep(step time.Duration) ClockOption {
	return func(c *clockConfig) {
		c.step = step
	}
}

// Clock publishes sim::ITime.default.
type Clock struct {
	config  clockConfig
	mu      sync.Mutex
	start   time.Time
	last    time.Time
	frame   time.Duration
	elapsed time.Duration
}

var (
	_ Time          = (*Clock)(nil)
	_ ports.Invoker = (*Clock)(nil)
	_ host.Module   = (*Clock)(nil)
)

// NewClock creates an unstarted clock.
func NewClock(opts ...ClockOption) *Clock {
	cfg := defaultClockConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Clock{config: cfg}
}

// Name implements host.Module.
func (c *Clock) Name() entities.ModuleID { return "clock" }

// Setup starts the clock and publishes it.
func (c *Clock) Setup(scope *idb.Scope, cfg idb.Config) error {
	c.mu.Lock()
	c.config.step = cfg.DurationOr("step", c.config.step)
	c.start = c.config.now()
	c.last = c.start
	c.frame, c.elapsed = 0, 0
	c.mu.Unlock()

	scope.Publish(TimeKey, "Clock", c)
	return nil
}

// UpdateTime implements Time.
func (c *Clock) UpdateTime() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.config.step > 0 {
		c.frame = c.config.step
		c.elapsed += c.config.step
		return
	}
	now := c.config.now()
	c.frame = now.Sub(c.last)
	c.elapsed = now.Sub(c.start)
	c.last = now
}

// FrameTime implements Time.
func (c *Clock) FrameTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame.Seconds()
}

// AppTime implements Time.
func (c *Clock) AppTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed.Seconds()
}

type clockReading struct {
	Seconds float64 `json:"seconds"`
	Frame   float64 `json:"frame"`
}

// Invoke lets guests read the clock. The payload is ignored.
func (c *Clock) Invoke(_ context.Context, _ []byte) ([]byte, error) {
	return json.Marshal(clockReading{Seconds: c.AppTime(), Frame: c.FrameTime()})
}
