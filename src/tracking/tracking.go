package tracking

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"laser-pointer/src/calibration"
	"laser-pointer/src/cursor"
	"laser-pointer/src/display"
	"laser-pointer/src/geometry"
	"laser-pointer/src/overlay"
)

// DefaultInterval is the movement cadence (about 30 Hz).
const DefaultInterval = 30 * time.Millisecond

// Loop moves the indicator after the cursor on a fixed cadence. The event
// loop is the only writer: it publishes calibration snapshots and the
// tracking flag, which Tick reads without blocking.
type Loop struct {
	registry  *display.Registry
	cursor    cursor.Source
	indicator overlay.Indicator
	interval  time.Duration

	cfg     atomic.Pointer[calibration.Config]
	enabled atomic.Bool

	// only touched by the ticking goroutine
	lastMissing string
}

func New(reg *display.Registry, cur cursor.Source, ind overlay.Indicator, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{
		registry:  reg,
		cursor:    cur,
		indicator: ind,
		interval:  interval,
	}
}

// Publish replaces the calibration snapshot used by subsequent ticks.
func (l *Loop) Publish(cfg calibration.Config) {
	l.cfg.Store(&cfg)
}

// SetEnabled switches tracking on or off.
func (l *Loop) SetEnabled(on bool) { l.enabled.Store(on) }

func (l *Loop) Enabled() bool { return l.enabled.Load() }

func (l *Loop) Interval() time.Duration { return l.interval }

// Tick performs one movement step and reports whether the indicator moved.
// An unknown target display makes the tick a no-op.
func (l *Loop) Tick() bool {
	if !l.enabled.Load() || !l.indicator.Visible() {
		return false
	}
	cfg := l.cfg.Load()
	if cfg == nil {
		return false
	}

	target, ok := l.registry.Geometry(cfg.TargetDisplayID)
	if !ok {
		if l.lastMissing != cfg.TargetDisplayID {
			log.Printf("tracking: target display %q not found, indicator left in place", cfg.TargetDisplayID)
			l.lastMissing = cfg.TargetDisplayID
		}
		return false
	}
	l.lastMissing = ""

	pos := geometry.Map(l.cursor.Position(), cfg.Source, target, l.indicator.Size())
	l.indicator.Move(pos.X, pos.Y)
	return true
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	log.Printf("tracking: movement loop started (interval %v)", l.interval)
	for {
		select {
		case <-ctx.Done():
			log.Printf("tracking: movement loop stopped")
			return ctx.Err()
		case <-ticker.C:
			l.Tick()
		}
	}
}
