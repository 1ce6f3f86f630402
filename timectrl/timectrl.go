package timectrl

import (
	"context"
	"sync"
	"time"
)

// SimClock is an interface for reading the simulation's notion of "now".
// Components depend on this abstraction rather than on time.Now directly,
// enabling tests to drive the engine with constructed instants.
type SimClock interface {
	// Now returns the current simulation time.
	Now() time.Time
}

// WallClock is the production SimClock: real wall-clock time.
type WallClock struct{}

// Now implements SimClock.
func (WallClock) Now() time.Time { return time.Now() }

// FrameDriver pumps a fixed-rate frame tick to registered listeners. It is
// the single timing source of the simulation: wander steps, traversal
// interpolation, and pulse emission all derive from its ticks, so stopping
// the driver provably stops every mutation.
type FrameDriver struct {
	mu        sync.Mutex
	Interval  time.Duration
	clock     SimClock
	listeners []func(time.Time)
	running   bool
}

// NewFrameDriver constructs a driver. A non-positive interval falls back
// to roughly display refresh (16ms).
func NewFrameDriver(interval time.Duration, clock SimClock) *FrameDriver {
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}
	if clock == nil {
		clock = WallClock{}
	}
	return &FrameDriver{
		Interval: interval,
		clock:    clock,
	}
}

// AddListener registers a callback invoked on every frame. Listeners must
// be registered before Start.
func (d *FrameDriver) AddListener(fn func(time.Time)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, fn)
}

// Start runs the frame loop in a goroutine until ctx is cancelled. It
// returns a channel that is closed once the loop has fully stopped; after
// that, no listener will be invoked again.
func (d *FrameDriver) Start(ctx context.Context) <-chan struct{} {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		done := make(chan struct{})
		close(done)
		return done
	}
	d.running = true
	listeners := make([]func(time.Time), len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			d.mu.Lock()
			d.running = false
			d.mu.Unlock()
		}()

		ticker := time.NewTicker(d.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := d.clock.Now()
				for _, fn := range listeners {
					fn(now)
				}
			}
		}
	}()
	return done
}
