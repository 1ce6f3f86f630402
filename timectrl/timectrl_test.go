package timectrl

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestFrameDriverTicksListeners(t *testing.T) {
	driver := NewFrameDriver(5*time.Millisecond, WallClock{})

	var ticks atomic.Int64
	driver.AddListener(func(now time.Time) {
		ticks.Add(1)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()
	<-driver.Start(ctx)

	if got := ticks.Load(); got < 5 {
		t.Fatalf("expected at least 5 ticks in 60ms at 5ms interval, got %d", got)
	}
}

func TestFrameDriverStopsCleanly(t *testing.T) {
	driver := NewFrameDriver(2*time.Millisecond, WallClock{})

	var ticks atomic.Int64
	driver.AddListener(func(now time.Time) {
		ticks.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := driver.Start(ctx)

	time.Sleep(20 * time.Millisecond)
	cancel()
	<-done

	// Once done is closed no listener may fire again, even after enough
	// wall-clock time for many more intervals.
	after := ticks.Load()
	time.Sleep(30 * time.Millisecond)
	if got := ticks.Load(); got != after {
		t.Fatalf("listener fired after stop: %d -> %d", after, got)
	}
}

func TestFrameDriverDefaultInterval(t *testing.T) {
	driver := NewFrameDriver(0, nil)
	if driver.Interval != 16*time.Millisecond {
		t.Errorf("default interval = %v, want 16ms", driver.Interval)
	}
}
