package core

import (
	"testing"
	"time"

	"github.com/signalsfoundry/uwb-floorsim/model"
)

func TestTraversal_RoundTrip(t *testing.T) {
	resolver := newTestResolver(newTestSurface())
	events := NewEventLog(nil)
	s := newTestScheduler(resolver, events)

	now := testEpoch
	s.Advance(now) // place at gate

	now = runToPhase(s, now, PhaseTraversing, 50)
	if s.Phase() != PhaseTraversing {
		t.Fatalf("scheduler never started traversing")
	}
	entriesBefore := events.Len()

	// Mid-flight the tag is still attributed to the origin room.
	if got := s.TagState().Room; got != model.RoomGate {
		t.Errorf("room mid-traversal = %q, want gate", got)
	}

	// Run the animation to completion.
	now = now.Add(100 * time.Millisecond)
	s.Advance(now)

	dest, _ := resolver.Layout(model.RoomWorkstation)
	tag := s.TagState()
	if tag.Room != model.RoomWorkstation {
		t.Errorf("room after traversal = %q, want workstation", tag.Room)
	}
	if tag.Position != dest.Center {
		t.Errorf("position after traversal = %v, want destination center %v", tag.Position, dest.Center)
	}
	if tag.Local.X != 100 || tag.Local.Y != 100 {
		t.Errorf("room-local position = %v, want (100, 100)", tag.Local)
	}
	if tag.PathIndex != 1 {
		t.Errorf("path index = %d, want 1", tag.PathIndex)
	}

	entries := events.Entries()
	if len(entries) != entriesBefore+1 {
		t.Fatalf("log grew by %d entries, want exactly 1", len(entries)-entriesBefore)
	}
	if got := entries[len(entries)-1].Message; got != "Entered Workstation" {
		t.Errorf("log message = %q, want %q", got, "Entered Workstation")
	}
	if s.Phase() != PhaseWandering {
		t.Errorf("phase after arrival = %v, want wandering", s.Phase())
	}
}

func TestTraversal_EasedMidpoint(t *testing.T) {
	resolver := newTestResolver(newTestSurface())
	s := newTestScheduler(resolver, NewEventLog(nil))

	now := testEpoch
	s.Advance(now)
	start := runToPhase(s, now, PhaseTraversing, 50)
	from := s.TagState().Position
	dest, _ := resolver.Layout(model.RoomWorkstation)

	// Halfway through the animation the eased progress is exactly 0.5,
	// so the position is the exact midpoint of the segment.
	s.Advance(start.Add(50 * time.Millisecond))
	got := s.TagState().Position
	wantX := from.X + (dest.Center.X-from.X)*0.5
	wantY := from.Y + (dest.Center.Y-from.Y)*0.5
	if got.X != wantX || got.Y != wantY {
		t.Errorf("midpoint position = %v, want (%v, %v)", got, wantX, wantY)
	}
}

func TestTraversal_ArrivalFiresOnce(t *testing.T) {
	resolver := newTestResolver(newTestSurface())
	events := NewEventLog(nil)
	rec := &countingRecorder{}
	s := newTestScheduler(resolver, events, WithSchedulerMetrics(rec))

	now := testEpoch
	s.Advance(now)
	start := runToPhase(s, now, PhaseTraversing, 50)

	// Overshoot the arrival instant repeatedly; the transition side
	// effects must not repeat.
	s.Advance(start.Add(150 * time.Millisecond))
	entriesAfterArrival := events.Len()
	s.Advance(start.Add(160 * time.Millisecond))
	s.Advance(start.Add(170 * time.Millisecond))

	if got := events.Len(); got != entriesAfterArrival {
		t.Errorf("log entries grew after arrival: %d -> %d", entriesAfterArrival, got)
	}
	if got := rec.transitions["workstation"]; got != 1 {
		t.Errorf("workstation transitions = %d, want 1", got)
	}
}
