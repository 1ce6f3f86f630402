package core

import (
	"testing"
	"time"
)

func TestSingleMover_NoWanderStepsWhileTraversing(t *testing.T) {
	resolver := newTestResolver(newTestSurface())
	rec := &countingRecorder{}
	s := newTestScheduler(resolver, NewEventLog(nil), WithSchedulerMetrics(rec))

	now := testEpoch
	s.Advance(now)
	now = runToPhase(s, now, PhaseTraversing, 50)

	stepsAtHandoff := rec.wanderSteps

	// Plenty of frames while the traversal is in flight; the wander walk
	// must stay silent the whole time.
	for i := 0; i < 8; i++ {
		now = now.Add(10 * time.Millisecond)
		s.Advance(now)
		if s.Phase() != PhaseTraversing {
			t.Fatalf("left traversal early at frame %d", i)
		}
		if rec.wanderSteps != stepsAtHandoff {
			t.Fatalf("wander stepped during traversal: %d -> %d", stepsAtHandoff, rec.wanderSteps)
		}
	}

	// After arrival the wander walk resumes.
	now = now.Add(100 * time.Millisecond)
	s.Advance(now)
	now = now.Add(40 * time.Millisecond)
	s.Advance(now)
	if rec.wanderSteps <= stepsAtHandoff {
		t.Errorf("wander did not resume after arrival")
	}
}
