package core

import (
	"math/rand"
	"time"

	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
	"github.com/signalsfoundry/uwb-floorsim/model"
)

// Shared fixture: three rooms in a row inside a 900x220 container at the
// origin, four corner anchors each. Centers land at (120,110), (420,110),
// and (720,110).
func newTestSurface() *StaticSurface {
	s := NewStaticSurface()
	s.Update(
		model.Rect{X: 0, Y: 0, W: 900, H: 220},
		map[model.RoomID]model.Rect{
			model.RoomGate:        {X: 20, Y: 10, W: 200, H: 200},
			model.RoomWorkstation: {X: 320, Y: 10, W: 200, H: 200},
			model.RoomCanteen:     {X: 620, Y: 10, W: 200, H: 200},
		},
		map[model.RoomID][]model.Rect{
			model.RoomGate:        cornerAnchors(model.Rect{X: 20, Y: 10, W: 200, H: 200}),
			model.RoomWorkstation: cornerAnchors(model.Rect{X: 320, Y: 10, W: 200, H: 200}),
			model.RoomCanteen:     cornerAnchors(model.Rect{X: 620, Y: 10, W: 200, H: 200}),
		},
	)
	return s
}

var testRoomIDs = []model.RoomID{model.RoomGate, model.RoomWorkstation, model.RoomCanteen}

func newTestResolver(surface SurfaceMeasurer) *GeometryResolver {
	r := NewGeometryResolver(surface, testRoomIDs, logging.Noop())
	r.ResolveRoomLayouts()
	return r
}

// Fast motion constants so state-machine tests finish in a handful of
// simulated milliseconds.
func testSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		WanderTick:    40 * time.Millisecond,
		DwellDuration: 200 * time.Millisecond,
		MoveDuration:  100 * time.Millisecond,
		JitterMax:     12,
		Padding:       18,
	}
}

func newTestScheduler(resolver *GeometryResolver, events *EventLog, opts ...SchedulerOption) *PathScheduler {
	opts = append([]SchedulerOption{WithRand(rand.New(rand.NewSource(1)))}, opts...)
	s, err := NewPathScheduler(resolver, model.DefaultPathSequence, events, testSchedulerConfig(), logging.Noop(), opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// runToPhase advances the scheduler in wander-tick steps until it reaches
// the wanted phase or maxSteps is exhausted. Returns the time reached.
func runToPhase(s *PathScheduler, from time.Time, want Phase, maxSteps int) time.Time {
	now := from
	for i := 0; i < maxSteps; i++ {
		if s.Phase() == want {
			return now
		}
		now = now.Add(40 * time.Millisecond)
		s.Advance(now)
	}
	return now
}

var testEpoch = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
