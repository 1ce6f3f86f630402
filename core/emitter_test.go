package core

import (
	"testing"
	"time"

	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
	"github.com/signalsfoundry/uwb-floorsim/model"
)

// fixedTag is a TagReader pinned to one state.
type fixedTag struct {
	state model.TagState
}

func (f *fixedTag) TagState() model.TagState { return f.state }

func newTestEmitter(resolver *GeometryResolver, tag TagReader) *RangingEmitter {
	return NewRangingEmitter(resolver, tag, DefaultEmitterConfig(), logging.Noop(), nil)
}

func TestEmitter_BurstOnePulsePerAnchor(t *testing.T) {
	resolver := newTestResolver(newTestSurface())
	tag := &fixedTag{state: model.TagState{Room: model.RoomGate, Position: model.Point{X: 120, Y: 110}}}
	e := newTestEmitter(resolver, tag)

	e.Advance(testEpoch)

	pulses := e.Pulses()
	if len(pulses) != 4 {
		t.Fatalf("expected 4 pulses (one per gate anchor), got %d", len(pulses))
	}
	seen := make(map[string]bool)
	for _, p := range pulses {
		if p.Room != model.RoomGate {
			t.Errorf("pulse %s room = %q, want gate", p.ID, p.Room)
		}
		if p.To != tag.state.Position {
			t.Errorf("pulse %s end = %v, want tag position %v", p.ID, p.To, tag.state.Position)
		}
		if seen[p.AnchorID] {
			t.Errorf("duplicate pulse for anchor %s", p.AnchorID)
		}
		seen[p.AnchorID] = true
	}
}

func TestEmitter_EndPositionIsSnapshot(t *testing.T) {
	resolver := newTestResolver(newTestSurface())
	tag := &fixedTag{state: model.TagState{Room: model.RoomGate, Position: model.Point{X: 100, Y: 100}}}
	e := newTestEmitter(resolver, tag)

	e.Advance(testEpoch)
	// The tag moves after emission; existing pulses must not follow.
	tag.state.Position = model.Point{X: 180, Y: 40}

	for _, p := range e.Pulses() {
		if p.To != (model.Point{X: 100, Y: 100}) {
			t.Errorf("pulse end moved with the tag: %v", p.To)
		}
	}
}

func TestEmitter_CadenceAndIndependentExpiry(t *testing.T) {
	resolver := newTestResolver(newTestSurface())
	tag := &fixedTag{state: model.TagState{Room: model.RoomGate, Position: model.Point{X: 120, Y: 110}}}
	e := newTestEmitter(resolver, tag)

	now := testEpoch
	e.Advance(now) // burst 1

	// Mid-interval frames emit nothing new.
	e.Advance(now.Add(200 * time.Millisecond))
	e.Advance(now.Add(400 * time.Millisecond))
	if got := len(e.Pulses()); got != 4 {
		t.Fatalf("pulses before second burst = %d, want 4", got)
	}

	e.Advance(now.Add(600 * time.Millisecond)) // burst 2
	if got := len(e.Pulses()); got != 8 {
		t.Fatalf("pulses after second burst = %d, want 8", got)
	}

	// Just past burst 1's lifetime: exactly its 4 pulses are gone.
	e.Advance(now.Add(2601 * time.Millisecond))
	remaining := e.Pulses()
	burst2Expiry := now.Add(600 * time.Millisecond).Add(2600 * time.Millisecond).UnixMilli()
	for _, p := range remaining {
		if p.ExpiresAt != burst2Expiry {
			t.Errorf("survivor pulse %s has expiry %d, want burst-2 expiry %d", p.ID, p.ExpiresAt, burst2Expiry)
		}
	}
}

func TestEmitter_NoAnchorsNoPulses(t *testing.T) {
	resolver := NewGeometryResolver(NewStaticSurface(), testRoomIDs, logging.Noop())
	tag := &fixedTag{state: model.TagState{Room: model.RoomGate}}
	e := newTestEmitter(resolver, tag)

	e.Advance(testEpoch)
	if got := len(e.Pulses()); got != 0 {
		t.Errorf("pulses with no measurable anchors = %d, want 0", got)
	}
}

func TestEmitter_RaysMatchGeometry(t *testing.T) {
	resolver := newTestResolver(newTestSurface())
	tagPos := model.Point{X: 120, Y: 110}
	tag := &fixedTag{state: model.TagState{Room: model.RoomGate, Position: tagPos}}
	e := newTestEmitter(resolver, tag)

	rays := e.Rays()
	if len(rays) != 4 {
		t.Fatalf("expected 4 rays, got %d", len(rays))
	}
	anchors := resolver.ResolveAnchors(model.RoomGate)
	for i, ray := range rays {
		wantDist := Distance(anchors[i].Position, tagPos)
		wantBearing := BearingDegrees(anchors[i].Position, tagPos)
		if ray.Distance != wantDist {
			t.Errorf("ray %d distance = %v, want %v", i, ray.Distance, wantDist)
		}
		if ray.BearingDeg != wantBearing {
			t.Errorf("ray %d bearing = %v, want %v", i, ray.BearingDeg, wantBearing)
		}
		if ray.From != anchors[i].Position {
			t.Errorf("ray %d origin = %v, want anchor position %v", i, ray.From, anchors[i].Position)
		}
	}
}

func TestEmitter_ExpirySweepCountMatches(t *testing.T) {
	resolver := newTestResolver(newTestSurface())
	tag := &fixedTag{state: model.TagState{Room: model.RoomCanteen, Position: model.Point{X: 720, Y: 110}}}
	e := newTestEmitter(resolver, tag)

	now := testEpoch
	e.Advance(now)
	e.Advance(now.Add(2601 * time.Millisecond))

	// The expiry sweep runs before the emission check, and 2601ms is past
	// the emission interval, so a fresh burst replaces the expired one.
	pulses := e.Pulses()
	if len(pulses) != 4 {
		t.Fatalf("pulses after sweep + re-emit = %d, want 4", len(pulses))
	}
	for _, p := range pulses {
		if p.Room != model.RoomCanteen {
			t.Errorf("pulse room = %q, want canteen", p.Room)
		}
	}
}
