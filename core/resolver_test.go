package core

import (
	"testing"

	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
	"github.com/signalsfoundry/uwb-floorsim/model"
)

func TestResolveRoomLayouts_ContainerLocalFrame(t *testing.T) {
	// Container offset from the absolute origin; room coordinates must
	// come back relative to the container, not the screen.
	s := NewStaticSurface()
	s.Update(
		model.Rect{X: 100, Y: 50, W: 900, H: 220},
		map[model.RoomID]model.Rect{
			model.RoomGate: {X: 120, Y: 60, W: 200, H: 200},
		},
		nil,
	)
	r := NewGeometryResolver(s, []model.RoomID{model.RoomGate}, logging.Noop())
	r.ResolveRoomLayouts()

	layout, ok := r.Layout(model.RoomGate)
	if !ok {
		t.Fatalf("gate layout missing")
	}
	if layout.Bounds.X != 20 || layout.Bounds.Y != 10 {
		t.Errorf("room offset = (%v, %v), want (20, 10)", layout.Bounds.X, layout.Bounds.Y)
	}
	if layout.Center.X != 120 || layout.Center.Y != 110 {
		t.Errorf("room center = %v, want (120, 110)", layout.Center)
	}
	if layout.Width != 200 || layout.Height != 200 {
		t.Errorf("room size = %vx%v, want 200x200", layout.Width, layout.Height)
	}
	if layout.Name != "Gate" {
		t.Errorf("room name = %q, want Gate", layout.Name)
	}
}

func TestResolveRoomLayouts_FullOverwrite(t *testing.T) {
	s := newTestSurface()
	r := newTestResolver(s)

	if len(r.Layouts()) != 3 {
		t.Fatalf("expected 3 layouts, got %d", len(r.Layouts()))
	}

	// Re-measure with one room gone: the old entry must not survive.
	s.Update(
		model.Rect{X: 0, Y: 0, W: 900, H: 220},
		map[model.RoomID]model.Rect{
			model.RoomGate:        {X: 20, Y: 10, W: 200, H: 200},
			model.RoomWorkstation: {X: 320, Y: 10, W: 200, H: 200},
		},
		nil,
	)
	r.ResolveRoomLayouts()

	if len(r.Layouts()) != 2 {
		t.Fatalf("expected 2 layouts after overwrite, got %d", len(r.Layouts()))
	}
	if _, ok := r.Layout(model.RoomCanteen); ok {
		t.Errorf("canteen layout survived a full overwrite that dropped it")
	}
}

func TestResolveRoomLayouts_UnmountedContainerKeepsPrevious(t *testing.T) {
	s := newTestSurface()
	r := newTestResolver(s)

	unmounted := NewStaticSurface()
	r2 := NewGeometryResolver(unmounted, testRoomIDs, logging.Noop())
	if got := r2.ResolveRoomLayouts(); len(got) != 0 {
		t.Fatalf("unmounted container produced %d layouts, want 0", len(got))
	}

	// An already-resolved resolver keeps its last geometry when the
	// container disappears mid-session.
	before := len(r.Layouts())
	r.surfaces = unmounted
	r.ResolveRoomLayouts()
	if got := len(r.Layouts()); got != before {
		t.Errorf("layouts after unmount = %d, want %d", got, before)
	}
}

func TestResolveAnchors_StableIdentifiers(t *testing.T) {
	r := newTestResolver(newTestSurface())

	anchors := r.ResolveAnchors(model.RoomGate)
	if len(anchors) != 4 {
		t.Fatalf("expected 4 gate anchors, got %d", len(anchors))
	}
	for i, anchor := range anchors {
		want := model.RoomID("gate")
		if anchor.Room != want {
			t.Errorf("anchor %d room = %q, want %q", i, anchor.Room, want)
		}
	}
	if anchors[0].ID != "gate-anchor-0" || anchors[3].ID != "gate-anchor-3" {
		t.Errorf("anchor ids = %q..%q, want gate-anchor-0..gate-anchor-3", anchors[0].ID, anchors[3].ID)
	}
}

func TestResolveAnchors_MissingRoomIsEmpty(t *testing.T) {
	r := newTestResolver(newTestSurface())
	if got := r.ResolveAnchors("lobby"); len(got) != 0 {
		t.Errorf("unknown room returned %d anchors, want 0", len(got))
	}
}

func TestResolveAnchors_UnmountedIsEmpty(t *testing.T) {
	r := NewGeometryResolver(NewStaticSurface(), testRoomIDs, logging.Noop())
	if got := r.ResolveAnchors(model.RoomGate); len(got) != 0 {
		t.Errorf("unmounted surface returned %d anchors, want 0", len(got))
	}
}

func TestToRoomLocal(t *testing.T) {
	r := newTestResolver(newTestSurface())

	// Workstation sits at (320, 10); its center (420, 110) is (100, 100)
	// in room-local coordinates.
	local, ok := r.ToRoomLocal(model.RoomWorkstation, model.Point{X: 420, Y: 110})
	if !ok {
		t.Fatalf("workstation layout missing")
	}
	if local.X != 100 || local.Y != 100 {
		t.Errorf("room-local point = %v, want (100, 100)", local)
	}

	if _, ok := r.ToRoomLocal("lobby", model.Point{}); ok {
		t.Errorf("unknown room converted successfully; want ok=false")
	}
}
