package core

import (
	"sync"

	"github.com/signalsfoundry/uwb-floorsim/model"
)

// StaticSurface is a SurfaceMeasurer backed by explicit rectangles rather
// than a live renderer. It is seeded from a floor plan and can be replaced
// wholesale when a rendering client pushes its measured geometry.
type StaticSurface struct {
	mu        sync.RWMutex
	mounted   bool
	container model.Rect
	rooms     map[model.RoomID]model.Rect
	anchors   map[model.RoomID][]model.Rect
}

// NewStaticSurface starts unmounted; geometry queries return empty results
// until the first Update.
func NewStaticSurface() *StaticSurface {
	return &StaticSurface{
		rooms:   make(map[model.RoomID]model.Rect),
		anchors: make(map[model.RoomID][]model.Rect),
	}
}

// Update replaces the whole measured surface set in one step. Passing the
// full set each time mirrors how a renderer reports after a reflow: either
// everything was re-measured, or nothing was.
func (s *StaticSurface) Update(container model.Rect, rooms map[model.RoomID]model.Rect, anchors map[model.RoomID][]model.Rect) {
	nextRooms := make(map[model.RoomID]model.Rect, len(rooms))
	for id, r := range rooms {
		nextRooms[id] = r
	}
	nextAnchors := make(map[model.RoomID][]model.Rect, len(anchors))
	for id, rects := range anchors {
		cp := make([]model.Rect, len(rects))
		copy(cp, rects)
		nextAnchors[id] = cp
	}

	s.mu.Lock()
	s.mounted = true
	s.container = container
	s.rooms = nextRooms
	s.anchors = nextAnchors
	s.mu.Unlock()
}

// ContainerRect implements SurfaceMeasurer.
func (s *StaticSurface) ContainerRect() (model.Rect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.mounted {
		return model.Rect{}, false
	}
	return s.container, true
}

// RoomRect implements SurfaceMeasurer.
func (s *StaticSurface) RoomRect(id model.RoomID) (model.Rect, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.mounted {
		return model.Rect{}, false
	}
	r, ok := s.rooms[id]
	return r, ok
}

// AnchorRects implements SurfaceMeasurer.
func (s *StaticSurface) AnchorRects(id model.RoomID) []model.Rect {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.mounted {
		return nil
	}
	rects := s.anchors[id]
	cp := make([]model.Rect, len(rects))
	copy(cp, rects)
	return cp
}
