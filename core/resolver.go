package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
	"github.com/signalsfoundry/uwb-floorsim/model"
)

// SurfaceMeasurer answers "what is the current on-screen rectangle of X"
// for the container, each room, and each anchor. Rectangles are in the
// host's absolute frame; the resolver translates them into container-local
// coordinates. The boolean return is false while a surface is not yet
// mounted, which the resolver treats as a soft no-data condition.
//
// Implementations must be safe for concurrent use: the resolver is queried
// from the tick loop while layout pushes arrive from HTTP handlers.
type SurfaceMeasurer interface {
	ContainerRect() (model.Rect, bool)
	RoomRect(id model.RoomID) (model.Rect, bool)
	AnchorRects(id model.RoomID) []model.Rect
}

// GeometryResolver is the single source of truth for measured geometry.
// Room layouts are resolved as one atomic full-map overwrite so readers
// never observe a half-updated floor plan; anchors are measured fresh on
// every query because layout can change between queries.
type GeometryResolver struct {
	mu       sync.RWMutex
	surfaces SurfaceMeasurer
	roomIDs  []model.RoomID
	layouts  map[model.RoomID]model.RoomLayout
	log      logging.Logger
}

// NewGeometryResolver constructs a resolver for the given room set. The
// layout map starts empty; call ResolveRoomLayouts before querying.
func NewGeometryResolver(surfaces SurfaceMeasurer, roomIDs []model.RoomID, log logging.Logger) *GeometryResolver {
	if log == nil {
		log = logging.Noop()
	}
	ids := make([]model.RoomID, len(roomIDs))
	copy(ids, roomIDs)
	return &GeometryResolver{
		surfaces: surfaces,
		roomIDs:  ids,
		layouts:  make(map[model.RoomID]model.RoomLayout),
		log:      log,
	}
}

// ResolveRoomLayouts measures every room against the container and
// replaces the layout map in one step. Rooms whose surfaces are not
// mounted are simply absent from the new map. If the container itself is
// unmounted the previous layouts are kept so readers keep working with
// the last known geometry.
func (g *GeometryResolver) ResolveRoomLayouts() map[model.RoomID]model.RoomLayout {
	container, ok := g.surfaces.ContainerRect()
	if !ok {
		g.log.Debug(context.Background(), "container surface not mounted; keeping previous layouts")
		return g.Layouts()
	}

	next := make(map[model.RoomID]model.RoomLayout, len(g.roomIDs))
	for _, id := range g.roomIDs {
		rect, ok := g.surfaces.RoomRect(id)
		if !ok {
			continue
		}
		local := model.Rect{
			X: rect.X - container.X,
			Y: rect.Y - container.Y,
			W: rect.W,
			H: rect.H,
		}
		next[id] = model.RoomLayout{
			ID:     id,
			Name:   id.DisplayName(),
			Center: local.Center(),
			Width:  local.W,
			Height: local.H,
			Bounds: local,
		}
	}

	g.mu.Lock()
	g.layouts = next
	g.mu.Unlock()

	g.log.Debug(context.Background(), "resolved room layouts", logging.Int("rooms", len(next)))
	return g.Layouts()
}

// Layout returns the last resolved layout for one room.
func (g *GeometryResolver) Layout(id model.RoomID) (model.RoomLayout, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	layout, ok := g.layouts[id]
	return layout, ok
}

// Layouts returns a copy of the last resolved layout map.
func (g *GeometryResolver) Layouts() map[model.RoomID]model.RoomLayout {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[model.RoomID]model.RoomLayout, len(g.layouts))
	for id, layout := range g.layouts {
		out[id] = layout
	}
	return out
}

// RoomIDs returns the room set in declaration order.
func (g *GeometryResolver) RoomIDs() []model.RoomID {
	ids := make([]model.RoomID, len(g.roomIDs))
	copy(ids, g.roomIDs)
	return ids
}

// ResolveAnchors measures the anchors of one room and returns their
// centers in container-local coordinates, labeled {room}-anchor-{index}.
// An unmounted room or container yields an empty slice, not an error.
func (g *GeometryResolver) ResolveAnchors(id model.RoomID) []model.AnchorPoint {
	container, ok := g.surfaces.ContainerRect()
	if !ok {
		return nil
	}
	rects := g.surfaces.AnchorRects(id)
	if len(rects) == 0 {
		return nil
	}
	anchors := make([]model.AnchorPoint, 0, len(rects))
	for i, rect := range rects {
		center := rect.Center()
		anchors = append(anchors, model.AnchorPoint{
			ID:   fmt.Sprintf("%s-anchor-%d", id, i),
			Room: id,
			Position: model.Point{
				X: center.X - container.X,
				Y: center.Y - container.Y,
			},
		})
	}
	return anchors
}

// ToRoomLocal converts a container-local point into the frame of one
// room's rendered surface by subtracting the room's offset. Returns false
// when the room has no resolved layout.
func (g *GeometryResolver) ToRoomLocal(id model.RoomID, p model.Point) (model.Point, bool) {
	layout, ok := g.Layout(id)
	if !ok {
		return model.Point{}, false
	}
	return model.Point{
		X: p.X - layout.Bounds.X,
		Y: p.Y - layout.Bounds.Y,
	}, true
}
