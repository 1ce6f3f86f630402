package core

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/uwb-floorsim/model"
)

// FloorPlan describes the rooms, anchor placements, and visit order of one
// simulated floor. Coordinates are absolute pixels; conversion into the
// container-local frame happens in the GeometryResolver.
type FloorPlan struct {
	Container model.Rect
	Rooms     []FloorPlanRoom
	Path      []model.RoomID
}

// FloorPlanRoom is one room plus its anchor rectangles.
type FloorPlanRoom struct {
	ID      model.RoomID
	Rect    model.Rect
	Anchors []model.Rect
}

// internal JSON shapes, unexported so the on-disk format stays free to evolve.
type floorPlanJSON struct {
	Container rectJSON       `json:"container"`
	Rooms     []roomPlanJSON `json:"rooms"`
	Path      []string       `json:"path"`
}

type roomPlanJSON struct {
	ID      string     `json:"id"`
	Rect    rectJSON   `json:"rect"`
	Anchors []rectJSON `json:"anchors"` // optional; defaults to the four corners
}

type rectJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (r rectJSON) toRect() model.Rect {
	return model.Rect{X: r.X, Y: r.Y, W: r.W, H: r.H}
}

// Anchor rects synthesized for rooms that do not list their own.
const (
	cornerAnchorSize  = 10.0
	cornerAnchorInset = 6.0
)

// LoadFloorPlan reads a JSON floor plan from r. It fails on JSON or
// structural errors (empty ids, empty path, path naming an unknown room);
// geometry values are taken as-is.
func LoadFloorPlan(r io.Reader) (*FloorPlan, error) {
	var payload floorPlanJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadFloorPlan: decode failed: %w", err)
	}

	if len(payload.Rooms) == 0 {
		return nil, fmt.Errorf("LoadFloorPlan: no rooms defined")
	}
	if len(payload.Path) == 0 {
		return nil, fmt.Errorf("LoadFloorPlan: empty path sequence")
	}

	plan := &FloorPlan{
		Container: payload.Container.toRect(),
		Rooms:     make([]FloorPlanRoom, 0, len(payload.Rooms)),
		Path:      make([]model.RoomID, 0, len(payload.Path)),
	}

	known := make(map[model.RoomID]bool, len(payload.Rooms))
	for _, jsRoom := range payload.Rooms {
		if jsRoom.ID == "" {
			return nil, fmt.Errorf("LoadFloorPlan: room with empty id")
		}
		id := model.RoomID(jsRoom.ID)
		if known[id] {
			return nil, fmt.Errorf("LoadFloorPlan: duplicate room id %q", id)
		}
		known[id] = true

		room := FloorPlanRoom{ID: id, Rect: jsRoom.Rect.toRect()}
		if len(jsRoom.Anchors) > 0 {
			for _, a := range jsRoom.Anchors {
				room.Anchors = append(room.Anchors, a.toRect())
			}
		} else {
			room.Anchors = cornerAnchors(room.Rect)
		}
		plan.Rooms = append(plan.Rooms, room)
	}

	for _, step := range payload.Path {
		id := model.RoomID(step)
		if !known[id] {
			return nil, fmt.Errorf("LoadFloorPlan: path references unknown room %q", id)
		}
		plan.Path = append(plan.Path, id)
	}

	return plan, nil
}

// RoomIDs returns the room identifiers in declaration order.
func (p *FloorPlan) RoomIDs() []model.RoomID {
	ids := make([]model.RoomID, 0, len(p.Rooms))
	for _, room := range p.Rooms {
		ids = append(ids, room.ID)
	}
	return ids
}

// Surface builds a mounted StaticSurface from the plan.
func (p *FloorPlan) Surface() *StaticSurface {
	rooms := make(map[model.RoomID]model.Rect, len(p.Rooms))
	anchors := make(map[model.RoomID][]model.Rect, len(p.Rooms))
	for _, room := range p.Rooms {
		rooms[room.ID] = room.Rect
		anchors[room.ID] = room.Anchors
	}
	s := NewStaticSurface()
	s.Update(p.Container, rooms, anchors)
	return s
}

// cornerAnchors places one small anchor rect in each corner of the room,
// matching the reference layout of four beacons per room.
func cornerAnchors(room model.Rect) []model.Rect {
	left := room.X + cornerAnchorInset
	right := room.X + room.W - cornerAnchorInset - cornerAnchorSize
	top := room.Y + cornerAnchorInset
	bottom := room.Y + room.H - cornerAnchorInset - cornerAnchorSize
	return []model.Rect{
		{X: left, Y: top, W: cornerAnchorSize, H: cornerAnchorSize},
		{X: right, Y: top, W: cornerAnchorSize, H: cornerAnchorSize},
		{X: left, Y: bottom, W: cornerAnchorSize, H: cornerAnchorSize},
		{X: right, Y: bottom, W: cornerAnchorSize, H: cornerAnchorSize},
	}
}
