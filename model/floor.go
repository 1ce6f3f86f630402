package model

// Point is a position in container-local pixels. The container is the
// simulation viewport; every component of the engine works in this frame
// unless a value is explicitly room-local.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in container-local pixels.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.W/2, Y: r.Y + r.H/2}
}

// RoomID identifies one room on the floor plan.
type RoomID string

const (
	RoomGate        RoomID = "gate"
	RoomWorkstation RoomID = "workstation"
	RoomCanteen     RoomID = "canteen"
)

// roomDisplayNames maps room identifiers to the human-readable names used
// in event log messages.
var roomDisplayNames = map[RoomID]string{
	RoomGate:        "Gate",
	RoomWorkstation: "Workstation",
	RoomCanteen:     "Canteen",
}

// DisplayName returns the human-readable name for the room. Unknown rooms
// fall back to the raw identifier so log messages stay usable.
func (id RoomID) DisplayName() string {
	if name, ok := roomDisplayNames[id]; ok {
		return name
	}
	return string(id)
}

// RoomLayout is the measured geometry of one room, re-derived from the
// rendered surface on every resolution pass. Center/Width/Height duplicate
// information in Bounds for convenience; all four fields are always
// written together.
type RoomLayout struct {
	ID     RoomID  `json:"id"`
	Name   string  `json:"name"`
	Center Point   `json:"center"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Bounds Rect    `json:"bounds"`
}

// AnchorPoint is a fixed positioning beacon inside a room. Anchor positions
// are measured fresh on each query, never cached across ticks.
type AnchorPoint struct {
	ID       string `json:"id"`
	Room     RoomID `json:"room"`
	Position Point  `json:"position"`
}

// DefaultPathSequence is the fixed cyclic visit order consumed by the path
// scheduler. The scheduler indexes into it modulo its length.
var DefaultPathSequence = []RoomID{
	RoomGate,
	RoomWorkstation,
	RoomCanteen,
	RoomWorkstation,
	RoomGate,
}
