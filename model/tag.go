package model

// TagState is the public view of the single tracked badge. Position is
// container-local; Local is the same point expressed in the coordinate
// frame of the room the tag currently renders inside (the destination room
// while a traversal is in flight).
type TagState struct {
	Room      RoomID `json:"room"`
	Position  Point  `json:"position"`
	Local     Point  `json:"local"`
	PathIndex int    `json:"path_index"`
}

// Pulse is one ephemeral ranging signal from an anchor toward the tag.
// A pulse is immutable after creation: To is a snapshot of the tag position
// at emission time, not a live-tracked reference.
type Pulse struct {
	ID        string `json:"id"`
	AnchorID  string `json:"anchor_id"`
	Room      RoomID `json:"room"`
	From      Point  `json:"from"`
	To        Point  `json:"to"`
	EmittedAt int64  `json:"emitted_at_ms"`
	ExpiresAt int64  `json:"expires_at_ms"`
}

// RangingRay is the instantaneous anchor-to-tag distance and bearing,
// recomputed per frame for display and never persisted.
type RangingRay struct {
	AnchorID   string  `json:"anchor_id"`
	Room       RoomID  `json:"room"`
	From       Point   `json:"from"`
	Distance   float64 `json:"distance"`
	BearingDeg float64 `json:"bearing_deg"`
}

// LogEntry records one room-entry event. Entries are append-only and
// never mutated or removed.
type LogEntry struct {
	ID      string `json:"id"`
	Message string `json:"message"`
	Time    string `json:"time"`
}
