package simapi

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/signalsfoundry/uwb-floorsim/model"
)

// RoomView represents the external view of a room layout.
type RoomView struct {
	model.RoomLayout
}

func (v *RoomView) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// AnchorView represents the external view of an anchor beacon.
type AnchorView struct {
	model.AnchorPoint
}

func (v *AnchorView) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// TagView is the tag state plus the scheduler phase driving it.
type TagView struct {
	model.TagState
	Phase string `json:"phase"`
}

func (v *TagView) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// PulseView represents the external view of a live ranging pulse.
type PulseView struct {
	model.Pulse
}

func (v *PulseView) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// RayView represents the external view of an anchor-to-tag ranging ray.
type RayView struct {
	model.RangingRay
}

func (v *RayView) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// EventView represents the external view of a room-entry log entry.
type EventView struct {
	model.LogEntry
}

func (v *EventView) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func (s *SimApiServer) apiSnapshotGet(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.engine.Snapshot())
}

func (s *SimApiServer) apiRoomsGet(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()
	outs := make([]render.Renderer, 0, len(snap.Rooms))
	for _, room := range snap.Rooms {
		outs = append(outs, &RoomView{RoomLayout: room})
	}
	if err := render.RenderList(w, r, outs); err != nil {
		render.Render(w, r, s.httpErrUnexpected(err))
	}
}

// apiAnchorsGet returns every anchor, optionally filtered to one room via
// the ?room= query parameter. Anchors are measured fresh per request.
func (s *SimApiServer) apiAnchorsGet(w http.ResponseWriter, r *http.Request) {
	roomFilter := model.RoomID(r.URL.Query().Get("room"))

	var anchors []model.AnchorPoint
	if roomFilter != "" {
		anchors = s.engine.Resolver.ResolveAnchors(roomFilter)
	} else {
		for _, id := range s.engine.Resolver.RoomIDs() {
			anchors = append(anchors, s.engine.Resolver.ResolveAnchors(id)...)
		}
	}

	outs := make([]render.Renderer, 0, len(anchors))
	for _, anchor := range anchors {
		outs = append(outs, &AnchorView{AnchorPoint: anchor})
	}
	if err := render.RenderList(w, r, outs); err != nil {
		render.Render(w, r, s.httpErrUnexpected(err))
	}
}

func (s *SimApiServer) apiTagGet(w http.ResponseWriter, r *http.Request) {
	view := &TagView{
		TagState: s.engine.Scheduler.TagState(),
		Phase:    s.engine.Scheduler.Phase().String(),
	}
	if err := render.Render(w, r, view); err != nil {
		render.Render(w, r, s.httpErrUnexpected(err))
	}
}

func (s *SimApiServer) apiPulsesGet(w http.ResponseWriter, r *http.Request) {
	pulses := s.engine.Emitter.Pulses()
	outs := make([]render.Renderer, 0, len(pulses))
	for _, pulse := range pulses {
		outs = append(outs, &PulseView{Pulse: pulse})
	}
	if err := render.RenderList(w, r, outs); err != nil {
		render.Render(w, r, s.httpErrUnexpected(err))
	}
}

func (s *SimApiServer) apiRaysGet(w http.ResponseWriter, r *http.Request) {
	rays := s.engine.Emitter.Rays()
	outs := make([]render.Renderer, 0, len(rays))
	for _, ray := range rays {
		outs = append(outs, &RayView{RangingRay: ray})
	}
	if err := render.RenderList(w, r, outs); err != nil {
		render.Render(w, r, s.httpErrUnexpected(err))
	}
}

// apiEventsGet returns the room-entry log oldest-first; clients wanting
// newest-first reverse on their side.
func (s *SimApiServer) apiEventsGet(w http.ResponseWriter, r *http.Request) {
	entries := s.engine.Events.Entries()
	outs := make([]render.Renderer, 0, len(entries))
	for _, entry := range entries {
		outs = append(outs, &EventView{LogEntry: entry})
	}
	if err := render.RenderList(w, r, outs); err != nil {
		render.Render(w, r, s.httpErrUnexpected(err))
	}
}
