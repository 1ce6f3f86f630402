package simapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
	"github.com/signalsfoundry/uwb-floorsim/model"
)

// RectPayload mirrors model.Rect for the layout push body.
type RectPayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

func (p RectPayload) toRect() model.Rect {
	return model.Rect{X: p.X, Y: p.Y, W: p.W, H: p.H}
}

// LayoutPushRequest is how a rendering client reports its live-measured
// geometry after a mount or reflow. The whole surface set is replaced in
// one request; partial pushes are rejected to keep rooms consistent.
type LayoutPushRequest struct {
	Container RectPayload              `json:"container"`
	Rooms     map[string]RectPayload   `json:"rooms"`
	Anchors   map[string][]RectPayload `json:"anchors"`
}

func (p *LayoutPushRequest) Bind(r *http.Request) error {
	if len(p.Rooms) == 0 {
		return errors.New("layout push must include at least one room")
	}
	if p.Container.W <= 0 || p.Container.H <= 0 {
		return errors.New("container must have positive dimensions")
	}
	return nil
}

// apiLayoutPost replaces the measured surfaces and re-resolves all room
// layouts. This doubles as the resize notification: push new rectangles,
// get fresh geometry.
func (s *SimApiServer) apiLayoutPost(w http.ResponseWriter, r *http.Request) {
	payload := &LayoutPushRequest{}
	if err := render.Bind(r, payload); err != nil {
		render.Render(w, r, s.httpErrInvalidRequest(err))
		return
	}

	rooms := make(map[model.RoomID]model.Rect, len(payload.Rooms))
	for id, rect := range payload.Rooms {
		rooms[model.RoomID(id)] = rect.toRect()
	}
	anchors := make(map[model.RoomID][]model.Rect, len(payload.Anchors))
	for id, rects := range payload.Anchors {
		converted := make([]model.Rect, 0, len(rects))
		for _, rect := range rects {
			converted = append(converted, rect.toRect())
		}
		anchors[model.RoomID(id)] = converted
	}

	s.surface.Update(payload.Container.toRect(), rooms, anchors)
	s.engine.Resize()

	s.requestLogger(r).Info(r.Context(), "layout pushed",
		logging.Int("rooms", len(rooms)),
		logging.Int("anchor_rooms", len(anchors)))

	render.JSON(w, r, s.engine.Resolver.Layouts())
}

// apiResizePost re-resolves room layouts against the current surfaces
// without changing them. Matches a pure "size may have changed" signal.
func (s *SimApiServer) apiResizePost(w http.ResponseWriter, r *http.Request) {
	s.engine.Resize()
	render.JSON(w, r, s.engine.Resolver.Layouts())
}
