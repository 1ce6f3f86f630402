package simapi

import (
	"net/http"
	"time"

	"github.com/signalsfoundry/uwb-floorsim/internal/logging"
)

const (
	wsWriteTimeout = 5 * time.Second
	// Frame stream cadence. Slower than the engine frame rate on purpose:
	// the wire carries full snapshots, and 20 Hz is plenty for a renderer
	// interpolating between them.
	wsFrameInterval = 50 * time.Millisecond
)

// apiFrameStream upgrades to a WebSocket and pushes engine snapshots at a
// fixed cadence until the client goes away or the server shuts down. Each
// connection gets its own writer goroutine, so no two goroutines ever
// write the same conn.
func (s *SimApiServer) apiFrameStream(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r)
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn(r.Context(), "websocket upgrade failed", logging.String("error", err.Error()))
		return
	}

	if s.collector != nil {
		s.collector.AddWSClient()
	}
	log.Info(r.Context(), "frame stream client connected", logging.String("remote", conn.RemoteAddr().String()))

	// Reader goroutine: we send only, but reading is required to notice
	// close frames and connection loss.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsFrameInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
		if s.collector != nil {
			s.collector.RemoveWSClient()
		}
		log.Info(r.Context(), "frame stream client disconnected", logging.String("remote", conn.RemoteAddr().String()))
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(s.engine.Snapshot()); err != nil {
				return
			}
		}
	}
}
