package gateway

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const snapshotWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // same-host SPA and local tooling
	},
}

// handleSessionWatch streams session snapshots to the client. The first
// message is the current state; every transition after that is pushed, so a
// forced logout reaches the UI without polling.
func (s *Server) handleSessionWatch(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade WebSocket: %w", err)
	}
	defer conn.Close()

	updates, cancel := s.app.Watch()
	defer cancel()

	// Read pump only to observe the close; inbound frames are discarded.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.writeSnapshot(conn, toSessionResponse(s.app.Snapshot())); err != nil {
		return nil
	}

	for {
		select {
		case snap := <-updates:
			if err := s.writeSnapshot(conn, toSessionResponse(snap)); err != nil {
				return nil
			}
		case <-closed:
			return nil
		}
	}
}

func (s *Server) writeSnapshot(conn *websocket.Conn, resp sessionResponse) error {
	if err := conn.SetWriteDeadline(time.Now().Add(snapshotWriteTimeout)); err != nil {
		return err
	}
	if err := conn.WriteJSON(resp); err != nil {
		slog.Debug("Session watcher gone", "error", err)
		return err
	}
	return nil
}
