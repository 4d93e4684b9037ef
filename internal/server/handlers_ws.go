package server

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/domain"
	"github.com/PADALAPRATHYUSHA/screen-mirroring/internal/metrics"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// handleSessionFeed streams session-state changes to the client. The first
// frame is the current state so the UI renders without waiting for a
// mutation; afterwards every published event is forwarded as-is.
func (s *Server) handleSessionFeed(c echo.Context) error {
	userID := currentUser(c)

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return nil // Upgrade already wrote the error response
	}
	defer conn.Close()

	metrics.SessionEventSubscribers.Inc()
	defer metrics.SessionEventSubscribers.Dec()

	ctx := c.Request().Context()
	sub := s.events.Subscribe(ctx, userID)
	defer sub.Close()

	current, err := s.app.GetActiveSession(ctx, userID)
	if err != nil {
		slog.Error("Failed to read session for feed snapshot", "user_id", userID, "error", err)
	} else if writeErr := writeEvent(conn, domain.SessionEvent{UserID: userID, Session: current}); writeErr != nil {
		return nil
	}

	// Reader goroutine: we ignore client frames, but reading is how we
	// learn about disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := writeEvent(conn, event); err != nil {
				return nil
			}
		case <-closed:
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

func writeEvent(conn *websocket.Conn, event domain.SessionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}
