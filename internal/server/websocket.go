package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const wsWriteWait = 10 * time.Second

// handleRunWebSocket handles GET /api/v1/runs/:id/ws. It sends the same
// event sequence as the SSE stream and closes the connection normally
// after the terminal state event.
func (s *Server) handleRunWebSocket(w http.ResponseWriter, r *http.Request, jobID string) {
	if _, exists := s.jobs.GetJob(jobID); !exists {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("websocket upgrade failed", "job_id", jobID, "error", err)
		return
	}
	defer conn.Close()

	// drain client frames so close and pong control messages are processed;
	// a read error means the client is gone
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	emit := func(ev Event) error {
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		return conn.WriteJSON(ev)
	}
	ping := func() error {
		return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
	}

	if err := s.followJob(ctx, jobID, emit, ping); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			slog.Error("websocket stream failed", "job_id", jobID, "error", err)
		}
		return
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "run finished")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
}
