package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"hangtimer/internal/domain"
	"hangtimer/internal/usecase"
)

const (
	writeWait        = 5 * time.Second
	snapshotInterval = 100 * time.Millisecond
	streamBuffer     = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The server binds to localhost by default; any page may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// controlMessage is what clients send over the socket.
type controlMessage struct {
	Action string `json:"action"`
}

// handleWebSocket streams session updates. Events are always delivered;
// snapshots are thinned to one per snapshotInterval unless the state changed.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	updates, cancel := s.session.Subscribe(streamBuffer)
	defer cancel()

	closed := make(chan struct{})
	go s.readControl(conn, closed)

	snap := s.session.Snapshot()
	if err := writeUpdate(conn, snapshotUpdate(snap)); err != nil {
		return
	}
	lastState := snap.State
	var lastSent time.Time

	for {
		select {
		case <-closed:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if u.Type == usecase.UpdateSnapshot && u.Snapshot != nil {
				if u.Snapshot.State == lastState && time.Since(lastSent) < snapshotInterval {
					continue
				}
				lastState = u.Snapshot.State
				lastSent = time.Now()
			}
			if err := writeUpdate(conn, u); err != nil {
				s.log.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

func (s *Server) readControl(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg controlMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.Debug("websocket bad message", "error", err)
			continue
		}
		action, err := usecase.ParseAction(msg.Action)
		if err != nil {
			s.log.Debug("websocket unknown action", "action", msg.Action)
			continue
		}
		if _, err := s.session.Do(action); err != nil {
			s.log.Warn("websocket action failed", "action", action, "error", err)
		}
	}
}

func writeUpdate(conn *websocket.Conn, u usecase.Update) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(u)
}

// snapshotUpdate wraps a snapshot for the stream.
func snapshotUpdate(snap domain.Snapshot) usecase.Update {
	return usecase.Update{Type: usecase.UpdateSnapshot, Snapshot: &snap}
}
