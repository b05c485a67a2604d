package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/tadasana/internal/detector"
	"github.com/ayusman/tadasana/internal/posture"
)

// The dashboard is served from localhost, so cross-origin upgrades are fine.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamMessage is one broadcast on the landmark socket.
type streamMessage struct {
	Pose      *detector.PoseLandmarks `json:"pose"`
	Snapshot  posture.Snapshot        `json:"snapshot"`
	Timestamp int64                   `json:"timestamp"`
}

// PostureStream broadcasts live pose landmarks and posture snapshots to
// WebSocket clients. It does not run its own capture loop; the app pipeline
// feeds it through Publish once per evaluated frame.
type PostureStream struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]struct{}
}

// NewPostureStream creates a PostureStream with no connected clients.
func NewPostureStream() *PostureStream {
	return &PostureStream{clients: make(map[*websocket.Conn]struct{})}
}

// ServeHTTP upgrades the request and holds the connection until the client
// hangs up.
func (h *PostureStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.add(conn)
	defer h.remove(conn)

	// Drain the connection; clients only listen, so the first read error
	// means they left.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *PostureStream) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = struct{}{}
}

func (h *PostureStream) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// ClientCount returns the number of connected WebSocket clients.
func (h *PostureStream) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish sends a pose and its snapshot to every connected client. It runs
// on the pipeline goroutine, so each write carries a short deadline rather
// than blocking on a slow client.
func (h *PostureStream) Publish(pose *detector.PoseLandmarks, snapshot posture.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return
	}

	msg, err := json.Marshal(streamMessage{
		Pose:      pose,
		Snapshot:  snapshot,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(time.Second))
		conn.WriteMessage(websocket.TextMessage, msg)
	}
}
