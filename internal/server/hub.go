package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/skillgenie/skillgenie/internal/quiz"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const (
	writeWait = 5 * time.Second

	// sendBuffer is how many views may queue for one watcher before it
	// is considered stalled and disconnected.
	sendBuffer = 16
)

// sessionMessage is pushed to watchers whenever a session changes.
type sessionMessage struct {
	Type string    `json:"type"`
	Data quiz.View `json:"data"`
}

// watcher is one WebSocket connection. Only its writer goroutine writes
// to conn; send is closed when the hub drops the watcher.
type watcher struct {
	conn *websocket.Conn
	send chan []byte
}

// writePump drains send onto the connection, then closes it.
func (w *watcher) writePump() {
	defer w.conn.Close()
	for data := range w.send {
		if err := write(w.conn, data, websocket.TextMessage); err != nil {
			return
		}
	}
	write(w.conn, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), websocket.CloseMessage)
}

// Hub tracks WebSocket watchers per session. Broadcast never blocks on a
// connection: it queues onto each watcher and drops those whose queue is
// full.
type Hub struct {
	mu    sync.Mutex
	conns map[string]map[*watcher]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[*watcher]struct{})}
}

// add registers conn as a watcher of session id, queues the initial view
// and starts the connection's writer.
func (h *Hub) add(id string, conn *websocket.Conn, initial quiz.View) (*watcher, error) {
	data, err := encodeView(initial)
	if err != nil {
		return nil, err
	}
	w := &watcher{conn: conn, send: make(chan []byte, sendBuffer)}
	w.send <- data
	h.register(id, w)
	go w.writePump()
	return w, nil
}

func (h *Hub) register(id string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[id] == nil {
		h.conns[id] = make(map[*watcher]struct{})
	}
	h.conns[id][w] = struct{}{}
}

func (h *Hub) drop(id string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(id, w)
}

// dropLocked unregisters w and closes its queue. Dropping twice is a no-op.
func (h *Hub) dropLocked(id string, w *watcher) {
	set := h.conns[id]
	if _, ok := set[w]; !ok {
		return
	}
	delete(set, w)
	if len(set) == 0 {
		delete(h.conns, id)
	}
	close(w.send)
}

// Broadcast queues view for every watcher of session id. Callers that
// need ordered delivery call it while holding the session's lock.
func (h *Hub) Broadcast(id string, view quiz.View) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set := h.conns[id]
	if len(set) == 0 {
		return
	}
	data, err := encodeView(view)
	if err != nil {
		log.Printf("encode session %s: %v", id, err)
		return
	}
	for w := range set {
		select {
		case w.send <- data:
		default:
			log.Printf("watcher of session %s is not keeping up, disconnecting", id)
			h.dropLocked(id, w)
		}
	}
}

// Watchers returns the number of connections watching session id.
func (h *Hub) Watchers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[id])
}

// CloseSession disconnects every watcher of session id.
func (h *Hub) CloseSession(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for w := range h.conns[id] {
		h.dropLocked(id, w)
	}
}

// CloseAll disconnects every watcher.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.conns {
		for w := range set {
			h.dropLocked(id, w)
		}
	}
}

func encodeView(view quiz.View) ([]byte, error) {
	return json.Marshal(sessionMessage{Type: "session", Data: view})
}

func write(conn *websocket.Conn, data []byte, messageType int) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(messageType, data)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.registry.Do(id, func(*quiz.Session) error { return nil }); err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	// Register under the session lock so the initial view is queued
	// before any later broadcast.
	var wt *watcher
	err = s.registry.Do(id, func(sess *quiz.Session) error {
		var err error
		wt, err = s.hub.add(id, conn, sess.Snapshot())
		return err
	})
	if err != nil {
		conn.Close()
		return
	}
	defer s.hub.drop(id, wt)

	// Watchers only listen; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
