// Package web serves the diagnostics surface: a JSON status endpoint, the
// Prometheus metrics endpoint, and a WebSocket feed of MLME messages.
package web

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wavelayer/mlme/internal/core/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")

		// Allow same-origin (no Origin header) and local clients.
		if origin == "" {
			return true
		}
		for _, allowed := range []string{"http://localhost", "http://127.0.0.1", "http://[::1]"} {
			if strings.HasPrefix(origin, allowed) {
				return true
			}
		}

		log.Printf("WebSocket: rejected origin: %s", origin)
		return false
	},
}

// Event is the envelope for every message pushed over the feed.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub fans MLME messages and log lines out to connected WebSocket clients.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]string
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

// HandleWebSocket upgrades the request and registers the connection.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("Upgrade error:", err)
		return
	}

	id := uuid.NewString()
	h.mu.Lock()
	h.clients[conn] = id
	h.mu.Unlock()

	log.Printf("WebSocket connected: client=%s", id)

	// Clean up on disconnect.
	go func() {
		defer conn.Close()
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			log.Printf("WebSocket disconnected: client=%s", id)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

// BroadcastSmeMessage pushes one MLME message to all connected clients.
func (h *Hub) BroadcastSmeMessage(msg domain.Message) {
	h.broadcast(Event{Type: msg.MlmeMessage(), Payload: msg})
}

// BroadcastLog pushes a log line to all connected clients.
func (h *Hub) BroadcastLog(message, level string) {
	h.broadcast(Event{Type: "log", Payload: map[string]string{
		"message": message,
		"level":   level,
	}})
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Println("JSON marshal error:", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			conn.Close()
			delete(h.clients, conn)
		}
	}
}
