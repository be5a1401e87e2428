package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Case event types broadcast over the websocket.
const (
	EventCaseSubmitted    = "case_submitted"
	EventStatusChanged    = "status_changed"
	EventDocumentRecorded = "document_recorded"
	EventIdentityApproved = "identity_approved"
)

// CaseEvent is a single broadcast message. Every case mutation produces one.
type CaseEvent struct {
	Type   string `json:"type"`
	CaseID int64  `json:"caseId,omitempty"`
	Action string `json:"action"`
	By     string `json:"by,omitempty"`
	At     string `json:"at"`
}

// Hub fans case events out to connected dashboard clients.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates an event hub with no connected clients.
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// dashboards are served from the same origin in production and
			// from file:// during local demos
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeCaseEvents upgrades the request and keeps the connection registered
// until the peer goes away.
func (h *Hub) ServeCaseEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.S().Errorw("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
	zap.S().Debugw("case-events client connected", "remote", conn.RemoteAddr())

	go h.readLoop(conn)
}

// readLoop drains control frames and detects disconnects. Clients never
// send application messages.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
	zap.S().Debugw("case-events client disconnected", "remote", conn.RemoteAddr())
}

// Broadcast sends the event to every connected client. Write failures drop
// the client, a broadcast never fails the calling request.
func (h *Hub) Broadcast(ev CaseEvent) {
	if ev.At == "" {
		ev.At = time.Now().UTC().Format(time.RFC3339)
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		zap.S().Errorw("failed to marshal case event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			delete(h.clients, conn)
			_ = conn.Close()
		}
	}
}

// ClientCount reports how many dashboards are connected.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
