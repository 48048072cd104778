package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans UI events out to every connected browser tab.
type Hub struct {
	mu          sync.Mutex
	connections map[uuid.UUID]*websocket.Conn
	logger      *zap.Logger
	closed      bool
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[uuid.UUID]*websocket.Conn),
		logger:      logger,
	}
}

func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id, ok := h.registerConnection(conn)
	if !ok {
		conn.Close()
		return
	}

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregisterConnection(id)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) registerConnection(conn *websocket.Conn) (uuid.UUID, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return uuid.Nil, false
	}
	id := uuid.New()
	h.connections[id] = conn

	h.logger.Debug("websocket connected", zap.String("conn_id", id.String()), zap.Int("total", len(h.connections)))
	return id, true
}

func (h *Hub) unregisterConnection(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conn, ok := h.connections[id]
	if !ok {
		return
	}
	conn.Close()
	delete(h.connections, id)

	h.logger.Debug("websocket disconnected", zap.String("conn_id", id.String()))
}

// Broadcast sends msg as JSON to every connection. Connections that fail to
// take the write are dropped.
func (h *Hub) Broadcast(msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode websocket message", zap.Error(err))
		return
	}

	// Writes to one conn must not run concurrently, so the full lock is held.
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, conn := range h.connections {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("dropping websocket connection", zap.String("conn_id", id.String()), zap.Error(err))
			conn.Close()
			delete(h.connections, id)
		}
	}
}

// Count returns the number of open connections.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.connections)
}

// Close disconnects everyone and refuses new connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for id, conn := range h.connections {
		conn.Close()
		delete(h.connections, id)
	}
}
