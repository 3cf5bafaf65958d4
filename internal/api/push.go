package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/kscreener/internal/screen"
	"github.com/wonny/kscreener/pkg/logger"
)

const (
	writeWait = 5 * time.Second

	// Slow consumers are dropped rather than allowed to block the push path
	clientBuffer = 8
)

// Hub pushes screen snapshots to connected dashboard clients.
// Presentation only: it never feeds anything back into the controller.
// ⭐ SSOT: 스냅샷 푸시는 이 허브에서만
type Hub struct {
	logger   *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*hubClient]struct{}
	closed  bool
}

type hubClient struct {
	conn *websocket.Conn
	send chan screen.Snapshot
}

// NewHub creates a push hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The BFF fronts its own dashboard; origin policy is handled upstream
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// Serve upgrades one dashboard connection and streams snapshots to it
// GET /api/screen/ws
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := &hubClient{
		conn: conn,
		send: make(chan screen.Snapshot, clientBuffer),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Debug("Dashboard client connected")

	go h.writeLoop(client)
	h.readLoop(client)
}

// Broadcast queues a snapshot for every connected client
func (h *Hub) Broadcast(snap screen.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		select {
		case client.send <- snap:
		default:
			// Client is too slow; drop it
			h.removeLocked(client)
		}
	}
}

// Close disconnects all clients
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for client := range h.clients {
		h.removeLocked(client)
	}
}

// writeLoop drains the send queue onto the wire
func (h *Hub) writeLoop(client *hubClient) {
	for snap := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteJSON(snap); err != nil {
			h.logger.WithError(err).Debug("Snapshot push failed")
			h.remove(client)
			client.conn.Close()
			return
		}
	}
	client.conn.Close()
}

// readLoop discards inbound frames and notices disconnects
func (h *Hub) readLoop(client *hubClient) {
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			h.remove(client)
			return
		}
	}
}

func (h *Hub) remove(client *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked closes a client's queue. Caller holds h.mu.
func (h *Hub) removeLocked(client *hubClient) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
}
