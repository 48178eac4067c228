package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"shop_go/internal/event"
	"shop_go/internal/infra"
)

// feedMessage is the wire shape of one event on the websocket feed.
type feedMessage struct {
	Type  string      `json:"type"`
	Seq   uint64      `json:"seq"`
	Ts    int64       `json:"ts"`
	Event event.Event `json:"event"`
}

// Hub fans journaled events out to connected websocket clients. A slow
// client is disconnected rather than allowed to stall the feed.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]chan []byte

	upgrader websocket.Upgrader
}

// NewHub creates an empty feed hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The feed is public read-only data.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Sink returns the journal sink feeding this hub.
func (h *Hub) Sink() func(event.Event) {
	return func(ev event.Event) {
		msg, err := json.Marshal(feedMessage{
			Type:  ev.GetType(),
			Seq:   ev.GetSeq(),
			Ts:    ev.GetTs(),
			Event: ev,
		})
		if err != nil {
			slog.Error("Failed to encode feed message", slog.Any("error", err))
			return
		}
		h.broadcast(msg)
	}
}

func (h *Hub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn, out := range h.clients {
		select {
		case out <- msg:
		default:
			// Client can't keep up; close and forget it.
			delete(h.clients, conn)
			close(out)
			conn.Close()
			infra.GlobalMetrics.DecrementFeedClients()
		}
	}
}

// ServeHTTP upgrades the connection and streams the feed until the client
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Feed upgrade failed", slog.Any("error", err))
		return
	}

	out := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[conn] = out
	h.mu.Unlock()
	infra.GlobalMetrics.IncrementFeedClients()

	// Writer loop.
	go func() {
		for msg := range out {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				break
			}
		}
		conn.Close()
	}()

	// Reader loop: the feed is one-way, reads only detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	if out, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		close(out)
		infra.GlobalMetrics.DecrementFeedClients()
	}
	h.mu.Unlock()
	conn.Close()
}

// ClientCount returns the number of connected feed clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
