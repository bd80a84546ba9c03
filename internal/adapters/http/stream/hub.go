// Package stream pushes every new prediction snapshot to connected browsers
// over websockets.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/pkg/logger"
	"github.com/okian/goalcast/pkg/metrics"
)

// MessageTypeSnapshot is the only message type sent to clients.
const MessageTypeSnapshot = "snapshot"

// Message is the envelope written to every client.
type Message struct {
	Type      string          `json:"type"`
	Data      *model.Snapshot `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Source returns the snapshot a new client receives on connect.
type Source func(ctx context.Context) (*model.Snapshot, error)

// Hub tracks connected clients and fans snapshots out to them. Slow clients
// whose buffer is full are disconnected.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	ctx      context.Context
	upgrader websocket.Upgrader
	source   Source
	log      logger.Logger
}

// NewHub creates a hub. ctx bounds the lifetime of every connection; origins
// lists the allowed Origin headers ("*" allows any).
func NewHub(ctx context.Context, source Source, origins []string) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		ctx:     ctx,
		source:  source,
		log:     logger.Get().Named("stream"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(origins),
	}
	return h
}

func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		o := r.Header.Get("Origin")
		return o == "" || allowed[o]
	}
}

// ServeHTTP upgrades the request and registers the connection.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Debug(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	c := newClient(uuid.NewString(), conn, h)
	if h.source != nil {
		if snap, err := h.source(r.Context()); err == nil && snap != nil {
			if msg, err := encode(snap); err == nil {
				c.trySend(msg)
			}
		}
	}
	h.register(c)

	go c.writePump(h.ctx)
	go c.readPump(h.ctx)
}

// Publish sends snap to every connected client.
func (h *Hub) Publish(snap *model.Snapshot) {
	if snap == nil {
		return
	}
	msg, err := encode(snap)
	if err != nil {
		h.log.Error(h.ctx, "snapshot encode failed", logger.Error(err))
		return
	}

	// sends happen under the read lock so unregister cannot close a
	// channel mid-send
	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		if !c.trySend(msg) {
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		metrics.RecordStreamDrop()
		h.log.Warn(h.ctx, "websocket client too slow, disconnecting", logger.String("client_id", c.id))
		h.unregister(c)
	}
	metrics.RecordStreamBroadcast()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.UpdateStreamClients(n)
	h.log.Debug(h.ctx, "websocket client connected", logger.String("client_id", c.id), logger.Int("clients", n))
}

// unregister removes c and closes its send channel once.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		metrics.UpdateStreamClients(n)
	}
}

func encode(snap *model.Snapshot) ([]byte, error) {
	return json.Marshal(Message{Type: MessageTypeSnapshot, Data: snap, Timestamp: snap.GeneratedAt})
}
