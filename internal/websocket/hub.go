// Package websocket pushes pipeline progress to connected browsers. The hub
// fans one stream of event envelopes out to every client; slow clients are
// disconnected rather than allowed to stall a run.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"agriprep/pkg/contracts/events"
)

// Hub maintains the set of active clients and broadcasts envelopes to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	logger  *slog.Logger
	quit    chan struct{}
	running bool

	totalConnections int64
	messagesSent     int64
}

// NewHub creates a hub. Call Start before broadcasting.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With(slog.String("component", "websocket.hub")),
		quit:       make(chan struct{}),
	}
}

// Start launches the hub loop.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.run()
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("hub shutting down")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.totalConnections++
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("client registered",
				slog.String("client_id", client.id),
				slog.String("remote_addr", client.remoteAddr),
				slog.Int("total_clients", count))

			h.greet(client)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()

			h.logger.Info("client unregistered",
				slog.String("client_id", client.id),
				slog.Duration("connected_for", time.Since(client.connectedAt)),
				slog.Int("total_clients", count))

		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

// greet confirms the connection to a newly registered client.
func (h *Hub) greet(client *Client) {
	env := events.NewEnvelope(events.TypeConnection, map[string]string{
		"status":    "connected",
		"client_id": client.id,
	})
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.Warn("client buffer full on greeting",
			slog.String("client_id", client.id))
	}
}

// deliver fans a message out to every client. A client whose buffer is full
// is dropped.
func (h *Hub) deliver(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- message:
			h.mu.Lock()
			h.messagesSent++
			h.mu.Unlock()
		default:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Warn("client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}
}

// Broadcast queues an envelope for every connected client. It never blocks:
// when the hub is saturated or stopped the envelope is dropped, progress
// events are advisory.
func (h *Hub) Broadcast(env events.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("marshal broadcast envelope",
			slog.String("type", env.Type),
			slog.String("error", err.Error()))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		h.logger.Warn("broadcast queue full, dropping event",
			slog.String("type", env.Type))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop shuts the hub down and disconnects every client.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.mu.Unlock()

	close(h.quit)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

// Stats reports hub counters for the health endpoint.
func (h *Hub) Stats() map[string]interface{} {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return map[string]interface{}{
		"active_clients":    len(h.clients),
		"total_connections": h.totalConnections,
		"messages_sent":     h.messagesSent,
	}
}
