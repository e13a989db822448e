// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

// Package websocket streams accepted telemetry events to connected admin
// sessions. The hub fans messages out to every client; slow clients are
// dropped rather than allowed to stall the feed.
package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/Aldrich0129/automation-suite/internal/logging"
	"github.com/Aldrich0129/automation-suite/internal/models"
)

// Message types sent over the admin event feed.
const (
	MessageTypeTelemetryEvent = "telemetry_event"
	MessageTypePing           = "ping"
	MessageTypePong           = "pong"
)

// Message is one frame on the wire.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates an empty hub. Call Run from a supervised goroutine.
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// Run services registrations and broadcasts until ctx is canceled, then
// closes every client and returns ctx.Err(). Lifecycle events are drained
// before broadcasts so client state is settled when a message goes out.
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.add(client)
			continue
		case client := <-h.Unregister:
			h.remove(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown()
			return ctx.Err()
		case client := <-h.Register:
			h.add(client)
		case client := <-h.Unregister:
			h.remove(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	logging.Info().
		Str("component", "websocket-hub").
		Int("total_clients", total).
		Msg("Event feed client connected")
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()

	logging.Info().
		Str("component", "websocket-hub").
		Int("total_clients", total).
		Msg("Event feed client disconnected")
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	closed := len(h.clients)
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
	h.mu.Unlock()

	logging.Info().
		Str("component", "websocket-hub").
		Int("clients_closed", closed).
		Msg("Event feed stopped")
}

// broadcastToClients delivers to every client in ID order. Clients whose send
// buffer is full are disconnected.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, client := range clients {
		select {
		case client.send <- message:
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
}

// BroadcastEvent queues a telemetry event for every connected client.
// Never blocks: if the hub's queue is full the event is dropped, since the
// feed is a live view and the durable copy is already in the database.
func (h *Hub) BroadcastEvent(event *models.TelemetryEvent) {
	select {
	case h.broadcast <- Message{Type: MessageTypeTelemetryEvent, Data: event}:
	default:
		logging.Warn().
			Str("component", "websocket-hub").
			Msg("Broadcast queue full, dropping telemetry event")
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
