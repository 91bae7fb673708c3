// Package server coordinates connection registration, inbound frame dispatch,
// and connection cleanup for the presence chat system via the Hub type.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Tyrowin/gochat-presence/internal/chat"
)

// inboundFrame is one decoded frame waiting for the hub loop.
type inboundFrame struct {
	client *Client
	in     chat.Inbound
}

// Hub owns every live connection and is the single goroutine that drives the
// chat Gateway. Register, unregister and inbound frames are all serialized
// through Run, which gives per-connection arrival order and keeps fan-out in
// step with roster changes.
type Hub struct {
	log        *slog.Logger
	gateway    *chat.Gateway
	clients    map[string]*Client
	inbound    chan inboundFrame
	register   chan *Client
	unregister chan *Client
	// failed collects clients whose outbox overflowed during the current
	// operation. Only touched from the Run goroutine.
	failed []*Client
	mutex  sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a Hub bound to registry. The hub is the gateway's Sink.
func NewHub(log *slog.Logger, registry *chat.Registry, opts ...chat.GatewayOption) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		log:        log,
		clients:    make(map[string]*Client),
		inbound:    make(chan inboundFrame),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	h.gateway = chat.NewGateway(log, registry, h, opts...)
	return h
}

// Registry returns the session registry the hub's gateway mutates.
func (h *Hub) Registry() *chat.Registry {
	return h.gateway.Registry()
}

// ClientCount returns the number of open connections, registered or not.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Deliver implements chat.Sink. It never blocks. A client whose outbox has
// reached its byte limit has stopped draining and is queued for removal once
// the current operation finishes.
func (h *Hub) Deliver(sessionID string, evt chat.Event) bool {
	h.mutex.RLock()
	client, ok := h.clients[sessionID]
	h.mutex.RUnlock()
	if !ok {
		return false
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		h.log.Error("Failed to encode event", "type", evt.Type, "session_id", sessionID, "error", err)
		return false
	}

	if !client.out.push(payload) {
		if frames, size := client.out.queued(); frames > 0 {
			h.log.Warn("Outbox full; disconnecting stalled client", "session_id", sessionID, "frames", frames, "bytes", size)
		}
		h.failed = append(h.failed, client)
		return false
	}
	return true
}

// Run starts the hub's event loop. It should be called in its own goroutine
// and returns once Shutdown is called.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			h.handleRegister(client)

		case client := <-h.unregister:
			h.drop(client, "connection closed")

		case frame := <-h.inbound:
			h.handleInbound(frame)
		}
		h.removeFailedClients()
	}
}

func (h *Hub) handleRegister(client *Client) {
	if client == nil {
		h.log.Warn("Received nil client registration; skipping")
		return
	}

	if err := h.gateway.Connect(client.id); err != nil {
		h.log.Error("Rejecting connection", "session_id", client.id, "remote", client.addr, "error", err)
		client.closeConnection()
		return
	}

	h.mutex.Lock()
	h.clients[client.id] = client
	clientCount := len(h.clients)
	h.mutex.Unlock()
	h.log.Info("Client connected", "session_id", client.id, "remote", client.addr, "clients", clientCount)

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

func (h *Hub) handleInbound(frame inboundFrame) {
	h.mutex.RLock()
	current := h.clients[frame.client.id]
	h.mutex.RUnlock()
	if current != frame.client {
		return
	}

	if err := h.gateway.Dispatch(frame.client.id, frame.in); err != nil {
		h.log.Warn("Inbound frame rejected", "session_id", frame.client.id, "type", frame.in.Type, "error", err)
	}
}

// drop closes the client's outbox and tells the gateway the
// connection is gone. Calling it for an already dropped client is a no-op.
func (h *Hub) drop(client *Client, reason string) {
	if client == nil {
		return
	}

	h.mutex.Lock()
	current, ok := h.clients[client.id]
	if !ok || current != client {
		h.mutex.Unlock()
		return
	}
	delete(h.clients, client.id)
	clientCount := len(h.clients)
	h.mutex.Unlock()

	client.out.close()
	h.gateway.Disconnect(client.id)
	h.log.Info("Client disconnected", "session_id", client.id, "remote", client.addr, "reason", reason, "clients", clientCount)
}

// removeFailedClients drops clients whose outbox overflowed. Dropping one may
// announce a departure that overflows another, so it loops until stable.
func (h *Hub) removeFailedClients() {
	for len(h.failed) > 0 {
		client := h.failed[0]
		h.failed = h.failed[1:]
		h.drop(client, "outbox full")
	}
}

// shutdownClients gracefully closes all active client connections.
func (h *Hub) shutdownClients() {
	h.log.Info("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for id, client := range h.clients {
		clients = append(clients, client)
		delete(h.clients, id)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		client.out.close()
		h.gateway.Disconnect(client.id)
		client.closeConnection()
	}
	h.failed = nil

	h.log.Info("Closed client connections", "count", len(clients))
}

// Shutdown stops the hub and waits for every connection goroutine to finish,
// or until timeout elapses.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.log.Info("Initiating hub shutdown...")
	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.log.Info("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		h.log.Warn("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
