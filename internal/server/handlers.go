// Package server exposes HTTP handlers, including WebSocket upgrades, health
// checks, and the read-only roster view.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleWebSocket upgrades a GET request and hands the connection to the hub,
// which assigns the session id and launches the pumps.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("WebSocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := NewClient(conn, s.hub, r.RemoteAddr, s.cfg)

	select {
	case s.hub.register <- client:
	case <-s.hub.ctx.Done():
		client.closeConnection()
	}
}

// handleHealth responds with a plain text status line.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "Presence chat server is running! sessions=%d connections=%d",
		s.hub.Registry().Len(), s.hub.ClientCount())
}

// handleRoster returns the registered sessions as JSON.
func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.hub.Registry().List()); err != nil {
		s.log.Warn("Error writing roster response", "error", err)
	}
}
