// Package server wires HTTP handlers into a ServeMux for the presence chat
// service via routing helpers.
package server

import "net/http"

// routes configures the application's ServeMux: health check, roster view and
// the WebSocket endpoint.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleHealth)
	mux.HandleFunc("/api/roster", s.handleRoster)
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}
