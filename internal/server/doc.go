// Package server implements the HTTP and WebSocket transport for the presence
// chat service.
//
// The Hub owns every connection and drives the chat Gateway from a single
// event loop; Client runs the per-connection read and write pumps; Server
// wires configuration, origin checks and routes together and handles graceful
// shutdown.
package server
