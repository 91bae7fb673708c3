// Package chat holds the presence and routing core: the session registry, the
// message router, the typing relay and the gateway that binds them to the
// lifecycle of a connection.
//
// Nothing in this package knows about WebSockets. Delivery goes through the
// Sink interface, which the transport implements, so every fan-out decision can
// be exercised with a fresh Registry and an in-memory sink.
package chat
