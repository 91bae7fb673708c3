package chat

//go:generate mockgen -source=sink.go -destination=mocks/mock_sink.go -package=mocks

// Sink hands an event to one connected session. Deliver must not block and
// must not call back into the Gateway; it reports whether the event was queued.
type Sink interface {
	Deliver(sessionID string, evt Event) bool
}
