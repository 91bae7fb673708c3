package chat

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Router validates, stamps and fans out chat messages.
type Router struct {
	registry *Registry
	sink     Sink
	now      func() time.Time
	newID    func() string
}

// RouterOption overrides a Router dependency, mostly for tests.
type RouterOption func(*Router)

func WithClock(now func() time.Time) RouterOption {
	return func(r *Router) { r.now = now }
}

func WithIDGenerator(newID func() string) RouterOption {
	return func(r *Router) { r.newID = newID }
}

func NewRouter(registry *Registry, sink Sink, opts ...RouterOption) *Router {
	r := &Router{
		registry: registry,
		sink:     sink,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route delivers rawText from senderID to rawTo, which is either Broadcast or a
// session id. The sender always gets a delivery-confirmed copy once the message
// is accepted; peers get message-received. Recipients are taken from the
// registry as it stands on entry.
func (r *Router) Route(senderID, rawTo, rawText string, clientID json.RawMessage) Outcome {
	sender, ok := r.registry.Get(senderID)
	if !ok {
		return dropped(DroppedUnregisteredSender)
	}
	text := sanitizeText(rawText)
	if text == "" {
		return dropped(DroppedEmptyText)
	}
	if rawTo == "" {
		return dropped(DroppedMissingTarget)
	}
	if len(clientID) == 0 {
		clientID = nil
	}

	env := &Envelope{
		ID:       r.newID(),
		From:     sender,
		To:       rawTo,
		Text:     text,
		At:       r.now().UnixMilli(),
		ClientID: clientID,
	}

	r.sink.Deliver(sender.ID, Event{Type: EventDeliveryConfirmed, Message: env})

	peerEvent := Event{Type: EventMessageReceived, Message: env}
	if rawTo == Broadcast {
		n := deliverAll(r.sink, r.registry.List(), sender.ID, peerEvent)
		return Outcome{Kind: Delivered, Recipients: n, Envelope: env}
	}

	target, ok := r.registry.Get(rawTo)
	if !ok {
		return Outcome{Kind: DroppedUnknownTarget, Envelope: env}
	}
	if target.ID == sender.ID {
		return Outcome{Kind: Delivered, Envelope: env}
	}
	n := 0
	if r.sink.Deliver(target.ID, peerEvent) {
		n = 1
	}
	return Outcome{Kind: Delivered, Recipients: n, Envelope: env}
}

// deliverAll sends evt to every session except the one with id except and
// returns how many deliveries the sink accepted.
func deliverAll(sink Sink, sessions []Session, except string, evt Event) int {
	peers := lo.Filter(sessions, func(s Session, _ int) bool {
		return s.ID != except
	})
	return lo.CountBy(peers, func(s Session) bool {
		return sink.Deliver(s.ID, evt)
	})
}
