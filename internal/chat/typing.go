package chat

// Tracker relays typing intent. It keeps no state: debouncing and expiry are
// the clients' business (see package typing).
type Tracker struct {
	registry *Registry
	sink     Sink
}

func NewTracker(registry *Registry, sink Sink) *Tracker {
	return &Tracker{registry: registry, sink: sink}
}

// Relay forwards a typing signal from senderID. A Broadcast target reaches
// every other registered session with ScopeBroadcast, a session id reaches that
// session alone with ScopeDirect.
func (t *Tracker) Relay(senderID, rawTarget string, typing bool) Outcome {
	sender, ok := t.registry.Get(senderID)
	if !ok {
		return dropped(DroppedUnregisteredSender)
	}
	if rawTarget == "" {
		return dropped(DroppedMissingTarget)
	}

	signal := &TypingSignal{
		From:        sender.ID,
		DisplayName: sender.DisplayName,
		Typing:      typing,
		To:          rawTarget,
	}

	if rawTarget == Broadcast {
		signal.Scope = ScopeBroadcast
		n := deliverAll(t.sink, t.registry.List(), sender.ID, Event{Type: EventTyping, Typing: signal})
		return Outcome{Kind: Delivered, Recipients: n}
	}

	target, ok := t.registry.Get(rawTarget)
	if !ok {
		return dropped(DroppedUnknownTarget)
	}
	if target.ID == sender.ID {
		return Outcome{Kind: Delivered}
	}
	signal.Scope = ScopeDirect
	n := 0
	if t.sink.Deliver(target.ID, Event{Type: EventTyping, Typing: signal}) {
		n = 1
	}
	return Outcome{Kind: Delivered, Recipients: n}
}
