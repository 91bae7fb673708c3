package chat

// OutcomeKind classifies what happened to a routed message or typing signal.
type OutcomeKind int

const (
	Delivered OutcomeKind = iota
	DroppedUnregisteredSender
	DroppedEmptyText
	DroppedMissingTarget
	DroppedUnknownTarget
)

func (k OutcomeKind) String() string {
	switch k {
	case Delivered:
		return "delivered"
	case DroppedUnregisteredSender:
		return "unregistered-sender"
	case DroppedEmptyText:
		return "empty-text"
	case DroppedMissingTarget:
		return "missing-target"
	case DroppedUnknownTarget:
		return "unknown-target"
	default:
		return "unknown"
	}
}

// Outcome is the result of Route or Relay. None of the drop kinds are reported
// to the sender on the wire unless the gateway is told to.
type Outcome struct {
	Kind       OutcomeKind
	Recipients int
	Envelope   *Envelope
}

func (o Outcome) Dropped() bool {
	return o.Kind != Delivered
}

func dropped(kind OutcomeKind) Outcome {
	return Outcome{Kind: kind}
}
