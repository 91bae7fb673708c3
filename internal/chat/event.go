package chat

import "encoding/json"

// EventType names an outbound frame.
type EventType string

const (
	EventRegistered        EventType = "registered"
	EventPeerJoined        EventType = "peer-joined"
	EventPeerLeft          EventType = "peer-left"
	EventTyping            EventType = "typing"
	EventDeliveryConfirmed EventType = "delivery-confirmed"
	EventMessageReceived   EventType = "message-received"
	EventMessageRejected   EventType = "message-rejected"
)

// Scope tags a typing signal with how it was addressed.
type Scope string

const (
	ScopeBroadcast Scope = "broadcast"
	ScopeDirect    Scope = "direct"
)

// Envelope is the server-stamped record of one routed message. It is built once
// and shared read-only by every delivery of that message.
type Envelope struct {
	ID       string          `json:"id"`
	From     Session         `json:"from"`
	To       string          `json:"to"`
	Text     string          `json:"text"`
	At       int64           `json:"at"`
	ClientID json.RawMessage `json:"clientId"`
}

type TypingSignal struct {
	From        string `json:"from"`
	DisplayName string `json:"displayName"`
	Typing      bool   `json:"typing"`
	Scope       Scope  `json:"scope"`
	To          string `json:"to"`
}

// Rejection tells a sender why its message went nowhere. Only sent when drop
// notification is enabled on the gateway.
type Rejection struct {
	ClientID json.RawMessage `json:"clientId"`
	Reason   string          `json:"reason"`
}

// Event is one outbound frame. Exactly the fields relevant to Type are set.
type Event struct {
	Type      EventType     `json:"type"`
	Self      *Session      `json:"self,omitempty"`
	Roster    []Session     `json:"roster,omitempty"`
	Peer      *Session      `json:"peer,omitempty"`
	Message   *Envelope     `json:"message,omitempty"`
	Typing    *TypingSignal `json:"typing,omitempty"`
	Rejection *Rejection    `json:"rejection,omitempty"`
}
