package chat

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	InboundRegister = "register"
	InboundTyping   = "typing"
	InboundMessage  = "message"
)

var validate = validator.New()

// Inbound is one frame sent by a client. Payload fields are kept loosely typed
// so that clients sending numbers or nulls are coerced instead of rejected.
type Inbound struct {
	Type     string          `json:"type" validate:"required,oneof=register typing message"`
	Name     any             `json:"name,omitempty"`
	To       any             `json:"to,omitempty"`
	Text     any             `json:"text,omitempty"`
	Typing   any             `json:"typing,omitempty"`
	ClientID json.RawMessage `json:"clientId,omitempty"`
}

// DecodeInbound parses and validates a raw frame.
func DecodeInbound(raw []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	if err := validate.Struct(in); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrInvalidFrame, err)
	}
	return in, nil
}
