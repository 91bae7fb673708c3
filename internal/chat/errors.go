package chat

import "errors"

var (
	ErrNotConnected  = errors.New("connection is not open")
	ErrSessionExists = errors.New("session id already connected")
	ErrUnknownEvent  = errors.New("unknown event type")
	ErrInvalidFrame  = errors.New("invalid inbound frame")
)
