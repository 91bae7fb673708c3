// Package client is a small WebSocket client for the presence chat protocol.
// The terminal client and the server's end-to-end tests both use it.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Tyrowin/gochat-presence/internal/chat"
)

var (
	ErrTimeout = errors.New("timed out waiting for event")
	ErrClosed  = errors.New("connection closed")
)

// Client is one connection to the server. Outbound calls are safe for
// concurrent use; inbound events arrive on Events in server order.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	events  chan chat.Event
	done    chan struct{}
	err     error
}

// Dial connects to a ws:// or wss:// URL, sending origin as the Origin header.
func Dial(ctx context.Context, url, origin string) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		conn:   conn,
		events: make(chan chat.Event, 256),
		done:   make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Events returns the stream of decoded server events. It is closed when the
// connection ends; Err then reports why.
func (c *Client) Events() <-chan chat.Event {
	return c.events
}

// Err returns the error that ended the read loop, once Events is closed.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		return nil
	}
}

// Next waits up to timeout for the next event.
func (c *Client) Next(timeout time.Duration) (chat.Event, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case evt, ok := <-c.events:
		if !ok {
			return chat.Event{}, ErrClosed
		}
		return evt, nil
	case <-timer.C:
		return chat.Event{}, ErrTimeout
	}
}

// Register announces the display name. name may be any JSON value.
func (c *Client) Register(name any) error {
	return c.write(chat.Inbound{Type: chat.InboundRegister, Name: name})
}

// Send routes text to a session id or chat.Broadcast. clientID is echoed back
// in the envelope; nil leaves it absent.
func (c *Client) Send(to, text string, clientID any) error {
	frame := chat.Inbound{Type: chat.InboundMessage, To: to, Text: text}
	if clientID != nil {
		raw, err := json.Marshal(clientID)
		if err != nil {
			return fmt.Errorf("encode client id: %w", err)
		}
		frame.ClientID = raw
	}
	return c.write(frame)
}

// Typing relays a typing signal to a session id or chat.Broadcast.
func (c *Client) Typing(to string, typing bool) error {
	return c.write(chat.Inbound{Type: chat.InboundTyping, To: to, Typing: typing})
}

// SendRaw writes an arbitrary text frame.
func (c *Client) SendRaw(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Close sends a normal close frame and closes the socket.
func (c *Client) Close() error {
	c.writeMu.Lock()
	err := c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *Client) write(frame chat.Inbound) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second)); err != nil {
		return err
	}
	return c.conn.WriteJSON(frame)
}

// readLoop splits every text frame into its newline separated JSON documents.
// A document that does not decode ends the stream.
func (c *Client) readLoop() {
	defer close(c.events)
	defer close(c.done)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.err = err
			return
		}

		dec := json.NewDecoder(bytes.NewReader(data))
		for {
			var evt chat.Event
			err := dec.Decode(&evt)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				// The stream is out of step with the server; stop here.
				c.err = fmt.Errorf("decode event: %w", err)
				_ = c.conn.Close()
				return
			}
			c.events <- evt
		}
	}
}
