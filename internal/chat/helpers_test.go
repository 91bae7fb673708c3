package chat_test

import (
	"io"
	"log/slog"
	"sync"

	"github.com/Tyrowin/gochat-presence/internal/chat"
)

type delivery struct {
	to  string
	evt chat.Event
}

// recordingSink keeps every delivery in order. Sessions listed in refuse
// report a full buffer.
type recordingSink struct {
	mu        sync.Mutex
	delivered []delivery
	refuse    map[string]bool
}

func newRecordingSink() *recordingSink {
	return &recordingSink{refuse: make(map[string]bool)}
}

func (s *recordingSink) Deliver(sessionID string, evt chat.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.refuse[sessionID] {
		return false
	}
	s.delivered = append(s.delivered, delivery{to: sessionID, evt: evt})
	return true
}

func (s *recordingSink) to(sessionID string) []chat.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []chat.Event
	for _, d := range s.delivered {
		if d.to == sessionID {
			out = append(out, d.evt)
		}
	}
	return out
}

func (s *recordingSink) ofType(sessionID string, typ chat.EventType) []chat.Event {
	var out []chat.Event
	for _, evt := range s.to(sessionID) {
		if evt.Type == typ {
			out = append(out, evt)
		}
	}
	return out
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// registryWith registers one session per id, using the id as display name.
func registryWith(ids ...string) *chat.Registry {
	reg := chat.NewRegistry()
	for _, id := range ids {
		reg.Register(id, id)
	}
	return reg
}
