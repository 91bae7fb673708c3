package chat

import (
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
)

// Registry is the authoritative map from connection id to public identity.
//
// It never emits presence events itself; whoever mutates it is responsible for
// telling the peers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Register stores the session under sessionID with a sanitized display name.
// Calling it again for the same id overwrites the previous identity.
func (r *Registry) Register(sessionID, rawName string) Session {
	s := Session{ID: sessionID, DisplayName: sanitizeName(rawName)}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = s
	return s
}

// Unregister removes and returns the session. The boolean is false when the id
// was never registered, which is the normal case for a connection that closes
// before registering.
func (r *Registry) Unregister(sessionID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	return s, ok
}

func (r *Registry) Get(sessionID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[sessionID]
	return s, ok
}

// List returns a snapshot of every registered session ordered by id.
func (r *Registry) List() []Session {
	r.mu.RLock()
	sessions := lo.Values(r.sessions)
	r.mu.RUnlock()

	slices.SortFunc(sessions, func(a, b Session) int {
		return strings.Compare(a.ID, b.ID)
	})
	return sessions
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
