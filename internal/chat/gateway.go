package chat

import (
	"fmt"
	"log/slog"
	"sync"
)

// ConnState is the lifecycle position of one connection.
type ConnState int

const (
	Disconnected ConnState = iota
	Unregistered
	Registered
)

func (s ConnState) String() string {
	switch s {
	case Unregistered:
		return "connected-unregistered"
	case Registered:
		return "connected-registered"
	default:
		return "disconnected"
	}
}

// Gateway binds connection lifecycle to the registry, router and tracker.
// All of its operations are serialized, so the roster is never observed
// half-updated by a concurrent route or relay.
type Gateway struct {
	mu          sync.Mutex
	log         *slog.Logger
	registry    *Registry
	router      *Router
	tracker     *Tracker
	sink        Sink
	conns       map[string]ConnState
	notifyDrops bool
}

type GatewayOption func(*Gateway)

// WithDropNotification makes the gateway answer dropped messages with a
// message-rejected event instead of staying silent.
func WithDropNotification(enabled bool) GatewayOption {
	return func(g *Gateway) { g.notifyDrops = enabled }
}

func WithRouterOptions(opts ...RouterOption) GatewayOption {
	return func(g *Gateway) { g.router = NewRouter(g.registry, g.sink, opts...) }
}

func NewGateway(log *slog.Logger, registry *Registry, sink Sink, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		log:      log,
		registry: registry,
		router:   NewRouter(registry, sink),
		tracker:  NewTracker(registry, sink),
		sink:     sink,
		conns:    make(map[string]ConnState),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Registry exposes the registry for read-only roster queries.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

func (g *Gateway) State(sessionID string) ConnState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conns[sessionID]
}

// Connect opens a connection in the unregistered state.
func (g *Gateway) Connect(sessionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.conns[sessionID]; ok {
		return fmt.Errorf("connect %s: %w", sessionID, ErrSessionExists)
	}
	g.conns[sessionID] = Unregistered
	return nil
}

// Dispatch runs one inbound frame for sessionID.
func (g *Gateway) Dispatch(sessionID string, in Inbound) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.conns[sessionID]; !ok {
		return fmt.Errorf("%s from %s: %w", in.Type, sessionID, ErrNotConnected)
	}

	switch in.Type {
	case InboundRegister:
		g.register(sessionID, Coerce(in.Name))
	case InboundTyping:
		out := g.tracker.Relay(sessionID, Coerce(in.To), Truthy(in.Typing))
		if out.Dropped() {
			g.log.Debug("typing signal dropped", "session_id", sessionID, "outcome", out.Kind.String())
		}
	case InboundMessage:
		out := g.router.Route(sessionID, Coerce(in.To), Coerce(in.Text), in.ClientID)
		g.afterRoute(sessionID, in, out)
	default:
		return fmt.Errorf("%q from %s: %w", in.Type, sessionID, ErrUnknownEvent)
	}
	return nil
}

// Disconnect closes the connection. If it had registered, the session is
// removed and every remaining session is told it left.
func (g *Gateway) Disconnect(sessionID string) (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.conns, sessionID)
	s, ok := g.registry.Unregister(sessionID)
	if !ok {
		return Session{}, false
	}
	deliverAll(g.sink, g.registry.List(), s.ID, Event{Type: EventPeerLeft, Peer: &s})
	g.log.Info("session left", "session_id", s.ID, "name", s.DisplayName, "clients", g.registry.Len())
	return s, true
}

func (g *Gateway) register(sessionID, rawName string) {
	s := g.registry.Register(sessionID, rawName)
	g.conns[sessionID] = Registered

	roster := g.registry.List()
	g.sink.Deliver(s.ID, Event{Type: EventRegistered, Self: &s, Roster: roster})
	deliverAll(g.sink, roster, s.ID, Event{Type: EventPeerJoined, Peer: &s})
	g.log.Info("session registered", "session_id", s.ID, "name", s.DisplayName, "clients", len(roster))
}

func (g *Gateway) afterRoute(sessionID string, in Inbound, out Outcome) {
	if !out.Dropped() {
		g.log.Debug("message routed", "session_id", sessionID, "to", out.Envelope.To, "recipients", out.Recipients)
		return
	}
	g.log.Debug("message dropped", "session_id", sessionID, "outcome", out.Kind.String())
	if !g.notifyDrops {
		return
	}
	g.sink.Deliver(sessionID, Event{
		Type:      EventMessageRejected,
		Rejection: &Rejection{ClientID: in.ClientID, Reason: out.Kind.String()},
	})
}
