package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/gochat-presence/internal/chat"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line  string
		want  command
		isCmd bool
	}{
		{line: "hello", isCmd: false},
		{line: "/who", want: command{name: "who"}, isCmd: true},
		{line: "/TO  Bob ", want: command{name: "to", arg: "Bob"}, isCmd: true},
		{line: "/to a b", want: command{name: "to", arg: "a b"}, isCmd: true},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := parseCommand(tt.line)
			require.Equal(t, tt.isCmd, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func joinedTerminal(t *testing.T) (*terminal, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	term := newTerminal(&out, false)
	term.Handle(chat.Event{
		Type: chat.EventRegistered,
		Self: &chat.Session{ID: "s1", DisplayName: "Alice"},
		Roster: []chat.Session{
			{ID: "s1", DisplayName: "Alice"},
			{ID: "s2", DisplayName: "Bob"},
		},
	})
	return term, &out
}

func TestTerminal_TracksRoster(t *testing.T) {
	req := require.New(t)
	term, out := joinedTerminal(t)
	req.Contains(out.String(), "Joined as Alice (s1), 2 online")

	term.Handle(chat.Event{Type: chat.EventPeerJoined, Peer: &chat.Session{ID: "s3", DisplayName: "Carol"}})
	term.Handle(chat.Event{Type: chat.EventPeerLeft, Peer: &chat.Session{ID: "s2", DisplayName: "Bob"}})

	out.Reset()
	term.RenderRoster()
	req.Contains(out.String(), "Carol")
	req.Contains(out.String(), "Alice")
	req.NotContains(out.String(), "Bob")
}

func TestTerminal_SetTarget(t *testing.T) {
	req := require.New(t)
	term, _ := joinedTerminal(t)

	req.NoError(term.SetTarget("bob"))
	req.Equal("s2", term.Target())

	req.NoError(term.SetTarget("s1"))
	req.Equal("s1", term.Target())

	req.Error(term.SetTarget("nobody"))
	req.Equal("s1", term.Target())

	req.NoError(term.SetTarget(""))
	req.Equal(chat.Broadcast, term.Target())

	term.Handle(chat.Event{Type: chat.EventPeerJoined, Peer: &chat.Session{ID: "s3", DisplayName: "Bob"}})
	req.ErrorContains(term.SetTarget("Bob"), "2 people")
}

func TestTerminal_TargetResetsWhenPeerLeaves(t *testing.T) {
	term, _ := joinedTerminal(t)
	require.NoError(t, term.SetTarget("s2"))

	term.Handle(chat.Event{Type: chat.EventPeerLeft, Peer: &chat.Session{ID: "s2", DisplayName: "Bob"}})
	require.Equal(t, chat.Broadcast, term.Target())
}

func TestTerminal_PrintsMessages(t *testing.T) {
	req := require.New(t)
	term, out := joinedTerminal(t)
	out.Reset()

	term.Handle(chat.Event{Type: chat.EventMessageReceived, Message: &chat.Envelope{
		From: chat.Session{ID: "s2", DisplayName: "Bob"}, To: "s1", Text: "psst",
	}})
	term.Handle(chat.Event{Type: chat.EventDeliveryConfirmed, Message: &chat.Envelope{
		From: chat.Session{ID: "s1", DisplayName: "Alice"}, To: "s2", Text: "hey",
	}})
	term.Handle(chat.Event{Type: chat.EventMessageRejected, Rejection: &chat.Rejection{Reason: "unknown-target"}})

	req.Contains(out.String(), "Bob (direct): psst")
	req.Contains(out.String(), "you -> Bob: hey")
	req.Contains(out.String(), "not delivered: unknown-target")
}
