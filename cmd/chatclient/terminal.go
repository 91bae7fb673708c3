package main

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"

	"github.com/Tyrowin/gochat-presence/internal/chat"
)

// command is one parsed input line.
type command struct {
	name string
	arg  string
}

// parseCommand recognises "/name arg" lines. Anything else is message text.
func parseCommand(line string) (command, bool) {
	if !strings.HasPrefix(line, "/") {
		return command{}, false
	}
	name, arg, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
	return command{name: strings.ToLower(name), arg: strings.TrimSpace(arg)}, true
}

// terminal keeps the local view of the room and renders events to out.
type terminal struct {
	mu      sync.Mutex
	out     io.Writer
	colours bool
	self    chat.Session
	roster  map[string]chat.Session
	target  string
}

func newTerminal(out io.Writer, colours bool) *terminal {
	return &terminal{
		out:     out,
		colours: colours,
		roster:  make(map[string]chat.Session),
		target:  chat.Broadcast,
	}
}

func (t *terminal) paint(c color.Color, s string) string {
	if !t.colours {
		return s
	}
	return c.Render(s)
}

func (t *terminal) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, format+"\n", args...)
}

// Target returns the current recipient: a session id or chat.Broadcast.
func (t *terminal) Target() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.target
}

// SetTarget switches the recipient. The argument may be a session id or a
// display name of someone in the roster.
func (t *terminal) SetTarget(arg string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if arg == "" || arg == chat.Broadcast {
		t.target = chat.Broadcast
		return nil
	}
	if _, ok := t.roster[arg]; ok {
		t.target = arg
		return nil
	}
	matches := lo.Filter(lo.Values(t.roster), func(s chat.Session, _ int) bool {
		return strings.EqualFold(s.DisplayName, arg)
	})
	switch len(matches) {
	case 0:
		return fmt.Errorf("nobody called %q is here", arg)
	case 1:
		t.target = matches[0].ID
		return nil
	default:
		return fmt.Errorf("%d people are called %q, use the id from /who", len(matches), arg)
	}
}

func (t *terminal) nameOf(id string) string {
	if s, ok := t.roster[id]; ok {
		return s.DisplayName
	}
	return id
}

// Handle applies an event to the local roster and prints it.
func (t *terminal) Handle(evt chat.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch evt.Type {
	case chat.EventRegistered:
		t.self = *evt.Self
		clear(t.roster)
		for _, s := range evt.Roster {
			t.roster[s.ID] = s
		}
		t.printf("%s as %s (%s), %d online", t.paint(color.Green, "Joined"),
			t.self.DisplayName, t.self.ID, len(t.roster))

	case chat.EventPeerJoined:
		t.roster[evt.Peer.ID] = *evt.Peer
		t.printf("%s %s joined", t.paint(color.Gray, "*"), evt.Peer.DisplayName)

	case chat.EventPeerLeft:
		delete(t.roster, evt.Peer.ID)
		if t.target == evt.Peer.ID {
			t.target = chat.Broadcast
		}
		t.printf("%s %s left", t.paint(color.Gray, "*"), evt.Peer.DisplayName)

	case chat.EventMessageReceived:
		msg := evt.Message
		from := t.paint(color.Cyan, msg.From.DisplayName)
		if msg.To != chat.Broadcast {
			from += t.paint(color.Magenta, " (direct)")
		}
		t.printf("%s %s: %s", stamp(msg.At), from, msg.Text)

	case chat.EventDeliveryConfirmed:
		msg := evt.Message
		to := "everyone"
		if msg.To != chat.Broadcast {
			to = t.nameOf(msg.To)
		}
		t.printf("%s %s %s", stamp(msg.At), t.paint(color.Green, "you -> "+to+":"), msg.Text)

	case chat.EventMessageRejected:
		t.printf("%s message not delivered: %s", t.paint(color.Red, "!"), evt.Rejection.Reason)
	}
}

// ShowTyping prints a typing indicator change for peer.
func (t *terminal) ShowTyping(peer string, typing bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if typing {
		t.printf("%s", t.paint(color.Gray, t.nameOf(peer)+" is typing..."))
	}
}

// RenderRoster prints everyone online as a table.
func (t *terminal) RenderRoster() {
	t.mu.Lock()
	defer t.mu.Unlock()

	sessions := lo.Values(t.roster)
	slices.SortFunc(sessions, func(a, b chat.Session) int {
		return strings.Compare(a.DisplayName, b.DisplayName)
	})

	table := tablewriter.NewWriter(t.out)
	table.SetHeader([]string{"Name", "Session", ""})
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetColumnSeparator("")
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")

	for _, s := range sessions {
		var marks []string
		if s.ID == t.self.ID {
			marks = append(marks, "you")
		}
		if s.ID == t.target {
			marks = append(marks, "target")
		}
		table.Append([]string{s.DisplayName, s.ID, strings.Join(marks, ",")})
	}
	table.Render()
}

func (t *terminal) Help() {
	t.printf("Commands: /who  /to <name|id>  /all  /quit")
	t.printf("End a line with \\ to continue the message on the next line.")
}

func stamp(ms int64) string {
	return time.UnixMilli(ms).Format("15:04:05")
}
