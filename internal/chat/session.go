package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// Broadcast is the reserved target meaning every registered session except the sender.
	Broadcast = "broadcast"

	DefaultDisplayName = "User"
	MaxDisplayNameLen  = 32
	MaxTextLen         = 4000
)

// Session is the public identity of one connected client.
type Session struct {
	ID          string `json:"sessionId"`
	DisplayName string `json:"displayName"`
}

// sanitizeName trims the raw name, falls back to DefaultDisplayName and caps it
// at MaxDisplayNameLen runes.
func sanitizeName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return DefaultDisplayName
	}
	return truncate(name, MaxDisplayNameLen)
}

func sanitizeText(raw string) string {
	return truncate(strings.TrimSpace(raw), MaxTextLen)
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// Coerce turns an arbitrary decoded JSON value into the string a client meant.
// Strings pass through, numbers and booleans are formatted, null becomes empty.
func Coerce(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return fmt.Sprintf("%v", t)
	case json.Number:
		return t.String()
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// Truthy reports whether a decoded JSON value counts as true.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	default:
		return true
	}
}
