package chat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/gochat-presence/internal/chat"
)

func TestDecodeInbound(t *testing.T) {
	t.Run("message with loose fields", func(t *testing.T) {
		in, err := chat.DecodeInbound([]byte(`{"type":"message","to":"broadcast","text":12,"clientId":{"n":1}}`))
		require.NoError(t, err)
		require.Equal(t, chat.InboundMessage, in.Type)
		require.Equal(t, "12", chat.Coerce(in.Text))
		require.Equal(t, chat.Broadcast, chat.Coerce(in.To))
		require.JSONEq(t, `{"n":1}`, string(in.ClientID))
	})

	t.Run("register without name", func(t *testing.T) {
		in, err := chat.DecodeInbound([]byte(`{"type":"register"}`))
		require.NoError(t, err)
		require.Nil(t, in.Name)
	})

	for name, raw := range map[string]string{
		"not json":     `hello`,
		"missing type": `{"text":"hi"}`,
		"unknown type": `{"type":"join-room"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := chat.DecodeInbound([]byte(raw))
			require.ErrorIs(t, err, chat.ErrInvalidFrame)
		})
	}
}

func TestCoerceAndTruthy(t *testing.T) {
	require.Equal(t, "", chat.Coerce(nil))
	require.Equal(t, "true", chat.Coerce(true))
	require.Equal(t, "3.5", chat.Coerce(3.5))
	require.Equal(t, "7", chat.Coerce(float64(7)))
	require.Equal(t, `["a"]`, chat.Coerce([]any{"a"}))

	require.False(t, chat.Truthy(nil))
	require.False(t, chat.Truthy(""))
	require.False(t, chat.Truthy(float64(0)))
	require.True(t, chat.Truthy(true))
	require.True(t, chat.Truthy("x"))
	require.True(t, chat.Truthy(map[string]any{}))
}
