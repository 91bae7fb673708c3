package server

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOriginPolicy(t *testing.T) {
	policy := newOriginPolicy(discardLogger(), []string{"HTTP://LocalHost:8080", "not a url", " ", "https://chat.example"})

	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "http://localhost:8080", want: true},
		{origin: "http://LOCALHOST:8080", want: true},
		{origin: "https://chat.example", want: true},
		{origin: "http://chat.example", want: false},
		{origin: "http://localhost:9090", want: false},
		{origin: "", want: false},
		{origin: "garbage", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			require.Equal(t, tt.want, policy.checkOrigin(r))
		})
	}
}

func TestOriginPolicy_Wildcard(t *testing.T) {
	policy := newOriginPolicy(discardLogger(), []string{"*"})

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "https://anywhere.example")
	require.True(t, policy.allows(r))

	r.Header.Del("Origin")
	require.False(t, policy.allows(r))
}
