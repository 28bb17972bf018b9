package conn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveURL(t *testing.T) {
	cases := map[string]string{
		"http://127.0.0.1:8000":       "ws://127.0.0.1:8000/ws",
		"http://127.0.0.1:8000/":      "ws://127.0.0.1:8000/ws",
		"https://example.com":         "wss://example.com/ws",
		"ws://example.com/stream":     "ws://example.com/stream",
		"wss://example.com:9443/ws?x": "wss://example.com:9443/ws",
	}
	for in, want := range cases {
		got, err := ResolveURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestResolveURL_Rejects(t *testing.T) {
	for _, in := range []string{"ftp://example.com", "example.com", "http://"} {
		_, err := ResolveURL(in)
		assert.Error(t, err, in)
	}
}
