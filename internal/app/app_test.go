package app

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/large-farva/tickscope/internal/config"
)

func newTestServer(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	a := New(Options{
		Logger: log.New(io.Discard, "", 0),
		Cfg:    config.Default(),
	})
	ctx, cancel := context.WithCancel(context.Background())
	go a.wsHub.Run(ctx)
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return a, srv
}

func TestHealthz(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok\n", string(body))
}

func TestStatusCountsSessionsAndTicks(t *testing.T) {
	_, srv := newTestServer(t)

	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer c.Close()
	_, _, err = c.ReadMessage()
	require.NoError(t, err)

	var st Status
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.URL + "/api/status")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		st = Status{}
		if json.NewDecoder(resp.Body).Decode(&st) != nil {
			return false
		}
		return st.Sessions == 1 && st.TicksSent >= 1
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "tickscope", st.Name)
	assert.Equal(t, Version, st.Version)
	assert.GreaterOrEqual(t, st.UptimeSeconds, int64(0))
}

func TestVersion(t *testing.T) {
	_, srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/version")
	require.NoError(t, err)
	defer resp.Body.Close()

	var v map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Equal(t, Version, v["version"])
	assert.Contains(t, v, "go_version")
}

func TestRunStopsOnCancel(t *testing.T) {
	a := New(Options{
		Logger: log.New(io.Discard, "", 0),
		Cfg:    config.Default(),
		Bind:   "127.0.0.1:0",
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestServeWithoutLogger(t *testing.T) {
	a := New(Options{Cfg: config.Default()})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, http.ErrServerClosed)
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not return")
	}
}
