package ctl

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/large-farva/tickscope/internal/app"
	"github.com/large-farva/tickscope/internal/config"
	"github.com/large-farva/tickscope/internal/conn"
	"github.com/large-farva/tickscope/internal/window"
)

// syncBuffer lets the controller goroutine write while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureStdout(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	prev := stdout
	stdout = buf
	t.Cleanup(func() { stdout = prev })
	return buf
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/status", r.URL.Path)
		_ = json.NewEncoder(w).Encode(StatusResponse{
			Name: "tickscope", Version: "v1.2.3", UptimeSeconds: 3725, Sessions: 2, TicksSent: 99,
		})
	}))
	defer srv.Close()

	out := captureStdout(t)
	require.NoError(t, Status(srv.URL+"/", false))

	text := out.String()
	assert.Contains(t, text, "TICKSCOPE SERVER STATUS")
	assert.Contains(t, text, "v1.2.3")
	assert.Contains(t, text, "1h 2m 5s")
	assert.Contains(t, text, "99")
}

func TestStatusJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"tickscope","version":"dev","uptime_seconds":1,"sessions":0,"ticks_sent":0}`))
	}))
	defer srv.Close()

	out := captureStdout(t)
	require.NoError(t, Status(srv.URL, true))

	var got StatusResponse
	require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
	assert.Equal(t, "dev", got.Version)
}

func TestStatusHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	captureStdout(t)
	err := Status(srv.URL, false)
	assert.ErrorContains(t, err, "boom")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	}))
	defer srv.Close()

	out := captureStdout(t)
	require.NoError(t, Health(srv.URL, false))
	assert.Contains(t, out.String(), "HEALTHY")
}

func TestHealthReportsCounters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok\n")) })
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(StatusResponse{Name: "tickscope", Sessions: 3, TicksSent: 42})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	out := captureStdout(t)
	require.NoError(t, Health(srv.URL, true))

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
	assert.Equal(t, true, got["healthy"])
	assert.Equal(t, 3.0, got["sessions"])
	assert.Equal(t, 42.0, got["ticks_sent"])
}

func versionServer(t *testing.T, version string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/version", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"version": version, "go_version": "go1.26.0", "built_at": "2026-10-01T00:00:00Z",
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersionInfo(t *testing.T) {
	t.Run("matching builds", func(t *testing.T) {
		srv := versionServer(t, Version)
		out := captureStdout(t)
		require.NoError(t, VersionInfo(srv.URL+"/", false))

		text := out.String()
		assert.Contains(t, text, "TICKSCOPE VERSION")
		assert.Contains(t, text, "go1.26.0")
		assert.Contains(t, text, "2026-10-01T00:00:00Z")
		assert.NotContains(t, text, "differs")
	})

	t.Run("mismatch is flagged", func(t *testing.T) {
		srv := versionServer(t, "v9.9.9")
		out := captureStdout(t)
		require.NoError(t, VersionInfo(srv.URL, false))
		assert.Contains(t, out.String(), "v9.9.9")
		assert.Contains(t, out.String(), "differs from CLI")
	})

	t.Run("json", func(t *testing.T) {
		srv := versionServer(t, "v9.9.9")
		out := captureStdout(t)
		require.NoError(t, VersionInfo(srv.URL, true))

		var got struct {
			CLI    map[string]string `json:"cli"`
			Server serverVersion     `json:"server"`
			Match  bool              `json:"match"`
		}
		require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
		assert.Equal(t, Version, got.CLI["version"])
		assert.Equal(t, "v9.9.9", got.Server.Version)
		assert.False(t, got.Match)
	})

	t.Run("server unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		out := captureStdout(t)
		require.NoError(t, VersionInfo(url, true))

		var got map[string]any
		require.NoError(t, json.Unmarshal([]byte(out.String()), &got))
		assert.Contains(t, got, "server_error")
		assert.NotContains(t, got, "server")
	})
}

func TestConfigPrintsSections(t *testing.T) {
	out := captureStdout(t)
	require.NoError(t, Config(config.Default(), false))

	text := out.String()
	assert.Contains(t, text, "[viewer]")
	assert.Contains(t, text, "[server]")
	assert.Contains(t, text, "disabled")
	assert.Contains(t, text, "(discarded)")
}

func TestTextView(t *testing.T) {
	var buf bytes.Buffer
	v := newTextView(&buf, false)
	v.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.Local) }

	v.Status(conn.StatusOf(conn.Open))
	v.Render("random", []window.Sample{{Timestamp: 1, Value: 10}, {Timestamp: 2, Value: 50}})
	v.Notice("server error: invalid series name")
	v.Render("random", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "STATUS  connected")
	assert.Contains(t, lines[1], "random")
	assert.Contains(t, lines[1], "[==========          ]  50.00")
	assert.Contains(t, lines[1], "2 pts")
	assert.Contains(t, lines[2], "WARN")
}

func TestTextViewJSON(t *testing.T) {
	var buf bytes.Buffer
	v := newTextView(&buf, true)

	v.Status(conn.StatusOf(conn.WaitingToRetry))
	v.Render("cpu", []window.Sample{{Timestamp: 5, Value: 1.5}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.JSONEq(t, `{"type":"status","state":"WAITING_TO_RETRY","text":"disconnected, reconnecting"}`, lines[0])
	assert.JSONEq(t, `{"type":"tick","series":"cpu","timestamp":5,"value":1.5}`, lines[1])
}

func TestWatchRejectsBadOverrides(t *testing.T) {
	captureStdout(t)
	err := Watch(context.Background(), "http://127.0.0.1:1", WatchOptions{Viewer: config.Default().Viewer, IntervalMs: 5})
	assert.Error(t, err)

	err = Watch(context.Background(), "http://127.0.0.1:1", WatchOptions{Viewer: config.Default().Viewer, Series: strings.Repeat("x", 40)})
	assert.Error(t, err)
}

func TestWatchStreamsFromServer(t *testing.T) {
	cfg := config.Default()
	a := app.New(app.Options{Logger: log.New(io.Discard, "", 0), Cfg: cfg})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srvCtx, stopServer := context.WithCancel(context.Background())
	defer stopServer()
	go func() { _ = a.Serve(srvCtx, ln) }()
	baseURL := "http://" + ln.Addr().String()

	out := captureStdout(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, baseURL, WatchOptions{Viewer: cfg.Viewer, Series: "cpu", IntervalMs: 50})
	}()

	require.Eventually(t, func() bool {
		text := out.String()
		return strings.Contains(text, "connected") && strings.Contains(text, "cpu ")
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Watch did not return")
	}
	assert.Contains(t, out.String(), "disconnected")
}
