// Package ws serves the tick stream. Every WebSocket client gets its own
// Session with a private interval and series; the Hub keeps the registry,
// counts traffic, and closes everything on shutdown.
package ws

import (
	"context"
	"io"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/large-farva/tickscope/internal/codec"
	"github.com/large-farva/tickscope/internal/demo"
)

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 20 * time.Second
	maxMessageSize = 64 * 1024
)

// Options configures a Hub. Zero values fall back to the protocol defaults.
type Options struct {
	Logger     *log.Logger
	Source     *demo.Source
	IntervalMs int
	Series     string
}

// Hub manages WebSocket sessions. Register and unregister go through
// channels; counters are atomic so status handlers can read them freely.
type Hub struct {
	log        *log.Logger
	src        *demo.Source
	intervalMs int
	series     string

	sessions   map[*Session]struct{}
	register   chan *Session
	unregister chan *Session
	stopped    chan struct{}
	upgrader   websocket.Upgrader

	active atomic.Int64
	ticks  atomic.Uint64
}

// NewHub allocates a hub. Register is unbuffered so a session is only
// started once Run has taken ownership of it.
// Call Run in a goroutine to start the event loop.
func NewHub(opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	src := opts.Source
	if src == nil {
		src = demo.New()
	}
	interval := opts.IntervalMs
	if interval == 0 {
		interval = codec.DefaultIntervalMs
	}
	series := opts.Series
	if series == "" {
		series = codec.DefaultSeries
	}
	return &Hub{
		log:        logger,
		src:        src,
		intervalMs: interval,
		series:     series,
		sessions:   make(map[*Session]struct{}),
		register:   make(chan *Session),
		unregister: make(chan *Session, 16),
		stopped:    make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Run processes registrations and unregistrations in a single select loop.
// It closes all sessions when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			for s := range h.sessions {
				s.close()
			}
			return

		case s := <-h.register:
			h.sessions[s] = struct{}{}
			h.active.Store(int64(len(h.sessions)))
			h.log.Printf("session opened: %s (%d active)", s.remote, len(h.sessions))

		case s := <-h.unregister:
			if _, ok := h.sessions[s]; !ok {
				continue
			}
			delete(h.sessions, s)
			s.close()
			h.active.Store(int64(len(h.sessions)))
			h.log.Printf("session closed: %s (%d active)", s.remote, len(h.sessions))
		}
	}
}

// Handler returns an http.Handler that upgrades incoming requests to
// WebSocket connections and starts a session for each.
func (h *Hub) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade has already written an error response.
			h.log.Printf("websocket upgrade failed: %v", err)
			return
		}

		s := newSession(h, conn, r.RemoteAddr)
		select {
		case h.register <- s:
		case <-h.stopped:
			_ = conn.Close()
			return
		}

		go s.writePump()
		go s.readPump()
	})
}

// Sessions reports how many viewers are connected.
func (h *Hub) Sessions() int { return int(h.active.Load()) }

// TicksSent reports how many tick events have been written in total.
func (h *Hub) TicksSent() uint64 { return h.ticks.Load() }

func (h *Hub) drop(s *Session) {
	select {
	case h.unregister <- s:
	case <-h.stopped:
	}
}
