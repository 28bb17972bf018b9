package ws

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/large-farva/tickscope/internal/codec"
)

// Reply texts sent to viewers.
const (
	msgInvalidJSON     = "invalid JSON"
	msgUnknownCommand  = "unknown command"
	msgInvalidInterval = "ms must be integer between 50 and 10000"
	msgInvalidSeries   = "invalid series name"
)

// Session is one connected viewer. readPump handles commands; writePump is
// the only goroutine that writes to the connection.
type Session struct {
	hub    *Hub
	conn   *websocket.Conn
	remote string

	send   chan []byte
	retune chan struct{}
	done   chan struct{}
	once   sync.Once

	intervalMs atomic.Int64
	series     atomic.Pointer[string]
}

func newSession(h *Hub, conn *websocket.Conn, remote string) *Session {
	s := &Session{
		hub:    h,
		conn:   conn,
		remote: remote,
		send:   make(chan []byte, 32),
		retune: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	s.intervalMs.Store(int64(h.intervalMs))
	series := h.series
	s.series.Store(&series)
	return s
}

// Interval is the current delay between ticks, never below the protocol
// minimum.
func (s *Session) Interval() time.Duration {
	ms := s.intervalMs.Load()
	if ms < codec.MinIntervalMs {
		ms = codec.MinIntervalMs
	}
	return time.Duration(ms) * time.Millisecond
}

// Series is the name stamped on outgoing ticks.
func (s *Session) Series() string { return *s.series.Load() }

func (s *Session) close() {
	s.once.Do(func() { close(s.done) })
}

// readPump handles incoming commands and acts as the connection watchdog.
func (s *Session) readPump() {
	defer func() {
		s.hub.drop(s)
		s.close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		kind, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.log.Printf("session %s read error: %v", s.remote, err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		s.handle(string(msg))
	}
}

// writePump sends the first tick at once and then one per interval,
// interleaved with command replies and keepalive pings.
func (s *Session) writePump() {
	tick := time.NewTimer(0)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		tick.Stop()
		ping.Stop()
		s.close()
		_ = s.conn.Close()
	}()

	for {
		select {
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return

		case msg := <-s.send:
			if !s.write(websocket.TextMessage, msg) {
				return
			}

		case <-tick.C:
			if !s.writeTick() {
				return
			}
			tick.Reset(s.Interval())

		case <-s.retune:
			tick.Reset(s.Interval())

		case <-ping.C:
			if !s.write(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (s *Session) writeTick() bool {
	text, err := codec.EncodeEvent(codec.Tick{
		Series:    s.Series(),
		Timestamp: s.hub.src.Timestamp(),
		Value:     s.hub.src.Value(),
	})
	if err != nil {
		s.hub.log.Printf("encode tick: %v", err)
		return true
	}
	if !s.write(websocket.TextMessage, []byte(text)) {
		return false
	}
	s.hub.ticks.Add(1)
	return true
}

func (s *Session) write(kind int, msg []byte) bool {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(kind, msg); err != nil {
		s.hub.log.Printf("session %s write error: %v", s.remote, err)
		return false
	}
	return true
}

// handle applies one command and queues the reply.
func (s *Session) handle(text string) {
	cmd, err := codec.DecodeCommand(text)
	if err != nil {
		s.reply(codec.Error{Message: rejectReason(err)})
		return
	}

	switch c := cmd.(type) {
	case codec.SetInterval:
		if c.Ms < codec.MinIntervalMs || c.Ms > codec.MaxIntervalMs {
			s.reply(codec.Error{Message: msgInvalidInterval})
			return
		}
		s.intervalMs.Store(int64(c.Ms))
		select {
		case s.retune <- struct{}{}:
		default:
		}
		s.reply(codec.Ack{Fields: map[string]any{"action": string(codec.CommandSetInterval), "ms": c.Ms}})

	case codec.SetSeries:
		if n := utf8.RuneCountInString(c.Name); n < 1 || n > codec.MaxSeriesNameLen {
			s.reply(codec.Error{Message: msgInvalidSeries})
			return
		}
		name := c.Name
		s.series.Store(&name)
		s.reply(codec.Ack{Fields: map[string]any{"action": string(codec.CommandSetSeries), "name": c.Name}})

	case codec.Ping:
		s.reply(codec.Pong{T: int64(s.hub.src.Timestamp())})
	}
}

func rejectReason(err error) string {
	var (
		unknown *codec.UnknownCommandError
		field   *codec.FieldError
	)
	switch {
	case errors.Is(err, codec.ErrMissingType), errors.As(err, &unknown):
		return msgUnknownCommand
	case errors.As(err, &field):
		if field.Command == codec.CommandSetInterval {
			return msgInvalidInterval
		}
		return msgInvalidSeries
	default:
		return msgInvalidJSON
	}
}

func (s *Session) reply(ev codec.Event) {
	text, err := codec.EncodeEvent(ev)
	if err != nil {
		s.hub.log.Printf("encode %s: %v", ev.EventType(), err)
		return
	}
	select {
	case s.send <- []byte(text):
	case <-s.done:
	}
}
