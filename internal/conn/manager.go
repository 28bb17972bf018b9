package conn

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/large-farva/tickscope/internal/codec"
)

const (
	DefaultRetryDelay        = 1000 * time.Millisecond
	DefaultHeartbeatInterval = 10000 * time.Millisecond
)

// Handler receives what the Manager decides to hand upward. All methods are
// called on the goroutine that calls Manager.Handle.
type Handler interface {
	// Resync is called on every entry to Open. The handler should resend
	// whatever configuration the server needs.
	Resync()
	// Dispatch delivers one message received while Open.
	Dispatch(text string)
	// StatusChanged reports every state change.
	StatusChanged(Status)
}

// Options configures a Manager.
type Options struct {
	URL     string
	Dialer  Dialer
	Clock   clockwork.Clock
	Logger  *log.Logger
	Handler Handler

	RetryDelay        time.Duration // fixed backoff; default 1s
	HeartbeatInterval time.Duration // ping period while open; default 10s
	// PongTimeout forces a reconnect when a ping goes unanswered for this
	// long. Zero disables it and liveness then relies on the transport's own
	// close and error signals.
	PongTimeout time.Duration
}

// Event is an occurrence posted to the Manager's inbox by a dialer, a
// transport reader, or a timer. Pass it back to Handle on the loop
// goroutine.
type Event struct {
	Input Input
	seq   uint64
	conn  Conn
	text  string
	err   error
}

// Manager owns the connection state machine. Handle, Connect, Send,
// NotePong and Shutdown must all be called from one goroutine (the event
// loop); dial, read and timer goroutines only post to the inbox.
type Manager struct {
	opts  Options
	log   *log.Logger
	inbox chan Event

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once

	state State
	conn  Conn
	gen   uint64 // transport generation; events from older ones are stale

	retry     clockwork.Timer
	retrySeq  uint64
	heartbeat clockwork.Timer
	hbSeq     uint64
	pong      clockwork.Timer
	pongSeq   uint64

	queue    []Event
	handling bool
}

// NewManager creates a Manager in the Idle state. Call Connect to start.
func NewManager(opts Options) *Manager {
	if opts.Dialer == nil {
		opts.Dialer = WSDialer{}
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	if opts.HeartbeatInterval <= 0 {
		opts.HeartbeatInterval = DefaultHeartbeatInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		opts:   opts,
		log:    logger,
		inbox:  make(chan Event, 256),
		ctx:    ctx,
		cancel: cancel,
		state:  Idle,
	}
}

// Events is the inbox the event loop must drain into Handle.
func (m *Manager) Events() <-chan Event { return m.inbox }

// State returns the current lifecycle state.
func (m *Manager) State() State { return m.state }

// Connect starts connecting. It is a no-op while connecting or connected;
// while waiting to retry it cancels the pending timer and dials at once.
func (m *Manager) Connect() {
	m.Handle(Event{Input: InputConnect})
}

// Shutdown stops every timer, closes the transport and returns to Idle.
// The Manager cannot be reused afterwards.
func (m *Manager) Shutdown() {
	m.Handle(Event{Input: InputShutdown})
	m.gen++
	m.stopOnce.Do(m.cancel)
}

// Send writes text to the transport. It reports false without error when
// the connection is not open; the message is simply not sent. A write
// failure is treated as a transport error.
func (m *Manager) Send(text string) bool {
	if m.state != Open || m.conn == nil {
		return false
	}
	if err := m.conn.WriteMessage(text); err != nil {
		m.log.Printf("write failed: %v", err)
		m.Handle(Event{Input: InputError, seq: m.gen, err: err})
		return false
	}
	return true
}

// NotePong records that the server answered a ping, clearing the pong
// deadline if one is armed.
func (m *Manager) NotePong() {
	if m.pong != nil {
		m.pong.Stop()
		m.pong = nil
		m.pongSeq++
	}
}

// Handle feeds one event through the state machine and performs the
// resulting effects. Events synthesized while handling (an active close
// producing a closed signal) are processed before Handle returns.
func (m *Manager) Handle(ev Event) {
	m.queue = append(m.queue, ev)
	if m.handling {
		return
	}
	m.handling = true
	defer func() { m.handling = false }()

	for len(m.queue) > 0 {
		next := m.queue[0]
		m.queue = m.queue[1:]
		m.apply(next)
	}
}

func (m *Manager) apply(ev Event) {
	if !m.current(ev) {
		if ev.Input == InputOpened && ev.conn != nil {
			_ = ev.conn.Close()
		}
		return
	}

	switch ev.Input {
	case InputRetryElapsed:
		m.retry = nil
	case InputHeartbeat:
		m.heartbeat = nil
	case InputPongTimeout:
		m.pong = nil
		m.log.Printf("no pong within %s", m.opts.PongTimeout)
	case InputError:
		if ev.err != nil {
			m.log.Printf("transport error: %v", ev.err)
		}
	}

	prev := m.state
	next, effects := Transition(prev, ev.Input)

	if ev.Input == InputOpened {
		if next == Open {
			m.conn = ev.conn
		} else if ev.conn != nil {
			_ = ev.conn.Close()
		}
	}

	m.state = next
	if next != prev {
		m.log.Printf("connection %s -> %s (%s)", prev, next, ev.Input)
		if m.opts.Handler != nil {
			m.opts.Handler.StatusChanged(StatusOf(next))
		}
	}

	for _, e := range effects {
		m.perform(e, ev)
	}

	if ev.Input == InputHeartbeat && m.state == Open && m.heartbeat == nil {
		m.armHeartbeat()
	}
}

// current reports whether ev still refers to the live transport or timer.
func (m *Manager) current(ev Event) bool {
	switch ev.Input {
	case InputOpened, InputMessage, InputError, InputClosed:
		return ev.seq == m.gen
	case InputRetryElapsed:
		return m.retry != nil && ev.seq == m.retrySeq
	case InputHeartbeat:
		return m.heartbeat != nil && ev.seq == m.hbSeq
	case InputPongTimeout:
		return m.pong != nil && ev.seq == m.pongSeq
	default:
		return true
	}
}

func (m *Manager) perform(e Effect, ev Event) {
	switch e {
	case EffectDial:
		m.gen++
		gen := m.gen
		m.log.Printf("dialing %s", m.opts.URL)
		go m.dial(gen)

	case EffectCloseTransport:
		if m.conn != nil {
			_ = m.conn.Close()
			m.conn = nil
		}
		m.queue = append(m.queue, Event{Input: InputClosed, seq: m.gen})

	case EffectReleaseTransport:
		if m.conn != nil {
			_ = m.conn.Close()
			m.conn = nil
		}

	case EffectScheduleRetry:
		if m.retry != nil {
			return
		}
		m.retrySeq++
		seq := m.retrySeq
		m.retry = m.opts.Clock.AfterFunc(m.opts.RetryDelay, func() {
			m.post(Event{Input: InputRetryElapsed, seq: seq})
		})

	case EffectCancelRetry:
		if m.retry != nil {
			m.retry.Stop()
			m.retry = nil
			m.retrySeq++
		}

	case EffectStartHeartbeat:
		m.armHeartbeat()

	case EffectStopHeartbeat:
		if m.heartbeat != nil {
			m.heartbeat.Stop()
			m.heartbeat = nil
			m.hbSeq++
		}
		m.NotePong()

	case EffectSendPing:
		text, err := codec.Encode(codec.Ping{})
		if err != nil {
			m.log.Printf("encode ping: %v", err)
			return
		}
		if m.Send(text) && m.opts.PongTimeout > 0 && m.pong == nil {
			m.pongSeq++
			seq := m.pongSeq
			m.pong = m.opts.Clock.AfterFunc(m.opts.PongTimeout, func() {
				m.post(Event{Input: InputPongTimeout, seq: seq})
			})
		}

	case EffectResync:
		if m.opts.Handler != nil {
			m.opts.Handler.Resync()
		}

	case EffectDispatch:
		if m.opts.Handler != nil {
			m.opts.Handler.Dispatch(ev.text)
		}
	}
}

func (m *Manager) armHeartbeat() {
	m.hbSeq++
	seq := m.hbSeq
	m.heartbeat = m.opts.Clock.AfterFunc(m.opts.HeartbeatInterval, func() {
		m.post(Event{Input: InputHeartbeat, seq: seq})
	})
}

// dial opens a transport for generation gen and then pumps its messages
// into the inbox until it fails.
func (m *Manager) dial(gen uint64) {
	c, err := m.opts.Dialer.Dial(m.ctx, m.opts.URL)
	if err != nil {
		m.post(Event{Input: InputError, seq: gen, err: err})
		return
	}
	if !m.post(Event{Input: InputOpened, seq: gen, conn: c}) {
		_ = c.Close()
		return
	}

	for {
		text, err := c.ReadMessage()
		if err != nil {
			if errors.Is(err, ErrClosed) {
				m.post(Event{Input: InputClosed, seq: gen, err: err})
			} else {
				m.post(Event{Input: InputError, seq: gen, err: err})
			}
			return
		}
		if !m.post(Event{Input: InputMessage, seq: gen, text: text}) {
			return
		}
	}
}

// post delivers ev to the inbox unless the Manager has been shut down.
func (m *Manager) post(ev Event) bool {
	select {
	case m.inbox <- ev:
		return true
	case <-m.ctx.Done():
		return false
	}
}
