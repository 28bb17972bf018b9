// Package stream ties the connection manager, the sliding window, and the
// wire codec together into the viewer's single event loop. UIs talk to a
// Controller; the Controller talks to the server.
package stream

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/large-farva/tickscope/internal/codec"
	"github.com/large-farva/tickscope/internal/conn"
	"github.com/large-farva/tickscope/internal/window"
)

// View is the presentation side of the viewer. Every method is called on the
// controller's loop goroutine and must not block.
type View interface {
	// Render receives the full current window after every tick.
	Render(series string, points []window.Sample)
	// Status receives every connection state change.
	Status(conn.Status)
	// Notice receives non-fatal problems worth showing to the user.
	Notice(msg string)
}

// PendingConfig is the configuration the viewer wants the server to use. It
// is resent in full whenever the connection opens. Zero values mean unset.
type PendingConfig struct {
	IntervalMs int
	SeriesName string
}

// Options configures a Controller.
type Options struct {
	URL    string
	Dialer conn.Dialer
	Clock  clockwork.Clock
	Logger *log.Logger
	View   View

	DefaultSeries string // window name at start and for ticks without a series
	IntervalMs    int    // initial pending interval
	Capacity      int    // window capacity

	RetryDelay        time.Duration
	HeartbeatInterval time.Duration
	PongTimeout       time.Duration
}

// Controller is the viewer core. Run owns all mutable state; the exported
// command methods validate on the caller's goroutine and hand the change to
// the loop.
type Controller struct {
	opts Options
	log  *log.Logger
	view View
	mgr  *conn.Manager

	win     *window.Window
	pending PendingConfig

	calls chan func()
	done  chan struct{}
}

// New creates a Controller. Nothing happens until Run is called. The
// initial series and interval pass the same checks as SetSeriesName and
// SetIntervalMs; a value that fails them is replaced by the built-in default.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if opts.DefaultSeries == "" {
		opts.DefaultSeries = codec.DefaultSeries
	} else if name, err := NormalizeSeriesName(opts.DefaultSeries); err != nil {
		logger.Printf("default series: %v; using %q", err, codec.DefaultSeries)
		opts.DefaultSeries = codec.DefaultSeries
	} else {
		opts.DefaultSeries = name
	}
	if opts.IntervalMs == 0 {
		opts.IntervalMs = codec.DefaultIntervalMs
	} else if err := ValidateIntervalMs(opts.IntervalMs); err != nil {
		logger.Printf("initial interval: %v; using %d", err, codec.DefaultIntervalMs)
		opts.IntervalMs = codec.DefaultIntervalMs
	}
	if opts.Capacity <= 0 {
		opts.Capacity = window.DefaultCapacity
	}
	view := opts.View
	if view == nil {
		view = nopView{}
	}

	c := &Controller{
		opts: opts,
		log:  logger,
		view: view,
		pending: PendingConfig{
			IntervalMs: opts.IntervalMs,
			SeriesName: opts.DefaultSeries,
		},
		calls: make(chan func(), 16),
		done:  make(chan struct{}),
	}
	c.mgr = conn.NewManager(conn.Options{
		URL:               opts.URL,
		Dialer:            opts.Dialer,
		Clock:             opts.Clock,
		Logger:            logger,
		Handler:           handler{c},
		RetryDelay:        opts.RetryDelay,
		HeartbeatInterval: opts.HeartbeatInterval,
		PongTimeout:       opts.PongTimeout,
	})
	return c
}

// Run starts the connection and processes events until ctx is cancelled.
// It returns nil on cancellation.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	c.start()

	for {
		select {
		case <-ctx.Done():
			c.mgr.Shutdown()
			return nil
		case ev := <-c.mgr.Events():
			c.mgr.Handle(ev)
		case fn := <-c.calls:
			fn()
		}
	}
}

func (c *Controller) start() {
	c.win = window.New(c.opts.DefaultSeries, c.opts.Capacity)
	c.view.Status(conn.StatusOf(c.mgr.State()))
	c.mgr.Connect()
}

// SetIntervalMs asks the server to tick every ms milliseconds. Invalid
// values are rejected with a *ValidationError and change nothing. A valid
// value is sent at once when connected and otherwise on the next connect.
func (c *Controller) SetIntervalMs(ms int) error {
	if err := ValidateIntervalMs(ms); err != nil {
		return err
	}
	c.submit(func() { c.applyInterval(ms) })
	return nil
}

// SetSeriesName asks the server to stream another series. The name is
// trimmed; see NormalizeSeriesName for the accepted lengths.
func (c *Controller) SetSeriesName(name string) error {
	trimmed, err := NormalizeSeriesName(name)
	if err != nil {
		return err
	}
	c.submit(func() { c.applySeries(trimmed) })
	return nil
}

// Reconnect dials immediately if the connection is waiting to retry.
func (c *Controller) Reconnect() {
	c.submit(c.mgr.Connect)
}

// Pending returns the configuration that will be sent on the next connect.
// It must not be called from a View method.
func (c *Controller) Pending() PendingConfig {
	reply := make(chan PendingConfig, 1)
	c.submit(func() { reply <- c.pending })
	select {
	case p := <-reply:
		return p
	case <-c.done:
		return PendingConfig{}
	}
}

func (c *Controller) submit(fn func()) {
	select {
	case c.calls <- fn:
	case <-c.done:
	}
}

func (c *Controller) applyInterval(ms int) {
	c.pending.IntervalMs = ms
	if c.mgr.State() == conn.Open {
		c.send(codec.SetInterval{Ms: ms})
	}
}

func (c *Controller) applySeries(name string) {
	c.pending.SeriesName = name
	if c.mgr.State() == conn.Open {
		c.send(codec.SetSeries{Name: name})
	}
}

func (c *Controller) send(cmd codec.Command) {
	text, err := codec.Encode(cmd)
	if err != nil {
		c.log.Printf("encode %s: %v", cmd.CommandType(), err)
		return
	}
	c.mgr.Send(text)
}

// resync resends every pending field after a (re)connect so the server
// matches what the user asked for, even if earlier commands were lost.
func (c *Controller) resync() {
	if c.pending.IntervalMs != 0 {
		c.send(codec.SetInterval{Ms: c.pending.IntervalMs})
	}
	if c.pending.SeriesName != "" {
		c.send(codec.SetSeries{Name: c.pending.SeriesName})
	}
}

func (c *Controller) onMessage(text string) {
	ev, err := codec.Decode(text)
	if err != nil {
		c.log.Printf("dropping message: %v", err)
		return
	}

	switch e := ev.(type) {
	case codec.Tick:
		series := e.Series
		if series == "" {
			series = c.opts.DefaultSeries
		}
		points := c.win.Append(window.Sample{Timestamp: e.Timestamp, Value: e.Value}, series)
		c.view.Render(series, points)
	case codec.Error:
		c.log.Printf("server error: %s", e.Message)
		c.view.Notice("server error: " + e.Message)
	case codec.Pong:
		c.mgr.NotePong()
	case codec.Ack, codec.Unknown:
	}
}

// handler adapts the Controller to conn.Handler without exporting the
// callbacks.
type handler struct{ c *Controller }

func (h handler) Resync()                     { h.c.resync() }
func (h handler) Dispatch(text string)        { h.c.onMessage(text) }
func (h handler) StatusChanged(s conn.Status) { h.c.view.Status(s) }

type nopView struct{}

func (nopView) Render(string, []window.Sample) {}
func (nopView) Status(conn.Status)             {}
func (nopView) Notice(string)                  {}
