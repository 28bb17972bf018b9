// Package conntest provides in-memory transports for exercising the
// connection manager and stream controller without a network.
package conntest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/large-farva/tickscope/internal/conn"
)

// ErrConnClosed is returned by reads and writes on a closed Conn.
var ErrConnClosed = errors.New("conntest: use of closed connection")

// Conn is an in-memory conn.Conn. Tests push inbound traffic with Deliver,
// CloseRemote and Fail, and inspect outbound traffic with Sent.
type Conn struct {
	inbound chan string
	faults  chan error
	closed  chan struct{}

	mu        sync.Mutex
	sent      []string
	writeErr  error
	closeOnce sync.Once
}

// NewConn returns an open Conn.
func NewConn() *Conn {
	return &Conn{
		inbound: make(chan string, 64),
		faults:  make(chan error, 1),
		closed:  make(chan struct{}),
	}
}

// Deliver queues a text message for the reader.
func (c *Conn) Deliver(text string) { c.inbound <- text }

// CloseRemote makes the next read report a clean close by the peer.
func (c *Conn) CloseRemote() {
	c.faults <- fmt.Errorf("%w: peer went away", conn.ErrClosed)
}

// Fail makes the next read report a transport fault.
func (c *Conn) Fail(err error) { c.faults <- err }

// FailWrites makes every later WriteMessage return err.
func (c *Conn) FailWrites(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writeErr = err
}

// Sent returns a copy of every message written so far.
func (c *Conn) Sent() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.sent...)
}

// Closed reports whether Close has been called.
func (c *Conn) Closed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

func (c *Conn) ReadMessage() (string, error) {
	// Pending traffic wins over a local close so tests see deterministic
	// ordering.
	select {
	case text := <-c.inbound:
		return text, nil
	case err := <-c.faults:
		return "", err
	default:
	}
	select {
	case text := <-c.inbound:
		return text, nil
	case err := <-c.faults:
		return "", err
	case <-c.closed:
		return "", ErrConnClosed
	}
}

func (c *Conn) WriteMessage(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Closed() {
		return ErrConnClosed
	}
	if c.writeErr != nil {
		return c.writeErr
	}
	c.sent = append(c.sent, text)
	return nil
}

func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// Dialer hands out a fresh Conn per Dial, or fails while Refuse is set.
type Dialer struct {
	mu     sync.Mutex
	conns  []*Conn
	urls   []string
	refuse error
}

// Refuse makes subsequent dials fail with err; nil lets them succeed again.
func (d *Dialer) Refuse(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.refuse = err
}

func (d *Dialer) Dial(ctx context.Context, url string) (conn.Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.urls = append(d.urls, url)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.refuse != nil {
		return nil, d.refuse
	}
	c := NewConn()
	d.conns = append(d.conns, c)
	return c, nil
}

// Dials returns how many dial attempts were made.
func (d *Dialer) Dials() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.urls)
}

// Last returns the most recently established Conn, or nil.
func (d *Dialer) Last() *Conn {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}
