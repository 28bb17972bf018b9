package conn

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClosed marks a read error caused by the peer closing the connection
// cleanly, as opposed to a transport fault.
var ErrClosed = errors.New("connection closed")

// Conn is one established transport delivering whole text messages.
// ReadMessage is called from a single reader goroutine; WriteMessage from
// the manager's loop; Close from either.
type Conn interface {
	ReadMessage() (string, error)
	WriteMessage(text string) error
	Close() error
}

// Dialer opens a Conn to a URL.
type Dialer interface {
	Dial(ctx context.Context, url string) (Conn, error)
}

const (
	writeWait      = 2 * time.Second
	maxMessageSize = 64 * 1024
)

// WSDialer dials WebSocket connections with gorilla/websocket.
type WSDialer struct {
	HandshakeTimeout time.Duration
}

// Dial performs the WebSocket handshake.
func (d WSDialer) Dial(ctx context.Context, u string) (Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: d.HandshakeTimeout,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}
	if dialer.HandshakeTimeout <= 0 {
		dialer.HandshakeTimeout = 5 * time.Second
	}
	c, resp, err := dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (HTTP %s)", u, err, resp.Status)
		}
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	c.SetReadLimit(maxMessageSize)
	return &wsConn{c: c}, nil
}

type wsConn struct {
	c *websocket.Conn
}

func (w *wsConn) ReadMessage() (string, error) {
	for {
		typ, msg, err := w.c.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				return "", fmt.Errorf("%w: %v", ErrClosed, err)
			}
			return "", err
		}
		if typ == websocket.TextMessage {
			return string(msg), nil
		}
		// Binary frames are not part of the protocol.
	}
}

func (w *wsConn) WriteMessage(text string) error {
	_ = w.c.SetWriteDeadline(time.Now().Add(writeWait))
	return w.c.WriteMessage(websocket.TextMessage, []byte(text))
}

func (w *wsConn) Close() error {
	_ = w.c.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second),
	)
	return w.c.Close()
}

// ResolveURL turns a server base URL (http, https, ws, or wss) into the
// WebSocket endpoint URL. A base without a path gets "/ws".
func ResolveURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported scheme: %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("missing host in %q", base)
	}
	if u.Path == "" {
		u.Path = "/ws"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
