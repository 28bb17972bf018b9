package ctl

import (
	"fmt"
	"io"
	"log"

	"github.com/jonboulle/clockwork"

	"github.com/large-farva/tickscope/internal/config"
	"github.com/large-farva/tickscope/internal/conn"
	"github.com/large-farva/tickscope/internal/stream"
)

// newController builds a stream controller for the server at host and
// returns it with the resolved WebSocket URL.
func newController(host string, v config.ViewerConfig, logger *log.Logger, view stream.View) (*stream.Controller, string, error) {
	url, err := conn.ResolveURL(host)
	if err != nil {
		return nil, "", fmt.Errorf("resolve %q: %w", host, err)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	ctrl := stream.New(stream.Options{
		URL:               url,
		Dialer:            conn.WSDialer{HandshakeTimeout: v.HandshakeTimeout()},
		Clock:             clockwork.NewRealClock(),
		Logger:            logger,
		View:              view,
		DefaultSeries:     v.Series,
		IntervalMs:        v.IntervalMs,
		Capacity:          v.WindowSize,
		RetryDelay:        v.RetryDelay(),
		HeartbeatInterval: v.HeartbeatInterval(),
		PongTimeout:       v.PongTimeout(),
	})
	return ctrl, url, nil
}
