package tui

import (
	"github.com/large-farva/tickscope/internal/conn"
	"github.com/large-farva/tickscope/internal/window"
)

// FrameMsg carries the full window after a tick.
type FrameMsg struct {
	Series string
	Points []window.Sample
}

// StatusMsg reports a connection state change.
type StatusMsg conn.Status

// NoticeMsg carries a non-fatal problem, such as an error reported by the
// server.
type NoticeMsg string
