package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/large-farva/tickscope/internal/conn"
	"github.com/large-farva/tickscope/internal/window"
)

// Bridge forwards stream controller callbacks into a running tea.Program as
// messages. Callbacks that arrive before Attach are dropped.
type Bridge struct {
	mu   sync.RWMutex
	send func(tea.Msg)
}

// Attach routes later callbacks to p.
func (b *Bridge) Attach(p *tea.Program) {
	b.attach(p.Send)
}

func (b *Bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) forward(msg tea.Msg) {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()
	if send != nil {
		send(msg)
	}
}

func (b *Bridge) Render(series string, points []window.Sample) {
	b.forward(FrameMsg{Series: series, Points: points})
}

func (b *Bridge) Status(s conn.Status) { b.forward(StatusMsg(s)) }

func (b *Bridge) Notice(msg string) { b.forward(NoticeMsg(msg)) }
