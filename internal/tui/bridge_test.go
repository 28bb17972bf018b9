package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/large-farva/tickscope/internal/conn"
	"github.com/large-farva/tickscope/internal/window"
)

func TestBridge_DropsUntilAttached(t *testing.T) {
	var b Bridge
	b.Notice("lost")

	var got []tea.Msg
	b.attach(func(m tea.Msg) { got = append(got, m) })

	pts := []window.Sample{{Timestamp: 1, Value: 2}}
	b.Render("cpu", pts)
	b.Status(conn.StatusOf(conn.Open))
	b.Notice("server error: x")

	assert.Equal(t, []tea.Msg{
		FrameMsg{Series: "cpu", Points: pts},
		StatusMsg(conn.StatusOf(conn.Open)),
		NoticeMsg("server error: x"),
	}, got)
}
