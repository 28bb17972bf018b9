// Package tui is the interactive terminal viewer: a live braille chart of
// the stream with inputs for the server's tick interval and series.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/large-farva/tickscope/internal/codec"
	"github.com/large-farva/tickscope/internal/conn"
	"github.com/large-farva/tickscope/internal/stream"
	"github.com/large-farva/tickscope/internal/window"
)

// Commander is the part of the stream controller the viewer drives.
type Commander interface {
	SetIntervalMs(ms int) error
	SetSeriesName(name string) error
	Reconnect()
}

// Options seeds the viewer.
type Options struct {
	URL        string
	IntervalMs int
	Series     string
	Capacity   int
}

type field int

const (
	fieldNone field = iota
	fieldInterval
	fieldSeries
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// rows used by everything except the chart body
	chromeHeight = 9
)

// App is the root bubbletea model.
type App struct {
	ctrl Commander
	url  string

	interval textinput.Model
	series   textinput.Model
	focus    field

	status   conn.Status
	name     string
	points   []window.Sample
	capacity int

	info     string
	inputErr string
	notice   string

	width  int
	height int
	help   help.Model
}

// NewApp returns the viewer model. ctrl receives every accepted edit.
func NewApp(ctrl Commander, opts Options) *App {
	if opts.Capacity <= 0 {
		opts.Capacity = window.DefaultCapacity
	}
	if opts.IntervalMs == 0 {
		opts.IntervalMs = codec.DefaultIntervalMs
	}
	if opts.Series == "" {
		opts.Series = codec.DefaultSeries
	}

	interval := textinput.New()
	interval.Prompt = ""
	interval.CharLimit = 5
	interval.Width = 6
	interval.Placeholder = strconv.Itoa(codec.DefaultIntervalMs)
	interval.SetValue(strconv.Itoa(opts.IntervalMs))

	series := textinput.New()
	series.Prompt = ""
	series.CharLimit = 64
	series.Width = codec.MaxSeriesNameLen
	series.Placeholder = codec.DefaultSeries
	series.SetValue(opts.Series)

	return &App{
		ctrl:     ctrl,
		url:      opts.URL,
		interval: interval,
		series:   series,
		status:   conn.StatusOf(conn.Idle),
		name:     opts.Series,
		capacity: opts.Capacity,
		width:    defaultWidth,
		height:   defaultHeight,
		help:     help.New(),
	}
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.help.Width = msg.Width
		return a, nil

	case FrameMsg:
		a.name = msg.Series
		a.points = msg.Points
		return a, nil

	case StatusMsg:
		a.status = conn.Status(msg)
		return a, nil

	case NoticeMsg:
		a.notice = string(msg)
		return a, nil

	case tea.KeyMsg:
		if a.focus != fieldNone {
			return a.updateEditing(msg)
		}
		return a.updateBrowsing(msg)
	}
	return a, nil
}

func (a *App) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, keys.Interval), key.Matches(msg, keys.Next):
		return a, a.setFocus(fieldInterval)
	case key.Matches(msg, keys.Series), key.Matches(msg, keys.Prev):
		return a, a.setFocus(fieldSeries)
	case key.Matches(msg, keys.Reconnect):
		a.ctrl.Reconnect()
		a.info = "reconnect requested"
	case key.Matches(msg, keys.Help):
		a.help.ShowAll = !a.help.ShowAll
	}
	return a, nil
}

func (a *App) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return a, tea.Quit
	case key.Matches(msg, keys.Cancel):
		return a, a.setFocus(fieldNone)
	case key.Matches(msg, keys.Next), key.Matches(msg, keys.Prev):
		if a.focus == fieldInterval {
			return a, a.setFocus(fieldSeries)
		}
		return a, a.setFocus(fieldInterval)
	case key.Matches(msg, keys.Apply):
		a.apply()
		return a, nil
	case msg.Type == tea.KeyCtrlR:
		a.ctrl.Reconnect()
		a.info = "reconnect requested"
		return a, nil
	}

	var cmd tea.Cmd
	if a.focus == fieldInterval {
		a.interval, cmd = a.interval.Update(msg)
	} else {
		a.series, cmd = a.series.Update(msg)
	}
	return a, cmd
}

func (a *App) setFocus(f field) tea.Cmd {
	a.focus = f
	a.interval.Blur()
	a.series.Blur()
	switch f {
	case fieldInterval:
		return a.interval.Focus()
	case fieldSeries:
		return a.series.Focus()
	}
	return nil
}

// apply validates the focused field and hands it to the controller.
// Rejected input leaves the pending configuration untouched.
func (a *App) apply() {
	a.info, a.inputErr, a.notice = "", "", ""

	switch a.focus {
	case fieldInterval:
		ms, err := stream.ParseIntervalMs(a.interval.Value())
		if err == nil {
			err = a.ctrl.SetIntervalMs(ms)
		}
		if err != nil {
			a.inputErr = describe(err)
			return
		}
		a.interval.SetValue(strconv.Itoa(ms))
		a.info = fmt.Sprintf("interval set to %d ms", ms)

	case fieldSeries:
		raw := a.series.Value()
		if err := a.ctrl.SetSeriesName(raw); err != nil {
			a.inputErr = describe(err)
			return
		}
		name := strings.TrimSpace(raw)
		a.series.SetValue(name)
		a.info = fmt.Sprintf("series set to %q", name)
	}
}

func describe(err error) string {
	var verr *stream.ValidationError
	if errors.As(err, &verr) {
		return verr.Field + " " + verr.Reason
	}
	return err.Error()
}

func (a *App) View() string {
	status := statusStyle(a.status.Color).Render("● " + a.status.Text)
	title := lipgloss.JoinHorizontal(lipgloss.Top,
		styleTitle.Render("tickscope"), " ", status, "  ", styleDim.Render(a.url))

	heading := styleLabel.Render("series ") + styleValue.Render(a.name) + "  " + summary(a.points, a.capacity)

	chartW := max(a.width-2, 10)
	chartH := max(a.height-chromeHeight, 3)
	chart := styleChart.Render(renderChart(a.points, chartW, chartH))

	form := lipgloss.JoinHorizontal(lipgloss.Top,
		a.fieldLabel(fieldInterval, "interval (ms) "), a.interval.View(), "   ",
		a.fieldLabel(fieldSeries, "series "), a.series.View())

	var feedback string
	switch {
	case a.inputErr != "":
		feedback = styleError.Render("invalid input: " + a.inputErr)
	case a.notice != "":
		feedback = styleNotice.Render(a.notice)
	default:
		feedback = styleDim.Render(a.info)
	}

	var helpView string
	if a.focus != fieldNone {
		helpView = a.help.View(editKeys{keys})
	} else {
		helpView = a.help.View(keys)
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, heading, chart, form, feedback, helpView)
}

func (a *App) fieldLabel(f field, label string) string {
	if a.focus == f {
		return styleValue.Render(label)
	}
	return styleLabel.Render(label)
}
