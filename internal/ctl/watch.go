package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/large-farva/tickscope/internal/codec"
	"github.com/large-farva/tickscope/internal/config"
	"github.com/large-farva/tickscope/internal/conn"
	"github.com/large-farva/tickscope/internal/stream"
	"github.com/large-farva/tickscope/internal/window"
)

// WatchOptions controls the watch command behavior.
type WatchOptions struct {
	Viewer config.ViewerConfig
	Logger *log.Logger
	JSON   bool // output one JSON document per line

	// Optional overrides applied before connecting. Zero values keep the
	// configured interval and series.
	IntervalMs int
	Series     string
}

// Watch streams ticks from the server to the terminal until ctx is
// cancelled, reconnecting whenever the connection drops.
func Watch(ctx context.Context, baseURL string, opts WatchOptions) error {
	v := opts.Viewer
	if opts.IntervalMs != 0 {
		if err := stream.ValidateIntervalMs(opts.IntervalMs); err != nil {
			return err
		}
		v.IntervalMs = opts.IntervalMs
	}
	if opts.Series != "" {
		name, err := stream.NormalizeSeriesName(opts.Series)
		if err != nil {
			return err
		}
		v.Series = name
	}

	view := newTextView(stdout, opts.JSON)
	ctrl, url, err := newController(baseURL, v, opts.Logger, view)
	if err != nil {
		return err
	}

	if !opts.JSON {
		fmt.Fprintln(stdout)
		fmt.Fprintf(stdout, "  %s %s\n", colorize(bold, "watching"), colorize(dim, url))
		fmt.Fprintf(stdout, "  %s %s, %d ms\n", colorize(dim, "series:"), v.Series, v.IntervalMs)
		fmt.Fprintln(stdout, rule(50))
		fmt.Fprintln(stdout)
	}

	err = ctrl.Run(ctx)

	if !opts.JSON {
		fmt.Fprintln(stdout)
		fmt.Fprintln(stdout, colorize(dim, "  disconnected"))
	}
	return err
}

// textView renders controller callbacks as lines of text.
type textView struct {
	mu   sync.Mutex
	w    io.Writer
	json bool
	now  func() time.Time
}

func newTextView(w io.Writer, jsonOut bool) *textView {
	return &textView{w: w, json: jsonOut, now: time.Now}
}

func (t *textView) Render(series string, points []window.Sample) {
	if len(points) == 0 {
		return
	}
	last := points[len(points)-1]

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.json {
		text, err := codec.EncodeEvent(codec.Tick{Series: series, Timestamp: last.Timestamp, Value: last.Value})
		if err == nil {
			fmt.Fprintln(t.w, text)
		}
		return
	}
	fmt.Fprintf(t.w, "  %s %s  [%s] %6.2f  %s\n",
		colorize(dim, last.Time().Local().Format("15:04:05.000")),
		colorize(cyan, padRight(series, 12)),
		valueBar(last.Value, 20),
		last.Value,
		colorize(dim, fmt.Sprintf("%d pts", len(points))),
	)
}

func (t *textView) Status(s conn.Status) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.json {
		b, err := json.Marshal(map[string]string{
			"type":  "status",
			"state": s.State.String(),
			"text":  s.Text,
		})
		if err == nil {
			fmt.Fprintln(t.w, string(b))
		}
		return
	}
	fmt.Fprintf(t.w, "  %s %s  %s\n",
		colorize(dim, t.now().Format("15:04:05.000")),
		colorize(bold, "STATUS"),
		colorize(statusColor(s.Color), s.Text),
	)
}

func (t *textView) Notice(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.json {
		b, err := json.Marshal(map[string]string{"type": "notice", "message": msg})
		if err == nil {
			fmt.Fprintln(t.w, string(b))
		}
		return
	}
	fmt.Fprintf(t.w, "  %s %s  %s\n",
		colorize(dim, t.now().Format("15:04:05.000")),
		colorize(yellow, "WARN  "),
		msg,
	)
}
