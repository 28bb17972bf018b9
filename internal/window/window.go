// Package window holds the bounded, most-recent-N view of the series being
// streamed to the viewer.
package window

import "time"

// DefaultCapacity is the number of samples kept when New is given a
// non-positive capacity.
const DefaultCapacity = 200

// Sample is one (timestamp, value) point. Timestamp is epoch milliseconds.
type Sample struct {
	Timestamp float64
	Value     float64
}

// Time converts the sample's timestamp to a time.Time.
func (s Sample) Time() time.Time {
	return time.UnixMilli(int64(s.Timestamp))
}

// Window is a fixed-capacity ring of samples for a single named series.
// Samples are kept in arrival order; once full, each append evicts the
// oldest sample. A Window is not safe for concurrent use.
type Window struct {
	name string
	buf  []Sample
	head int // index of the next write position
	size int // number of valid entries
}

// New creates an empty Window for the named series.
func New(name string, capacity int) *Window {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Window{
		name: name,
		buf:  make([]Sample, capacity),
	}
}

// Append adds s to the window and returns the resulting samples, oldest
// first. When series differs from the window's current name, every existing
// sample is discarded and the window restarts with s alone, so a returned
// slice never mixes two series.
//
// The returned slice is a copy; callers may keep it.
func (w *Window) Append(s Sample, series string) []Sample {
	if series != w.name {
		w.name = series
		w.buf = make([]Sample, len(w.buf))
		w.head = 0
		w.size = 0
	}

	w.buf[w.head] = s
	w.head = (w.head + 1) % len(w.buf)
	if w.size < len(w.buf) {
		w.size++
	}
	return w.Samples()
}

// Samples returns the current samples in arrival order.
func (w *Window) Samples() []Sample {
	out := make([]Sample, w.size)
	// oldest entry sits at (head - size + cap) % cap
	start := (w.head - w.size + len(w.buf)) % len(w.buf)
	for i := 0; i < w.size; i++ {
		out[i] = w.buf[(start+i)%len(w.buf)]
	}
	return out
}

// Name returns the series the window currently holds.
func (w *Window) Name() string { return w.name }

// Len returns the number of samples held.
func (w *Window) Len() int { return w.size }

// Capacity returns the fixed maximum number of samples.
func (w *Window) Capacity() int { return len(w.buf) }
