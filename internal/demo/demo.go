// Package demo produces the synthetic samples tickscoped streams. There is no
// real sensor behind the server; every series is uniform noise so the viewer
// can be exercised end-to-end.
package demo

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"
)

// Source generates sample values. It is safe for concurrent use by every
// session.
type Source struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// New returns a Source seeded from the runtime's random source.
func New() *Source {
	return &Source{
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now: time.Now,
	}
}

// NewSeeded returns a deterministic Source reading time from now.
func NewSeeded(seed uint64, now func() time.Time) *Source {
	return &Source{
		rng: rand.New(rand.NewPCG(seed, seed)),
		now: now,
	}
}

// Value returns a uniform value in [0, 100) rounded to two decimals.
func (s *Source) Value() float64 {
	s.mu.Lock()
	f := s.rng.Float64()
	s.mu.Unlock()
	return round2(f * 100)
}

// Timestamp returns the current time in epoch milliseconds.
func (s *Source) Timestamp() float64 {
	return float64(s.now().UnixMilli())
}

func round2(f float64) float64 {
	v := math.Round(f*100) / 100
	// Rounding 99.995 and above would leave the half-open range.
	if v >= 100 {
		v = 99.99
	}
	return v
}
