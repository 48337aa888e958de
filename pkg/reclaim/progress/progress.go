// Package progress provides thread-safe progress tracking for long
// filesystem passes: lock-free counters for items processed, a bounded
// time-windowed throughput history, and an ETA estimate derived from it.
package progress

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	// sampleWindow bounds how far back throughput samples are kept.
	sampleWindow = 10 * time.Second

	// sampleEvery is how many processed items between throughput samples.
	sampleEvery = 100
)

// Snapshot is a point-in-time view of tracker state.
type Snapshot struct {
	// Processed is the number of items completed so far.
	Processed int64

	// Total is the number of items expected, or 0 while unknown.
	Total int64

	// Rate is the rolling throughput in items per second, or 0 when
	// there is not yet enough history to estimate.
	Rate float64

	// Remaining is the estimated time until completion. Zero when the
	// total or rate is unknown.
	Remaining time.Duration
}

// sample is one (time, count) observation.
type sample struct {
	at    time.Time
	count int64
}

// Tracker accumulates progress from concurrent workers. Increment is an
// atomic add plus, every sampleEvery items, one short mutex hold to
// record a throughput sample. Readers never block writers.
type Tracker struct {
	processed atomic.Int64
	total     atomic.Int64

	mu      sync.Mutex
	samples []sample

	// now is the time source; replaceable in tests.
	now func() time.Time
}

// NewTracker creates a tracker. Total may be set later via SetTotal
// once the eventual item count is known.
func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// SetTotal records the eventually-known total item count.
func (t *Tracker) SetTotal(n int64) {
	t.total.Store(n)
}

// Increment records one completed item.
func (t *Tracker) Increment() {
	t.Add(1)
}

// Add records n completed items.
func (t *Tracker) Add(n int64) {
	count := t.processed.Add(n)
	if count%sampleEvery != 0 && n == 1 {
		return
	}
	t.recordSample(count)
}

// recordSample appends a throughput observation and evicts samples
// older than the window.
func (t *Tracker) recordSample(count int64) {
	now := t.now()
	cutoff := now.Add(-sampleWindow)

	t.mu.Lock()
	defer t.mu.Unlock()

	t.samples = append(t.samples, sample{at: now, count: count})

	evict := 0
	for evict < len(t.samples) && t.samples[evict].at.Before(cutoff) {
		evict++
	}
	if evict > 0 {
		t.samples = t.samples[evict:]
	}
}

// Processed returns the number of items completed so far.
func (t *Tracker) Processed() int64 {
	return t.processed.Load()
}

// Rate returns the rolling throughput in items per second over the
// sample window. Returns 0 until at least two samples exist.
func (t *Tracker) Rate() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.samples) < 2 {
		return 0
	}

	first := t.samples[0]
	last := t.samples[len(t.samples)-1]
	elapsed := last.at.Sub(first.at).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(last.count-first.count) / elapsed
}

// Snapshot returns a consistent view of current progress.
func (t *Tracker) Snapshot() Snapshot {
	s := Snapshot{
		Processed: t.processed.Load(),
		Total:     t.total.Load(),
		Rate:      t.Rate(),
	}
	if s.Total > s.Processed && s.Rate > 0 {
		s.Remaining = time.Duration(float64(s.Total-s.Processed) / s.Rate * float64(time.Second))
	}
	return s
}
