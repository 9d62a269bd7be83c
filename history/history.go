package history

import (
	"sync"
	"time"
)

// Entry is one past cycle's composite result.
type Entry struct {
	Score      float64
	RecordedAt time.Time
}

// Trend is a thread-safe bounded append-only log of past composite
// scores, oldest evicted first. The zero value is not usable; construct
// with New.
type Trend struct {
	mu      sync.Mutex
	max     int
	entries []Entry
}

// New creates a Trend that keeps at most max entries. max must be
// positive.
func New(max int) *Trend {
	if max < 1 {
		max = 1
	}
	return &Trend{max: max, entries: make([]Entry, 0, max)}
}

// Append records a new entry, evicting the oldest when the bound is
// reached. Append is the only mutation; entries are never edited or
// removed out of order.
func (t *Trend) Append(e Entry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) >= t.max {
		t.entries = t.entries[1:]
	}
	t.entries = append(t.entries, e)
}

// Len returns the number of entries currently held.
func (t *Trend) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// MovingAverage returns the mean score of the newest k entries. The
// second return is false when the history is empty.
func (t *Trend) MovingAverage(k int) (float64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.entries) == 0 || k < 1 {
		return 0, false
	}
	start := len(t.entries) - k
	if start < 0 {
		start = 0
	}
	var sum float64
	for _, e := range t.entries[start:] {
		sum += e.Score
	}
	return sum / float64(len(t.entries)-start), true
}

// Snapshot returns a copy of the entries, oldest first.
func (t *Trend) Snapshot() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
