package tracking

import (
	"sync"
	"time"
)

const (
	defaultWindow  = 2 * time.Second
	defaultHorizon = 10 * time.Second
	sweepThreshold = 50
)

// Deduper suppresses repeats of the same key inside a time window. Once the
// table grows past sweepThreshold, entries older than the horizon are evicted.
type Deduper struct {
	mu      sync.Mutex
	window  time.Duration
	horizon time.Duration
	seen    map[string]time.Time
	now     func() time.Time
}

func NewDeduper(window time.Duration) *Deduper {
	if window <= 0 {
		window = defaultWindow
	}
	horizon := defaultHorizon
	if horizon < window {
		horizon = window
	}
	return &Deduper{
		window:  window,
		horizon: horizon,
		seen:    make(map[string]time.Time),
		now:     time.Now,
	}
}

// Allow reports whether key may be sent now and records the send.
func (d *Deduper) Allow(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	now := d.now()
	if last, ok := d.seen[key]; ok && now.Sub(last) < d.window {
		return false
	}
	d.seen[key] = now
	if len(d.seen) > sweepThreshold {
		cutoff := now.Add(-d.horizon)
		for k, t := range d.seen {
			if t.Before(cutoff) {
				delete(d.seen, k)
			}
		}
	}
	return true
}

// Len is the number of tracked keys.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
