// Package ratelimit implements a fixed-window request limiter keyed by
// an arbitrary string identifier (an email address, an IP, ...). Each
// Limiter instance guards one throttled resource and owns its own
// in-memory state; restarting the process resets all counters.
package ratelimit

import (
	"sync"
	"time"
)

const defaultSweepInterval = 5 * time.Minute

type Limiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string][]time.Time

	now           func() time.Time
	sweepInterval time.Duration
	stopC         chan struct{}
	stopOnce      sync.Once
}

type Option func(*Limiter)

// WithNow replaces the wall clock, for deterministic tests.
func WithNow(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func WithSweepInterval(d time.Duration) Option {
	return func(l *Limiter) { l.sweepInterval = d }
}

// New returns a limiter admitting at most max requests per identifier
// within any trailing window. A background sweep drops identifiers
// that have gone quiet; call Stop to release it.
func New(window time.Duration, max int, opts ...Option) *Limiter {
	l := &Limiter{
		window:        window,
		max:           max,
		entries:       make(map[string][]time.Time),
		now:           time.Now,
		sweepInterval: defaultSweepInterval,
		stopC:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	go l.sweepLoop()

	return l
}

// Allow reports whether the identifier may perform another action now,
// and records the action if so. Denied attempts are not recorded, so
// they never count against future windows.
func (l *Limiter) Allow(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	ts := l.entries[id]

	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	ts = kept
	if len(ts) >= l.max {
		l.entries[id] = ts
		return false
	}

	ts = append(ts, now)
	l.entries[id] = ts
	return true
}

// Remaining returns how many actions the identifier has left in the
// current window. Pure read: nothing is recorded or purged.
func (l *Limiter) Remaining(id string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	active := 0
	for _, t := range l.entries[id] {
		if t.After(cutoff) {
			active++
		}
	}
	if active >= l.max {
		return 0
	}
	return l.max - active
}

// RetryAfter returns how long until the identifier's oldest recorded
// action falls out of the window, or 0 if nothing is recorded. This is
// an approximation of when capacity frees up: it does not account for
// several actions expiring in sequence after the oldest.
func (l *Limiter) RetryAfter(id string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.entries[id]
	if len(ts) == 0 {
		return 0
	}

	// Entries are append-only between purges, so the slice stays ordered.
	wait := ts[0].Sub(l.now().Add(-l.window))
	if wait < 0 {
		return 0
	}
	return wait
}

// Stop cancels the background sweep. Idempotent.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stopC) })
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.stopC:
			return
		}
	}
}

// sweep drops expired timestamps everywhere and deletes identifiers
// whose active set is empty, bounding memory from callers that have
// gone away.
func (l *Limiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for id, ts := range l.entries {
		kept := ts[:0]
		for _, t := range ts {
			if t.After(cutoff) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(l.entries, id)
			continue
		}
		l.entries[id] = kept
	}
}
