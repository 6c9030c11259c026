package crawler

import (
	"sync"
	"time"
)

const DefaultRefreshWindow = time.Hour

// FreshnessGate lets at most one crawl start per window.
type FreshnessGate struct {
	mu     sync.Mutex
	window time.Duration
	last   time.Time
	prev   time.Time
}

func NewFreshnessGate(window time.Duration) *FreshnessGate {
	if window <= 0 {
		window = DefaultRefreshWindow
	}
	return &FreshnessGate{window: window}
}

// TryAcquire reports whether the caller should crawl now. A true result
// records now as the last crawl time before the lock is released.
func (g *FreshnessGate) TryAcquire(now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.last.IsZero() && now.Sub(g.last) <= g.window {
		return false
	}
	g.prev = g.last
	g.last = now
	return true
}

// Release undoes the acquisition made at `at`, so the next caller crawls again.
// It is a no-op when another acquisition happened since.
func (g *FreshnessGate) Release(at time.Time) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.last.Equal(at) {
		g.last = g.prev
		g.prev = time.Time{}
	}
}

// LastCrawl returns the time of the last acquisition, zero if none.
func (g *FreshnessGate) LastCrawl() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

func (g *FreshnessGate) Window() time.Duration {
	return g.window
}
