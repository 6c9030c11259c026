package crawler

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFreshnessGate_Window(t *testing.T) {
	g := NewFreshnessGate(time.Hour)
	t0 := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, g.TryAcquire(t0))
	assert.False(t, g.TryAcquire(t0.Add(30*time.Minute)))
	assert.False(t, g.TryAcquire(t0.Add(time.Hour)))
	assert.True(t, g.TryAcquire(t0.Add(time.Hour+time.Second)))
	assert.Equal(t, t0.Add(time.Hour+time.Second), g.LastCrawl())
}

func TestFreshnessGate_Release(t *testing.T) {
	g := NewFreshnessGate(time.Hour)
	t0 := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(2 * time.Hour)

	assert.True(t, g.TryAcquire(t0))
	assert.True(t, g.TryAcquire(t1))

	g.Release(t1)
	assert.Equal(t, t0, g.LastCrawl())
	assert.True(t, g.TryAcquire(t1.Add(time.Minute)))

	// stale release does nothing
	g.Release(t1)
	assert.Equal(t, t1.Add(time.Minute), g.LastCrawl())
}

func TestFreshnessGate_SingleWinner(t *testing.T) {
	g := NewFreshnessGate(time.Hour)
	now := time.Now()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryAcquire(now) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestFreshnessGate_DefaultWindow(t *testing.T) {
	assert.Equal(t, time.Hour, NewFreshnessGate(0).Window())
	assert.True(t, NewFreshnessGate(time.Minute).LastCrawl().IsZero())
}
