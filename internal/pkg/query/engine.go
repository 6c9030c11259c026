package query

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/GiftScout/app/models"
	"github.com/ManuelReschke/GiftScout/internal/pkg/crawler"
	metrics "github.com/ManuelReschke/GiftScout/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/GiftScout/internal/pkg/resultstore"
)

// Refresher runs a full crawl.
type Refresher interface {
	Run(ctx context.Context, progress crawler.ProgressFunc) (crawler.Result, error)
}

// GiftQuerier reads the durable gift table.
type GiftQuerier interface {
	Count(ctx context.Context) (int64, error)
	FindQualifying(ctx context.Context, maxRate float64, maxLockDays int) ([]models.Gift, error)
}

// Status describes the data an engine answers from.
type Status struct {
	Gifts         int64     `json:"gifts"`
	LastCrawl     time.Time `json:"last_crawl"`
	RefreshWindow string    `json:"refresh_window"`
	Available     bool      `json:"available"`
}

// Engine answers threshold queries, crawling first when the data is stale.
type Engine struct {
	base    context.Context
	crawler Refresher
	gifts   GiftQuerier
	cache   resultstore.Store
	gate    *crawler.FreshnessGate
	now     func() time.Time

	// generation moves on whenever a crawl stores data; cached answers of
	// older generations are never read again.
	generation atomic.Uint64
	crawling   atomic.Int32
	background sync.WaitGroup
}

// NewEngine binds crawls to base, which should live as long as the process.
// A nil cache disables answer caching.
func NewEngine(base context.Context, c Refresher, gifts GiftQuerier, cache resultstore.Store, gate *crawler.FreshnessGate) *Engine {
	if cache == nil {
		cache = resultstore.Disabled{}
	}
	if gate == nil {
		gate = crawler.NewFreshnessGate(crawler.DefaultRefreshWindow)
	}
	return &Engine{
		base:    base,
		crawler: c,
		gifts:   gifts,
		cache:   cache,
		gate:    gate,
		now:     time.Now,
	}
}

// Answer returns the rendered answer for p. It never fails: problems end in
// UnavailableAnswer. Cancelling ctx does not stop a crawl in progress.
func (e *Engine) Answer(ctx context.Context, p Params, progress crawler.ProgressFunc) string {
	ctx = context.WithoutCancel(ctx)

	if answer, ok := e.cache.Get(ctx, e.cacheKey(p, e.generation.Load())); ok {
		metrics.AddQuery(metrics.QueryCached)
		return answer
	}

	if _, err := e.Refresh(progress); err != nil {
		log.Warnf("[Query] Refresh failed, answering from stored data: %v", err)
	}

	generation := e.generation.Load()
	gifts, ok := e.lookup(ctx, p)
	if !ok {
		metrics.AddQuery(metrics.QueryUnavailable)
		return UnavailableAnswer
	}

	answer := Render(Top(gifts, MaxResults))
	if len(gifts) == 0 {
		metrics.AddQuery(metrics.QueryEmpty)
	} else {
		metrics.AddQuery(metrics.QueryAnswered)
	}

	// an answer read while a crawl rewrites the table is served but not kept
	if e.crawling.Load() == 0 && e.generation.Load() == generation {
		e.cache.Put(ctx, e.cacheKey(p, generation), answer)
	}
	return answer
}

// Gifts returns the ranked top results for p from stored data. ok is false
// while no data is available. Stale data triggers a refresh in the
// background; the caller does not wait for it.
func (e *Engine) Gifts(ctx context.Context, p Params) ([]models.Gift, bool) {
	ctx = context.WithoutCancel(ctx)
	e.RefreshAsync()

	gifts, ok := e.lookup(ctx, p)
	if !ok {
		return nil, false
	}
	return Top(gifts, MaxResults), true
}

// RefreshAsync starts Refresh on its own goroutine.
func (e *Engine) RefreshAsync() {
	e.background.Add(1)
	go func() {
		defer e.background.Done()
		if _, err := e.Refresh(nil); err != nil {
			log.Warnf("[Query] Background refresh failed: %v", err)
		}
	}()
}

// Wait blocks until background refreshes have returned.
func (e *Engine) Wait() {
	e.background.Wait()
}

// Refresh crawls when the gate allows it and reports whether it did. A crawl
// that fails or stores nothing reopens the gate.
func (e *Engine) Refresh(progress crawler.ProgressFunc) (bool, error) {
	started := e.now()
	if !e.gate.TryAcquire(started) {
		return false, nil
	}

	e.crawling.Add(1)
	defer e.crawling.Add(-1)

	res, err := e.crawler.Run(e.base, progress)
	if res.Stored > 0 {
		e.generation.Add(1)
	}
	if err != nil || res.Stored == 0 {
		e.gate.Release(started)
	}
	return true, err
}

func (e *Engine) cacheKey(p Params, generation uint64) string {
	return fmt.Sprintf("v%d:%s", generation, resultstore.Key(p.MaxRate, p.MaxLockDays))
}

func (e *Engine) Status(ctx context.Context) Status {
	count, err := e.gifts.Count(ctx)
	return Status{
		Gifts:         count,
		LastCrawl:     e.gate.LastCrawl(),
		RefreshWindow: e.gate.Window().String(),
		Available:     err == nil && count > 0,
	}
}

func (e *Engine) lookup(ctx context.Context, p Params) ([]models.Gift, bool) {
	count, err := e.gifts.Count(ctx)
	if err != nil {
		log.Warnf("[Query] Store unavailable: %v", err)
		return nil, false
	}
	if count == 0 {
		return nil, false
	}

	gifts, err := e.gifts.FindQualifying(ctx, p.MaxRate, p.MaxLockDays)
	if err != nil {
		log.Errorf("[Query] Lookup rate<=%v days<%d failed: %v", p.MaxRate, p.MaxLockDays, err)
		return nil, false
	}
	return gifts, true
}
