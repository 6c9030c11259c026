package crawler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/GiftScout/internal/pkg/giftshop"
	metrics "github.com/ManuelReschke/GiftScout/internal/pkg/metrics/counter"
)

const (
	DefaultPageDelay       = 10 * time.Millisecond
	DefaultListingAttempts = 3
	DefaultListingBackoff  = 50 * time.Millisecond
	DefaultMaxPages        = 500
)

// PageLister loads one page of a category listing.
type PageLister interface {
	ListCategoryPage(ctx context.Context, categoryID string, page int) (giftshop.Page, error)
}

// Paginator walks a category listing and collects the ids worth a detail fetch.
type Paginator struct {
	lister PageLister

	MinEarningRate float64
	PageDelay      time.Duration
	MaxAttempts    int
	RetryDelay     time.Duration
	MaxPages       int
}

func NewPaginator(lister PageLister, minEarningRate float64) *Paginator {
	return &Paginator{
		lister:         lister,
		MinEarningRate: minEarningRate,
		PageDelay:      DefaultPageDelay,
		MaxAttempts:    DefaultListingAttempts,
		RetryDelay:     DefaultListingBackoff,
		MaxPages:       DefaultMaxPages,
	}
}

// CandidateIDs returns the ids of a category whose listing entry carries an
// earning policy at or above MinEarningRate, in listing order. A failed page
// restarts the listing from page 1. When every attempt fails the category
// yields no ids.
func (p *Paginator) CandidateIDs(ctx context.Context, categoryID string) []int64 {
	attempts := max(p.MaxAttempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		ids, err := p.collect(ctx, categoryID)
		if err == nil {
			return ids
		}

		metrics.AddListingFailure()
		log.Warnf("[Crawler] Listing category %s failed (try %d/%d): %v", categoryID, attempt, attempts, err)

		if attempt < attempts && !sleep(ctx, p.RetryDelay) {
			break
		}
	}

	log.Errorf("[Crawler] Giving up on category %s", categoryID)
	return nil
}

// collect walks the listing once with a fresh accumulator.
func (p *Paginator) collect(ctx context.Context, categoryID string) ([]int64, error) {
	ids := make([]int64, 0)
	seen := make(map[int64]struct{})
	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := p.lister.ListCategoryPage(ctx, categoryID, page)
		if err != nil {
			return nil, err
		}

		for _, item := range res.Items {
			if item.PointEarningPolicy == nil || item.PointEarningPolicy.EarningRate < p.MinEarningRate {
				continue
			}
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
			ids = append(ids, item.ID)
		}

		if res.Last {
			return ids, nil
		}
		if !sleep(ctx, p.PageDelay) {
			return nil, ctx.Err()
		}
	}

	log.Warnf("[Crawler] Category %s still not last after %d pages, keeping %d ids", categoryID, maxPages, len(ids))
	return ids, nil
}

// sleep waits for d or until ctx is done. It reports whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
