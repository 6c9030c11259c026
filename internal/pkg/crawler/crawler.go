package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/ManuelReschke/GiftScout/app/models"
	"github.com/ManuelReschke/GiftScout/internal/pkg/giftshop"
	metrics "github.com/ManuelReschke/GiftScout/internal/pkg/metrics/counter"
)

const (
	DefaultCategoryAttempts = 3
	DefaultCategoryBackoff  = 50 * time.Millisecond
)

// Catalog is everything a crawl needs from the gift shop.
type Catalog interface {
	ListCategories(ctx context.Context) ([]string, error)
	PageLister
	DetailSource
}

// GiftWriter persists the parsed gifts of one category.
type GiftWriter interface {
	UpsertBatch(ctx context.Context, gifts []*models.Gift) error
}

// ProgressFunc is called after each category with the number done so far.
type ProgressFunc func(done, total int)

// Result summarises one crawl run.
type Result struct {
	RunID      string
	Categories int
	Candidates int
	Stored     int
	Malformed  int
	Failed     int
	Duration   time.Duration
}

// Crawler runs a full catalog refresh: categories sequentially, details
// concurrently within a category, one upsert per category.
type Crawler struct {
	catalog   Catalog
	paginator *Paginator
	fetcher   *Fetcher
	store     GiftWriter
	loc       *time.Location

	CategoryAttempts int
	CategoryBackoff  time.Duration
}

type Options struct {
	MinEarningRate float64
	MaxInFlight    int
	Location       *time.Location
}

func New(catalog Catalog, store GiftWriter, opts Options) *Crawler {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Crawler{
		catalog:          catalog,
		paginator:        NewPaginator(catalog, opts.MinEarningRate),
		fetcher:          NewFetcher(catalog, opts.MaxInFlight),
		store:            store,
		loc:              loc,
		CategoryAttempts: DefaultCategoryAttempts,
		CategoryBackoff:  DefaultCategoryBackoff,
	}
}

// Paginator exposes the listing walker for tuning.
func (c *Crawler) Paginator() *Paginator { return c.paginator }

// Fetcher exposes the detail fetcher for tuning.
func (c *Crawler) Fetcher() *Fetcher { return c.fetcher }

// Run crawls the whole catalog. It fails only when the category list cannot be
// loaded or ctx ends; per-category problems are logged and skipped.
func (c *Crawler) Run(ctx context.Context, progress ProgressFunc) (Result, error) {
	started := time.Now()
	res := Result{RunID: uuid.NewString()}

	log.Infof("[Crawler] Run %s started", res.RunID)

	categories, err := c.listCategories(ctx)
	if err != nil {
		metrics.ObserveCrawl(metrics.StatusFailed, time.Since(started))
		return res, fmt.Errorf("list categories: %w", err)
	}
	res.Categories = len(categories)
	log.Infof("[Crawler] Run %s found %d categories", res.RunID, len(categories))

	for i, categoryID := range categories {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(started)
			metrics.ObserveCrawl(metrics.StatusCanceled, res.Duration)
			return res, err
		}

		ids := c.paginator.CandidateIDs(ctx, categoryID)
		res.Candidates += len(ids)

		gifts := c.parseAll(c.fetcher.FetchAll(ctx, ids), &res)
		if len(gifts) > 0 {
			if err := c.store.UpsertBatch(ctx, gifts); err != nil {
				res.Failed++
				log.Errorf("[Crawler] Run %s could not store category %s: %v", res.RunID, categoryID, err)
			} else {
				res.Stored += len(gifts)
			}
		}
		log.Infof("[Crawler] Category %s: %d candidates, %d stored", categoryID, len(ids), len(gifts))

		if progress != nil {
			progress(i+1, len(categories))
		}
	}

	res.Duration = time.Since(started)
	metrics.ObserveCrawl(metrics.StatusOK, res.Duration)
	log.Infof("[Crawler] Run %s finished in %s: %d categories, %d stored, %d malformed",
		res.RunID, res.Duration.Round(time.Millisecond), res.Categories, res.Stored, res.Malformed)
	return res, nil
}

func (c *Crawler) listCategories(ctx context.Context) ([]string, error) {
	attempts := max(c.CategoryAttempts, 1)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		ids, err := c.catalog.ListCategories(ctx)
		if err == nil {
			return ids, nil
		}
		lastErr = err
		log.Warnf("[Crawler] Listing categories failed (try %d/%d): %v", attempt, attempts, err)

		if errors.Is(err, giftshop.ErrMalformed) {
			break
		}
		if attempt < attempts && !sleep(ctx, c.CategoryBackoff) {
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (c *Crawler) parseAll(payloads [][]byte, res *Result) []*models.Gift {
	gifts := make([]*models.Gift, 0, len(payloads))
	for _, raw := range payloads {
		gift, err := giftshop.ParseGift(raw, c.loc)
		if err != nil {
			res.Malformed++
			metrics.AddMalformed()
			log.Warnf("[Crawler] Dropping product: %v", err)
			continue
		}
		gifts = append(gifts, gift)
	}
	return gifts
}
