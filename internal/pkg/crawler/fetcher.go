package crawler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"golang.org/x/sync/errgroup"

	"github.com/ManuelReschke/GiftScout/internal/pkg/giftshop"
	metrics "github.com/ManuelReschke/GiftScout/internal/pkg/metrics/counter"
)

const (
	DefaultDetailAttempts = 5
	DefaultDetailBackoff  = 50 * time.Millisecond
)

// DetailSource loads the raw detail payload of one product.
type DetailSource interface {
	FetchDetail(ctx context.Context, giftID int64) ([]byte, error)
}

// Fetcher loads product details concurrently, one goroutine per id.
type Fetcher struct {
	source DetailSource

	MaxAttempts int
	RetryDelay  time.Duration
	// MaxInFlight bounds concurrent requests; zero or less means unbounded.
	MaxInFlight int
}

func NewFetcher(source DetailSource, maxInFlight int) *Fetcher {
	return &Fetcher{
		source:      source,
		MaxAttempts: DefaultDetailAttempts,
		RetryDelay:  DefaultDetailBackoff,
		MaxInFlight: maxInFlight,
	}
}

// FetchAll returns the payloads that could be loaded, in the order of ids.
// It returns only after every fetch has finished.
func (f *Fetcher) FetchAll(ctx context.Context, ids []int64) [][]byte {
	if len(ids) == 0 {
		return nil
	}

	results := make([][]byte, len(ids))

	var g errgroup.Group
	if f.MaxInFlight > 0 {
		g.SetLimit(f.MaxInFlight)
	}
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = f.fetchOne(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	payloads := make([][]byte, 0, len(results))
	for _, raw := range results {
		if raw != nil {
			payloads = append(payloads, raw)
		}
	}
	return payloads
}

func (f *Fetcher) fetchOne(ctx context.Context, id int64) []byte {
	attempts := max(f.MaxAttempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := f.source.FetchDetail(ctx, id)
		if err == nil {
			metrics.AddDetailFetch(metrics.OutcomeOK)
			return raw
		}

		switch {
		case errors.Is(err, giftshop.ErrNotFound):
			metrics.AddDetailFetch(metrics.OutcomeNotFound)
			log.Debugf("[Crawler] Product %d not found, skipping", id)
			return nil
		case !errors.Is(err, giftshop.ErrTransient):
			metrics.AddDetailFetch(metrics.OutcomeFailed)
			log.Warnf("[Crawler] Product %d failed: %v", id, err)
			return nil
		}

		log.Debugf("[Crawler] Product %d transient failure (try %d/%d): %v", id, attempt, attempts, err)
		if attempt < attempts && !sleep(ctx, f.RetryDelay) {
			break
		}
	}

	metrics.AddDetailFetch(metrics.OutcomeExhausted)
	log.Warnf("[Crawler] Product %d dropped after %d attempts", id, attempts)
	return nil
}
