package crawler

import (
	"context"
	"fmt"
	"sync"

	"github.com/ManuelReschke/GiftScout/internal/pkg/giftshop"
)

// fakeCatalog serves canned listings and details and counts every call.
type fakeCatalog struct {
	mu sync.Mutex

	categories    []string
	categoriesErr []error

	// pages[category][page-1]
	pages map[string][]giftshop.Page
	// pageErr decides whether a given (category, page, call number) fails.
	pageErr func(category string, page, call int) error

	details    map[int64][]byte
	detailErrs map[int64][]error

	categoryCalls int
	pageCalls     map[string]int
	detailCalls   map[int64]int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		pages:       map[string][]giftshop.Page{},
		details:     map[int64][]byte{},
		detailErrs:  map[int64][]error{},
		pageCalls:   map[string]int{},
		detailCalls: map[int64]int{},
	}
}

func (f *fakeCatalog) ListCategories(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.categoryCalls
	f.categoryCalls++
	if call < len(f.categoriesErr) && f.categoriesErr[call] != nil {
		return nil, f.categoriesErr[call]
	}
	return f.categories, nil
}

func (f *fakeCatalog) ListCategoryPage(ctx context.Context, categoryID string, page int) (giftshop.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageCalls[categoryID]++
	if f.pageErr != nil {
		if err := f.pageErr(categoryID, page, f.pageCalls[categoryID]); err != nil {
			return giftshop.Page{}, err
		}
	}
	pages := f.pages[categoryID]
	if page-1 >= len(pages) {
		return giftshop.Page{Last: false}, nil
	}
	return pages[page-1], nil
}

func (f *fakeCatalog) FetchDetail(ctx context.Context, giftID int64) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := f.detailCalls[giftID]
	f.detailCalls[giftID]++
	if errs := f.detailErrs[giftID]; call < len(errs) && errs[call] != nil {
		return nil, errs[call]
	}
	raw, ok := f.details[giftID]
	if !ok {
		return nil, giftshop.ErrNotFound
	}
	return raw, nil
}

func (f *fakeCatalog) calls(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[id]
}

func item(id int64, rate float64) giftshop.ListingItem {
	return giftshop.ListingItem{ID: id, PointEarningPolicy: &giftshop.ListingPolicy{EarningRate: rate}}
}

func noPolicy(id int64) giftshop.ListingItem {
	return giftshop.ListingItem{ID: id}
}

// detailJSON builds a valid detail payload with a fixed redemption period.
func detailJSON(id int64, rate float64, periodDays int) []byte {
	return []byte(fmt.Sprintf(`{
		"pointEarningPolicy": {"earningRate": %g, "endedTimestamp": 1719763200000, "earningDelay": 3},
		"detailProduct": {"id": %d, "name": "gift %d", "discountedPrice": 100,
			"ecoupon": {"periodType": "FIXED", "voucherType": "ONE_TIME", "periodDays": %d}}
	}`, rate, id, id, periodDays))
}

func transient() error {
	return fmt.Errorf("%w: boom", giftshop.ErrTransient)
}
