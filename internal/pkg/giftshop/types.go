package giftshop

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// envelope is the wrapper every catalog endpoint responds with.
type envelope[T any] struct {
	Result *T `json:"result"`
}

type categoriesResult struct {
	VoucherCategories []struct {
		CategoryID flexibleID `json:"categoryId"`
	} `json:"voucherCategories"`
}

// Page is one slice of a category listing.
type Page struct {
	Items []ListingItem `json:"content"`
	Last  bool          `json:"last"`
}

// ListingItem is the summary entry of a product inside a category listing.
// PointEarningPolicy is nil for products that earn no points.
type ListingItem struct {
	ID                 int64          `json:"id"`
	PointEarningPolicy *ListingPolicy `json:"pointEarningPolicy"`
}

type ListingPolicy struct {
	EarningRate float64 `json:"earningRate"`
}

// flexibleID accepts both numeric and string identifiers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

// detailPayload mirrors the fields of /api/products/v3/{id} the parser reads.
type detailPayload struct {
	PointEarningPolicy *struct {
		EarningRate     *float64 `json:"earningRate"`
		EndedTimestamp  *int64   `json:"endedTimestamp"`
		EarningDelay    int      `json:"earningDelay"`
		MaxPointEarning *float64 `json:"maxPointEarning"`
	} `json:"pointEarningPolicy"`
	DetailProduct *struct {
		ID              *int64 `json:"id"`
		Name            string `json:"name"`
		DiscountedPrice int    `json:"discountedPrice"`
		Ecoupon         *struct {
			PeriodType        string `json:"periodType"`
			VoucherType       string `json:"voucherType"`
			PeriodDays        *int   `json:"periodDays"`
			ValidEndTimestamp *int64 `json:"validEndTimestamp"`
		} `json:"ecoupon"`
	} `json:"detailProduct"`
}

func (f flexibleID) String() string {
	return string(f)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
