package giftshop

import (
	"encoding/json"
	"math"
	"time"

	"github.com/ManuelReschke/GiftScout/app/models"
)

// ParseGift turns the `result` object of a product detail response into a Gift.
// Timestamps are Unix milliseconds, truncated to whole seconds and rendered in loc.
func ParseGift(raw []byte, loc *time.Location) (*models.Gift, error) {
	if loc == nil {
		loc = time.UTC
	}

	var p detailPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, malformed("decode detail: %v", err)
	}

	product := p.DetailProduct
	if product == nil || product.ID == nil {
		return nil, malformed("missing detailProduct.id")
	}
	policy := p.PointEarningPolicy
	if policy == nil || policy.EndedTimestamp == nil {
		return nil, malformed("product %d: missing pointEarningPolicy.endedTimestamp", *product.ID)
	}
	if policy.EarningRate == nil {
		return nil, malformed("product %d: missing pointEarningPolicy.earningRate", *product.ID)
	}
	rate := *policy.EarningRate
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return nil, malformed("product %d: invalid earning rate %v", *product.ID, rate)
	}

	ended := fromMillis(*policy.EndedTimestamp, loc)

	gift := &models.Gift{
		ID:               *product.ID,
		Name:             product.Name,
		Price:            product.DiscountedPrice,
		EarningRate:      rate,
		EarningDelayDays: policy.EarningDelay,
		GiftEndedTime:    ended.Format(models.TimeLayout),
		MaxPointEarning:  policy.MaxPointEarning,
	}

	var expiration *time.Time
	if ec := product.Ecoupon; ec != nil {
		gift.PeriodType = ec.PeriodType
		gift.VoucherType = ec.VoucherType
		gift.PeriodDays = ec.PeriodDays
		if ec.ValidEndTimestamp != nil && *ec.ValidEndTimestamp != 0 {
			exp := fromMillis(*ec.ValidEndTimestamp, loc)
			expiration = &exp
			formatted := exp.Format(models.TimeLayout)
			gift.GiftExpirationTimestamp = &exp
			gift.GiftExpirationTime = &formatted
		}
	}

	lock, ok := moneyLockDays(gift.PeriodDays, ended, expiration)
	if !ok {
		return nil, malformed("product %d: neither periodDays nor validEndTimestamp", gift.ID)
	}
	gift.MoneyLockDays = lock
	gift.Description = gift.Describe()

	return gift, nil
}

// moneyLockDays prefers an explicit redemption period and otherwise counts the
// whole days between the end of sale and the voucher expiry.
func moneyLockDays(periodDays *int, ended time.Time, expiration *time.Time) (int, bool) {
	if periodDays != nil && *periodDays != 0 {
		return *periodDays, true
	}
	if expiration == nil {
		return 0, false
	}
	days := math.Floor(expiration.Sub(ended).Hours() / 24)
	return int(days), true
}

func fromMillis(ms int64, loc *time.Location) time.Time {
	return time.Unix(ms/1000, 0).In(loc)
}
