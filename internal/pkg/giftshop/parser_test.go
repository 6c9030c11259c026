package giftshop

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("Asia/Taipei", 8*60*60)

// 2024-07-01 00:00:00 +08:00
const endedMillis = int64(1719763200000)

func TestParseGift_PeriodDays(t *testing.T) {
	raw := []byte(`{
		"pointEarningPolicy": {"earningRate": 3.5, "endedTimestamp": 1719763200123, "earningDelay": 7, "maxPointEarning": 500},
		"detailProduct": {"id": 42, "name": "咖啡兌換券", "discountedPrice": 100,
			"ecoupon": {"periodType": "FLEXIBLE", "voucherType": "ONE_TIME", "periodDays": 30}}
	}`)

	gift, err := ParseGift(raw, taipei)
	require.NoError(t, err)

	assert.Equal(t, int64(42), gift.ID)
	assert.Equal(t, "咖啡兌換券", gift.Name)
	assert.Equal(t, 100, gift.Price)
	assert.Equal(t, 3.5, gift.EarningRate)
	assert.Equal(t, 7, gift.EarningDelayDays)
	assert.Equal(t, "FLEXIBLE", gift.PeriodType)
	assert.Equal(t, "ONE_TIME", gift.VoucherType)
	assert.Equal(t, "2024-07-01 00:00:00", gift.GiftEndedTime)
	require.NotNil(t, gift.PeriodDays)
	assert.Equal(t, 30, *gift.PeriodDays)
	assert.Equal(t, 30, gift.MoneyLockDays)
	assert.Nil(t, gift.GiftExpirationTime)
	require.NotNil(t, gift.MaxPointEarning)
	assert.Equal(t, 500.0, *gift.MaxPointEarning)
	assert.Contains(t, gift.Description, "可兌換至銷售後 30 天")
	assert.Contains(t, gift.Description, "https://giftshop-tw.line.me/voucher/42")
}

func TestParseGift_ExpirationDifference(t *testing.T) {
	// validEndTimestamp is 45 days after the end of sale
	raw := []byte(`{
		"pointEarningPolicy": {"earningRate": 2, "endedTimestamp": 1719763200000, "earningDelay": 0},
		"detailProduct": {"id": 7, "name": "電影票", "discountedPrice": 250,
			"ecoupon": {"periodType": "FIXED", "voucherType": "ONE_TIME", "periodDays": null, "validEndTimestamp": 1723651200000}}
	}`)

	gift, err := ParseGift(raw, taipei)
	require.NoError(t, err)

	assert.Equal(t, 45, gift.MoneyLockDays)
	assert.Nil(t, gift.PeriodDays)
	require.NotNil(t, gift.GiftExpirationTime)
	assert.Equal(t, "2024-08-15 00:00:00", *gift.GiftExpirationTime)
	require.NotNil(t, gift.GiftExpirationTimestamp)
	assert.Equal(t, int64(1723651200), gift.GiftExpirationTimestamp.Unix())
	assert.Contains(t, gift.Description, "可兌換至 2024-08-15 00:00:00")
}

func TestParseGift_PartialDayIsFloored(t *testing.T) {
	// 10 days and 23 hours
	exp := endedMillis + (10*24+23)*int64(time.Hour/time.Millisecond)
	raw := []byte(`{
		"pointEarningPolicy": {"earningRate": 1, "endedTimestamp": 1719763200000},
		"detailProduct": {"id": 8, "ecoupon": {"periodDays": 0, "validEndTimestamp": ` + itoa(exp) + `}}
	}`)

	gift, err := ParseGift(raw, taipei)
	require.NoError(t, err)
	assert.Equal(t, 10, gift.MoneyLockDays)
}

func TestParseGift_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":          `{`,
		"missing product":   `{"pointEarningPolicy": {"earningRate": 1, "endedTimestamp": 1719763200000}}`,
		"missing id":        `{"pointEarningPolicy": {"earningRate": 1, "endedTimestamp": 1719763200000}, "detailProduct": {"ecoupon": {"periodDays": 3}}}`,
		"missing policy":    `{"detailProduct": {"id": 1, "ecoupon": {"periodDays": 3}}}`,
		"missing ended":     `{"pointEarningPolicy": {"earningRate": 1}, "detailProduct": {"id": 1, "ecoupon": {"periodDays": 3}}}`,
		"negative rate":     `{"pointEarningPolicy": {"earningRate": -1, "endedTimestamp": 1719763200000}, "detailProduct": {"id": 1, "ecoupon": {"periodDays": 3}}}`,
		"no lock source":    `{"pointEarningPolicy": {"earningRate": 1, "endedTimestamp": 1719763200000}, "detailProduct": {"id": 1, "ecoupon": {"periodDays": null}}}`,
		"no ecoupon at all": `{"pointEarningPolicy": {"earningRate": 1, "endedTimestamp": 1719763200000}, "detailProduct": {"id": 1}}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			gift, err := ParseGift([]byte(raw), taipei)
			assert.Nil(t, gift)
			assert.True(t, errors.Is(err, ErrMalformed), "expected ErrMalformed, got %v", err)
		})
	}
}

func TestParseGift_Deterministic(t *testing.T) {
	raw := []byte(`{
		"pointEarningPolicy": {"earningRate": 3, "endedTimestamp": 1719763200000},
		"detailProduct": {"id": 5, "name": "x", "ecoupon": {"periodDays": 14}}
	}`)
	a, err := ParseGift(raw, taipei)
	require.NoError(t, err)
	b, err := ParseGift(raw, taipei)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func itoa(v int64) string {
	return formatID(v)
}
