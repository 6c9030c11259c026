package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	PeriodTypeFixed    = "FIXED"
	PeriodTypeFlexible = "FLEXIBLE"

	// VoucherURLPrefix is the public product page of a gift.
	VoucherURLPrefix = "https://giftshop-tw.line.me/voucher/"

	// TimeLayout is used for every human-readable timestamp stored on a gift.
	TimeLayout = "2006-01-02 15:04:05"
)

// Gift is one voucher product as seen by the last crawl.
type Gift struct {
	ID                      int64      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name                    string     `gorm:"type:text;not null" json:"name"`
	Description             string     `gorm:"type:text" json:"description"`
	Price                   int        `json:"price"`
	PeriodType              string     `gorm:"size:32" json:"period_type"`
	VoucherType             string     `gorm:"size:32" json:"voucher_type"`
	EarningRate             float64    `gorm:"index:idx_gifts_rate_lock,priority:1" json:"earning_rate"`
	EarningDelayDays        int        `json:"earning_delay_days"`
	PeriodDays              *int       `json:"period_days,omitempty"`
	GiftEndedTime           string     `gorm:"size:32" json:"gift_ended_time"`
	GiftExpirationTime      *string    `gorm:"size:32" json:"gift_expiration_time,omitempty"`
	GiftExpirationTimestamp *time.Time `json:"gift_expiration_timestamp,omitempty"`
	MaxPointEarning         *float64   `json:"max_point_earning,omitempty"`
	MoneyLockDays           int        `gorm:"index:idx_gifts_rate_lock,priority:2" json:"money_lock_days"`
}

func (Gift) TableName() string {
	return "gifts"
}

// URL returns the public voucher page.
func (g *Gift) URL() string {
	return VoucherURLPrefix + strconv.FormatInt(g.ID, 10)
}

// Describe renders the multi-line summary stored in Description.
func (g *Gift) Describe() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%%, $%d, 銷售至 %s, ", FormatRate(g.EarningRate), g.Price, g.GiftEndedTime)

	switch {
	case g.PeriodDays != nil && *g.PeriodDays != 0:
		fmt.Fprintf(&b, "可兌換至銷售後 %d 天\n", *g.PeriodDays)
	case g.GiftExpirationTime != nil:
		fmt.Fprintf(&b, "可兌換至 %s\n", *g.GiftExpirationTime)
	}

	fmt.Fprintf(&b, "最後一天買的話，錢錢被卡 %d 天, %d天後給點\n", g.MoneyLockDays, g.EarningDelayDays)
	b.WriteString(g.Name)
	b.WriteString("\n")
	b.WriteString(g.URL())
	return b.String()
}

// FormatRate prints an earning rate with the shortest exact representation.
func FormatRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', -1, 64)
}
