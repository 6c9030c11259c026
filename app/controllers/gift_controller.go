package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/GiftScout/app/models"
	"github.com/ManuelReschke/GiftScout/internal/pkg/query"
)

// GiftFinder is the part of the query engine the HTTP API uses.
type GiftFinder interface {
	Gifts(ctx context.Context, p query.Params) ([]models.Gift, bool)
	Status(ctx context.Context) query.Status
}

type GiftController struct {
	finder GiftFinder
}

func NewGiftController(finder GiftFinder) *GiftController {
	return &GiftController{finder: finder}
}

// HandleListGifts answers GET /api/v1/gifts?rate=&days= with the same ranking
// as the bot command. Missing or malformed values fall back to the defaults.
func (gc *GiftController) HandleListGifts(c *fiber.Ctx) error {
	params := query.ParseParams([]string{c.Query("rate"), c.Query("days")})

	gifts, ok := gc.finder.Gifts(c.UserContext(), params)
	if !ok {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "unavailable",
			"message": query.UnavailableAnswer,
		})
	}

	items := make([]fiber.Map, 0, len(gifts))
	for i := range gifts {
		g := &gifts[i]
		items = append(items, fiber.Map{
			"id":                   g.ID,
			"name":                 g.Name,
			"price":                g.Price,
			"earning_rate":         g.EarningRate,
			"money_lock_days":      g.MoneyLockDays,
			"earning_delay_days":   g.EarningDelayDays,
			"gift_ended_time":      g.GiftEndedTime,
			"gift_expiration_time": g.GiftExpirationTime,
			"period_days":          g.PeriodDays,
			"url":                  g.URL(),
			"description":          g.Description,
		})
	}

	return c.JSON(fiber.Map{
		"max_rate":      params.MaxRate,
		"max_lock_days": params.MaxLockDays,
		"count":         len(items),
		"gifts":         items,
		"answer":        query.Render(gifts),
	})
}

// HandleStatus reports how much data is stored and when it was last crawled.
func (gc *GiftController) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(gc.finder.Status(c.UserContext()))
}
