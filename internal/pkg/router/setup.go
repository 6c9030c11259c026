package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/GiftScout/app/controllers"
	"github.com/ManuelReschke/GiftScout/internal/pkg/health"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the controllers and shared backends the routes need.
type Dependencies struct {
	Gifts *controllers.GiftController

	// Telegram is nil when the bot polls instead of receiving webhooks.
	Telegram *controllers.TelegramController

	// WebhookSecret guards the webhook route when set.
	WebhookSecret string

	// LimiterStorage backs the API rate limiter; nil keeps counters in memory.
	LimiterStorage fiber.Storage

	// Health backs /healthz; nil answers a plain "ok".
	Health *health.Checker
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	setup(app, NewHttpRouter(deps), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
