package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/monitor"

	metrics "github.com/ManuelReschke/GiftScout/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/GiftScout/internal/pkg/middleware"
)

type HttpRouter struct {
	deps Dependencies
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	if h.deps.Health != nil {
		app.Get("/healthz", h.deps.Health.Handler())
	} else {
		app.Get("/healthz", func(c *fiber.Ctx) error {
			return c.SendString("ok")
		})
	}

	// prometheus scrape endpoint
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// fiber dashboard
	app.Get("/monitor", monitor.New(monitor.Config{Title: "GiftScout"}))

	// Telegram webhook, only registered in webhook mode
	if h.deps.Telegram != nil {
		app.Post("/callback", middleware.WebhookSecret(h.deps.WebhookSecret), h.deps.Telegram.HandleWebhook)
	}
}

func NewHttpRouter(deps Dependencies) *HttpRouter {
	return &HttpRouter{deps: deps}
}
