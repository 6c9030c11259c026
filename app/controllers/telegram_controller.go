package controllers

import (
	"context"
	"encoding/json"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// UpdateDispatcher hands a Telegram update to the bot.
type UpdateDispatcher interface {
	Dispatch(ctx context.Context, update tgbotapi.Update)
}

// TelegramController receives webhook updates. Handling continues on base
// after the HTTP request has been answered.
type TelegramController struct {
	base       context.Context
	dispatcher UpdateDispatcher
}

func NewTelegramController(base context.Context, dispatcher UpdateDispatcher) *TelegramController {
	return &TelegramController{base: base, dispatcher: dispatcher}
}

// HandleWebhook is POST /callback.
func (tc *TelegramController) HandleWebhook(c *fiber.Ctx) error {
	var update tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		log.Warnf("[Telegram] Invalid webhook body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid update"})
	}

	log.Debugf("[Telegram] Webhook update %d", update.UpdateID)
	tc.dispatcher.Dispatch(tc.base, update)
	return c.SendString("ok")
}
