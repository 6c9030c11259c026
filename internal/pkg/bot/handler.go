package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/GiftScout/internal/pkg/crawler"
	"github.com/ManuelReschke/GiftScout/internal/pkg/query"
)

const (
	CommandLinePoints = "lp"

	LoadingText    = "loading…"
	ProgressFormat = "更新資料中… %d/%d 個分類"
	HelpText       = "/lp [rate days]\n" +
		"列出點數回饋率不高於 rate%、錢被卡少於 days 天的票券，預設 5 31"

	assistantPrefix = "Q:"
)

// Sender delivers messages and edits. *tgbotapi.BotAPI satisfies it.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Answerer produces the reply of the /lp command.
type Answerer interface {
	Answer(ctx context.Context, p query.Params, progress crawler.ProgressFunc) string
}

// Assistant is an external chat-completion service keyed by chat session.
type Assistant interface {
	Reply(ctx context.Context, sessionID, text string) (string, error)
}

// Responder handles free text that is not meant for the assistant. It
// reports whether it replied.
type Responder interface {
	Respond(ctx context.Context, msg *tgbotapi.Message) bool
}

// Handler dispatches Telegram updates.
type Handler struct {
	sender    Sender
	answerer  Answerer
	assistant Assistant
	responder Responder

	wg sync.WaitGroup
}

// NewHandler builds a Handler; assistant and responder may be nil.
func NewHandler(sender Sender, answerer Answerer, assistant Assistant, responder Responder) *Handler {
	return &Handler{
		sender:    sender,
		answerer:  answerer,
		assistant: assistant,
		responder: responder,
	}
}

// Poll dispatches updates until ctx is done or the channel closes. Each update
// is handled on its own goroutine.
func (h *Handler) Poll(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	log.Info("[Bot] Polling for updates")
	for {
		select {
		case <-ctx.Done():
			log.Info("[Bot] Polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				log.Info("[Bot] Update channel closed")
				return
			}
			h.Dispatch(ctx, update)
		}
	}
}

// Dispatch handles update asynchronously.
func (h *Handler) Dispatch(ctx context.Context, update tgbotapi.Update) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.HandleUpdate(ctx, update)
	}()
}

// Wait blocks until every dispatched update has been handled.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// HandleUpdate handles one update synchronously. Panics are logged, never
// propagated.
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("[Bot] Panic handling update %d: %v\n%s", update.UpdateID, r, debug.Stack())
		}
	}()

	msg := update.Message
	if msg == nil {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case CommandLinePoints:
			h.handleLinePoints(ctx, msg)
		case "start", "help":
			h.reply(msg, HelpText)
		default:
			log.Debugf("[Bot] Ignoring command /%s", msg.Command())
		}
		return
	}

	if strings.TrimSpace(msg.Text) != "" {
		h.handleText(ctx, msg)
	}
}

// handleLinePoints sends a placeholder, edits it with crawl progress and
// finally replaces it with the answer.
func (h *Handler) handleLinePoints(ctx context.Context, msg *tgbotapi.Message) {
	params := query.ParseCommand(msg.Text)
	chatID := msg.Chat.ID

	placeholder := tgbotapi.NewMessage(chatID, LoadingText)
	placeholder.ReplyToMessageID = msg.MessageID
	sent, err := h.sender.Send(placeholder)
	if err != nil {
		log.Errorf("[Bot] Could not send placeholder to chat %d: %v", chatID, err)
		return
	}

	progress := func(done, total int) {
		edit := tgbotapi.NewEditMessageText(chatID, sent.MessageID, fmt.Sprintf(ProgressFormat, done, total))
		if _, err := h.sender.Send(edit); err != nil {
			log.Debugf("[Bot] Progress edit failed in chat %d: %v", chatID, err)
		}
	}

	answer := h.answerer.Answer(ctx, params, progress)

	final := tgbotapi.NewEditMessageText(chatID, sent.MessageID, answer)
	final.ParseMode = tgbotapi.ModeMarkdown
	final.DisableWebPagePreview = true
	if _, err := h.sender.Send(final); err != nil {
		log.Warnf("[Bot] Markdown answer rejected in chat %d, sending plain text: %v", chatID, err)
		plain := tgbotapi.NewEditMessageText(chatID, sent.MessageID, answer)
		plain.DisableWebPagePreview = true
		if _, err := h.sender.Send(plain); err != nil {
			log.Errorf("[Bot] Could not deliver answer to chat %d: %v", chatID, err)
		}
	}
}

// handleText routes private chats and "Q:" prefixed group messages to the
// assistant, everything else to the responder.
func (h *Handler) handleText(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)

	question, ask := "", false
	switch {
	case msg.From != nil && msg.Chat.ID == msg.From.ID:
		question, ask = text, true
	case len(text) > len(assistantPrefix) && strings.HasPrefix(strings.ToUpper(text), assistantPrefix):
		question, ask = strings.TrimSpace(text[len(assistantPrefix):]), true
	}

	if ask && h.assistant != nil {
		sessionID := strconv.FormatInt(msg.Chat.ID, 10)
		reply, err := h.assistant.Reply(ctx, sessionID, question)
		if err != nil {
			log.Warnf("[Bot] Assistant failed for chat %d: %v", msg.Chat.ID, err)
			return
		}
		h.reply(msg, reply)
		return
	}

	if h.responder != nil {
		h.responder.Respond(ctx, msg)
	}
}

func (h *Handler) reply(msg *tgbotapi.Message, text string) {
	if text == "" {
		return
	}
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := h.sender.Send(out); err != nil {
		log.Errorf("[Bot] Could not reply in chat %d: %v", msg.Chat.ID, err)
	}
}
