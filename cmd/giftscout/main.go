package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/GiftScout/app/controllers"
	"github.com/ManuelReschke/GiftScout/app/repository"
	"github.com/ManuelReschke/GiftScout/internal/pkg/bot"
	"github.com/ManuelReschke/GiftScout/internal/pkg/cache"
	"github.com/ManuelReschke/GiftScout/internal/pkg/config"
	"github.com/ManuelReschke/GiftScout/internal/pkg/crawler"
	"github.com/ManuelReschke/GiftScout/internal/pkg/database"
	"github.com/ManuelReschke/GiftScout/internal/pkg/env"
	"github.com/ManuelReschke/GiftScout/internal/pkg/giftshop"
	"github.com/ManuelReschke/GiftScout/internal/pkg/health"
	"github.com/ManuelReschke/GiftScout/internal/pkg/jobqueue"
	"github.com/ManuelReschke/GiftScout/internal/pkg/query"
	"github.com/ManuelReschke/GiftScout/internal/pkg/resultstore"
	"github.com/ManuelReschke/GiftScout/internal/pkg/router"
)

const shutdownTimeout = 10 * time.Second

// Application bundles everything main starts and stops.
type Application struct {
	cfg       *config.Config
	app       *fiber.App
	engine    *query.Engine
	scheduler *jobqueue.Manager
	botAPI    *tgbotapi.BotAPI
	handler   *bot.Handler
	redis     *goredis.Client
	repos     *repository.Factory

	ctx    context.Context
	cancel context.CancelFunc
}

func main() {
	a, err := NewApplication()
	if err != nil {
		log.Fatalf("[Main] %v", err)
	}

	go func() {
		if err := a.app.Listen(a.cfg.Addr()); err != nil {
			log.Errorf("[Main] HTTP server stopped: %v", err)
		}
	}()

	a.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.Shutdown()
}

func NewApplication() (*Application, error) {
	env.SetupEnvFile()
	setLogLevel(env.GetEnv("LOG_LEVEL", "info"))

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := database.SetupDatabase(cfg.DB)
	if err != nil {
		return nil, err
	}
	factory := repository.NewFactory(db)
	repos := factory.GetRepositories()

	a := &Application{cfg: cfg, repos: factory}
	a.ctx, a.cancel = context.WithCancel(context.Background())

	checks := health.New(health.DefaultTimeout)
	checks.Add("database", factory.Ping)

	var limiterStorage fiber.Storage
	if cfg.Cache.Strategy == config.CacheRedis {
		a.redis = cache.SetupCache(cfg.Cache)
		if cache.Ping(a.ctx, a.redis) == nil {
			limiterStorage = router.NewLimiterStorage(a.redis)
			checks.Add("cache", func(ctx context.Context) error { return cache.Ping(ctx, a.redis) })
		}
	}
	answers := resultstore.New(cfg.Cache, a.redis)

	catalog := giftshop.NewClient(cfg.Giftshop.BaseURL, cfg.Giftshop.Timeout)
	crawl := crawler.New(catalog, repos.Gift, crawler.Options{
		MinEarningRate: cfg.Crawl.MinEarningRate,
		MaxInFlight:    cfg.Crawl.MaxInFlight,
		Location:       cfg.Location(),
	})
	gate := crawler.NewFreshnessGate(cfg.Crawl.RefreshWindow)
	a.engine = query.NewEngine(a.ctx, crawl, repos.Gift, answers, gate)
	a.scheduler = jobqueue.NewManager(a.engine, cfg.Crawl.Schedule)

	deps := router.Dependencies{
		Gifts:          controllers.NewGiftController(a.engine),
		LimiterStorage: limiterStorage,
		Health:         checks,
	}

	if cfg.Telegram.Token != "" {
		a.botAPI, err = tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			a.cancel()
			return nil, err
		}
		log.Infof("[Bot] Authorized as @%s", a.botAPI.Self.UserName)
		a.handler = bot.NewHandler(a.botAPI, a.engine, nil, nil)
		if cfg.Telegram.Mode == config.ModeWebhook {
			deps.Telegram = controllers.NewTelegramController(a.ctx, a.handler)
			deps.WebhookSecret = cfg.Telegram.WebhookSecret
			if err := registerWebhook(a.botAPI, cfg.Telegram.WebhookURL); err != nil {
				a.cancel()
				return nil, err
			}
		}
	} else {
		log.Warn("[Bot] TELEGRAM_BOT_TOKEN not set, bot disabled")
	}

	app := fiber.New(fiber.Config{
		AppName:      "GiftScout",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// ROUTER
	router.InstallRouter(app, deps)

	a.app = app
	return a, nil
}

// Start launches the scheduler and, in polling mode, the update loop.
func (a *Application) Start() {
	a.scheduler.Start()

	if a.botAPI == nil || a.cfg.Telegram.Mode != config.ModePolling {
		return
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := a.botAPI.GetUpdatesChan(u)
	go a.handler.Poll(a.ctx, updates)
}

// Shutdown stops accepting work, cancels running crawls and waits for
// in-flight handlers.
func (a *Application) Shutdown() {
	log.Info("[Main] Shutting down...")

	if a.botAPI != nil && a.cfg.Telegram.Mode == config.ModePolling {
		a.botAPI.StopReceivingUpdates()
	}
	if err := a.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Errorf("[Main] HTTP shutdown: %v", err)
	}

	a.cancel()
	a.scheduler.Stop()
	a.engine.Wait()
	if a.handler != nil {
		a.handler.Wait()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warnf("[Main] Closing redis: %v", err)
		}
	}
	if err := a.repos.Close(); err != nil {
		log.Warnf("[Main] Closing database: %v", err)
	}
	log.Info("[Main] Bye")
}

// registerWebhook points Telegram at url. An empty url leaves the current
// registration untouched.
func registerWebhook(api *tgbotapi.BotAPI, url string) error {
	if url == "" {
		log.Info("[Bot] TELEGRAM_WEBHOOK_URL not set, keeping existing webhook")
		return nil
	}
	wh, err := tgbotapi.NewWebhook(url)
	if err != nil {
		return fmt.Errorf("webhook url: %w", err)
	}
	if _, err := api.Request(wh); err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}
	log.Infof("[Bot] Webhook registered at %s", url)
	return nil
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "trace":
		log.SetLevel(log.LevelTrace)
	case "debug":
		log.SetLevel(log.LevelDebug)
	case "warn":
		log.SetLevel(log.LevelWarn)
	case "error":
		log.SetLevel(log.LevelError)
	default:
		log.SetLevel(log.LevelInfo)
	}
}
