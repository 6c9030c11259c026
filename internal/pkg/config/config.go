package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ManuelReschke/GiftScout/internal/pkg/env"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"

	ModePolling = "polling"
	ModeWebhook = "webhook"
)

// Config is the typed view of the environment the service runs with.
type Config struct {
	AppHost string `validate:"required"`
	AppPort string `validate:"required,numeric"`
	AppEnv  string `validate:"oneof=dev prod test"`

	DB       DatabaseConfig
	Cache    CacheConfig
	Giftshop GiftshopConfig
	Crawl    CrawlConfig
	Telegram TelegramConfig

	Timezone string `validate:"required"`
}

type DatabaseConfig struct {
	Driver     string `validate:"oneof=mysql sqlite"`
	Host       string `validate:"required_if=Driver mysql"`
	Port       string `validate:"required_if=Driver mysql"`
	User       string
	Password   string
	Name       string `validate:"required_if=Driver mysql"`
	SQLitePath string `validate:"required_if=Driver sqlite"`
}

type CacheConfig struct {
	Host       string
	Port       string
	Password   string
	Strategy   string `validate:"oneof=memory redis none"`
	TTL        time.Duration
	MaxEntries int `validate:"gte=1"`
}

type GiftshopConfig struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"gt=0"`
}

type CrawlConfig struct {
	MinEarningRate float64 `validate:"gte=0"`
	MaxInFlight    int
	RefreshWindow  time.Duration `validate:"gt=0"`

	// Schedule of zero disables the background refresh worker.
	Schedule time.Duration `validate:"gte=0"`
}

type TelegramConfig struct {
	Token string
	Mode  string `validate:"oneof=polling webhook"`

	// WebhookURL is registered with Telegram on startup in webhook mode.
	WebhookURL    string `validate:"omitempty,url"`
	WebhookSecret string
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

// Location resolves the configured timezone, falling back to a fixed UTC+8
// zone when the tz database is unavailable on the host.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.FixedZone(c.Timezone, 8*60*60)
	}
	return loc
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{
		AppHost: env.GetEnv("APP_HOST", "0.0.0.0"),
		AppPort: env.GetEnv("APP_PORT", "4000"),
		AppEnv:  env.GetEnv("APP_ENV", "prod"),
		DB: DatabaseConfig{
			Driver:     env.GetEnv("DB_DRIVER", DriverSQLite),
			Host:       env.GetEnv("DB_HOST", "127.0.0.1"),
			Port:       env.GetEnv("DB_PORT", "3306"),
			User:       env.GetEnv("DB_USER", ""),
			Password:   env.GetEnv("DB_PASSWORD", ""),
			Name:       env.GetEnv("DB_NAME", "giftscout"),
			SQLitePath: env.GetEnv("SQLITE_PATH", "data/line_gift.db"),
		},
		Cache: CacheConfig{
			Host:       env.GetEnv("CACHE_HOST", "localhost"),
			Port:       env.GetEnv("CACHE_PORT", "6379"),
			Password:   env.GetEnv("CACHE_PASSWORD", ""),
			Strategy:   env.GetEnv("RESULT_CACHE", CacheMemory),
			TTL:        time.Duration(getInt("RESULT_CACHE_TTL_MINUTES", 30)) * time.Minute,
			MaxEntries: getInt("RESULT_CACHE_MAX_ENTRIES", 20),
		},
		Giftshop: GiftshopConfig{
			BaseURL: env.GetEnv("GIFTSHOP_BASE_URL", "https://giftshop-tw.line.me"),
			Timeout: time.Duration(getInt("GIFTSHOP_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Crawl: CrawlConfig{
			MinEarningRate: getFloat("CRAWL_MIN_EARNING_RATE", 0),
			MaxInFlight:    getInt("CRAWL_MAX_IN_FLIGHT", 20),
			RefreshWindow:  time.Duration(getInt("CRAWL_REFRESH_MINUTES", 60)) * time.Minute,
			Schedule:       time.Duration(getInt("CRAWL_SCHEDULE_MINUTES", 0)) * time.Minute,
		},
		Telegram: TelegramConfig{
			Token:         env.GetEnv("TELEGRAM_BOT_TOKEN", ""),
			Mode:          env.GetEnv("TELEGRAM_MODE", ModePolling),
			WebhookURL:    env.GetEnv("TELEGRAM_WEBHOOK_URL", ""),
			WebhookSecret: env.GetEnv("TELEGRAM_WEBHOOK_SECRET", ""),
		},
		Timezone: env.GetEnv("TIMEZONE", "Asia/Taipei"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getInt(key string, def int) int {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	raw := env.GetEnv(key, "")
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}
