package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/GiftScout/internal/pkg/env"
)

func withEnv(t *testing.T, values map[string]string) {
	t.Helper()
	prev := env.Env
	env.Env = values
	t.Cleanup(func() { env.Env = prev })
}

func TestLoad_Defaults(t *testing.T) {
	withEnv(t, map[string]string{})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DB.Driver)
	assert.Equal(t, "data/line_gift.db", cfg.DB.SQLitePath)
	assert.Equal(t, CacheMemory, cfg.Cache.Strategy)
	assert.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 20, cfg.Cache.MaxEntries)
	assert.Equal(t, "https://giftshop-tw.line.me", cfg.Giftshop.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Giftshop.Timeout)
	assert.Equal(t, 20, cfg.Crawl.MaxInFlight)
	assert.Equal(t, time.Hour, cfg.Crawl.RefreshWindow)
	assert.Zero(t, cfg.Crawl.Schedule)
	assert.Equal(t, ModePolling, cfg.Telegram.Mode)
	assert.Equal(t, "0.0.0.0:4000", cfg.Addr())
}

func TestLoad_Overrides(t *testing.T) {
	withEnv(t, map[string]string{
		"DB_DRIVER":                DriverMySQL,
		"DB_HOST":                  "db",
		"DB_NAME":                  "gifts",
		"RESULT_CACHE":             CacheRedis,
		"RESULT_CACHE_TTL_MINUTES": "5",
		"CRAWL_MIN_EARNING_RATE":   "1.5",
		"CRAWL_SCHEDULE_MINUTES":   "45",
		"TELEGRAM_MODE":            ModeWebhook,
	})

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMySQL, cfg.DB.Driver)
	assert.Equal(t, "db", cfg.DB.Host)
	assert.Equal(t, CacheRedis, cfg.Cache.Strategy)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 1.5, cfg.Crawl.MinEarningRate)
	assert.Equal(t, 45*time.Minute, cfg.Crawl.Schedule)
	assert.Equal(t, ModeWebhook, cfg.Telegram.Mode)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown driver":   {"DB_DRIVER": "postgres"},
		"unknown cache":    {"RESULT_CACHE": "disk"},
		"unknown mode":     {"TELEGRAM_MODE": "push"},
		"bad base url":     {"GIFTSHOP_BASE_URL": "not a url"},
		"zero entries":     {"RESULT_CACHE_MAX_ENTRIES": "0"},
		"negative rate":    {"CRAWL_MIN_EARNING_RATE": "-1"},
		"non numeric port": {"APP_PORT": "http"},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			withEnv(t, values)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedNumbersFallBack(t *testing.T) {
	withEnv(t, map[string]string{"CRAWL_MAX_IN_FLIGHT": "many"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Crawl.MaxInFlight)
}

func TestLocation_Fallback(t *testing.T) {
	cfg := &Config{Timezone: "Nowhere/Invalid"}
	loc := cfg.Location()

	_, offset := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 8*60*60, offset)
}
