package router

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/GiftScout/app/controllers"
	"github.com/ManuelReschke/GiftScout/app/models"
	"github.com/ManuelReschke/GiftScout/internal/pkg/query"
)

type stubFinder struct{}

func (stubFinder) Gifts(context.Context, query.Params) ([]models.Gift, bool) { return nil, true }
func (stubFinder) Status(context.Context) query.Status                      { return query.Status{} }

func TestInstallRouter_PollingMode(t *testing.T) {
	app := fiber.New()
	InstallRouter(app, Dependencies{Gifts: controllers.NewGiftController(stubFinder{})})

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "go_goroutines")

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/gifts", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// no webhook without a telegram controller
	resp, err = app.Test(httptest.NewRequest("POST", "/callback", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestInstallRouter_RateLimit(t *testing.T) {
	app := fiber.New()
	InstallRouter(app, Dependencies{Gifts: controllers.NewGiftController(stubFinder{})})

	var last int
	for i := 0; i <= apiRateLimit; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/status", nil))
		require.NoError(t, err)
		last = resp.StatusCode
	}
	assert.Equal(t, fiber.StatusTooManyRequests, last)
}
