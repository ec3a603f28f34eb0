package router

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/stretchr/testify/assert"
)

func TestWebhookEndpointBypassesRateLimit(t *testing.T) {
	app := fiber.New()
	app.Use("/api", limiter.New(limiter.Config{
		Max:        1,
		Expiration: time.Minute,
		Next:       skipRateLimit,
	}))
	app.Post("/api/v1/webhooks/payment-events", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusBadRequest)
	})
	app.Get("/api/v1/plans", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// Burst redeliveries never see a 429.
	for i := 0; i < 5; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/api/v1/webhooks/payment-events", nil))
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}

	// Other routes under the group stay limited.
	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/plans", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/v1/plans", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
