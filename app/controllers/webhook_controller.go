package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/amparoassist/amparo/internal/pkg/billing"
)

// WebhookController receives payment processor events. The raw body must
// reach the reconciler untouched so the signature check sees the exact bytes
// that were signed.
type WebhookController struct {
	billing *billing.Service
}

// NewWebhookController creates a new webhook controller
func NewWebhookController(billingService *billing.Service) *WebhookController {
	return &WebhookController{billing: billingService}
}

// HandlePaymentEvent verifies and processes a single webhook delivery.
// Replays of already-processed events are acknowledged with 200.
func (ctrl *WebhookController) HandlePaymentEvent(c *fiber.Ctx) error {
	body := c.BodyRaw()
	signature := c.Get("Stripe-Signature")

	err := ctrl.billing.HandleEvent(c.Context(), body, signature)
	if err == nil {
		return c.JSON(fiber.Map{"received": true})
	}

	if errors.Is(err, billing.ErrInvalidSignature) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid signature"})
	}
	if errors.Is(err, billing.ErrInvalidPayload) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid payload"})
	}

	log.Errorf("[Webhook] event processing failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Event processing failed"})
}
