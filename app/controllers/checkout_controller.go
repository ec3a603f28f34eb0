package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/amparoassist/amparo/internal/pkg/catalog"
	"github.com/amparoassist/amparo/internal/pkg/payments"
)

// CheckoutController starts hosted checkout sessions at the payment
// processor. Account provisioning happens later, when the completion event
// arrives on the webhook.
type CheckoutController struct {
	catalog   *catalog.Service
	processor payments.Client
}

// NewCheckoutController creates a new checkout controller
func NewCheckoutController(catalogService *catalog.Service, processor payments.Client) *CheckoutController {
	return &CheckoutController{catalog: catalogService, processor: processor}
}

type checkoutRequest struct {
	PlanID uint   `json:"plan_id"`
	Email  string `json:"email"`
}

// HandleCreateCheckoutSession validates the plan and returns the hosted
// checkout URL for it.
func (ctrl *CheckoutController) HandleCreateCheckoutSession(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if req.PlanID == 0 || email == "" || !strings.Contains(email, "@") {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": "A valid plan id and email are required",
		})
	}

	plan, err := ctrl.catalog.GetByID(req.PlanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Plan not found"})
		}
		log.Errorf("[Checkout] plan lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plan"})
	}

	if !plan.Purchasable() {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": "Plan is not available for purchase",
		})
	}

	session, err := ctrl.processor.CreateCheckoutSession(c.Context(), *plan.StripePriceID, email, map[string]string{
		"plan_id": strconv.FormatUint(uint64(plan.ID), 10),
	})
	if err != nil {
		log.Errorf("[Checkout] session creation failed for plan %d: %v", plan.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to start checkout"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": session.URL})
}
