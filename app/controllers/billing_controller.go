package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/amparoassist/amparo/app/models"
	"github.com/amparoassist/amparo/app/repository"
	"github.com/amparoassist/amparo/internal/pkg/accountcontext"
	"github.com/amparoassist/amparo/internal/pkg/billing"
)

// BillingController exposes the account's subscription ledger and invoice
// journal, plus invoice backfill and copy generation.
type BillingController struct {
	billing       *billing.Service
	subscriptions repository.SubscriptionRepository
	invoices      repository.InvoiceRepository
}

// NewBillingController creates a new billing controller
func NewBillingController(billingService *billing.Service, subscriptions repository.SubscriptionRepository, invoices repository.InvoiceRepository) *BillingController {
	return &BillingController{billing: billingService, subscriptions: subscriptions, invoices: invoices}
}

// HandleListSubscriptions returns the account's subscription history and the
// one that currently governs it.
func (ctrl *BillingController) HandleListSubscriptions(c *fiber.Ctx) error {
	accountID := accountcontext.GetAccountID(c)

	subs, err := ctrl.subscriptions.ListForAccount(accountID)
	if err != nil {
		log.Errorf("[Billing] subscription list failed for %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load subscriptions"})
	}

	var current *models.Subscription
	if cur, err := ctrl.subscriptions.GetCurrentForAccount(accountID); err == nil {
		current = cur
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("[Billing] current subscription lookup failed for %s: %v", accountID, err)
	}

	return c.JSON(fiber.Map{
		"subscriptions": subs,
		"current":       current,
	})
}

// HandleListInvoices returns all invoices across the account's subscriptions.
func (ctrl *BillingController) HandleListInvoices(c *fiber.Ctx) error {
	accountID := accountcontext.GetAccountID(c)

	invoices, err := ctrl.invoices.ListForAccount(accountID)
	if err != nil {
		log.Errorf("[Billing] invoice list failed for %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load invoices"})
	}

	return c.JSON(fiber.Map{"invoices": invoices})
}

// HandleSyncInvoices backfills invoices from the processor for every
// subscription the account has.
func (ctrl *BillingController) HandleSyncInvoices(c *fiber.Ctx) error {
	accountID := accountcontext.GetAccountID(c)

	imported, err := ctrl.billing.SyncInvoices(c.Context(), accountID)
	if err != nil {
		log.Errorf("[Billing] invoice sync failed for %s: %v", accountID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Invoice sync failed"})
	}

	return c.JSON(fiber.Map{"imported": imported})
}

// HandleGenerateCopy returns pix and boleto payment instruments for one of
// the account's invoices, generating them on first request.
func (ctrl *BillingController) HandleGenerateCopy(c *fiber.Ctx) error {
	accountID := accountcontext.GetAccountID(c)

	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid invoice id"})
	}

	instruments, err := ctrl.billing.GenerateInstruments(c.Context(), uint(id), accountID)
	if err != nil {
		if errors.Is(err, billing.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Invoice not found"})
		}
		log.Errorf("[Billing] instrument generation failed for invoice %d: %v", id, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to generate payment copy"})
	}

	return c.JSON(instruments)
}
