package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/amparoassist/amparo/app/models"
	"github.com/amparoassist/amparo/app/repository"
)

// ProfileController is the admin view over accounts. Role promotion happens
// here, never through self-service endpoints.
type ProfileController struct {
	accounts repository.AccountRepository
}

// NewProfileController creates a new profile controller
func NewProfileController(accounts repository.AccountRepository) *ProfileController {
	return &ProfileController{accounts: accounts}
}

type profileResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Role             string `json:"role"`
	StripeCustomerID string `json:"stripe_customer_id,omitempty"`
	CreatedAt        string `json:"created_at"`
}

// HandleListProfiles returns a page of accounts.
func (ctrl *ProfileController) HandleListProfiles(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	perPage := c.QueryInt("per_page", 50)
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	accounts, err := ctrl.accounts.List((page-1)*perPage, perPage)
	if err != nil {
		log.Errorf("[Profiles] list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load accounts"})
	}

	total, err := ctrl.accounts.Count()
	if err != nil {
		log.Errorf("[Profiles] count failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load accounts"})
	}

	out := make([]profileResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toProfileResponse(&a))
	}

	return c.JSON(fiber.Map{
		"profiles": out,
		"page":     page,
		"per_page": perPage,
		"total":    total,
	})
}

type profileUpdateRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// HandleUpdateProfile updates an account's name or role.
func (ctrl *ProfileController) HandleUpdateProfile(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid account id"})
	}

	account, err := ctrl.accounts.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Account not found"})
		}
		log.Errorf("[Profiles] load failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load account"})
	}

	var req profileUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	if req.Name != "" {
		account.Name = req.Name
	}
	if req.Role != "" {
		if req.Role != models.ROLE_CLIENT && req.Role != models.ROLE_ADMIN {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":   "validation_failed",
				"message": "Role must be client or admin",
				"fields":  map[string]string{"role": "oneof"},
			})
		}
		account.Role = req.Role
	}

	if err := ctrl.accounts.Update(account); err != nil {
		log.Errorf("[Profiles] update failed for %s: %v", account.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update account"})
	}

	return c.JSON(toProfileResponse(account))
}

func toProfileResponse(a *models.Account) profileResponse {
	return profileResponse{
		ID:               a.ID,
		Name:             a.Name,
		Email:            a.Email,
		Role:             a.Role,
		StripeCustomerID: a.StripeCustomerID,
		CreatedAt:        a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
