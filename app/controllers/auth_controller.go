package controllers

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/amparoassist/amparo/app/models"
	"github.com/amparoassist/amparo/app/repository"
	"github.com/amparoassist/amparo/internal/pkg/token"
)

// RecoveryNotifier delivers rotated credentials to the account holder.
type RecoveryNotifier interface {
	SendAccessRecovery(email, password string) error
}

// AuthController handles login and self-service access recovery.
type AuthController struct {
	accounts repository.AccountRepository
	tokens   *token.Manager
	notifier RecoveryNotifier
}

// NewAuthController creates a new auth controller
func NewAuthController(accounts repository.AccountRepository, tokens *token.Manager, notifier RecoveryNotifier) *AuthController {
	return &AuthController{accounts: accounts, tokens: tokens, notifier: notifier}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates an account and returns a bearer token.
func (ctrl *AuthController) HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": "Email and password are required",
		})
	}

	account, err := ctrl.accounts.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid credentials"})
		}
		log.Errorf("[Auth] account lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Login failed"})
	}

	if !account.CheckPassword(req.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid credentials"})
	}

	signed, err := ctrl.tokens.Issue(account.ID, account.Role)
	if err != nil {
		log.Errorf("[Auth] token issue failed for %s: %v", account.ID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Login failed"})
	}

	return c.JSON(fiber.Map{
		"token": signed,
		"account": fiber.Map{
			"id":    account.ID,
			"name":  account.Name,
			"email": account.Email,
			"role":  account.Role,
		},
	})
}

type recoverRequest struct {
	Email string `json:"email"`
}

// HandleRecover rotates the account credential and emails the new one.
// The response is identical whether or not the email exists.
func (ctrl *AuthController) HandleRecover(c *fiber.Ctx) error {
	var req recoverRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email != "" {
		ctrl.recoverAccount(email)
	}

	return c.JSON(fiber.Map{"message": "Se o email estiver cadastrado, uma nova senha foi enviada."})
}

func (ctrl *AuthController) recoverAccount(email string) {
	account, err := ctrl.accounts.GetByEmail(email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Errorf("[Auth] recovery lookup failed: %v", err)
		}
		return
	}

	password, err := models.GeneratePassword()
	if err != nil {
		log.Errorf("[Auth] recovery password generation failed for %s: %v", account.ID, err)
		return
	}
	if err := account.SetPassword(password); err != nil {
		log.Errorf("[Auth] recovery password hash failed for %s: %v", account.ID, err)
		return
	}
	now := time.Now()
	account.RecoverySentAt = &now
	if err := ctrl.accounts.Update(account); err != nil {
		log.Errorf("[Auth] recovery password save failed for %s: %v", account.ID, err)
		return
	}
	if err := ctrl.notifier.SendAccessRecovery(account.Email, password); err != nil {
		log.Errorf("[Auth] recovery mail failed for %s: %v", account.ID, err)
	}
}
