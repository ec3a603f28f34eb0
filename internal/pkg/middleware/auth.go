package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/amparoassist/amparo/internal/pkg/accountcontext"
	"github.com/amparoassist/amparo/internal/pkg/token"
)

// AuthMiddleware authenticates requests carrying a bearer session token and
// stores the resolved identity in the request locals.
func AuthMiddleware(manager *token.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := extractBearerToken(c)
		if raw == "" {
			return c.Next()
		}

		claims, err := manager.Parse(raw)
		if err != nil {
			return c.Next()
		}

		accountcontext.Set(c, accountcontext.AccountContext{
			AccountID:  claims.Subject,
			Role:       claims.Role,
			IsLoggedIn: true,
		})
		return c.Next()
	}
}

// RequireAuth ensures an authenticated account and returns JSON 401 otherwise.
func RequireAuth(c *fiber.Ctx) error {
	if !accountcontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}

// RequireAdmin ensures an authenticated admin account.
func RequireAdmin(c *fiber.Ctx) error {
	if !accountcontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	if !accountcontext.IsAdmin(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":   "forbidden",
			"message": "admin access required",
		})
	}
	return c.Next()
}

func extractBearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
