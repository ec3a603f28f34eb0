package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/amparoassist/amparo/internal/pkg/accountcontext"
	"github.com/amparoassist/amparo/internal/pkg/token"
)

func newAuthTestApp(t *testing.T) (*fiber.App, *token.Manager) {
	t.Helper()

	manager, err := token.NewManager("test-secret")
	assert.NoError(t, err)

	app := fiber.New()
	app.Use(AuthMiddleware(manager))
	app.Get("/me", RequireAuth, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"account_id": accountcontext.GetAccountID(c)})
	})
	app.Get("/admin", RequireAdmin, func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app, manager
}

func TestRequireAuthWithoutToken(t *testing.T) {
	app, _ := newAuthTestApp(t)

	req := httptest.NewRequest("GET", "/me", nil)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAuthWithValidToken(t *testing.T) {
	app, manager := newAuthTestApp(t)

	signed, err := manager.Issue("acc-123", "client")
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestRequireAuthWithTamperedToken(t *testing.T) {
	app, manager := newAuthTestApp(t)

	signed, err := manager.Issue("acc-123", "client")
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+signed+"x")
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAdminRejectsClientRole(t *testing.T) {
	app, manager := newAuthTestApp(t)

	signed, err := manager.Issue("acc-123", "client")
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireAdminAllowsAdminRole(t *testing.T) {
	app, manager := newAuthTestApp(t)

	signed, err := manager.Issue("acc-admin", "admin")
	assert.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	resp, err := app.Test(req)
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
