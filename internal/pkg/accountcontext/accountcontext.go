package accountcontext

import "github.com/gofiber/fiber/v2"

// Shared Locals keys used across controllers and middlewares
const (
	KeyAccountID = "account_id"
	KeyRole      = "role"
	LocalsKey    = "ACCOUNT_CONTEXT"
)

// AccountContext represents the authenticated identity of a request
type AccountContext struct {
	AccountID  string `json:"account_id"`
	Role       string `json:"role"`
	IsLoggedIn bool   `json:"is_logged_in"`
}

// Set stores the account context on the fiber context
func Set(c *fiber.Ctx, ctx AccountContext) {
	c.Locals(LocalsKey, ctx)
	c.Locals(KeyAccountID, ctx.AccountID)
	c.Locals(KeyRole, ctx.Role)
}

// Get retrieves the account context from fiber context.
// Returns an anonymous context if none is set.
func Get(c *fiber.Ctx) AccountContext {
	if ctx := c.Locals(LocalsKey); ctx != nil {
		return ctx.(AccountContext)
	}
	return AccountContext{IsLoggedIn: false}
}

// IsLoggedIn checks if the current request is authenticated
func IsLoggedIn(c *fiber.Ctx) bool {
	return Get(c).IsLoggedIn
}

// IsAdmin checks if the current request belongs to an admin account
func IsAdmin(c *fiber.Ctx) bool {
	return Get(c).Role == "admin"
}

// GetAccountID returns the authenticated account's ID, or empty string
func GetAccountID(c *fiber.Ctx) string {
	return Get(c).AccountID
}
