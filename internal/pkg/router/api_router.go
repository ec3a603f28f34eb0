package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/amparoassist/amparo/app/controllers"
	"github.com/amparoassist/amparo/internal/pkg/cache"
	"github.com/amparoassist/amparo/internal/pkg/env"
	"github.com/amparoassist/amparo/internal/pkg/middleware"
	"github.com/amparoassist/amparo/internal/pkg/token"
)

// Deps carries the wired controllers and the token manager into the router.
type Deps struct {
	Tokens     *token.Manager
	Auth       *controllers.AuthController
	Plans      *controllers.PlanController
	Checkout   *controllers.CheckoutController
	Webhooks   *controllers.WebhookController
	Billing    *controllers.BillingController
	Dependents *controllers.DependentController
	Profiles   *controllers.ProfileController
}

type ApiRouter struct {
	deps *Deps
}

func NewApiRouter(deps *Deps) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	d := h.deps

	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		Storage:    limiterStorage(),
		Next:       skipRateLimit,
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1", middleware.AuthMiddleware(d.Tokens))
	v1.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api v1",
		})
	})

	// Public
	v1.Get("/plans", d.Plans.HandleListPlans)
	v1.Post("/checkout-sessions", d.Checkout.HandleCreateCheckoutSession)
	v1.Post("/webhooks/payment-events", d.Webhooks.HandlePaymentEvent)
	v1.Post("/auth/login", d.Auth.HandleLogin)
	v1.Post("/auth/recover", d.Auth.HandleRecover)

	// Authenticated
	v1.Get("/subscriptions", middleware.RequireAuth, d.Billing.HandleListSubscriptions)
	v1.Get("/invoices", middleware.RequireAuth, d.Billing.HandleListInvoices)
	v1.Post("/invoices/sync", middleware.RequireAuth, d.Billing.HandleSyncInvoices)
	v1.Post("/invoices/:id/generate-copy", middleware.RequireAuth, d.Billing.HandleGenerateCopy)

	v1.Get("/dependents", middleware.RequireAuth, d.Dependents.HandleListDependents)
	v1.Post("/dependents", middleware.RequireAuth, d.Dependents.HandleCreateDependent)
	v1.Patch("/dependents/:id", middleware.RequireAuth, d.Dependents.HandleUpdateDependent)
	v1.Delete("/dependents/:id", middleware.RequireAuth, d.Dependents.HandleDeleteDependent)
	v1.Post("/dependents/:id/photo", middleware.RequireAuth, d.Dependents.HandleUploadPhoto)
	v1.Delete("/dependents/:id/photo", middleware.RequireAuth, d.Dependents.HandleDeletePhoto)

	// Admin
	v1.Get("/plans/all", middleware.RequireAdmin, d.Plans.HandleAdminListPlans)
	v1.Post("/plans", middleware.RequireAdmin, d.Plans.HandleAdminCreatePlan)
	v1.Patch("/plans/:id", middleware.RequireAdmin, d.Plans.HandleAdminUpdatePlan)
	v1.Patch("/plans/:id/status", middleware.RequireAdmin, d.Plans.HandleAdminSetPlanActive)
	v1.Delete("/plans/:id", middleware.RequireAdmin, d.Plans.HandleAdminDeletePlan)
	v1.Get("/profiles", middleware.RequireAdmin, d.Profiles.HandleListProfiles)
	v1.Patch("/profiles/:id", middleware.RequireAdmin, d.Profiles.HandleUpdateProfile)
}

// limiterStorage builds a Redis-backed limiter store from the cache client
// configuration so counters survive restarts. Falls back to the in-memory
// store when the cache is not up.
// skipRateLimit exempts the webhook endpoint from the limiter. Processor
// redeliveries must only ever see 200/400/500, never a 429; the endpoint is
// protected by signature verification instead.
func skipRateLimit(c *fiber.Ctx) bool {
	return c.Path() == "/api/v1/webhooks/payment-events"
}

func limiterStorage() fiber.Storage {
	cacheClient := cache.GetClient()
	if cacheClient == nil {
		return nil
	}

	host := "localhost"
	port := 6379
	if hp, p, err := net.SplitHostPort(cacheClient.Options().Addr); err == nil {
		host = hp
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	password := cacheClient.Options().Password
	if password == "" {
		password = env.GetEnv("CACHE_PASSWORD", "")
	}

	// Database 1 keeps limiter counters apart from cache entries (DB 0).
	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
	})
}
