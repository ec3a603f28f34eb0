package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/amparoassist/amparo/app/controllers"
	"github.com/amparoassist/amparo/app/repository"
	"github.com/amparoassist/amparo/internal/pkg/billing"
	"github.com/amparoassist/amparo/internal/pkg/cache"
	"github.com/amparoassist/amparo/internal/pkg/catalog"
	"github.com/amparoassist/amparo/internal/pkg/database"
	"github.com/amparoassist/amparo/internal/pkg/env"
	"github.com/amparoassist/amparo/internal/pkg/mail"
	"github.com/amparoassist/amparo/internal/pkg/payments"
	"github.com/amparoassist/amparo/internal/pkg/router"
	"github.com/amparoassist/amparo/internal/pkg/storage"
	"github.com/amparoassist/amparo/internal/pkg/token"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	db := database.GetDB()
	repository.InitializeFactory(db)
	repos := repository.GetGlobalRepositories()

	tokens, err := token.NewManagerFromEnv()
	if err != nil {
		log.Fatalf("token manager setup failed: %v", err)
	}

	storageClient, err := storage.NewClientFromEnv()
	if err != nil {
		log.Fatalf("object storage setup failed: %v", err)
	}
	if storageClient == nil {
		log.Print("object storage disabled, dependent photos unavailable")
	}

	notifier := mail.NewSMTPNotifier()
	processor := payments.NewStripeClientFromEnv()

	billingService := billing.NewService(
		billing.NewRepository(db),
		processor,
		notifier,
		env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
	)
	catalogService := catalog.NewService(repos.Plan)

	// init fiber app
	app := fiber.New(fiber.Config{
		BodyLimit: 4 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// ROUTER
	router.InstallRouter(app, &router.Deps{
		Tokens:     tokens,
		Auth:       controllers.NewAuthController(repos.Account, tokens, notifier),
		Plans:      controllers.NewPlanController(catalogService),
		Checkout:   controllers.NewCheckoutController(catalogService, processor),
		Webhooks:   controllers.NewWebhookController(billingService),
		Billing:    controllers.NewBillingController(billingService, repos.Subscription, repos.Invoice),
		Dependents: controllers.NewDependentController(repos.Dependent, repos.Subscription, storageClient),
		Profiles:   controllers.NewProfileController(repos.Account),
	})

	return app
}
