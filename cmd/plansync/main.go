package main

import (
	"context"
	"log"
	"time"

	"github.com/amparoassist/amparo/app/repository"
	"github.com/amparoassist/amparo/internal/pkg/billing"
	"github.com/amparoassist/amparo/internal/pkg/database"
	"github.com/amparoassist/amparo/internal/pkg/env"
	"github.com/amparoassist/amparo/internal/pkg/payments"
)

// plansync provisions catalog plans at the payment processor. Plans without
// a price reference cannot be sold; run this after seeding or editing plans.
func main() {
	env.SetupEnvFile()
	database.SetupDatabase()

	repository.InitializeFactory(database.GetDB())
	plans := repository.GetGlobalFactory().GetPlanRepository()
	processor := payments.NewStripeClientFromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	all, err := plans.ListAll()
	if err != nil {
		log.Fatalf("plansync: failed to load plans: %v", err)
	}

	synced := 0
	for i := range all {
		plan := &all[i]
		if plan.StripePriceID != nil && *plan.StripePriceID != "" {
			continue
		}

		amountCents, err := billing.AmountToCents(plan.Price)
		if err != nil {
			log.Printf("plansync: skipping plan %d (%s): bad price %q: %v", plan.ID, plan.Name, plan.Price, err)
			continue
		}

		productID := ""
		if plan.StripeProductID != nil {
			productID = *plan.StripeProductID
		}
		if productID == "" {
			productID, err = processor.CreateProduct(ctx, plan.Name, plan.Description)
			if err != nil {
				log.Printf("plansync: product creation failed for plan %d (%s): %v", plan.ID, plan.Name, err)
				continue
			}
			plan.StripeProductID = &productID
		}

		priceID, err := processor.CreatePrice(ctx, productID, amountCents, plan.Period)
		if err != nil {
			log.Printf("plansync: price creation failed for plan %d (%s): %v", plan.ID, plan.Name, err)
			continue
		}
		plan.StripePriceID = &priceID

		if err := plans.Update(plan); err != nil {
			log.Fatalf("plansync: failed to save plan %d: %v", plan.ID, err)
		}

		log.Printf("plansync: plan %d (%s) -> product %s price %s", plan.ID, plan.Name, productID, priceID)
		synced++
	}

	log.Printf("plansync: done, %d plan(s) provisioned", synced)
}
