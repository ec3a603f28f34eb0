package controllers

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/amparoassist/amparo/app/models"
	"github.com/amparoassist/amparo/internal/pkg/cache"
	"github.com/amparoassist/amparo/internal/pkg/catalog"
)

const (
	planCacheKey = "plans:active"
	planCacheTTL = 5 * time.Minute
)

// planResponse is the public representation of a plan. Processor references
// stay internal.
type planResponse struct {
	ID                uint     `json:"id"`
	Name              string   `json:"name"`
	Price             string   `json:"price"`
	Period            string   `json:"period"`
	Description       string   `json:"description"`
	DependentCapacity int      `json:"dependent_capacity"`
	Popular           bool     `json:"popular"`
	Features          []string `json:"features"`
}

// PlanController serves the public plan catalog and the admin CRUD.
type PlanController struct {
	catalog *catalog.Service
}

// NewPlanController creates a new plan controller
func NewPlanController(catalogService *catalog.Service) *PlanController {
	return &PlanController{catalog: catalogService}
}

// HandleListPlans returns all active plans. Results are cached in Redis;
// the catalog falls back to the built-in tiers when the table is empty.
func (ctrl *PlanController) HandleListPlans(c *fiber.Ctx) error {
	if cached, err := cache.Get(planCacheKey); err == nil && cached != "" {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(cached)
	}

	plans := ctrl.catalog.ListActive()
	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResponse(&p))
	}

	body, err := json.Marshal(fiber.Map{"plans": out})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to encode plans"})
	}
	if err := cache.Set(planCacheKey, string(body), planCacheTTL); err != nil {
		log.Warnf("[Plans] cache write failed: %v", err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(body)
}

// HandleAdminListPlans returns every plan including inactive ones.
func (ctrl *PlanController) HandleAdminListPlans(c *fiber.Ctx) error {
	plans, err := ctrl.catalog.ListAll()
	if err != nil {
		log.Errorf("[Plans] admin list failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plans"})
	}
	return c.JSON(fiber.Map{"plans": plans})
}

type planRequest struct {
	Name              string   `json:"name"`
	Price             string   `json:"price"`
	Period            string   `json:"period"`
	Description       string   `json:"description"`
	DependentCapacity int      `json:"dependent_capacity"`
	Popular           bool     `json:"popular"`
	Active            *bool    `json:"active"`
	Features          []string `json:"features"`
	DisplayOrder      int      `json:"display_order"`
}

// HandleAdminCreatePlan creates a new plan.
func (ctrl *PlanController) HandleAdminCreatePlan(c *fiber.Ctx) error {
	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	plan := models.Plan{
		Name:              req.Name,
		Price:             req.Price,
		Period:            req.Period,
		Description:       req.Description,
		DependentCapacity: req.DependentCapacity,
		Popular:           req.Popular,
		Active:            true,
		DisplayOrder:      req.DisplayOrder,
	}
	if req.Period == "" {
		plan.Period = "month"
	}
	if req.Active != nil {
		plan.Active = *req.Active
	}
	if err := plan.SetFeatures(req.Features); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid feature list"})
	}

	if err := ctrl.catalog.Create(&plan); err != nil {
		return planWriteError(c, err)
	}

	ctrl.invalidatePlanCache()
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// HandleAdminUpdatePlan updates an existing plan.
func (ctrl *PlanController) HandleAdminUpdatePlan(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid plan id"})
	}

	plan, err := ctrl.catalog.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found", "message": "Plan not found"})
		}
		log.Errorf("[Plans] load failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load plan"})
	}

	var req planRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	if req.Name != "" {
		plan.Name = req.Name
	}
	if req.Price != "" {
		plan.Price = req.Price
	}
	if req.Period != "" {
		plan.Period = req.Period
	}
	if req.Description != "" {
		plan.Description = req.Description
	}
	if req.DependentCapacity > 0 {
		plan.DependentCapacity = req.DependentCapacity
	}
	plan.Popular = req.Popular
	if req.Active != nil {
		plan.Active = *req.Active
	}
	if req.DisplayOrder != 0 {
		plan.DisplayOrder = req.DisplayOrder
	}
	if req.Features != nil {
		if err := plan.SetFeatures(req.Features); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid feature list"})
		}
	}

	if err := ctrl.catalog.Update(plan); err != nil {
		return planWriteError(c, err)
	}

	ctrl.invalidatePlanCache()
	return c.JSON(plan)
}

// HandleAdminSetPlanActive toggles a plan's availability.
func (ctrl *PlanController) HandleAdminSetPlanActive(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid plan id"})
	}

	var req struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid request body"})
	}

	if err := ctrl.catalog.SetActive(uint(id), req.Active); err != nil {
		log.Errorf("[Plans] status toggle failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to update plan"})
	}

	ctrl.invalidatePlanCache()
	return c.JSON(fiber.Map{"id": id, "active": req.Active})
}

// HandleAdminDeletePlan removes a plan.
func (ctrl *PlanController) HandleAdminDeletePlan(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": "Invalid plan id"})
	}

	if err := ctrl.catalog.Delete(uint(id)); err != nil {
		log.Errorf("[Plans] delete failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to delete plan"})
	}

	ctrl.invalidatePlanCache()
	return c.SendStatus(fiber.StatusNoContent)
}

func (ctrl *PlanController) invalidatePlanCache() {
	if err := cache.Delete(planCacheKey); err != nil {
		log.Warnf("[Plans] cache invalidation failed: %v", err)
	}
}

func planWriteError(c *fiber.Ctx, err error) error {
	if fields, ok := validationFieldMap(err); ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": "Plan validation failed",
			"fields":  fields,
		})
	}
	log.Errorf("[Plans] write failed: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to save plan"})
}

func toPlanResponse(p *models.Plan) planResponse {
	return planResponse{
		ID:                p.ID,
		Name:              p.Name,
		Price:             p.Price,
		Period:            p.Period,
		Description:       p.Description,
		DependentCapacity: p.DependentCapacity,
		Popular:           p.Popular,
		Features:          p.Features(),
	}
}
