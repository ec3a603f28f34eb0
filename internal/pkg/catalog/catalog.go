// Package catalog manages the purchasable plan tiers. The public listing
// path never fails: when the store is unreachable it serves a built-in
// default set so the marketing surface never renders empty.
package catalog

import (
	"log"

	"github.com/amparoassist/amparo/app/models"
	"github.com/amparoassist/amparo/app/repository"
)

type Service struct {
	repo repository.PlanRepository
}

func NewService(repo repository.PlanRepository) *Service {
	return &Service{repo: repo}
}

// ListActive returns the active plans in display order. Store failures are
// swallowed and replaced by the fallback catalog; anonymous visitors never
// see an error here.
func (s *Service) ListActive() []models.Plan {
	plans, err := s.repo.ListActive()
	if err != nil {
		log.Printf("catalog: falling back to default plans: %v", err)
		return DefaultPlans()
	}
	if len(plans) == 0 {
		return DefaultPlans()
	}
	return plans
}

// ListAll includes inactive plans. Admin-only; store errors surface.
func (s *Service) ListAll() ([]models.Plan, error) {
	return s.repo.ListAll()
}

func (s *Service) GetByID(id uint) (*models.Plan, error) {
	return s.repo.GetByID(id)
}

func (s *Service) Create(plan *models.Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	return s.repo.Create(plan)
}

func (s *Service) Update(plan *models.Plan) error {
	if err := plan.Validate(); err != nil {
		return err
	}
	return s.repo.Update(plan)
}

func (s *Service) Delete(id uint) error {
	return s.repo.Delete(id)
}

func (s *Service) SetActive(id uint, active bool) error {
	return s.repo.SetActive(id, active)
}

// DefaultPlans is the built-in three-tier catalog served when the store is
// unreachable. These rows carry no external price references and cannot be
// purchased, only displayed.
func DefaultPlans() []models.Plan {
	essencial := models.Plan{
		ID:                1,
		Name:              "Plano Essencial",
		Price:             "29.90",
		Period:            "month",
		Description:       "Proteção individual com os serviços essenciais.",
		DependentCapacity: 1,
		Active:            true,
		DisplayOrder:      1,
	}
	essencial.SetFeatures([]string{
		"Cobertura funeral completa",
		"Assistência 24 horas",
		"Translado municipal",
	})

	familiar := models.Plan{
		ID:                2,
		Name:              "Plano Familiar",
		Price:             "49.90",
		Period:            "month",
		Description:       "Proteção para você e até quatro dependentes.",
		DependentCapacity: 4,
		Popular:           true,
		Active:            true,
		DisplayOrder:      2,
	}
	familiar.SetFeatures([]string{
		"Tudo do Plano Essencial",
		"Até 4 dependentes",
		"Translado estadual",
		"Jazigo incluso",
	})

	premium := models.Plan{
		ID:                3,
		Name:              "Plano Premium",
		Price:             "79.90",
		Period:            "month",
		Description:       "Cobertura completa com capacidade ampliada.",
		DependentCapacity: 8,
		Active:            true,
		DisplayOrder:      3,
	}
	premium.SetFeatures([]string{
		"Tudo do Plano Familiar",
		"Até 8 dependentes",
		"Translado nacional",
		"Cerimonial premium",
	})

	return []models.Plan{essencial, familiar, premium}
}
