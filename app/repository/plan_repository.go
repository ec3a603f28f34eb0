package repository

import (
	"github.com/amparoassist/amparo/app/models"
	"gorm.io/gorm"
)

// planRepository implements the PlanRepository interface
type planRepository struct {
	db *gorm.DB
}

// NewPlanRepository creates a new plan repository instance
func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// ListActive returns all active plans ordered by sort order
func (r *planRepository) ListActive() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Where("active = ?", true).Order("display_order ASC, id ASC").Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// ListAll returns every plan including inactive ones
func (r *planRepository) ListAll() ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.Order("display_order ASC, id ASC").Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// GetByID retrieves a plan by its ID
func (r *planRepository) GetByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	err := r.db.First(&plan, id).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// Create creates a new plan
func (r *planRepository) Create(plan *models.Plan) error {
	return r.db.Create(plan).Error
}

// Update saves changes to an existing plan
func (r *planRepository) Update(plan *models.Plan) error {
	return r.db.Save(plan).Error
}

// Delete removes a plan by ID
func (r *planRepository) Delete(id uint) error {
	return r.db.Delete(&models.Plan{}, id).Error
}

// SetActive toggles the active flag on a plan
func (r *planRepository) SetActive(id uint, active bool) error {
	return r.db.Model(&models.Plan{}).Where("id = ?", id).Update("active", active).Error
}
