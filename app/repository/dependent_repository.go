package repository

import (
	"github.com/amparoassist/amparo/app/models"
	"gorm.io/gorm"
)

// dependentRepository implements the DependentRepository interface
type dependentRepository struct {
	db *gorm.DB
}

// NewDependentRepository creates a new dependent repository instance
func NewDependentRepository(db *gorm.DB) DependentRepository {
	return &dependentRepository{db: db}
}

// ListByAccount returns all dependents of the account, oldest first
func (r *dependentRepository) ListByAccount(accountID string) ([]models.Dependent, error) {
	var deps []models.Dependent
	err := r.db.Where("account_id = ?", accountID).Order("created_at ASC").Find(&deps).Error
	if err != nil {
		return nil, err
	}
	return deps, nil
}

// GetByIDAndAccount retrieves a dependent only when it belongs to the account
func (r *dependentRepository) GetByIDAndAccount(id uint, accountID string) (*models.Dependent, error) {
	var dep models.Dependent
	err := r.db.Where("id = ? AND account_id = ?", id, accountID).First(&dep).Error
	if err != nil {
		return nil, err
	}
	return &dep, nil
}

// CountActiveByAccount counts the account's active dependents
func (r *dependentRepository) CountActiveByAccount(accountID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Dependent{}).
		Where("account_id = ? AND active = ?", accountID, true).
		Count(&count).Error
	return count, err
}

// Create creates a new dependent
func (r *dependentRepository) Create(dep *models.Dependent) error {
	return r.db.Create(dep).Error
}

// Update saves changes to an existing dependent
func (r *dependentRepository) Update(dep *models.Dependent) error {
	return r.db.Save(dep).Error
}

// Delete removes a dependent scoped by account
func (r *dependentRepository) Delete(id uint, accountID string) error {
	return r.db.Where("id = ? AND account_id = ?", id, accountID).Delete(&models.Dependent{}).Error
}
