package repository

import (
	"errors"

	"github.com/amparoassist/amparo/app/models"
	"gorm.io/gorm"
)

// subscriptionRepository implements the SubscriptionRepository interface
type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository creates a new subscription repository instance
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// GetCurrentForAccount resolves the subscription that governs the account
// right now. The newest active row wins; when no row is active the newest
// row overall is returned so a lapsed customer still sees their last plan.
func (r *subscriptionRepository) GetCurrentForAccount(accountID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.Preload("Plan").
		Where("account_id = ? AND status IN ?", accountID, []string{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing}).
		Order("created_at DESC").
		First(&sub).Error
	if err == nil {
		return &sub, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = r.db.Preload("Plan").
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListForAccount returns every subscription the account ever had, newest first
func (r *subscriptionRepository) ListForAccount(accountID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Preload("Plan").
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}
