package billing

import (
	"time"

	"github.com/amparoassist/amparo/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the reconciler.
type Repository interface {
	GetAccountByEmail(email string) (*models.Account, error)
	CreateAccount(account *models.Account) error
	SaveAccount(account *models.Account) error

	GetPlanByID(id uint) (*models.Plan, error)

	GetSubscriptionByStripeID(stripeSubscriptionID string) (*models.Subscription, error)
	CreateSubscriptionIfAbsent(sub *models.Subscription) (bool, *models.Subscription, error)
	SaveSubscription(sub *models.Subscription) error
	ListSubscriptionsByAccount(accountID string) ([]models.Subscription, error)

	GetInvoiceByID(id uint) (*models.Invoice, error)
	CreateInvoiceIfAbsent(inv *models.Invoice) (bool, *models.Invoice, error)
	SaveInvoice(inv *models.Invoice) error

	CreatePayment(p *models.Payment) error

	CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a reconciler repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetAccountByEmail(email string) (*models.Account, error) {
	var account models.Account
	if err := r.db.Where("email = ?", email).First(&account).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) CreateAccount(account *models.Account) error {
	return r.db.Create(account).Error
}

func (r *gormRepository) SaveAccount(account *models.Account) error {
	return r.db.Save(account).Error
}

func (r *gormRepository) GetPlanByID(id uint) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *gormRepository) GetSubscriptionByStripeID(stripeSubscriptionID string) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.Where("stripe_subscription_id = ?", stripeSubscriptionID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// CreateSubscriptionIfAbsent inserts the subscription unless one already
// exists for the external reference. The unique index closes the
// check-then-insert race; redelivered events land on DoNothing.
func (r *gormRepository) CreateSubscriptionIfAbsent(sub *models.Subscription) (bool, *models.Subscription, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_subscription_id"}},
		DoNothing: true,
	}).Create(sub)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.Subscription
	if err := r.db.Where("stripe_subscription_id = ?", sub.StripeSubscriptionID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) SaveSubscription(sub *models.Subscription) error {
	return r.db.Save(sub).Error
}

func (r *gormRepository) ListSubscriptionsByAccount(accountID string) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := r.db.Where("account_id = ?", accountID).Order("created_at DESC").Find(&subs).Error
	return subs, err
}

func (r *gormRepository) GetInvoiceByID(id uint) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.Preload("Subscription").First(&inv, id).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *gormRepository) CreateInvoiceIfAbsent(inv *models.Invoice) (bool, *models.Invoice, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_invoice_id"}},
		DoNothing: true,
	}).Create(inv)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.Invoice
	if err := r.db.Where("stripe_invoice_id = ?", inv.StripeInvoiceID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) SaveInvoice(inv *models.Invoice) error {
	return r.db.Save(inv).Error
}

func (r *gormRepository) CreatePayment(p *models.Payment) error {
	return r.db.Create(p).Error
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_event_id"}},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("stripe_event_id = ?", event.StripeEventID).First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
