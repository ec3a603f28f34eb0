package repository

import (
	"github.com/amparoassist/amparo/app/models"
	"gorm.io/gorm"
)

// invoiceRepository implements the InvoiceRepository interface
type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository instance
func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

// ListForAccount returns all invoices across the account's subscriptions,
// newest first.
func (r *invoiceRepository) ListForAccount(accountID string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.Preload("Subscription").
		Joins("JOIN subscriptions ON subscriptions.id = invoices.subscription_id").
		Where("subscriptions.account_id = ?", accountID).
		Order("invoices.created_at DESC").
		Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

// GetByIDForAccount retrieves a single invoice only if it belongs to one of
// the account's subscriptions.
func (r *invoiceRepository) GetByIDForAccount(id uint, accountID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.Preload("Subscription").
		Joins("JOIN subscriptions ON subscriptions.id = invoices.subscription_id").
		Where("invoices.id = ? AND subscriptions.account_id = ?", id, accountID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}
