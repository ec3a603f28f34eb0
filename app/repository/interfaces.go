package repository

import (
	"github.com/amparoassist/amparo/app/models"
	"gorm.io/gorm"
)

// AccountRepository defines account-related database operations.
type AccountRepository interface {
	Create(account *models.Account) error
	GetByID(id string) (*models.Account, error)
	GetByEmail(email string) (*models.Account, error)
	Update(account *models.Account) error
	List(offset, limit int) ([]models.Account, error)
	Count() (int64, error)
}

// PlanRepository defines plan catalog database operations.
type PlanRepository interface {
	ListActive() ([]models.Plan, error)
	ListAll() ([]models.Plan, error)
	GetByID(id uint) (*models.Plan, error)
	Create(plan *models.Plan) error
	Update(plan *models.Plan) error
	Delete(id uint) error
	SetActive(id uint, active bool) error
}

// SubscriptionRepository defines the read side of the subscription ledger
// used by the portal. Writes go through the reconciler's repository.
type SubscriptionRepository interface {
	GetCurrentForAccount(accountID string) (*models.Subscription, error)
	ListForAccount(accountID string) ([]models.Subscription, error)
}

// InvoiceRepository defines the read side of the invoice journal.
type InvoiceRepository interface {
	ListForAccount(accountID string) ([]models.Invoice, error)
	GetByIDForAccount(id uint, accountID string) (*models.Invoice, error)
}

// DependentRepository defines dependent registry operations. Every query is
// scoped by account id so cross-account access is impossible by
// construction.
type DependentRepository interface {
	ListByAccount(accountID string) ([]models.Dependent, error)
	GetByIDAndAccount(id uint, accountID string) (*models.Dependent, error)
	CountActiveByAccount(accountID string) (int64, error)
	Create(dep *models.Dependent) error
	Update(dep *models.Dependent) error
	Delete(id uint, accountID string) error
}

// Repositories struct holds all repository instances
type Repositories struct {
	Account      AccountRepository
	Plan         PlanRepository
	Subscription SubscriptionRepository
	Invoice      InvoiceRepository
	Dependent    DependentRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Account:      NewAccountRepository(db),
		Plan:         NewPlanRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Invoice:      NewInvoiceRepository(db),
		Dependent:    NewDependentRepository(db),
	}
}
