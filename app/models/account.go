package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	ROLE_CLIENT = "client"
	ROLE_ADMIN  = "admin"
)

// Account is the platform identity record. The ID is an opaque UUID so it can
// be handed out in tokens and webhooks without leaking row ordering.
type Account struct {
	ID               string     `gorm:"type:char(36);primaryKey" json:"id"`
	Name             string     `gorm:"type:varchar(150)" json:"name" validate:"max=150"`
	Email            string     `gorm:"uniqueIndex;type:varchar(200)" json:"email" validate:"required,email,min=5,max=200"`
	Password         string     `gorm:"type:text" json:"-" validate:"required,min=6"`
	Role             string     `gorm:"type:varchar(20);default:'client'" json:"role" validate:"oneof=client admin"`
	StripeCustomerID string     `gorm:"type:varchar(191);default:null;index" json:"stripe_customer_id,omitempty"`
	RecoverySentAt   *time.Time `gorm:"type:timestamp;default:null" json:"-"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *Account) Validate() error {
	v := validator.New()

	return v.Struct(a)
}

// CreateAccount builds a client account with a hashed password.
func CreateAccount(name, email, password string) (*Account, error) {
	pw, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	a := &Account{
		Name:     name,
		Email:    email,
		Password: pw,
		Role:     ROLE_CLIENT,
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	return string(bytes), err
}

// CheckPasswordHash compares the given password with the stored hash.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))

	return err == nil
}

// CheckPassword verifies the provided password against the stored hash.
func (a *Account) CheckPassword(password string) bool {
	return CheckPasswordHash(password, a.Password)
}

// SetPassword hashes and sets a new password for the account.
func (a *Account) SetPassword(password string) error {
	hashedPassword, err := HashPassword(password)
	if err != nil {
		return err
	}
	a.Password = hashedPassword
	return nil
}

// IsAdmin reports whether the account has the admin role.
func (a *Account) IsAdmin() bool {
	return a.Role == ROLE_ADMIN
}

// GeneratePassword returns a random credential for purchase-time provisioning.
// The buyer never picks a password during checkout; access is granted after
// payment with a generated one.
func GeneratePassword() (string, error) {
	b := make([]byte, 12)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
