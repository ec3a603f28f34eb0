package models

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/amparoassist/amparo/internal/pkg/cpf"
)

var dependentNamePattern = regexp.MustCompile(`^[A-Za-zÀ-ÖØ-öø-ÿ ]+$`)

var (
	ErrInvalidDependentName = errors.New("dependent name must contain only letters and spaces")
	ErrInvalidCPF           = errors.New("invalid cpf")
)

// Dependent is a beneficiary covered under an account's plan. Rows are owned
// exclusively by their account; every repository query is account-scoped.
type Dependent struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	AccountID    string     `gorm:"type:char(36);not null;index:ux_dependents_account_cpf,unique,priority:1" json:"account_id"`
	Name         string     `gorm:"type:varchar(150);not null" json:"name"`
	CPF          string     `gorm:"type:varchar(11);not null;index:ux_dependents_account_cpf,unique,priority:2" json:"cpf"`
	BirthDate    *time.Time `gorm:"type:date;default:null" json:"birth_date,omitempty"`
	Relationship string     `gorm:"type:varchar(50)" json:"relationship"`
	PhotoURL     string     `gorm:"type:varchar(500)" json:"photo_url,omitempty"`
	Active       bool       `gorm:"default:true;index" json:"active"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Validate checks the name pattern and the CPF check digits. The CPF is
// normalized to its 11 digits before storage.
func (d *Dependent) Validate() error {
	name := strings.TrimSpace(d.Name)
	if name == "" || !dependentNamePattern.MatchString(name) {
		return ErrInvalidDependentName
	}
	normalized, ok := cpf.Normalize(d.CPF)
	if !ok {
		return ErrInvalidCPF
	}
	d.Name = name
	d.CPF = normalized
	return nil
}
