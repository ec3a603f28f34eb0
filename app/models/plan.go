package models

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

// Plan is a purchasable protection tier. External product/price references
// stay null until cmd/plansync provisions them at the payment processor; a
// plan must not be sold before StripePriceID is set.
type Plan struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,max=100"`
	Price             string    `gorm:"type:varchar(20);not null" json:"price" validate:"required"`
	Period            string    `gorm:"type:varchar(20);not null;default:'month'" json:"period" validate:"oneof=month year"`
	Description       string    `gorm:"type:text" json:"description"`
	DependentCapacity int       `gorm:"not null;default:1" json:"dependent_capacity" validate:"min=1"`
	Popular           bool      `gorm:"default:false" json:"popular"`
	Active            bool      `gorm:"default:true;index" json:"active"`
	FeaturesJSON      string    `gorm:"type:text" json:"-"`
	DisplayOrder      int       `gorm:"default:0;index" json:"display_order"`
	StripeProductID   *string   `gorm:"type:varchar(191);default:null" json:"stripe_product_id,omitempty"`
	StripePriceID     *string   `gorm:"type:varchar(191);default:null" json:"stripe_price_id,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Plan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// Features decodes the stored feature list, preserving order.
func (p *Plan) Features() []string {
	if p.FeaturesJSON == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(p.FeaturesJSON), &out); err != nil {
		return nil
	}
	return out
}

// SetFeatures encodes and stores the ordered feature list.
func (p *Plan) SetFeatures(features []string) error {
	b, err := json.Marshal(features)
	if err != nil {
		return err
	}
	p.FeaturesJSON = string(b)
	return nil
}

// Purchasable reports whether the plan can be offered at checkout.
func (p *Plan) Purchasable() bool {
	return p.Active && p.StripePriceID != nil && *p.StripePriceID != ""
}
