package models

import "time"

const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
)

// Payment is the settlement ledger entry parallel to an Invoice. One paid
// invoice produces exactly one payment row.
type Payment struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	AccountID             string    `gorm:"type:char(36);not null;index" json:"account_id"`
	SubscriptionID        uint      `gorm:"not null;index" json:"subscription_id"`
	StripePaymentIntentID *string   `gorm:"type:varchar(191);default:null" json:"stripe_payment_intent_id,omitempty"`
	Amount                string    `gorm:"type:varchar(20);not null" json:"amount"`
	Status                string    `gorm:"type:varchar(20);not null;default:'succeeded'" json:"status"`
	PaymentMethod         string    `gorm:"type:varchar(50)" json:"payment_method"`
	CreatedAt             time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
