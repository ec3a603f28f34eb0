package models

import "time"

// Subscription lifecycle statuses mirror the payment processor's status set.
const (
	SubscriptionStatusActive     = "active"
	SubscriptionStatusTrialing   = "trialing"
	SubscriptionStatusPastDue    = "past_due"
	SubscriptionStatusCanceled   = "canceled"
	SubscriptionStatusIncomplete = "incomplete"
	SubscriptionStatusUnpaid     = "unpaid"
)

// Subscription binds an account to a plan and mirrors the external recurring
// billing object. The unique index on StripeSubscriptionID is what makes
// webhook redelivery a no-op. Rows are never deleted; cancellation is a
// status transition.
type Subscription struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	AccountID            string     `gorm:"type:char(36);not null;index" json:"account_id"`
	PlanID               uint       `gorm:"not null;index" json:"plan_id"`
	StripeSubscriptionID string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_subscription_id"`
	Status               string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	StartDate            time.Time  `gorm:"type:timestamp;not null" json:"start_date"`
	EndDate              *time.Time `gorm:"type:timestamp;default:null" json:"end_date,omitempty"`
	CancelAtPeriodEnd    bool       `gorm:"default:false" json:"cancel_at_period_end"`
	CreatedAt            time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt            time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Plan Plan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// IsActive reports whether the subscription currently entitles coverage.
func (s *Subscription) IsActive() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing, SubscriptionStatusPastDue:
		return true
	default:
		return false
	}
}
